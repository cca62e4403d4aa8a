package service

import (
	"voxablog/internal/cache"
	"voxablog/internal/config"
	"voxablog/internal/events"
	"voxablog/internal/metrics"
	"voxablog/internal/repository"
	"voxablog/internal/storage"
)

type Service struct {
	User   UserService
	Post   PostService
	Auth   AuthService
	Health HealthService
}

func NewService(
	rep *repository.Repository,
	cfg *config.Config,
	storage storage.Storage,
	listCache *cache.PostListCache,
	publisher events.Publisher,
	m *metrics.Metrics,
) *Service {
	return &Service{
		User:   NewUserService(rep.User),
		Post:   NewPostService(rep.Post, rep.Comment, storage, listCache, publisher, m, cfg),
		Auth:   NewAuthService(rep.User, cfg),
		Health: NewHealthService(rep.Health),
	}
}
