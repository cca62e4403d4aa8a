package service

import (
	"context"

	"voxablog/internal/apperror"
	"voxablog/internal/models"
	"voxablog/internal/repository"
	"voxablog/internal/session"
)

type UserService interface {
	Profile(ctx context.Context, s *session.Session) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) Profile(ctx context.Context, sess *session.Session) (*models.User, error) {
	if sess == nil {
		return nil, apperror.New(apperror.KindUnauthorized, "Authentication required")
	}
	return s.userRepo.GetUserByEmail(ctx, sess.Email)
}
