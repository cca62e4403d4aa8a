package handlers

import (
	"github.com/go-playground/validator/v10"

	"voxablog/internal/config"
	"voxablog/internal/service"
)

type Handlers struct {
	AuthService   service.AuthService
	PostService   service.PostService
	UserService   service.UserService
	HealthService service.HealthService
	Cfg           *config.Config
	Validate      *validator.Validate
}

func NewHandlers(service *service.Service, config *config.Config) *Handlers {
	return &Handlers{
		AuthService:   service.Auth,
		PostService:   service.Post,
		UserService:   service.User,
		HealthService: service.Health,
		Cfg:           config,
		Validate:      validator.New(validator.WithRequiredStructEnabled()),
	}
}
