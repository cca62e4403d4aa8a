package service

import (
	"context"
	"fmt"

	"voxablog/internal/repository"
)

type HealthStatus struct {
	Status string `json:"status"`
	Tables int    `json:"tables"`
}

type HealthService interface {
	Check(ctx context.Context) (*HealthStatus, error)
}

type healthService struct {
	healthRepo repository.HealthRepository
}

func NewHealthService(healthRepo repository.HealthRepository) HealthService {
	return &healthService{healthRepo: healthRepo}
}

func (h *healthService) Check(ctx context.Context) (*HealthStatus, error) {
	if err := h.healthRepo.Ping(ctx); err != nil {
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	count, err := h.healthRepo.CountTables(ctx)
	if err != nil {
		return nil, err
	}

	return &HealthStatus{Status: "ok", Tables: count}, nil
}
