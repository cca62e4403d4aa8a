package handlers

import (
	"net/http"

	"voxablog/internal/repository"
	"voxablog/internal/service"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAuthError(w, err)
		return
	}

	if err := h.validate(req); err != nil {
		writeAuthError(w, err)
		return
	}

	serviceReq := repository.CreateUserRequest{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	}

	if _, err := h.AuthService.Register(r.Context(), serviceReq); err != nil {
		writeAuthError(w, err)
		return
	}

	writeJSON(w, MessageResponse{Message: "User registered successfully"}, http.StatusCreated)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAuthError(w, err)
		return
	}

	if err := h.validate(req); err != nil {
		writeAuthError(w, err)
		return
	}

	result, err := h.AuthService.Login(r.Context(), service.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeAuthError(w, err)
		return
	}

	writeJSON(w, result, http.StatusOK)
}

func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAuthError(w, err)
		return
	}

	if err := h.validate(req); err != nil {
		writeAuthError(w, err)
		return
	}

	if err := h.AuthService.ResetPassword(r.Context(), req.Email, req.NewPassword); err != nil {
		writeAuthError(w, err)
		return
	}

	writeJSON(w, MessageResponse{Message: "Password updated successfully"}, http.StatusOK)
}
