package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"voxablog/internal/apperror"
	"voxablog/internal/config"
	"voxablog/internal/models"
	"voxablog/internal/repository"
	"voxablog/internal/session"
)

type LoginRequest struct {
	Email    string
	Password string
	Role     string
}

type LoginResult struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type AuthService interface {
	Register(ctx context.Context, req repository.CreateUserRequest) (*models.User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	ResetPassword(ctx context.Context, email, newPassword string) error
	ParseToken(tokenString string) (*session.Session, error)
}

type authService struct {
	userRepo repository.UserRepository
	cfg      *config.Config
	now      func() time.Time
}

// tokenClaims is the payload of a session token.
type tokenClaims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{
		userRepo: userRepo,
		cfg:      cfg,
		now:      time.Now,
	}
}

func normalizeRole(role string) (string, error) {
	switch role = strings.ToLower(strings.TrimSpace(role)); role {
	case "":
		return models.RoleUser, nil
	case models.RoleUser, models.RoleAdmin:
		return role, nil
	default:
		return "", apperror.Validation("Role must be either user or admin")
	}
}

func (s *authService) Register(ctx context.Context, req repository.CreateUserRequest) (*models.User, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || strings.TrimSpace(req.Password) == "" {
		return nil, apperror.Validation("Email and password are required")
	}

	role, err := normalizeRole(req.Role)
	if err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetUserByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperror.New(apperror.KindConflict, "User already exists")
	}
	if err != nil && !apperror.Is(err, apperror.KindNotFound) {
		return nil, err
	}

	user := &models.User{
		Email: email,
		Role:  role,
	}

	// the unique index still guards against a concurrent registration
	if err := s.userRepo.CreateUser(ctx, user, req.Password); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || strings.TrimSpace(req.Password) == "" {
		return nil, apperror.Validation("Email and password are required")
	}

	role, err := normalizeRole(req.Role)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByEmailAndRole(ctx, email, role)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.VerifyPassword(ctx, user, req.Password); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.userRepo.UpdateLastLogin(ctx, user.UserID, now); err != nil {
		return nil, err
	}

	token, err := s.generateToken(user, now)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, Email: user.Email, Role: user.Role}, nil
}

func (s *authService) ResetPassword(ctx context.Context, email, newPassword string) error {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(newPassword) == "" {
		return apperror.Validation("Email and new password are required")
	}

	if _, err := s.userRepo.GetUserByEmail(ctx, email); err != nil {
		return err
	}

	return s.userRepo.UpdatePassword(ctx, email, newPassword)
}

func (s *authService) generateToken(user *models.User, now time.Time) (string, error) {
	claims := tokenClaims{
		ID:    user.UserID,
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenDuration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.cfg.JWTSecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

func (s *authService) ParseToken(tokenString string) (*session.Session, error) {
	claims := &tokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecretKey), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.Wrap(apperror.KindUnauthorized, "Token expired", err)
		}
		return nil, apperror.Wrap(apperror.KindUnauthorized, "Invalid token", err)
	}

	if !token.Valid || claims.Email == "" {
		return nil, apperror.New(apperror.KindUnauthorized, "Invalid token")
	}

	return &session.Session{
		UserID: claims.ID,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}
