package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"voxablog/internal/apperror"
	"voxablog/internal/models"
)

type userRepository struct {
	db *sqlx.DB
}

type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

const userColumns = `user_id, email, password_hash, role, last_login, created_at`

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(password)), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User, password string) error {
	hashed, err := hashPassword(password)
	if err != nil {
		return err
	}

	user.UserID = uuid.New().String()
	user.PasswordHash = hashed
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO users (user_id, email, password_hash, role, created_at)
		VALUES (:user_id, :email, :password_hash, :role, :created_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		if pqCode(err) == pqUniqueViolation {
			return apperror.Wrap(apperror.KindConflict, "User already exists", err)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetUserByEmailAndRole(ctx context.Context, email, role string) (*models.User, error) {
	var user models.User

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND role = $2`

	if err := r.db.GetContext(ctx, &user, query, email, role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("Invalid credentials (email or role mismatch)")
		}
		return nil, fmt.Errorf("failed to get user by email and role: %w", err)
	}

	return &user, nil
}

func (r *userRepository) VerifyPassword(_ context.Context, user *models.User, password string) error {
	// checking that the password hash is the same
	err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(strings.TrimSpace(password)))
	if err != nil {
		return apperror.Wrap(apperror.KindInvalidCredentials, "Invalid credentials", err)
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, email, password string) error {
	hashed, err := hashPassword(password)
	if err != nil {
		return err
	}

	query := `UPDATE users SET password_hash = $1 WHERE email = $2`

	result, err := r.db.ExecContext(ctx, query, hashed, email)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}

	if rowsAffected == 0 {
		return apperror.NotFound("User not found")
	}

	return nil
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	query := `UPDATE users SET last_login = $1 WHERE user_id = $2`

	if _, err := r.db.ExecContext(ctx, query, at, userID); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	return nil
}
