package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"voxablog/internal/models"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByEmailAndRole(ctx context.Context, email, role string) (*models.User, error)
	VerifyPassword(ctx context.Context, user *models.User, password string) error
	UpdatePassword(ctx context.Context, email, password string) error
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, postID string) (*models.Post, error)
	List(ctx context.Context, authorEmail string) ([]models.Post, error)
	Update(ctx context.Context, req UpdatePostRequest) (*models.Post, error)
	Delete(ctx context.Context, postID string) error
	Like(ctx context.Context, postID, identity string) (int, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, postID, commentID string) (*models.Comment, error)
	ListByPostIDs(ctx context.Context, postIDs []string) ([]models.Comment, error)
	DeleteOwned(ctx context.Context, postID, commentID, ownerID string) (bool, error)
}

type HealthRepository interface {
	Ping(ctx context.Context) error
	CountTables(ctx context.Context) (int, error)
}

type Repository struct {
	User    UserRepository
	Post    PostRepository
	Comment CommentRepository
	Health  HealthRepository
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		User:    NewUserRepository(db),
		Post:    NewPostRepository(db),
		Comment: NewCommentRepository(db),
		Health:  NewHealthRepository(db),
	}
}

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
