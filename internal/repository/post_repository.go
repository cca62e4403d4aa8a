package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"voxablog/internal/apperror"
	"voxablog/internal/models"
)

type PostRepositoryImpl struct {
	DB *sqlx.DB
}

// UpdatePostRequest holds a partial edit. Nil fields are left untouched.
type UpdatePostRequest struct {
	PostID      string
	Title       *string
	Description *string
	Content     models.Content
}

const postColumns = `post_id, title, description, content, media_url, media_key, author_email,
	created_at, updated_at, likes, liked_users`

var errPostNotFound = apperror.NotFound("Blog not found")

func NewPostRepository(db *sqlx.DB) *PostRepositoryImpl {
	return &PostRepositoryImpl{DB: db}
}

func (r *PostRepositoryImpl) Create(ctx context.Context, post *models.Post) error {
	query := `
        INSERT INTO posts
        (post_id, title, description, content, media_url, media_key, author_email, created_at, updated_at, likes, liked_users)
        VALUES
        (:post_id, :title, :description, :content, :media_url, :media_key, :author_email, :created_at, :updated_at, :likes, :liked_users)
    `

	if post.PostID == "" {
		post.PostID = uuid.New().String()
	}

	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	post.Likes = 0
	post.LikedUsers = pq.StringArray{}
	post.Comments = []models.Comment{}

	if _, err := r.DB.NamedExecContext(ctx, query, post); err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

func (r *PostRepositoryImpl) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE post_id = $1`

	var post models.Post
	if err := r.DB.GetContext(ctx, &post, query, postID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return &post, nil
}

// List returns posts newest first, optionally only those of one author.
func (r *PostRepositoryImpl) List(ctx context.Context, authorEmail string) ([]models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts`
	args := []any{}

	if authorEmail != "" {
		query += ` WHERE author_email = $1`
		args = append(args, authorEmail)
	}
	query += ` ORDER BY created_at DESC`

	posts := []models.Post{}
	if err := r.DB.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return posts, nil
}

func (r *PostRepositoryImpl) Update(ctx context.Context, req UpdatePostRequest) (*models.Post, error) {
	query := `
		UPDATE posts SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			content = COALESCE($4::jsonb, content),
			updated_at = $5
		WHERE post_id = $1
		RETURNING ` + postColumns

	var post models.Post
	err := r.DB.GetContext(ctx, &post, query,
		req.PostID,
		req.Title,
		req.Description,
		req.Content,
		time.Now().UTC(),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errPostNotFound
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	return &post, nil
}

// Delete removes the post; its comments go with it through ON DELETE CASCADE.
func (r *PostRepositoryImpl) Delete(ctx context.Context, postID string) error {
	query := `DELETE FROM posts WHERE post_id = $1`

	result, err := r.DB.ExecContext(ctx, query, postID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}

	if rowsAffected == 0 {
		return errPostNotFound
	}

	return nil
}

// Like adds identity to the liked set and bumps the counter in a single
// conditional statement, so two concurrent likes by the same identity cannot
// both pass the duplicate check.
func (r *PostRepositoryImpl) Like(ctx context.Context, postID, identity string) (int, error) {
	query := `
		UPDATE posts SET
			likes = likes + 1,
			liked_users = array_append(liked_users, $2)
		WHERE post_id = $1 AND NOT ($2 = ANY(liked_users))
		RETURNING likes
	`

	var likes int
	err := r.DB.GetContext(ctx, &likes, query, postID, identity)
	if err == nil {
		return likes, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to like post: %w", err)
	}

	var exists bool
	if err := r.DB.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE post_id = $1)`, postID); err != nil {
		return 0, fmt.Errorf("failed to check post: %w", err)
	}
	if !exists {
		return 0, errPostNotFound
	}

	return 0, apperror.New(apperror.KindAlreadyLiked, "Already liked")
}
