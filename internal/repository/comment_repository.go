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

type commentRepository struct {
	db *sqlx.DB
}

const commentColumns = `comment_id, post_id, user_id, user_name, text, created_at`

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (comment_id, post_id, user_id, user_name, text, created_at)
		VALUES (:comment_id, :post_id, :user_id, :user_name, :text, :created_at)
	`

	if comment.CommentID == "" {
		comment.CommentID = uuid.New().String()
	}
	comment.Timestamp = time.Now().UTC()

	if _, err := r.db.NamedExecContext(ctx, query, comment); err != nil {
		if pqCode(err) == pqForeignKeyViolation {
			return apperror.Wrap(apperror.KindNotFound, "Blog not found", err)
		}
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, postID, commentID string) (*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE comment_id = $1 AND post_id = $2`

	var comment models.Comment
	if err := r.db.GetContext(ctx, &comment, query, commentID, postID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("Comment not found")
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	return &comment, nil
}

// ListByPostIDs returns comments of the given posts in insertion order.
func (r *commentRepository) ListByPostIDs(ctx context.Context, postIDs []string) ([]models.Comment, error) {
	comments := []models.Comment{}
	if len(postIDs) == 0 {
		return comments, nil
	}

	query := `SELECT ` + commentColumns + ` FROM comments WHERE post_id = ANY($1) ORDER BY post_id, seq`

	if err := r.db.SelectContext(ctx, &comments, query, pq.Array(postIDs)); err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	return comments, nil
}

// DeleteOwned removes the comment only when ownerID owns it. It reports
// whether a row was removed.
func (r *commentRepository) DeleteOwned(ctx context.Context, postID, commentID, ownerID string) (bool, error) {
	query := `DELETE FROM comments WHERE comment_id = $1 AND post_id = $2 AND user_id = $3`

	result, err := r.db.ExecContext(ctx, query, commentID, postID, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to delete comment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check deleted rows: %w", err)
	}

	return rowsAffected > 0, nil
}
