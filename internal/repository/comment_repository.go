package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-score-api/internal/models"
)

// CommentRepository handles persistence of course comments.
type CommentRepository struct {
	db *sqlx.DB
}

// NewCommentRepository constructs the repository.
func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create persists a new comment.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO comments (id, course_id, user_id, content, created_at)
        VALUES (:id, :course_id, :user_id, :content, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, comment); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// FindByID returns a comment by its ID.
func (r *CommentRepository) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	const query = `SELECT id, course_id, user_id, content, created_at FROM comments WHERE id = $1`
	var comment models.Comment
	if err := r.db.GetContext(ctx, &comment, query, id); err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByCourse returns a course's comments, newest first.
func (r *CommentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.CommentDetail, error) {
	const query = `SELECT cm.id, cm.course_id, cm.user_id, cm.content, cm.created_at,
        u.full_name AS author_name
        FROM comments cm
        JOIN users u ON u.id = cm.user_id
        WHERE cm.course_id = $1
        ORDER BY cm.created_at DESC`
	var comments []models.CommentDetail
	if err := r.db.SelectContext(ctx, &comments, query, courseID); err != nil {
		return nil, fmt.Errorf("list course comments: %w", err)
	}
	return comments, nil
}

// Delete removes a comment by its ID.
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM comments WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}
