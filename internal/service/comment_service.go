package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/course-score-api/internal/models"
	appErrors "github.com/noah-isme/course-score-api/pkg/errors"
)

type commentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id string) (*models.Comment, error)
	Delete(ctx context.Context, id string) error
}

type commentCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// CommentService handles course comments: any authenticated identity may
// post on an existing course; only the author may delete.
type CommentService struct {
	repo    commentRepository
	courses commentCourseReader
	logger  *zap.Logger
}

// NewCommentService constructs CommentService.
func NewCommentService(repo commentRepository, courses commentCourseReader, logger *zap.Logger) *CommentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentService{repo: repo, courses: courses, logger: logger}
}

// Add posts a comment on the course, stamped with the author and the
// creation time. Comments are immutable afterwards.
func (s *CommentService) Add(ctx context.Context, identity *models.Identity, courseID string, req models.CreateCommentRequest) (*models.CommentDetail, error) {
	if identity == nil {
		return nil, appErrors.ErrUnauthorized
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "content is required")
	}

	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	comment := &models.Comment{CourseID: courseID, UserID: identity.UserID, Content: content}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create comment")
	}

	return &models.CommentDetail{Comment: *comment, AuthorName: identity.FullName}, nil
}

// Delete removes a comment. Only the author may delete; anyone else gets a
// forbidden error and the comment stays.
func (s *CommentService) Delete(ctx context.Context, identity *models.Identity, commentID string) error {
	if identity == nil {
		return appErrors.ErrUnauthorized
	}

	comment, err := s.repo.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "comment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load comment")
	}

	if comment.UserID != identity.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "only the author may delete a comment")
	}

	if err := s.repo.Delete(ctx, commentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete comment")
	}

	return nil
}
