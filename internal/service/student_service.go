package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-score-api/internal/models"
	appErrors "github.com/noah-isme/course-score-api/pkg/errors"
)

type profileStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	UpdateProfile(ctx context.Context, id, name string, avatar *string) error
}

// StudentService exposes the caller's student profile.
type StudentService struct {
	repo      profileStudentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(repo profileStudentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// Profile returns the caller's student record.
func (s *StudentService) Profile(ctx context.Context, identity *models.Identity) (*models.Student, error) {
	if identity == nil || identity.StudentID == nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "a student record is required")
	}

	student, err := s.repo.FindByID(ctx, *identity.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// UpdateProfile edits the caller's student name and avatar.
func (s *StudentService) UpdateProfile(ctx context.Context, identity *models.Identity, req models.UpdateProfileRequest) (*models.Student, error) {
	if identity == nil || identity.StudentID == nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "a student record is required")
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	if err := s.repo.UpdateProfile(ctx, *identity.StudentID, req.Name, req.Avatar); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}

	student, err := s.repo.FindByID(ctx, *identity.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}
