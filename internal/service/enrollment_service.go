package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/course-score-api/internal/models"
	appErrors "github.com/noah-isme/course-score-api/pkg/errors"
)

type enrollmentRepository interface {
	Upsert(ctx context.Context, studentID, courseID string) (bool, error)
	DeleteByStudentAndCourse(ctx context.Context, studentID, courseID string) (int64, error)
}

type courseReader interface {
	FindDetailByID(ctx context.Context, id string) (*models.CourseDetail, error)
}

// EnrollmentService handles students joining and leaving courses. Both
// operations are idempotent: enrolling twice keeps a single row, dropping a
// missing enrollment is a no-op.
type EnrollmentService struct {
	repo    enrollmentRepository
	courses courseReader
	cache   listingCache
	logger  *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService. Cache may be nil.
func NewEnrollmentService(repo enrollmentRepository, courses courseReader, cache listingCache, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, courses: courses, cache: cache, logger: logger}
}

// Enroll registers the caller's student record on the course. Returns the
// course and whether a new enrollment row was created.
func (s *EnrollmentService) Enroll(ctx context.Context, identity *models.Identity, courseID string) (*models.CourseDetail, bool, error) {
	if identity == nil || identity.StudentID == nil {
		return nil, false, appErrors.Clone(appErrors.ErrForbidden, "a student record is required to enroll")
	}

	course, err := s.courses.FindDetailByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	created, err := s.repo.Upsert(ctx, *identity.StudentID, courseID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll")
	}

	if created {
		s.invalidateListings(ctx)
		s.logger.Info("student enrolled",
			zap.String("student_id", *identity.StudentID),
			zap.String("course_id", courseID))
	}

	return course, created, nil
}

// Drop removes the caller's enrollment from the course. Returns the course
// and whether an enrollment row was actually deleted.
func (s *EnrollmentService) Drop(ctx context.Context, identity *models.Identity, courseID string) (*models.CourseDetail, bool, error) {
	if identity == nil || identity.StudentID == nil {
		return nil, false, appErrors.Clone(appErrors.ErrForbidden, "a student record is required to drop")
	}

	course, err := s.courses.FindDetailByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	deleted, err := s.repo.DeleteByStudentAndCourse(ctx, *identity.StudentID, courseID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to drop")
	}

	if deleted > 0 {
		s.invalidateListings(ctx)
		s.logger.Info("student dropped",
			zap.String("student_id", *identity.StudentID),
			zap.String("course_id", courseID))
	}

	return course, deleted > 0, nil
}

func (s *EnrollmentService) invalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, listingCachePattern); err != nil {
		s.logger.Warn("course listing cache invalidation failed", zap.Error(err))
	}
}
