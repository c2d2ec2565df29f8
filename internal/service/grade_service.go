package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-score-api/internal/models"
	appErrors "github.com/noah-isme/course-score-api/pkg/errors"
)

type gradeEnrollmentRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error)
	BulkUpdateScores(ctx context.Context, updates []models.ScoreUpdate) error
}

// GradeSubmission carries the per-enrollment partial score updates for a
// course. A nil score field leaves the stored value unchanged.
type GradeSubmission struct {
	Scores []models.ScoreUpdate `json:"scores" validate:"required,min=1,dive"`
}

// GradeSheet is the grading payload: the course and its graded roster.
type GradeSheet struct {
	Course      models.CourseDetail       `json:"course"`
	Enrollments []models.GradedEnrollment `json:"enrollments"`
}

// GradeService enforces the grading permission gate and applies score
// updates for all enrollments of a course in one transaction.
type GradeService struct {
	courses     courseReader
	enrollments gradeEnrollmentRepository
	cache       listingCache
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewGradeService constructs GradeService. Cache may be nil.
func NewGradeService(courses courseReader, enrollments gradeEnrollmentRepository, cache listingCache, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{courses: courses, enrollments: enrollments, cache: cache, validator: validate, logger: logger}
}

// Sheet returns the course roster with current scores for grade entry.
func (s *GradeService) Sheet(ctx context.Context, identity *models.Identity, courseID string) (*GradeSheet, error) {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(identity, course); err != nil {
		return nil, err
	}
	return s.buildSheet(ctx, course)
}

// Submit applies the score updates. Every referenced enrollment must belong
// to the course; all rows are persisted in a single transaction so a
// failure leaves no enrollment updated.
func (s *GradeService) Submit(ctx context.Context, identity *models.Identity, courseID string, req GradeSubmission) (*GradeSheet, error) {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(identity, course); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	roster, err := s.enrollments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	known := make(map[string]struct{}, len(roster))
	for _, e := range roster {
		known[e.ID] = struct{}{}
	}
	for _, update := range req.Scores {
		if _, ok := known[update.EnrollmentID]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "enrollment does not belong to course")
		}
	}

	if err := s.enrollments.BulkUpdateScores(ctx, req.Scores); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update scores")
	}

	s.invalidateListings(ctx)
	s.logger.Info("grades submitted",
		zap.String("course_id", courseID),
		zap.Int("updates", len(req.Scores)))

	return s.buildSheet(ctx, course)
}

func (s *GradeService) loadCourse(ctx context.Context, courseID string) (*models.CourseDetail, error) {
	course, err := s.courses.FindDetailByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// authorize admits admins and the teacher owning the course.
func (s *GradeService) authorize(identity *models.Identity, course *models.CourseDetail) error {
	if identity == nil {
		return appErrors.ErrUnauthorized
	}
	if identity.Role == models.RoleAdmin {
		return nil
	}
	if identity.TeacherID != nil && *identity.TeacherID == course.TeacherID {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "only the course teacher or an admin may grade")
}

func (s *GradeService) buildSheet(ctx context.Context, course *models.CourseDetail) (*GradeSheet, error) {
	roster, err := s.enrollments.ListByCourse(ctx, course.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	graded := make([]models.GradedEnrollment, 0, len(roster))
	for _, e := range roster {
		graded = append(graded, models.Graded(e))
	}
	return &GradeSheet{Course: *course, Enrollments: graded}, nil
}

func (s *GradeService) invalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, listingCachePattern); err != nil {
		s.logger.Warn("course listing cache invalidation failed", zap.Error(err))
	}
}
