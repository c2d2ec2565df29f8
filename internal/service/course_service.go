package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-score-api/internal/models"
	appErrors "github.com/noah-isme/course-score-api/pkg/errors"
)

type courseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindDetailByID(ctx context.Context, id string) (*models.CourseDetail, error)
	ListAll(ctx context.Context) ([]models.CourseDetail, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.CourseDetail, error)
	ListAvailableForStudent(ctx context.Context, studentID string) ([]models.CourseDetail, error)
	Create(ctx context.Context, course *models.Course) error
}

type enrollmentLister interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error)
}

type teacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type commentLister interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.CommentDetail, error)
}

type listingCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

const listingCachePattern = "courses:listing:*"

// CourseService orchestrates role-scoped course listings, course creation
// and the course detail view.
type CourseService struct {
	courses     courseRepository
	enrollments enrollmentLister
	teachers    teacherReader
	comments    commentLister
	cache       listingCache
	cacheTTL    time.Duration
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewCourseService constructs CourseService. Cache and metrics may be nil.
func NewCourseService(courses courseRepository, enrollments enrollmentLister, teachers teacherReader, comments commentLister, cache listingCache, cacheTTL time.Duration, metrics *MetricsService, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{
		courses:     courses,
		enrollments: enrollments,
		teachers:    teachers,
		comments:    comments,
		cache:       cache,
		cacheTTL:    cacheTTL,
		metrics:     metrics,
		logger:      logger,
	}
}

// ListForIdentity returns the course listing scoped to the resolved role:
// admins see everything, teachers their own courses, students the disjoint
// enrolled/available partitions with averages, unaffiliated users nothing.
func (s *CourseService) ListForIdentity(ctx context.Context, identity *models.Identity) (*models.CourseListing, error) {
	if identity == nil {
		return nil, appErrors.ErrUnauthorized
	}

	key := listingCacheKey(identity.UserID)
	if s.cache != nil {
		start := time.Now()
		var cached models.CourseListing
		err := s.cache.Get(ctx, key, &cached)
		s.metrics.RecordCacheOperation(err == nil, time.Since(start))
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("course listing cache read failed", zap.Error(err))
		}
	}

	listing := &models.CourseListing{Role: identity.Role}

	switch identity.Role {
	case models.RoleAdmin:
		courses, err := s.courses.ListAll(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
		}
		listing.Courses = courses
	case models.RoleTeacher:
		courses, err := s.courses.ListByTeacher(ctx, *identity.TeacherID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
		}
		listing.Courses = courses
	case models.RoleStudent:
		enrolled, err := s.enrollments.ListByStudent(ctx, *identity.StudentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
		}
		graded := make([]models.GradedEnrollment, 0, len(enrolled))
		for _, e := range enrolled {
			graded = append(graded, models.Graded(e))
		}
		available, err := s.courses.ListAvailableForStudent(ctx, *identity.StudentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list available courses")
		}
		average := models.SemesterAverage(enrolled)
		listing.Enrolled = graded
		listing.Available = available
		listing.SemesterAverage = &average
	default:
		// Unaffiliated identities receive no course data.
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, listing, s.cacheTTL); err != nil {
			s.logger.Warn("course listing cache write failed", zap.Error(err))
		}
	}

	return listing, nil
}

// Create adds a new course. Only admins and teachers may proceed; a teacher
// always becomes the owner of the created course regardless of any
// submitted teacher_id.
func (s *CourseService) Create(ctx context.Context, identity *models.Identity, req models.CreateCourseRequest) (*models.CourseDetail, error) {
	if identity == nil || (identity.Role != models.RoleAdmin && identity.Role != models.RoleTeacher) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins and teachers may create courses")
	}

	name := strings.TrimSpace(req.Name)
	code := strings.TrimSpace(req.CourseCode)
	if name == "" || code == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name and course_code are required")
	}

	var teacherID string
	switch identity.Role {
	case models.RoleAdmin:
		requested := strings.TrimSpace(req.TeacherID)
		if requested == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "teacher_id is required")
		}
		teacher, err := s.teachers.FindByID(ctx, requested)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
		}
		teacherID = teacher.ID
	case models.RoleTeacher:
		teacherID = *identity.TeacherID
	}

	course := &models.Course{CourseCode: code, Name: name, TeacherID: teacherID}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	s.invalidateListings(ctx)

	detail, err := s.courses.FindDetailByID(ctx, course.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load created course")
	}
	return detail, nil
}

// Detail returns the course with its graded roster and comments.
func (s *CourseService) Detail(ctx context.Context, courseID string) (*models.CourseView, error) {
	course, err := s.courses.FindDetailByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	roster, err := s.enrollments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	graded := make([]models.GradedEnrollment, 0, len(roster))
	for _, e := range roster {
		graded = append(graded, models.Graded(e))
	}

	comments, err := s.comments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list comments")
	}

	return &models.CourseView{Course: *course, Roster: graded, Comments: comments}, nil
}

func (s *CourseService) invalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, listingCachePattern); err != nil {
		s.logger.Warn("course listing cache invalidation failed", zap.Error(err))
	}
}

func listingCacheKey(userID string) string {
	return fmt.Sprintf("courses:listing:%s", userID)
}
