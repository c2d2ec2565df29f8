package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-score-api/internal/models"
)

// CourseRepository handles persistence of courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseDetailColumns = `c.id, c.course_code, c.name, c.teacher_id, t.name AS teacher_name`

// FindByID returns a course by its ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, course_code, name, teacher_id FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindDetailByID returns a course with its teacher name.
func (r *CourseRepository) FindDetailByID(ctx context.Context, id string) (*models.CourseDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses c
        JOIN teachers t ON t.id = c.teacher_id
        WHERE c.id = $1`, courseDetailColumns)
	var detail models.CourseDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListAll returns every course.
func (r *CourseRepository) ListAll(ctx context.Context) ([]models.CourseDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses c
        JOIN teachers t ON t.id = c.teacher_id
        ORDER BY c.course_code`, courseDetailColumns)
	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// ListByTeacher returns the courses owned by a teacher.
func (r *CourseRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.CourseDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses c
        JOIN teachers t ON t.id = c.teacher_id
        WHERE c.teacher_id = $1
        ORDER BY c.course_code`, courseDetailColumns)
	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher courses: %w", err)
	}
	return courses, nil
}

// ListAvailableForStudent returns courses the student is not enrolled in.
func (r *CourseRepository) ListAvailableForStudent(ctx context.Context, studentID string) ([]models.CourseDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses c
        JOIN teachers t ON t.id = c.teacher_id
        WHERE c.id NOT IN (SELECT course_id FROM enrollments WHERE student_id = $1)
        ORDER BY c.course_code`, courseDetailColumns)
	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, query, studentID); err != nil {
		return nil, fmt.Errorf("list available courses: %w", err)
	}
	return courses, nil
}

// Create persists a new course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	const query = `INSERT INTO courses (id, course_code, name, teacher_id)
        VALUES (:id, :course_code, :name, :teacher_id)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}
