package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-score-api/internal/models"
)

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Upsert registers the student on the course if no enrollment exists yet.
// The uniqueness constraint on (student_id, course_id) makes the operation
// atomic; a concurrent duplicate insert is absorbed by ON CONFLICT rather
// than racing a check-then-insert. Returns whether a row was created.
func (r *EnrollmentRepository) Upsert(ctx context.Context, studentID, courseID string) (bool, error) {
	const query = `INSERT INTO enrollments (id, student_id, course_id, midterm_score, final_score)
        VALUES ($1, $2, $3, 0, 0)
        ON CONFLICT (student_id, course_id) DO NOTHING`
	result, err := r.db.ExecContext(ctx, query, uuid.NewString(), studentID, courseID)
	if err != nil {
		return false, fmt.Errorf("upsert enrollment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("upsert enrollment result: %w", err)
	}
	return affected > 0, nil
}

// DeleteByStudentAndCourse removes the enrollment for the pair. Deleting
// zero rows is not an error.
func (r *EnrollmentRepository) DeleteByStudentAndCourse(ctx context.Context, studentID, courseID string) (int64, error) {
	const query = `DELETE FROM enrollments WHERE student_id = $1 AND course_id = $2`
	result, err := r.db.ExecContext(ctx, query, studentID, courseID)
	if err != nil {
		return 0, fmt.Errorf("delete enrollment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete enrollment result: %w", err)
	}
	return affected, nil
}

// ListByCourse returns the enrollments of a course with student names.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.student_id, e.course_id, e.midterm_score, e.final_score,
        s.name AS student_name, c.course_code, c.name AS course_name
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        JOIN courses c ON c.id = e.course_id
        WHERE e.course_id = $1
        ORDER BY s.name`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, courseID); err != nil {
		return nil, fmt.Errorf("list course enrollments: %w", err)
	}
	return enrollments, nil
}

// ListByStudent returns the student's enrollments with course info.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.student_id, e.course_id, e.midterm_score, e.final_score,
        s.name AS student_name, c.course_code, c.name AS course_name
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        JOIN courses c ON c.id = e.course_id
        WHERE e.student_id = $1
        ORDER BY c.course_code`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// BulkUpdateScores applies partial score updates in one transaction. A nil
// field keeps the stored value. Any failure rolls back every update.
func (r *EnrollmentRepository) BulkUpdateScores(ctx context.Context, updates []models.ScoreUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	const query = `UPDATE enrollments
        SET midterm_score = COALESCE($2, midterm_score),
            final_score = COALESCE($3, final_score)
        WHERE id = $1`
	for _, update := range updates {
		if _, err := tx.ExecContext(ctx, query, update.EnrollmentID, update.Midterm, update.Final); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("update scores for %s: %w", update.EnrollmentID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit score updates: %w", err)
	}
	return nil
}
