package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-score-api/internal/models"
)

// StudentRepository handles persistence of student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID returns a student by its ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, user_id, name, avatar FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByUserID returns the student linked to the given account, if any.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	const query = `SELECT id, user_id, name, avatar FROM students WHERE user_id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, userID); err != nil {
		return nil, err
	}
	return &student, nil
}

// UpdateProfile updates the student's name and avatar.
func (r *StudentRepository) UpdateProfile(ctx context.Context, id, name string, avatar *string) error {
	const query = `UPDATE students SET name = $2, avatar = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, name, avatar); err != nil {
		return fmt.Errorf("update student profile: %w", err)
	}
	return nil
}
