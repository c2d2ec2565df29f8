package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-score-api/internal/models"
)

// UserRepository handles persistence of user accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns a user by its ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT id, email, password_hash, full_name, is_staff, created_at FROM users WHERE id = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail returns a user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT id, email, password_hash, full_name, is_staff, created_at FROM users WHERE email = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateWithStudent persists a new account and its linked student record in
// one transaction, so registration never leaves a user without a Student.
func (r *UserRepository) CreateWithStudent(ctx context.Context, user *models.User, student *models.Student) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	student.UserID = &user.ID

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	const userQuery = `INSERT INTO users (id, email, password_hash, full_name, is_staff, created_at)
        VALUES (:id, :email, :password_hash, :full_name, :is_staff, :created_at)`
	if _, err := tx.NamedExecContext(ctx, userQuery, user); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("create user: %w", err)
	}
	const studentQuery = `INSERT INTO students (id, user_id, name, avatar)
        VALUES (:id, :user_id, :name, :avatar)`
	if _, err := tx.NamedExecContext(ctx, studentQuery, student); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("create student: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit registration: %w", err)
	}
	return nil
}
