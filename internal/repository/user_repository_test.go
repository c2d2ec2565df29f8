package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-score-api/internal/models"
)

func newUserRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestUserRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "is_staff", "created_at"}).
		AddRow("user-1", "alice@example.com", "hash", "Alice", false, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, full_name, is_staff, created_at FROM users WHERE email = $1")).
		WithArgs("alice@example.com").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, "user-1", user.ID)
	require.False(t, user.IsStaff)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateWithStudentCommits(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	user := &models.User{Email: "alice@example.com", PasswordHash: "hash", FullName: "Alice"}
	student := &models.Student{Name: "Alice"}
	require.NoError(t, repo.CreateWithStudent(context.Background(), user, student))

	require.NotEmpty(t, user.ID)
	require.NotEmpty(t, student.ID)
	require.NotNil(t, student.UserID)
	require.Equal(t, user.ID, *student.UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateWithStudentRollsBackOnStudentFailure(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	user := &models.User{Email: "bob@example.com", PasswordHash: "hash", FullName: "Bob"}
	err := repo.CreateWithStudent(context.Background(), user, &models.Student{Name: "Bob"})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
