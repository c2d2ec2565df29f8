package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-score-api/internal/models"
)

func newEnrollmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEnrollmentRepositoryUpsertCreates(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollments")).
		WithArgs(sqlmock.AnyArg(), "stu-1", "course-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := repo.Upsert(context.Background(), "stu-1", "course-1")
	require.NoError(t, err)
	require.True(t, created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryUpsertDuplicateIsNoop(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollments")).
		WithArgs(sqlmock.AnyArg(), "stu-1", "course-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := repo.Upsert(context.Background(), "stu-1", "course-1")
	require.NoError(t, err)
	require.False(t, created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryDeleteReportsCount(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM enrollments WHERE student_id = $1 AND course_id = $2")).
		WithArgs("stu-1", "course-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := repo.DeleteByStudentAndCourse(context.Background(), "stu-1", "course-1")
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM enrollments WHERE student_id = $1 AND course_id = $2")).
		WithArgs("stu-1", "course-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err = repo.DeleteByStudentAndCourse(context.Background(), "stu-1", "course-1")
	require.NoError(t, err)
	require.EqualValues(t, 0, deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListByCourse(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	rows := sqlmock.NewRows([]string{"id", "student_id", "course_id", "midterm_score", "final_score", "student_name", "course_code", "course_name"}).
		AddRow("enr-1", "stu-1", "course-1", 80.0, 90.0, "Alice", "CS101", "Intro").
		AddRow("enr-2", "stu-2", "course-1", 70.0, 60.0, "Bob", "CS101", "Intro")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT e.id, e.student_id, e.course_id")).
		WithArgs("course-1").
		WillReturnRows(rows)

	enrollments, err := repo.ListByCourse(context.Background(), "course-1")
	require.NoError(t, err)
	require.Len(t, enrollments, 2)
	require.Equal(t, "Alice", enrollments[0].StudentName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryBulkUpdateScoresCommits(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	midterm := 75.5

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments")).
		WithArgs("enr-1", 75.5, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments")).
		WithArgs("enr-2", nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.BulkUpdateScores(context.Background(), []models.ScoreUpdate{
		{EnrollmentID: "enr-1", Midterm: &midterm},
		{EnrollmentID: "enr-2"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryBulkUpdateScoresRollsBack(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	final := 88.0

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments")).
		WithArgs("enr-1", nil, 88.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments")).
		WithArgs("enr-2", nil, 88.0).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.BulkUpdateScores(context.Background(), []models.ScoreUpdate{
		{EnrollmentID: "enr-1", Final: &final},
		{EnrollmentID: "enr-2", Final: &final},
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryBulkUpdateScoresEmptyIsNoop(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	require.NoError(t, repo.BulkUpdateScores(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}
