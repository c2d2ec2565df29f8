package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-score-api/internal/models"
)

func newCourseRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func courseDetailRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "course_code", "name", "teacher_id", "teacher_name"})
}

func TestCourseRepositoryCreateAndFindDetail(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()

	repo := NewCourseRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO courses")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	course := &models.Course{CourseCode: "CS101", Name: "Intro", TeacherID: "tch-1"}
	require.NoError(t, repo.Create(context.Background(), course))
	require.NotEmpty(t, course.ID)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT c.id, c.course_code, c.name, c.teacher_id, t.name AS teacher_name")).
		WithArgs(course.ID).
		WillReturnRows(courseDetailRows().AddRow(course.ID, "CS101", "Intro", "tch-1", "Prof. Smith"))

	detail, err := repo.FindDetailByID(context.Background(), course.ID)
	require.NoError(t, err)
	require.Equal(t, "Prof. Smith", detail.TeacherName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListByTeacher(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()

	repo := NewCourseRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.teacher_id = $1")).
		WithArgs("tch-1").
		WillReturnRows(courseDetailRows().
			AddRow("course-1", "CS101", "Intro", "tch-1", "Prof. Smith").
			AddRow("course-2", "CS201", "Algorithms", "tch-1", "Prof. Smith"))

	courses, err := repo.ListByTeacher(context.Background(), "tch-1")
	require.NoError(t, err)
	require.Len(t, courses, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListAvailableForStudentExcludesEnrolled(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()

	repo := NewCourseRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.id NOT IN (SELECT course_id FROM enrollments WHERE student_id = $1)")).
		WithArgs("stu-1").
		WillReturnRows(courseDetailRows().
			AddRow("course-3", "MA101", "Calculus", "tch-2", "Prof. Jones"))

	courses, err := repo.ListAvailableForStudent(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	require.Equal(t, "MA101", courses[0].CourseCode)
	require.NoError(t, mock.ExpectationsWereMet())
}
