package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-score-api/internal/models"
	appErrors "github.com/noah-isme/course-score-api/pkg/errors"
)

type mockRoleUsers struct {
	user *models.User
	err  error
}

func (m *mockRoleUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

type mockRoleTeachers struct {
	teacher *models.Teacher
}

func (m *mockRoleTeachers) FindByUserID(ctx context.Context, userID string) (*models.Teacher, error) {
	if m.teacher == nil {
		return nil, sql.ErrNoRows
	}
	return m.teacher, nil
}

type mockRoleStudents struct {
	student *models.Student
}

func (m *mockRoleStudents) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	if m.student == nil {
		return nil, sql.ErrNoRows
	}
	return m.student, nil
}

func newResolver(user *models.User, teacher *models.Teacher, student *models.Student) *RoleResolver {
	return NewRoleResolver(
		&mockRoleUsers{user: user},
		&mockRoleTeachers{teacher: teacher},
		&mockRoleStudents{student: student},
		nil,
	)
}

func TestResolveStaffWinsOverTeacherLink(t *testing.T) {
	user := &models.User{ID: "user-1", Email: "admin@example.com", FullName: "Admin", IsStaff: true}
	resolver := newResolver(user, &models.Teacher{ID: "tch-1"}, nil)

	identity, err := resolver.Resolve(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, identity.Role)
	require.NotNil(t, identity.TeacherID)
	assert.Equal(t, "tch-1", *identity.TeacherID)
}

func TestResolveTeacherWinsOverStudentLink(t *testing.T) {
	user := &models.User{ID: "user-1", Email: "t@example.com", FullName: "T"}
	resolver := newResolver(user, &models.Teacher{ID: "tch-1"}, &models.Student{ID: "stu-1"})

	identity, err := resolver.Resolve(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, identity.Role)
	require.NotNil(t, identity.StudentID)
	assert.Equal(t, "stu-1", *identity.StudentID)
}

func TestResolveStudent(t *testing.T) {
	user := &models.User{ID: "user-1", Email: "s@example.com", FullName: "S"}
	resolver := newResolver(user, nil, &models.Student{ID: "stu-1"})

	identity, err := resolver.Resolve(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, identity.Role)
	assert.Nil(t, identity.TeacherID)
}

func TestResolveUnaffiliated(t *testing.T) {
	user := &models.User{ID: "user-1", Email: "u@example.com", FullName: "U"}
	resolver := newResolver(user, nil, nil)

	identity, err := resolver.Resolve(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUnaffiliated, identity.Role)
	assert.Nil(t, identity.TeacherID)
	assert.Nil(t, identity.StudentID)
}

func TestResolveMissingAccountIsUnauthorized(t *testing.T) {
	resolver := NewRoleResolver(&mockRoleUsers{err: sql.ErrNoRows}, &mockRoleTeachers{}, &mockRoleStudents{}, nil)

	_, err := resolver.Resolve(context.Background(), "gone")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}
