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

type mockProfileRepo struct {
	student *models.Student
}

func (m *mockProfileRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if m.student == nil || m.student.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.student, nil
}

func (m *mockProfileRepo) UpdateProfile(ctx context.Context, id, name string, avatar *string) error {
	if m.student != nil && m.student.ID == id {
		m.student.Name = name
		m.student.Avatar = avatar
	}
	return nil
}

func TestProfileRequiresStudentRecord(t *testing.T) {
	svc := NewStudentService(&mockProfileRepo{}, nil, nil)

	_, err := svc.Profile(context.Background(), teacherIdentity("tch-1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestProfileReturnsOwnRecord(t *testing.T) {
	repo := &mockProfileRepo{student: &models.Student{ID: "stu-1", Name: "Alice"}}
	svc := NewStudentService(repo, nil, nil)

	student, err := svc.Profile(context.Background(), studentIdentity("stu-1"))
	require.NoError(t, err)
	assert.Equal(t, "Alice", student.Name)
}

func TestUpdateProfileEditsNameAndAvatar(t *testing.T) {
	repo := &mockProfileRepo{student: &models.Student{ID: "stu-1", Name: "Alice"}}
	svc := NewStudentService(repo, nil, nil)

	student, err := svc.UpdateProfile(context.Background(), studentIdentity("stu-1"), models.UpdateProfileRequest{
		Name:   "  Alice Cooper  ",
		Avatar: strPtr("/avatars/alice.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Cooper", student.Name)
	require.NotNil(t, student.Avatar)
	assert.Equal(t, "/avatars/alice.png", *student.Avatar)
}

func TestUpdateProfileBlankNameRejected(t *testing.T) {
	repo := &mockProfileRepo{student: &models.Student{ID: "stu-1", Name: "Alice"}}
	svc := NewStudentService(repo, nil, nil)

	_, err := svc.UpdateProfile(context.Background(), studentIdentity("stu-1"), models.UpdateProfileRequest{Name: "   "})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Equal(t, "Alice", repo.student.Name)
}
