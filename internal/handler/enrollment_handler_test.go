package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-score-api/internal/middleware"
	"github.com/noah-isme/course-score-api/internal/models"
	"github.com/noah-isme/course-score-api/internal/service"
	"github.com/noah-isme/course-score-api/pkg/response"
)

type enrollmentRepoMock struct {
	exists bool
}

func (m *enrollmentRepoMock) Upsert(ctx context.Context, studentID, courseID string) (bool, error) {
	if m.exists {
		return false, nil
	}
	m.exists = true
	return true, nil
}

func (m *enrollmentRepoMock) DeleteByStudentAndCourse(ctx context.Context, studentID, courseID string) (int64, error) {
	if !m.exists {
		return 0, nil
	}
	m.exists = false
	return 1, nil
}

type courseReaderMock struct {
	course *models.CourseDetail
}

func (m *courseReaderMock) FindDetailByID(ctx context.Context, id string) (*models.CourseDetail, error) {
	if m.course == nil || m.course.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.course, nil
}

func testCourse() *models.CourseDetail {
	return &models.CourseDetail{
		Course:      models.Course{ID: "course-1", CourseCode: "CS101", Name: "Intro", TeacherID: "tch-1"},
		TeacherName: "Prof. Smith",
	}
}

func studentCtx(w *httptest.ResponseRecorder, method, path string) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "course-1"}}
	studentID := "stu-1"
	c.Set(middleware.ContextIdentityKey, &models.Identity{
		UserID:    "user-1",
		Role:      models.RoleStudent,
		StudentID: &studentID,
	})
	return c
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestEnrollmentHandlerEnrollCreates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := service.NewEnrollmentService(&enrollmentRepoMock{}, &courseReaderMock{course: testCourse()}, nil, nil)
	handler := NewEnrollmentHandler(svc)

	w := httptest.NewRecorder()
	handler.Enroll(studentCtx(w, http.MethodPost, "/courses/course-1/enroll"))

	require.Equal(t, http.StatusCreated, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, "success", envelope.Meta["severity"])
	assert.Equal(t, "enrolled in Intro", envelope.Meta["message"])
}

func TestEnrollmentHandlerEnrollTwiceWarns(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := service.NewEnrollmentService(&enrollmentRepoMock{exists: true}, &courseReaderMock{course: testCourse()}, nil, nil)
	handler := NewEnrollmentHandler(svc)

	w := httptest.NewRecorder()
	handler.Enroll(studentCtx(w, http.MethodPost, "/courses/course-1/enroll"))

	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, "warning", envelope.Meta["severity"])
}

func TestEnrollmentHandlerEnrollWithoutStudentForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := service.NewEnrollmentService(&enrollmentRepoMock{}, &courseReaderMock{course: testCourse()}, nil, nil)
	handler := NewEnrollmentHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/courses/course-1/enroll", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "course-1"}}
	c.Set(middleware.ContextIdentityKey, &models.Identity{UserID: "user-1", Role: models.RoleUnaffiliated})

	handler.Enroll(c)
	require.Equal(t, http.StatusForbidden, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
}

func TestEnrollmentHandlerDropMissingWarns(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := service.NewEnrollmentService(&enrollmentRepoMock{}, &courseReaderMock{course: testCourse()}, nil, nil)
	handler := NewEnrollmentHandler(svc)

	w := httptest.NewRecorder()
	handler.Drop(studentCtx(w, http.MethodDelete, "/courses/course-1/enroll"))

	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, "warning", envelope.Meta["severity"])
	assert.Equal(t, "you are not enrolled in Intro", envelope.Meta["message"])
}
