package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-score-api/internal/middleware"
	"github.com/noah-isme/course-score-api/internal/models"
	"github.com/noah-isme/course-score-api/internal/service"
)

type gradeEnrollmentsMock struct {
	roster  []models.EnrollmentDetail
	applied int
}

func (m *gradeEnrollmentsMock) ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error) {
	return m.roster, nil
}

func (m *gradeEnrollmentsMock) BulkUpdateScores(ctx context.Context, updates []models.ScoreUpdate) error {
	m.applied += len(updates)
	return nil
}

func newGradeHandlerFixture() (*GradeHandler, *gradeEnrollmentsMock) {
	enrollments := &gradeEnrollmentsMock{roster: []models.EnrollmentDetail{
		{Enrollment: models.Enrollment{ID: "enr-1", CourseID: "course-1", MidtermScore: 50, FinalScore: 60}, StudentName: "Alice"},
	}}
	svc := service.NewGradeService(&courseReaderMock{course: testCourse()}, enrollments, nil, nil, nil)
	return NewGradeHandler(svc), enrollments
}

func gradeCtx(w *httptest.ResponseRecorder, identity *models.Identity, body string) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(http.MethodGet, "/courses/course-1/grades", nil)
	} else {
		req, _ = http.NewRequest(http.MethodPut, "/courses/course-1/grades", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "course-1"}}
	c.Set(middleware.ContextIdentityKey, identity)
	return c
}

func ownerIdentity() *models.Identity {
	teacherID := "tch-1"
	return &models.Identity{UserID: "user-t", Role: models.RoleTeacher, TeacherID: &teacherID}
}

func outsiderIdentity() *models.Identity {
	teacherID := "tch-other"
	return &models.Identity{UserID: "user-o", Role: models.RoleTeacher, TeacherID: &teacherID}
}

func TestGradeHandlerSheetForOwner(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newGradeHandlerFixture()

	w := httptest.NewRecorder()
	handler.Sheet(gradeCtx(w, ownerIdentity(), ""))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestGradeHandlerSubmitMalformedScoreRejectsBatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, enrollments := newGradeHandlerFixture()

	// Non-numeric score fails JSON binding before any update runs.
	w := httptest.NewRecorder()
	body := `{"scores":[{"enrollment_id":"enr-1","midterm_score":"abc"}]}`
	handler.Submit(gradeCtx(w, ownerIdentity(), body))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, enrollments.applied)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "PARSE_ERROR", envelope.Error.Code)
}

func TestGradeHandlerSubmitByOutsiderForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, enrollments := newGradeHandlerFixture()

	w := httptest.NewRecorder()
	body := `{"scores":[{"enrollment_id":"enr-1","midterm_score":95}]}`
	handler.Submit(gradeCtx(w, outsiderIdentity(), body))

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, enrollments.applied)
}

func TestGradeHandlerSubmitApplies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, enrollments := newGradeHandlerFixture()

	w := httptest.NewRecorder()
	body := `{"scores":[{"enrollment_id":"enr-1","midterm_score":95,"final_score":85}]}`
	handler.Submit(gradeCtx(w, ownerIdentity(), body))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, enrollments.applied)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, "grades saved", envelope.Meta["message"])
}
