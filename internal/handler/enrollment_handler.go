package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-score-api/internal/service"
	"github.com/noah-isme/course-score-api/pkg/response"
)

// EnrollmentHandler wires HTTP endpoints to the enrollment service.
type EnrollmentHandler struct {
	service *service.EnrollmentService
}

// NewEnrollmentHandler creates a new handler.
func NewEnrollmentHandler(svc *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: svc}
}

// Enroll godoc
// @Summary Enroll in a course
// @Description Idempotent: enrolling in a course twice keeps a single enrollment
// @Tags Enrollments
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/enroll [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	course, created, err := h.service.Enroll(c.Request.Context(), identityFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if !created {
		response.Message(c, http.StatusOK, course,
			fmt.Sprintf("you are already enrolled in %s", course.Name), response.SeverityWarning)
		return
	}

	response.Message(c, http.StatusCreated, course,
		fmt.Sprintf("enrolled in %s", course.Name), response.SeveritySuccess)
}

// Drop godoc
// @Summary Drop a course
// @Description Idempotent: dropping a course you are not enrolled in changes nothing
// @Tags Enrollments
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/drop [post]
func (h *EnrollmentHandler) Drop(c *gin.Context) {
	course, deleted, err := h.service.Drop(c.Request.Context(), identityFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if !deleted {
		response.Message(c, http.StatusOK, course,
			fmt.Sprintf("you are not enrolled in %s", course.Name), response.SeverityWarning)
		return
	}

	response.Message(c, http.StatusOK, course,
		fmt.Sprintf("dropped %s", course.Name), response.SeveritySuccess)
}
