package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-score-api/internal/models"
	"github.com/noah-isme/course-score-api/internal/service"
	appErrors "github.com/noah-isme/course-score-api/pkg/errors"
	"github.com/noah-isme/course-score-api/pkg/response"
)

// CourseHandler wires HTTP endpoints to the course and export services.
type CourseHandler struct {
	courses *service.CourseService
	exports *service.ExportService
}

// NewCourseHandler creates a new handler.
func NewCourseHandler(courses *service.CourseService, exports *service.ExportService) *CourseHandler {
	return &CourseHandler{courses: courses, exports: exports}
}

// List godoc
// @Summary List courses for the caller
// @Description Role-scoped listing: admins see all courses, teachers their own, students the enrolled/available split with averages
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	listing, err := h.courses.ListForIdentity(c.Request.Context(), identityFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, listing, nil)
}

// Create godoc
// @Summary Create a course
// @Description Admins assign any teacher; a teacher always owns the course they create
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body models.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req models.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course payload"))
		return
	}

	detail, err := h.courses.Create(c.Request.Context(), identityFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusCreated, detail,
		fmt.Sprintf("course %s created", detail.Name), response.SeveritySuccess)
}

// Detail godoc
// @Summary Course detail
// @Description Course with its graded roster and comments
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Detail(c *gin.Context) {
	view, err := h.courses.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, view, nil)
}

// Export godoc
// @Summary Export course grade sheet
// @Description Download the grade sheet as CSV or PDF; course teacher and admins only
// @Tags Courses
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Course ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/export [get]
func (h *CourseHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")

	file, err := h.exports.GradeSheet(c.Request.Context(), identityFromContext(c), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
