package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-score-api/internal/service"
	appErrors "github.com/noah-isme/course-score-api/pkg/errors"
	"github.com/noah-isme/course-score-api/pkg/response"
)

// GradeHandler wires HTTP endpoints to the grade service.
type GradeHandler struct {
	service *service.GradeService
}

// NewGradeHandler creates a new handler.
func NewGradeHandler(svc *service.GradeService) *GradeHandler {
	return &GradeHandler{service: svc}
}

// Sheet godoc
// @Summary Course grade sheet
// @Description Roster with current scores for grade entry; course teacher and admins only
// @Tags Grades
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/grades [get]
func (h *GradeHandler) Sheet(c *gin.Context) {
	sheet, err := h.service.Sheet(c.Request.Context(), identityFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, sheet, nil)
}

// Submit godoc
// @Summary Submit course grades
// @Description Apply partial score updates for the course roster in one transaction; a malformed score rejects the whole batch
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body service.GradeSubmission true "Score updates"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/grades [put]
func (h *GradeHandler) Submit(c *gin.Context) {
	var req service.GradeSubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrParse.Code, http.StatusBadRequest, "malformed grade payload"))
		return
	}

	sheet, err := h.service.Submit(c.Request.Context(), identityFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, sheet, "grades saved", response.SeveritySuccess)
}
