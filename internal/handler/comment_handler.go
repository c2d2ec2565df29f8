package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-score-api/internal/models"
	"github.com/noah-isme/course-score-api/internal/service"
	appErrors "github.com/noah-isme/course-score-api/pkg/errors"
	"github.com/noah-isme/course-score-api/pkg/response"
)

// CommentHandler wires HTTP endpoints to the comment service.
type CommentHandler struct {
	service *service.CommentService
}

// NewCommentHandler creates a new handler.
func NewCommentHandler(svc *service.CommentService) *CommentHandler {
	return &CommentHandler{service: svc}
}

// Create godoc
// @Summary Post a course comment
// @Description Any authenticated user may comment on an existing course
// @Tags Comments
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body models.CreateCommentRequest true "Comment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/comments [post]
func (h *CommentHandler) Create(c *gin.Context) {
	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid comment payload"))
		return
	}

	comment, err := h.service.Add(c.Request.Context(), identityFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusCreated, comment, "comment posted", response.SeveritySuccess)
}

// Delete godoc
// @Summary Delete a comment
// @Description Only the comment's author may delete it
// @Tags Comments
// @Produce json
// @Param id path string true "Comment ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /comments/{id} [delete]
func (h *CommentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), identityFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
