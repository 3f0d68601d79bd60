package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-lms-api/internal/dto"
	"github.com/noah-isme/campus-lms-api/internal/models"
	appErrors "github.com/noah-isme/campus-lms-api/pkg/errors"
	"github.com/noah-isme/campus-lms-api/pkg/response"
)

type assignmentService interface {
	Create(ctx context.Context, req dto.CreateAssociateAssignmentRequest, actor *models.JWTClaims) (*models.AssociateAssignment, error)
	List(ctx context.Context, filter models.AssociateAssignmentFilter, actor *models.JWTClaims) ([]models.AssociateAssignment, error)
	Delete(ctx context.Context, id string, actor *models.JWTClaims) error
}

// AssignmentHandler manages academic associate scopes.
type AssignmentHandler struct {
	service assignmentService
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(svc assignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// Create godoc
// @Summary Assign an academic associate
// @Tags Associate Assignments
// @Accept json
// @Produce json
// @Param payload body dto.CreateAssociateAssignmentRequest true "Assignment"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /associate-assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.CreateAssociateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	assignment, err := h.service.Create(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// List godoc
// @Summary List associate assignments
// @Tags Associate Assignments
// @Produce json
// @Param associateId query string false "Associate ID"
// @Param campus query string false "Campus"
// @Success 200 {object} response.Envelope
// @Router /associate-assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	filter := models.AssociateAssignmentFilter{
		AssociateID: strings.TrimSpace(c.Query("associateId")),
		Campus:      strings.TrimSpace(c.Query("campus")),
	}
	items, err := h.service.List(c.Request.Context(), filter, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Delete godoc
// @Summary Remove an associate assignment
// @Tags Associate Assignments
// @Param id path string true "Assignment ID"
// @Success 204
// @Router /associate-assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
