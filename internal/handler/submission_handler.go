package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-lms-api/internal/dto"
	"github.com/noah-isme/campus-lms-api/internal/models"
	appErrors "github.com/noah-isme/campus-lms-api/pkg/errors"
	"github.com/noah-isme/campus-lms-api/pkg/response"
)

type submissionService interface {
	SubmitGoal(ctx context.Context, req dto.SubmitGoalRequest, actor *models.JWTClaims) (*models.DailyGoal, error)
	SubmitReflection(ctx context.Context, req dto.SubmitReflectionRequest, actor *models.JWTClaims) (*models.DailyReflection, error)
	ListMenteeSubmissions(ctx context.Context, mentorID string, day time.Time, actor *models.JWTClaims) ([]models.MenteeDay, error)
	ReviewGoal(ctx context.Context, id string, req dto.ReviewSubmissionRequest, actor *models.JWTClaims) error
	ReviewReflection(ctx context.Context, id string, req dto.ReviewSubmissionRequest, actor *models.JWTClaims) error
}

// SubmissionHandler serves daily goals and reflections.
type SubmissionHandler struct {
	service submissionService
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(svc submissionService) *SubmissionHandler {
	return &SubmissionHandler{service: svc}
}

// SubmitGoal godoc
// @Summary Submit today's goal
// @Tags Submissions
// @Accept json
// @Produce json
// @Param payload body dto.SubmitGoalRequest true "Goal payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /submissions/goals [post]
func (h *SubmissionHandler) SubmitGoal(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.SubmitGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid goal payload"))
		return
	}
	goal, err := h.service.SubmitGoal(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, goal)
}

// SubmitReflection godoc
// @Summary Submit today's reflection
// @Tags Submissions
// @Accept json
// @Produce json
// @Param payload body dto.SubmitReflectionRequest true "Reflection payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /submissions/reflections [post]
func (h *SubmissionHandler) SubmitReflection(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.SubmitReflectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reflection payload"))
		return
	}
	reflection, err := h.service.SubmitReflection(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, reflection)
}

// Mentees godoc
// @Summary Mentee submissions for a day
// @Tags Submissions
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD). Defaults to today"
// @Param mentorId query string false "Mentor ID, admins only"
// @Success 200 {object} response.Envelope
// @Router /submissions/mentees [get]
func (h *SubmissionHandler) Mentees(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	day, err := parseDay(c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.service.ListMenteeSubmissions(c.Request.Context(), strings.TrimSpace(c.Query("mentorId")), day, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// ReviewGoal godoc
// @Summary Leave feedback on a mentee goal
// @Tags Submissions
// @Accept json
// @Param id path string true "Goal ID"
// @Param payload body dto.ReviewSubmissionRequest true "Feedback"
// @Success 204
// @Router /submissions/goals/{id}/review [post]
func (h *SubmissionHandler) ReviewGoal(c *gin.Context) {
	h.review(c, h.service.ReviewGoal)
}

// ReviewReflection godoc
// @Summary Leave feedback on a mentee reflection
// @Tags Submissions
// @Accept json
// @Param id path string true "Reflection ID"
// @Param payload body dto.ReviewSubmissionRequest true "Feedback"
// @Success 204
// @Router /submissions/reflections/{id}/review [post]
func (h *SubmissionHandler) ReviewReflection(c *gin.Context) {
	h.review(c, h.service.ReviewReflection)
}

func (h *SubmissionHandler) review(c *gin.Context, apply func(context.Context, string, dto.ReviewSubmissionRequest, *models.JWTClaims) error) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.ReviewSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}
	if err := apply(c.Request.Context(), c.Param("id"), req, claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// parseDay reads a YYYY-MM-DD query value. Empty means now.
func parseDay(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now().UTC(), nil
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}
	return day, nil
}
