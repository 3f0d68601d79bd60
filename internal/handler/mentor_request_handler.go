package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-lms-api/internal/dto"
	"github.com/noah-isme/campus-lms-api/internal/models"
	"github.com/noah-isme/campus-lms-api/internal/notice"
	appErrors "github.com/noah-isme/campus-lms-api/pkg/errors"
	"github.com/noah-isme/campus-lms-api/pkg/response"
)

type mentorRequestService interface {
	CreateRequest(ctx context.Context, req dto.CreateMentorRequest, actor *models.JWTClaims) (string, error)
	Review(ctx context.Context, requestID string, req dto.ReviewMentorRequest, actor *models.JWTClaims) (*models.MentorChangeRequest, error)
	Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.MentorChangeRequest, error)
	List(ctx context.Context, query dto.MentorRequestQuery, actor *models.JWTClaims) ([]models.MentorChangeRequest, error)
	FindInconsistencies(ctx context.Context) ([]models.MentorRequestInconsistency, error)
}

// MentorRequestHandler exposes the mentor change workflow.
type MentorRequestHandler struct {
	service mentorRequestService
	notices *notice.Registry
}

// NewMentorRequestHandler constructs the handler. notices may be nil.
func NewMentorRequestHandler(svc mentorRequestService, notices *notice.Registry) *MentorRequestHandler {
	if notices == nil {
		notices = notice.NewRegistry()
	}
	return &MentorRequestHandler{service: svc, notices: notices}
}

// Create godoc
// @Summary Request a mentor change
// @Tags Mentor Requests
// @Accept json
// @Produce json
// @Param payload body dto.CreateMentorRequest true "Mentor change payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /mentor-requests [post]
func (h *MentorRequestHandler) Create(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.CreateMentorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid mentor request payload"))
		return
	}
	id, err := h.service.CreateRequest(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.CreateMentorRequestResponse{ID: id})
}

// List godoc
// @Summary List mentor change requests
// @Description Students see their own requests and mentors the ones naming them
// @Tags Mentor Requests
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param studentId query string false "Student ID"
// @Param mentorId query string false "Requested mentor ID"
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /mentor-requests [get]
func (h *MentorRequestHandler) List(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	query := dto.MentorRequestQuery{
		StudentID:         c.Query("studentId"),
		RequestedMentorID: c.Query("mentorId"),
	}
	for _, raw := range strings.Split(c.Query("status"), ",") {
		if status := strings.TrimSpace(raw); status != "" {
			query.Status = append(query.Status, models.MentorRequestStatus(strings.ToLower(status)))
		}
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		query.Limit = limit
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		query.Offset = offset
	}

	requests, err := h.service.List(c.Request.Context(), query, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, &response.Window{Limit: query.Limit, Offset: query.Offset, Count: len(requests)})
}

// Get godoc
// @Summary Get mentor change request
// @Tags Mentor Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /mentor-requests/{id} [get]
func (h *MentorRequestHandler) Get(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	request, err := h.service.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Review godoc
// @Summary Approve or reject a mentor change request
// @Description Drives the reviewer's notice banner. A second review of the same request while one is in flight is refused.
// @Tags Mentor Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.ReviewMentorRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /mentor-requests/{id}/review [post]
func (h *MentorRequestHandler) Review(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.ReviewMentorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}
	req.Decision = models.MentorRequestStatus(strings.ToLower(strings.TrimSpace(string(req.Decision))))

	id := c.Param("id")
	if !h.notices.Begin(claims.UserID, id) {
		response.Error(c, appErrors.Clone(appErrors.ErrConflict, "this request is already being processed"))
		return
	}

	request, err := h.service.Review(c.Request.Context(), id, req, claims)
	if err != nil {
		h.notices.Fail(claims.UserID, err, notice.Fallback(reviewAction(req.Decision)))
		response.Error(c, err)
		return
	}
	banner := h.notices.Succeed(claims.UserID, fmt.Sprintf("Request %s successfully", request.Status))

	response.JSON(c, http.StatusOK, request, nil, map[string]interface{}{"notice": banner})
}

// Inconsistencies godoc
// @Summary Resolved requests whose student record disagrees
// @Tags Mentor Requests
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /mentor-requests/inconsistencies [get]
func (h *MentorRequestHandler) Inconsistencies(c *gin.Context) {
	items, err := h.service.FindInconsistencies(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

func reviewAction(decision models.MentorRequestStatus) string {
	switch decision {
	case models.MentorRequestApproved:
		return "approve request"
	case models.MentorRequestRejected:
		return "reject request"
	default:
		return "review request"
	}
}
