package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-lms-api/internal/dto"
	"github.com/noah-isme/campus-lms-api/internal/models"
	appErrors "github.com/noah-isme/campus-lms-api/pkg/errors"
	"github.com/noah-isme/campus-lms-api/pkg/response"
)

type bugReportService interface {
	Create(ctx context.Context, req dto.CreateBugReportRequest, actor *models.JWTClaims) (*models.BugReport, error)
	List(ctx context.Context, filter models.BugReportFilter, actor *models.JWTClaims) ([]models.BugReport, error)
	UpdateStatus(ctx context.Context, id string, req dto.UpdateBugReportStatusRequest, actor *models.JWTClaims) (*models.BugReport, error)
}

// BugReportHandler collects and triages dashboard feedback.
type BugReportHandler struct {
	service bugReportService
}

// NewBugReportHandler constructs the handler.
func NewBugReportHandler(svc bugReportService) *BugReportHandler {
	return &BugReportHandler{service: svc}
}

// Create godoc
// @Summary Report a problem
// @Tags Bug Reports
// @Accept json
// @Produce json
// @Param payload body dto.CreateBugReportRequest true "Bug report"
// @Success 201 {object} response.Envelope
// @Router /bug-reports [post]
func (h *BugReportHandler) Create(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.CreateBugReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bug report payload"))
		return
	}
	report, err := h.service.Create(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, report)
}

// List godoc
// @Summary List bug reports
// @Tags Bug Reports
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param reporterId query string false "Reporter ID"
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /bug-reports [get]
func (h *BugReportHandler) List(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	filter := models.BugReportFilter{ReporterID: strings.TrimSpace(c.Query("reporterId"))}
	for _, raw := range strings.Split(c.Query("status"), ",") {
		if status := strings.TrimSpace(raw); status != "" {
			filter.Status = append(filter.Status, models.BugReportStatus(strings.ToLower(status)))
		}
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		filter.Offset = offset
	}

	reports, err := h.service.List(c.Request.Context(), filter, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, &response.Window{Limit: filter.Limit, Offset: filter.Offset, Count: len(reports)})
}

// UpdateStatus godoc
// @Summary Change bug report status
// @Tags Bug Reports
// @Accept json
// @Produce json
// @Param id path string true "Bug report ID"
// @Param payload body dto.UpdateBugReportStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /bug-reports/{id}/status [patch]
func (h *BugReportHandler) UpdateStatus(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.UpdateBugReportStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	report, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
