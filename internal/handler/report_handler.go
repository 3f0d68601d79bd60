package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-lms-api/internal/dto"
	"github.com/noah-isme/campus-lms-api/internal/models"
	"github.com/noah-isme/campus-lms-api/internal/service"
	appErrors "github.com/noah-isme/campus-lms-api/pkg/errors"
	"github.com/noah-isme/campus-lms-api/pkg/response"
)

type attendanceExporter interface {
	Summary(ctx context.Context, query dto.AttendanceReportQuery, actor *models.JWTClaims) (*models.AttendanceSummary, error)
	Render(ctx context.Context, query dto.AttendanceReportQuery, actor *models.JWTClaims) (*service.ExportResult, error)
}

// ReportHandler exposes reporting endpoints.
type ReportHandler struct {
	exports attendanceExporter
}

// NewReportHandler constructs handler.
func NewReportHandler(exports attendanceExporter) *ReportHandler {
	return &ReportHandler{exports: exports}
}

// Attendance godoc
// @Summary Daily attendance report
// @Description Same computation as the scheduled reporters, as JSON or a CSV/PDF download
// @Tags Reports
// @Produce json
// @Produce text/csv
// @Produce application/pdf
// @Param kind query string true "goals or reflections"
// @Param date query string false "Date (YYYY-MM-DD). Defaults to today"
// @Param format query string false "json, csv or pdf"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports/attendance [get]
func (h *ReportHandler) Attendance(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	kind := models.SubmissionKind(strings.ToLower(strings.TrimSpace(c.Query("kind"))))
	if kind == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "kind is required"))
		return
	}
	day, err := parseDay(c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	query := dto.AttendanceReportQuery{
		Kind:   kind,
		Day:    day,
		Format: dto.AttendanceReportFormat(strings.ToLower(c.DefaultQuery("format", string(dto.AttendanceFormatJSON)))),
	}

	if query.Format == dto.AttendanceFormatJSON {
		summary, err := h.exports.Summary(c.Request.Context(), query, claims)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, dto.AttendanceReportResponse{
			AttendanceSummary: *summary,
			Percentage:        summary.Percentage(),
		}, nil)
		return
	}

	result, err := h.exports.Render(c.Request.Context(), query, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, result.ContentType, result.Body)
}
