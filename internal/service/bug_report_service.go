package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-lms-api/internal/dto"
	"github.com/noah-isme/campus-lms-api/internal/models"
	appErrors "github.com/noah-isme/campus-lms-api/pkg/errors"
	"github.com/noah-isme/campus-lms-api/pkg/sanitize"
)

type bugReportStore interface {
	Create(ctx context.Context, report *models.BugReport) error
	GetByID(ctx context.Context, id string) (*models.BugReport, error)
	List(ctx context.Context, filter models.BugReportFilter) ([]models.BugReport, error)
	UpdateStatus(ctx context.Context, id string, status models.BugReportStatus, notes string) error
}

// BugReportService collects and triages dashboard feedback.
type BugReportService struct {
	repo      bugReportStore
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBugReportService constructs the service.
func NewBugReportService(repo bugReportStore, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *BugReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &BugReportService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// Create files a report on behalf of any authenticated user.
func (s *BugReportService) Create(ctx context.Context, req dto.CreateBugReportRequest, actor *models.JWTClaims) (*models.BugReport, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	req.Title = sanitize.Text(req.Title)
	req.Description = sanitize.Text(req.Description)
	req.Category = strings.ToLower(strings.TrimSpace(req.Category))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bug report payload")
	}
	if req.Category == "" {
		req.Category = "general"
	}

	report := &models.BugReport{
		ID:          uuid.NewString(),
		ReporterID:  actor.UserID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      models.BugReportOpen,
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, appErrors.StoreFailure(err, "create bug report")
	}
	return report, nil
}

// List returns reports for admins, optionally narrowed by status.
func (s *BugReportService) List(ctx context.Context, filter models.BugReportFilter, actor *models.JWTClaims) ([]models.BugReport, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	for _, status := range filter.Status {
		if !status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status "+string(status))
		}
	}
	reports, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.StoreFailure(err, "list bug reports")
	}
	return reports, nil
}

// UpdateStatus moves a report through triage. Empty notes leave the stored
// notes untouched.
func (s *BugReportService) UpdateStatus(ctx context.Context, id string, req dto.UpdateBugReportStatusRequest, actor *models.JWTClaims) (*models.BugReport, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	req.AdminNotes = sanitize.Text(req.AdminNotes)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status "+string(req.Status))
	}

	before, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "bug report not found")
		}
		return nil, appErrors.StoreFailure(err, "load bug report")
	}
	if err := s.repo.UpdateStatus(ctx, id, req.Status, req.AdminNotes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "bug report not found")
		}
		return nil, appErrors.StoreFailure(err, "update bug report")
	}

	after := *before
	after.Status = req.Status
	if req.AdminNotes != "" {
		notes := req.AdminNotes
		after.AdminNotes = &notes
	}
	if s.audit != nil {
		entry := models.NewAuditEntry(actor.UserID, models.AuditActionBugReportStatusChange, "bug_report", id, "bug-report-service").
			WithValues(map[string]string{"status": string(before.Status)}, map[string]string{"status": string(after.Status)})
		if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
			s.logger.Warn("failed to persist audit log", zap.String("bug_report_id", id), zap.Error(err))
		}
	}
	return &after, nil
}

func requireAdmin(actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if !actor.Role.IsAdmin() {
		return appErrors.ErrForbidden
	}
	return nil
}
