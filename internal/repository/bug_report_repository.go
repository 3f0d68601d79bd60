package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-lms-api/internal/models"
)

const bugReportColumns = `id, reporter_id, title, description, category, status, admin_notes, created_at, updated_at`

// BugReportRepository persists dashboard bug reports.
type BugReportRepository struct {
	db *sqlx.DB
}

// NewBugReportRepository constructs the repository.
func NewBugReportRepository(db *sqlx.DB) *BugReportRepository {
	return &BugReportRepository{db: db}
}

// Create inserts a bug report.
func (r *BugReportRepository) Create(ctx context.Context, report *models.BugReport) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	report.UpdatedAt = report.CreatedAt
	if report.Status == "" {
		report.Status = models.BugReportOpen
	}
	const query = `INSERT INTO bug_reports (id, reporter_id, title, description, category, status, created_at, updated_at) VALUES (:id, :reporter_id, :title, :description, :category, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, report); err != nil {
		return fmt.Errorf("create bug report: %w", err)
	}
	return nil
}

// GetByID fetches a bug report.
func (r *BugReportRepository) GetByID(ctx context.Context, id string) (*models.BugReport, error) {
	query := `SELECT ` + bugReportColumns + ` FROM bug_reports WHERE id = $1`
	var report models.BugReport
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get bug report: %w", err)
	}
	return &report, nil
}

// List returns bug reports newest first.
func (r *BugReportRepository) List(ctx context.Context, filter models.BugReportFilter) ([]models.BugReport, error) {
	var conditions []string
	var args []interface{}
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, string(status))
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.ReporterID != "" {
		args = append(args, filter.ReporterID)
		conditions = append(conditions, fmt.Sprintf("reporter_id = $%d", len(args)))
	}

	query := `SELECT ` + bugReportColumns + ` FROM bug_reports`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d OFFSET %d", limit, offset)

	var reports []models.BugReport
	if err := r.db.SelectContext(ctx, &reports, query, args...); err != nil {
		return nil, fmt.Errorf("list bug reports: %w", err)
	}
	return reports, nil
}

// UpdateStatus writes a new status and, when given, admin notes.
func (r *BugReportRepository) UpdateStatus(ctx context.Context, id string, status models.BugReportStatus, notes string) error {
	update := models.Fields{}
	update.Set("status", string(status)).Set("updated_at", time.Now().UTC())
	update.SetIfPresent("admin_notes", notes)

	cols := update.Columns()
	setParts := make([]string, len(cols))
	args := make([]interface{}, 0, len(cols)+1)
	for i, col := range cols {
		args = append(args, update[col])
		setParts[i] = fmt.Sprintf("%s = $%d", col, len(args))
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE bug_reports SET %s WHERE id = $%d", strings.Join(setParts, ", "), len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update bug report status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update bug report rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
