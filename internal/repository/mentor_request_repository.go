package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-lms-api/internal/models"
)

const mentorRequestColumns = `id, student_id, student_name, student_email, requested_mentor_id, requested_mentor_name,
       requested_mentor_email, current_mentor_id, current_mentor_name, reason, status, created_at,
       reviewed_at, reviewed_by, admin_notes`

// MentorRequestRepository persists mentor change requests.
type MentorRequestRepository struct {
	db *sqlx.DB
}

// NewMentorRequestRepository constructs the repository.
func NewMentorRequestRepository(db *sqlx.DB) *MentorRequestRepository {
	return &MentorRequestRepository{db: db}
}

// Create inserts exactly the columns present in record.
func (r *MentorRequestRepository) Create(ctx context.Context, record models.Fields) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("create mentor request: %w", err)
	}
	cols := record.Columns()
	placeholders := make([]string, len(cols))
	args := make([]interface{}, len(cols))
	for i, col := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = record[col]
	}
	query := fmt.Sprintf("INSERT INTO mentor_change_requests (%s) VALUES (%s)",
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
	)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create mentor request: %w", err)
	}
	return nil
}

// GetByID fetches a request by identifier.
func (r *MentorRequestRepository) GetByID(ctx context.Context, id string) (*models.MentorChangeRequest, error) {
	query := `SELECT ` + mentorRequestColumns + ` FROM mentor_change_requests WHERE id = $1`
	var req models.MentorChangeRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get mentor request: %w", err)
	}
	return &req, nil
}

// List returns requests matching the filter, newest first.
func (r *MentorRequestRepository) List(ctx context.Context, filter models.MentorRequestFilter) ([]models.MentorChangeRequest, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 4)
	builder.WriteString(`SELECT ` + mentorRequestColumns + ` FROM mentor_change_requests`)

	conditions := make([]string, 0, 3)
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if filter.RequestedMentorID != "" {
		args = append(args, filter.RequestedMentorID)
		conditions = append(conditions, fmt.Sprintf("requested_mentor_id = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var requests []models.MentorChangeRequest
	if err := r.db.SelectContext(ctx, &requests, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list mentor requests: %w", err)
	}
	return requests, nil
}

// Resolve applies a review only while the stored status is still pending.
// It returns sql.ErrNoRows when no pending row matched.
func (r *MentorRequestRepository) Resolve(ctx context.Context, id string, review models.Fields) error {
	if err := review.Validate(); err != nil {
		return fmt.Errorf("resolve mentor request: %w", err)
	}
	cols := review.Columns()
	setParts := make([]string, len(cols))
	args := make([]interface{}, 0, len(cols)+2)
	for i, col := range cols {
		args = append(args, review[col])
		setParts[i] = fmt.Sprintf("%s = $%d", col, len(args))
	}
	args = append(args, id, string(models.MentorRequestPending))
	query := fmt.Sprintf("UPDATE mentor_change_requests SET %s WHERE id = $%d AND status = $%d",
		strings.Join(setParts, ", "),
		len(args)-1,
		len(args),
	)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("resolve mentor request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check mentor request update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListInconsistencies finds resolved requests whose student pointers were not
// updated to match the decision. Only the latest resolved request per student
// is considered so that later changes do not show up as drift.
func (r *MentorRequestRepository) ListInconsistencies(ctx context.Context) ([]models.MentorRequestInconsistency, error) {
	const query = `SELECT req.id AS request_id, req.student_id, req.status, req.requested_mentor_id,
       u.mentor_id AS student_mentor_id, u.pending_mentor_id AS student_pending_mentor_id, req.reviewed_at
FROM mentor_change_requests req
JOIN users u ON u.id = req.student_id
WHERE req.status <> 'pending'
  AND req.reviewed_at = (
      SELECT MAX(latest.reviewed_at) FROM mentor_change_requests latest
      WHERE latest.student_id = req.student_id AND latest.status <> 'pending')
  AND NOT EXISTS (
      SELECT 1 FROM mentor_change_requests pend
      WHERE pend.student_id = req.student_id AND pend.status = 'pending')
  AND ((req.status = 'approved' AND u.mentor_id <> req.requested_mentor_id)
       OR u.pending_mentor_id = req.requested_mentor_id)
ORDER BY req.reviewed_at DESC`
	var items []models.MentorRequestInconsistency
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list mentor request inconsistencies: %w", err)
	}
	return items, nil
}
