package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/campus-lms-api/internal/models"
)

const associateAssignmentColumns = `id, associate_id, campus, house, assigned_by, created_at`

// ErrDuplicateAssignment is returned when the associate already covers the scope.
var ErrDuplicateAssignment = errors.New("associate assignment already exists")

// AssociateAssignmentRepository persists academic associate scopes.
type AssociateAssignmentRepository struct {
	db *sqlx.DB
}

// NewAssociateAssignmentRepository constructs the repository.
func NewAssociateAssignmentRepository(db *sqlx.DB) *AssociateAssignmentRepository {
	return &AssociateAssignmentRepository{db: db}
}

// Create inserts an assignment. House is written only when set.
func (r *AssociateAssignmentRepository) Create(ctx context.Context, assignment *models.AssociateAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	record := models.Fields{}
	record.Set("id", assignment.ID).
		Set("associate_id", assignment.AssociateID).
		Set("campus", assignment.Campus).
		Set("assigned_by", assignment.AssignedBy).
		Set("created_at", assignment.CreatedAt)
	if assignment.House != nil {
		record.SetIfPresent("house", *assignment.House)
	}

	cols := record.Columns()
	placeholders := make([]string, len(cols))
	args := make([]interface{}, len(cols))
	for i, col := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = record[col]
	}
	query := fmt.Sprintf("INSERT INTO academic_associate_assignments (%s) VALUES (%s)",
		strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateAssignment
		}
		return fmt.Errorf("create associate assignment: %w", err)
	}
	return nil
}

// Exists reports whether the associate already covers campus/house.
func (r *AssociateAssignmentRepository) Exists(ctx context.Context, associateID, campus, house string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM academic_associate_assignments WHERE associate_id = $1 AND campus = $2 AND COALESCE(house, '') = $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, associateID, campus, house); err != nil {
		return false, fmt.Errorf("check associate assignment: %w", err)
	}
	return exists, nil
}

// List returns assignments ordered by campus then house.
func (r *AssociateAssignmentRepository) List(ctx context.Context, filter models.AssociateAssignmentFilter) ([]models.AssociateAssignment, error) {
	var conditions []string
	var args []interface{}
	if filter.AssociateID != "" {
		args = append(args, filter.AssociateID)
		conditions = append(conditions, fmt.Sprintf("associate_id = $%d", len(args)))
	}
	if filter.Campus != "" {
		args = append(args, filter.Campus)
		conditions = append(conditions, fmt.Sprintf("campus = $%d", len(args)))
	}
	query := `SELECT ` + associateAssignmentColumns + ` FROM academic_associate_assignments`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY campus ASC, house ASC NULLS FIRST"

	var items []models.AssociateAssignment
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list associate assignments: %w", err)
	}
	return items, nil
}

// Delete removes an assignment.
func (r *AssociateAssignmentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM academic_associate_assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete associate assignment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete associate assignment rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
