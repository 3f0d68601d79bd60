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

	"github.com/noah-isme/campus-lms-api/internal/models"
)

const userColumns = `id, email, password_hash, full_name, role, active, campus, house, phase, max_mentees, mentor_id, pending_mentor_id, created_at, updated_at`

// UserRepository provides database access for user profiles and mentor pointers.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns a user by email address, ignoring case and
// surrounding whitespace. Missing users surface as sql.ErrNoRows.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "lower(email)", strings.ToLower(strings.TrimSpace(email)))
}

// FindByID returns a user by identifier. Missing users surface as sql.ErrNoRows.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, "id", id)
}

func (r *UserRepository) findOne(ctx context.Context, column string, value interface{}) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find user by %s: %w", column, err)
	}
	return &user, nil
}

// List returns users matching the filter ordered by name.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	var conditions []string
	var args []interface{}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)))
	}
	if filter.MentorID != "" {
		args = append(args, filter.MentorID)
		conditions = append(conditions, fmt.Sprintf("mentor_id = $%d", len(args)))
	}
	if filter.Campus != "" {
		args = append(args, filter.Campus)
		conditions = append(conditions, fmt.Sprintf("campus = $%d", len(args)))
	}
	if filter.House != "" {
		args = append(args, filter.House)
		conditions = append(conditions, fmt.Sprintf("house = $%d", len(args)))
	}

	query := `SELECT ` + userColumns + ` FROM users`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY full_name ASC"

	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// CountMenteesByMentor counts students per assigned mentor.
func (r *UserRepository) CountMenteesByMentor(ctx context.Context) (map[string]int, error) {
	const query = `SELECT mentor_id, COUNT(*) AS mentees FROM users WHERE role = $1 AND mentor_id <> '' GROUP BY mentor_id`
	var rows []struct {
		MentorID string `db:"mentor_id"`
		Mentees  int    `db:"mentees"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, models.RoleStudent); err != nil {
		return nil, fmt.Errorf("count mentees: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.MentorID] = row.Mentees
	}
	return counts, nil
}

// SetPendingMentor records the mentor a student is waiting on.
func (r *UserRepository) SetPendingMentor(ctx context.Context, studentID, mentorID string) error {
	const query = `UPDATE users SET pending_mentor_id = $2, updated_at = $3 WHERE id = $1`
	return r.execOne(ctx, "set pending mentor", query, studentID, mentorID, time.Now().UTC())
}

// AssignMentor makes mentorID the student's mentor and clears the pending pointer.
func (r *UserRepository) AssignMentor(ctx context.Context, studentID, mentorID string) error {
	const query = `UPDATE users SET mentor_id = $2, pending_mentor_id = '', updated_at = $3 WHERE id = $1`
	return r.execOne(ctx, "assign mentor", query, studentID, mentorID, time.Now().UTC())
}

// ClearPendingMentor resets the pending pointer to the empty value.
func (r *UserRepository) ClearPendingMentor(ctx context.Context, studentID string) error {
	const query = `UPDATE users SET pending_mentor_id = '', updated_at = $2 WHERE id = $1`
	return r.execOne(ctx, "clear pending mentor", query, studentID, time.Now().UTC())
}

func (r *UserRepository) execOne(ctx context.Context, op, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", op, err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreateAuditLog stores an audit log entry.
func (r *UserRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, user_id, action, resource, resource_id, old_values, new_values, ip_address, user_agent, created_at) VALUES (:id, :user_id, :action, :resource, :resource_id, :old_values, :new_values, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
