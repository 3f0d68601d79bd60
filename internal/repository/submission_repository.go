package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/campus-lms-api/internal/models"
)

const (
	goalColumns       = `id, student_id, goal_text, target_percentage, review_status, mentor_id, mentor_feedback, reviewed_at, created_at`
	reflectionColumns = `id, student_id, goal_id, achieved_percentage, reflection_text, review_status, mentor_id, mentor_feedback, reviewed_at, created_at`
)

// SubmissionRepository persists daily goals and reflections.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// CreateGoal inserts a goal.
func (r *SubmissionRepository) CreateGoal(ctx context.Context, goal *models.DailyGoal) error {
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = time.Now().UTC()
	}
	if goal.ReviewStatus == "" {
		goal.ReviewStatus = models.ReviewStatusPending
	}
	const query = `INSERT INTO daily_goals (` + goalColumns + `) VALUES (:id, :student_id, :goal_text, :target_percentage, :review_status, :mentor_id, :mentor_feedback, :reviewed_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, goal); err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	return nil
}

// CreateReflection inserts a reflection.
func (r *SubmissionRepository) CreateReflection(ctx context.Context, reflection *models.DailyReflection) error {
	if reflection.ID == "" {
		reflection.ID = uuid.NewString()
	}
	if reflection.CreatedAt.IsZero() {
		reflection.CreatedAt = time.Now().UTC()
	}
	if reflection.ReviewStatus == "" {
		reflection.ReviewStatus = models.ReviewStatusPending
	}
	const query = `INSERT INTO daily_reflections (` + reflectionColumns + `) VALUES (:id, :student_id, :goal_id, :achieved_percentage, :reflection_text, :review_status, :mentor_id, :mentor_feedback, :reviewed_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reflection); err != nil {
		return fmt.Errorf("create reflection: %w", err)
	}
	return nil
}

// GetGoal fetches a goal by id.
func (r *SubmissionRepository) GetGoal(ctx context.Context, id string) (*models.DailyGoal, error) {
	query := `SELECT ` + goalColumns + ` FROM daily_goals WHERE id = $1`
	var goal models.DailyGoal
	if err := r.db.GetContext(ctx, &goal, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get goal: %w", err)
	}
	return &goal, nil
}

// GetReflection fetches a reflection by id.
func (r *SubmissionRepository) GetReflection(ctx context.Context, id string) (*models.DailyReflection, error) {
	query := `SELECT ` + reflectionColumns + ` FROM daily_reflections WHERE id = $1`
	var reflection models.DailyReflection
	if err := r.db.GetContext(ctx, &reflection, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get reflection: %w", err)
	}
	return &reflection, nil
}

// CountStudentSubmissions counts a student's rows of kind within [from, to).
func (r *SubmissionRepository) CountStudentSubmissions(ctx context.Context, kind models.SubmissionKind, studentID string, from, to time.Time) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE student_id = $1 AND created_at >= $2 AND created_at < $3`, kind.Table())
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentID, from, to); err != nil {
		return 0, fmt.Errorf("count %s: %w", kind, err)
	}
	return count, nil
}

// ListGoals returns goals of the given students within [from, to).
func (r *SubmissionRepository) ListGoals(ctx context.Context, studentIDs []string, from, to time.Time) ([]models.DailyGoal, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + goalColumns + ` FROM daily_goals WHERE student_id = ANY($1) AND created_at >= $2 AND created_at < $3 ORDER BY created_at ASC`
	var goals []models.DailyGoal
	if err := r.db.SelectContext(ctx, &goals, query, pq.Array(studentIDs), from, to); err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

// ListReflections returns reflections of the given students within [from, to).
func (r *SubmissionRepository) ListReflections(ctx context.Context, studentIDs []string, from, to time.Time) ([]models.DailyReflection, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + reflectionColumns + ` FROM daily_reflections WHERE student_id = ANY($1) AND created_at >= $2 AND created_at < $3 ORDER BY created_at ASC`
	var reflections []models.DailyReflection
	if err := r.db.SelectContext(ctx, &reflections, query, pq.Array(studentIDs), from, to); err != nil {
		return nil, fmt.Errorf("list reflections: %w", err)
	}
	return reflections, nil
}

// SubmitterIDs returns the distinct student ids with at least one row of kind in [from, to).
func (r *SubmissionRepository) SubmitterIDs(ctx context.Context, kind models.SubmissionKind, from, to time.Time) ([]string, error) {
	query := fmt.Sprintf(`SELECT DISTINCT student_id FROM %s WHERE created_at >= $1 AND created_at < $2`, kind.Table())
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, from, to); err != nil {
		return nil, fmt.Errorf("list %s submitters: %w", kind, err)
	}
	return ids, nil
}

// Review stores mentor feedback on a goal or reflection.
func (r *SubmissionRepository) Review(ctx context.Context, kind models.SubmissionKind, id string, review models.SubmissionReview) error {
	query := fmt.Sprintf(`UPDATE %s SET review_status = $2, mentor_id = $3, mentor_feedback = $4, reviewed_at = $5 WHERE id = $1`, kind.Table())
	result, err := r.db.ExecContext(ctx, query, id, string(models.ReviewStatusReviewed), review.MentorID, review.Feedback, review.ReviewedAt)
	if err != nil {
		return fmt.Errorf("review %s: %w", kind, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("review %s rows: %w", kind, err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
