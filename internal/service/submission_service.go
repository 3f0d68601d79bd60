package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-lms-api/internal/dto"
	"github.com/noah-isme/campus-lms-api/internal/models"
	appErrors "github.com/noah-isme/campus-lms-api/pkg/errors"
	"github.com/noah-isme/campus-lms-api/pkg/sanitize"
)

type submissionStore interface {
	CreateGoal(ctx context.Context, goal *models.DailyGoal) error
	CreateReflection(ctx context.Context, reflection *models.DailyReflection) error
	GetGoal(ctx context.Context, id string) (*models.DailyGoal, error)
	GetReflection(ctx context.Context, id string) (*models.DailyReflection, error)
	CountStudentSubmissions(ctx context.Context, kind models.SubmissionKind, studentID string, from, to time.Time) (int, error)
	ListGoals(ctx context.Context, studentIDs []string, from, to time.Time) ([]models.DailyGoal, error)
	ListReflections(ctx context.Context, studentIDs []string, from, to time.Time) ([]models.DailyReflection, error)
	Review(ctx context.Context, kind models.SubmissionKind, id string, review models.SubmissionReview) error
}

type menteeDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
}

// SubmissionService handles daily goals and reflections.
type SubmissionService struct {
	store     submissionStore
	users     menteeDirectory
	validator *validator.Validate
	location  *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

// NewSubmissionService constructs the service. Days are computed in location.
func NewSubmissionService(store submissionStore, users menteeDirectory, validate *validator.Validate, location *time.Location, logger *zap.Logger) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if location == nil {
		location = time.UTC
	}
	return &SubmissionService{
		store:     store,
		users:     users,
		validator: validate,
		location:  location,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source.
func (s *SubmissionService) WithClock(now func() time.Time) *SubmissionService {
	if now != nil {
		s.now = now
	}
	return s
}

// SubmitGoal stores the student's goal for today. One goal per day.
func (s *SubmissionService) SubmitGoal(ctx context.Context, req dto.SubmitGoalRequest, actor *models.JWTClaims) (*models.DailyGoal, error) {
	if err := requireRole(actor, models.RoleStudent); err != nil {
		return nil, err
	}
	req.GoalText = sanitize.Text(req.GoalText)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid goal payload")
	}

	now := s.now()
	from, to := dayBounds(now, s.location)
	count, err := s.store.CountStudentSubmissions(ctx, models.SubmissionGoals, actor.UserID, from, to)
	if err != nil {
		return nil, appErrors.StoreFailure(err, "count goals")
	}
	if count > 0 {
		return nil, appErrors.Clone(appErrors.ErrConflict, "goal already submitted today")
	}

	goal := &models.DailyGoal{
		ID:               uuid.NewString(),
		StudentID:        actor.UserID,
		GoalText:         req.GoalText,
		TargetPercentage: req.TargetPercentage,
		ReviewStatus:     models.ReviewStatusPending,
		CreatedAt:        now,
	}
	if err := s.store.CreateGoal(ctx, goal); err != nil {
		return nil, appErrors.StoreFailure(err, "create goal")
	}
	return goal, nil
}

// SubmitReflection stores a reflection on the student's own goal from today.
func (s *SubmissionService) SubmitReflection(ctx context.Context, req dto.SubmitReflectionRequest, actor *models.JWTClaims) (*models.DailyReflection, error) {
	if err := requireRole(actor, models.RoleStudent); err != nil {
		return nil, err
	}
	req.ReflectionText = sanitize.Text(req.ReflectionText)
	req.GoalID = strings.TrimSpace(req.GoalID)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reflection payload")
	}

	goal, err := s.store.GetGoal(ctx, req.GoalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "goal not found")
		}
		return nil, appErrors.StoreFailure(err, "load goal")
	}
	if goal.StudentID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "goal belongs to another student")
	}

	now := s.now()
	from, to := dayBounds(now, s.location)
	if goal.CreatedAt.Before(from) || !goal.CreatedAt.Before(to) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reflection must reference today's goal")
	}
	count, err := s.store.CountStudentSubmissions(ctx, models.SubmissionReflections, actor.UserID, from, to)
	if err != nil {
		return nil, appErrors.StoreFailure(err, "count reflections")
	}
	if count > 0 {
		return nil, appErrors.Clone(appErrors.ErrConflict, "reflection already submitted today")
	}

	reflection := &models.DailyReflection{
		ID:                 uuid.NewString(),
		StudentID:          actor.UserID,
		GoalID:             goal.ID,
		AchievedPercentage: req.AchievedPercentage,
		ReflectionText:     req.ReflectionText,
		ReviewStatus:       models.ReviewStatusPending,
		CreatedAt:          now,
	}
	if err := s.store.CreateReflection(ctx, reflection); err != nil {
		return nil, appErrors.StoreFailure(err, "create reflection")
	}
	return reflection, nil
}

// ListMenteeSubmissions groups the day's submissions by mentee. Mentors see
// their own mentees; admins may name any mentor.
func (s *SubmissionService) ListMenteeSubmissions(ctx context.Context, mentorID string, day time.Time, actor *models.JWTClaims) ([]models.MenteeDay, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	switch {
	case actor.Role == models.RoleMentor:
		mentorID = actor.UserID
	case actor.Role.IsAdmin():
		mentorID = strings.TrimSpace(mentorID)
		if mentorID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "mentorId is required")
		}
	default:
		return nil, appErrors.ErrForbidden
	}
	if day.IsZero() {
		day = s.now()
	}

	role := models.RoleStudent
	mentees, err := s.users.List(ctx, models.UserFilter{Role: &role, MentorID: mentorID})
	if err != nil {
		return nil, appErrors.StoreFailure(err, "list mentees")
	}
	if len(mentees) == 0 {
		return []models.MenteeDay{}, nil
	}
	ids := make([]string, len(mentees))
	for i, m := range mentees {
		ids[i] = m.ID
	}

	from, to := dayBounds(day, s.location)
	goals, err := s.store.ListGoals(ctx, ids, from, to)
	if err != nil {
		return nil, appErrors.StoreFailure(err, "list goals")
	}
	reflections, err := s.store.ListReflections(ctx, ids, from, to)
	if err != nil {
		return nil, appErrors.StoreFailure(err, "list reflections")
	}

	byStudent := make(map[string]*models.MenteeDay, len(mentees))
	result := make([]models.MenteeDay, len(mentees))
	for i, m := range mentees {
		result[i] = models.MenteeDay{
			Student:     m.Info(),
			Goals:       []models.DailyGoal{},
			Reflections: []models.DailyReflection{},
		}
		byStudent[m.ID] = &result[i]
	}
	for _, g := range goals {
		if entry, ok := byStudent[g.StudentID]; ok {
			entry.Goals = append(entry.Goals, g)
		}
	}
	for _, r := range reflections {
		if entry, ok := byStudent[r.StudentID]; ok {
			entry.Reflections = append(entry.Reflections, r)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Student.FullName < result[j].Student.FullName
	})
	return result, nil
}

// ReviewGoal records mentor feedback on a goal.
func (s *SubmissionService) ReviewGoal(ctx context.Context, id string, req dto.ReviewSubmissionRequest, actor *models.JWTClaims) error {
	return s.review(ctx, models.SubmissionGoals, id, req, actor, func() (string, error) {
		goal, err := s.store.GetGoal(ctx, id)
		if err != nil {
			return "", err
		}
		return goal.StudentID, nil
	})
}

// ReviewReflection records mentor feedback on a reflection.
func (s *SubmissionService) ReviewReflection(ctx context.Context, id string, req dto.ReviewSubmissionRequest, actor *models.JWTClaims) error {
	return s.review(ctx, models.SubmissionReflections, id, req, actor, func() (string, error) {
		reflection, err := s.store.GetReflection(ctx, id)
		if err != nil {
			return "", err
		}
		return reflection.StudentID, nil
	})
}

func (s *SubmissionService) review(ctx context.Context, kind models.SubmissionKind, id string, req dto.ReviewSubmissionRequest, actor *models.JWTClaims, owner func() (string, error)) error {
	if err := requireRole(actor, models.RoleMentor); err != nil {
		return err
	}
	req.Feedback = sanitize.Text(req.Feedback)
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	studentID, err := owner()
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return appErrors.StoreFailure(err, "load "+string(kind))
	}
	student, err := s.users.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.StoreFailure(err, "load student")
	}
	if student.MentorID != actor.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "only the student's current mentor may review")
	}

	if err := s.store.Review(ctx, kind, id, models.SubmissionReview{
		MentorID:   actor.UserID,
		Feedback:   req.Feedback,
		ReviewedAt: s.now(),
	}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return appErrors.StoreFailure(err, "review "+string(kind))
	}
	s.logger.Debug("submission reviewed", zap.String("kind", string(kind)), zap.String("id", id), zap.String("mentor_id", actor.UserID))
	return nil
}

func requireRole(actor *models.JWTClaims, role models.UserRole) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if actor.Role != role {
		return appErrors.ErrForbidden
	}
	return nil
}

// dayBounds returns the UTC [start, end) of the calendar day holding instant in loc.
func dayBounds(instant time.Time, loc *time.Location) (time.Time, time.Time) {
	local := instant.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}
