package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-lms-api/internal/dto"
	"github.com/noah-isme/campus-lms-api/internal/models"
	appErrors "github.com/noah-isme/campus-lms-api/pkg/errors"
)

type mentorRequestStore interface {
	Create(ctx context.Context, record models.Fields) error
	GetByID(ctx context.Context, id string) (*models.MentorChangeRequest, error)
	List(ctx context.Context, filter models.MentorRequestFilter) ([]models.MentorChangeRequest, error)
	Resolve(ctx context.Context, id string, review models.Fields) error
	ListInconsistencies(ctx context.Context) ([]models.MentorRequestInconsistency, error)
}

type mentorPointerStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	SetPendingMentor(ctx context.Context, studentID, mentorID string) error
	AssignMentor(ctx context.Context, studentID, mentorID string) error
	ClearPendingMentor(ctx context.Context, studentID string) error
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type capacityInvalidator interface {
	InvalidateCapacity(ctx context.Context)
}

type requestEventPublisher interface {
	Publish(ctx context.Context, event MentorRequestEvent)
}

// MentorRequestServiceOption configures the service.
type MentorRequestServiceOption func(*MentorRequestService)

// WithRequestMetrics records status transitions.
func WithRequestMetrics(metrics *MetricsService) MentorRequestServiceOption {
	return func(s *MentorRequestService) {
		s.metrics = metrics
	}
}

// WithCapacityInvalidator drops cached mentor capacity after an approval.
func WithCapacityInvalidator(inv capacityInvalidator) MentorRequestServiceOption {
	return func(s *MentorRequestService) {
		s.capacity = inv
	}
}

// WithRequestEvents publishes lifecycle events.
func WithRequestEvents(publisher requestEventPublisher) MentorRequestServiceOption {
	return func(s *MentorRequestService) {
		s.events = publisher
	}
}

// WithRequestClock overrides the time source.
func WithRequestClock(now func() time.Time) MentorRequestServiceOption {
	return func(s *MentorRequestService) {
		if now != nil {
			s.now = now
		}
	}
}

// MentorRequestService runs the mentor change request lifecycle. Each
// operation issues the request write first and the student pointer write
// second; the second is skipped when the first fails.
type MentorRequestService struct {
	requests mentorRequestStore
	users    mentorPointerStore
	audit    auditLogger
	metrics  *MetricsService
	capacity capacityInvalidator
	events   requestEventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewMentorRequestService constructs the service.
func NewMentorRequestService(requests mentorRequestStore, users mentorPointerStore, audit auditLogger, logger *zap.Logger, opts ...MentorRequestServiceOption) *MentorRequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &MentorRequestService{
		requests: requests,
		users:    users,
		audit:    audit,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// CreateRequest records a pending mentor change and marks the student as
// waiting on the requested mentor.
func (s *MentorRequestService) CreateRequest(ctx context.Context, req dto.CreateMentorRequest, actor *models.JWTClaims) (string, error) {
	if actor == nil {
		return "", appErrors.ErrUnauthorized
	}
	studentID := strings.TrimSpace(req.StudentID)
	if actor.Role == models.RoleStudent {
		if studentID == "" {
			studentID = actor.UserID
		}
		if studentID != actor.UserID {
			return "", appErrors.Clone(appErrors.ErrForbidden, "students may only request changes for themselves")
		}
	} else if !actor.Role.IsAdmin() {
		return "", appErrors.ErrForbidden
	}
	requestedID := strings.TrimSpace(req.RequestedMentorID)
	if studentID == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "studentId is required")
	}
	if requestedID == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "requestedMentorId is required")
	}

	student, err := s.lookupUser(ctx, studentID, "student")
	if err != nil {
		return "", err
	}
	if student.Role != models.RoleStudent {
		return "", appErrors.Clone(appErrors.ErrValidation, "studentId does not reference a student")
	}
	mentor, err := s.lookupUser(ctx, requestedID, "requested mentor")
	if err != nil {
		return "", err
	}
	if mentor.Role != models.RoleMentor {
		return "", appErrors.Clone(appErrors.ErrValidation, "requestedMentorId does not reference a mentor")
	}

	draft := models.MentorRequestDraft{
		ID:                   uuid.NewString(),
		StudentID:            student.ID,
		StudentName:          student.FullName,
		StudentEmail:         student.Email,
		RequestedMentorID:    mentor.ID,
		RequestedMentorName:  mentor.FullName,
		RequestedMentorEmail: mentor.Email,
		Reason:               req.Reason,
		CreatedAt:            s.now(),
	}
	if currentID := strings.TrimSpace(req.CurrentMentorID); currentID != "" {
		current, err := s.lookupUser(ctx, currentID, "current mentor")
		if err != nil {
			return "", err
		}
		draft.CurrentMentorID = current.ID
		draft.CurrentMentorName = current.FullName
	}

	if mentor.ID == student.MentorID || mentor.ID == draft.CurrentMentorID {
		return "", appErrors.Clone(appErrors.ErrValidation, "student is already assigned to the requested mentor")
	}
	if student.HasPendingMentor() {
		return "", appErrors.Clone(appErrors.ErrInvalidState, "student already has a pending mentor request")
	}

	if err := s.requests.Create(ctx, draft.Record()); err != nil {
		return "", appErrors.StoreFailure(err, "create mentor request")
	}
	if err := s.users.SetPendingMentor(ctx, student.ID, mentor.ID); err != nil {
		s.logger.Error("mentor request stored without pending pointer",
			zap.String("request_id", draft.ID),
			zap.String("student_id", student.ID),
			zap.Error(err),
		)
		return "", appErrors.StoreFailure(err, "set pending mentor")
	}

	s.metrics.RecordRequestTransition(models.MentorRequestPending)
	s.emitAudit(ctx, actor.UserID, models.AuditActionMentorRequestCreate, draft.ID, map[string]string{
		"studentId":         student.ID,
		"requestedMentorId": mentor.ID,
	})
	s.publish(ctx, MentorRequestCreated, actor.UserID, draft.Request())
	return draft.ID, nil
}

// Approve moves the student to the requested mentor.
func (s *MentorRequestService) Approve(ctx context.Context, requestID, adminID, notes string) (*models.MentorChangeRequest, error) {
	return s.resolve(ctx, requestID, adminID, notes, models.MentorRequestApproved)
}

// Reject closes the request and clears the student's pending pointer.
func (s *MentorRequestService) Reject(ctx context.Context, requestID, adminID, notes string) (*models.MentorChangeRequest, error) {
	return s.resolve(ctx, requestID, adminID, notes, models.MentorRequestRejected)
}

// Review dispatches an admin decision to Approve or Reject.
func (s *MentorRequestService) Review(ctx context.Context, requestID string, req dto.ReviewMentorRequest, actor *models.JWTClaims) (*models.MentorChangeRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !actor.Role.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}
	switch req.Decision {
	case models.MentorRequestApproved:
		return s.Approve(ctx, requestID, actor.UserID, req.Notes)
	case models.MentorRequestRejected:
		return s.Reject(ctx, requestID, actor.UserID, req.Notes)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "decision must be approved or rejected")
	}
}

func (s *MentorRequestService) resolve(ctx context.Context, requestID, adminID, notes string, status models.MentorRequestStatus) (*models.MentorChangeRequest, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "request id is required")
	}
	if strings.TrimSpace(adminID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reviewer id is required")
	}
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor request not found")
		}
		return nil, appErrors.StoreFailure(err, "load mentor request")
	}
	if request.Status != models.MentorRequestPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("mentor request already %s", request.Status))
	}

	review := models.MentorRequestReview{
		Status:     status,
		ReviewedBy: adminID,
		ReviewedAt: s.now(),
		Notes:      notes,
	}
	if err := s.requests.Resolve(ctx, request.ID, review.Record()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "mentor request was already reviewed")
		}
		return nil, appErrors.StoreFailure(err, fmt.Sprintf("%s mentor request", verbFor(status)))
	}

	if status == models.MentorRequestApproved {
		err = s.users.AssignMentor(ctx, request.StudentID, request.RequestedMentorID)
	} else {
		err = s.users.ClearPendingMentor(ctx, request.StudentID)
	}
	if err != nil {
		s.logger.Error("mentor request resolved without student update",
			zap.String("request_id", request.ID),
			zap.String("status", string(status)),
			zap.Error(err),
		)
		return nil, appErrors.StoreFailure(err, "update student mentor")
	}

	request.Status = status
	request.ReviewedAt = &review.ReviewedAt
	request.ReviewedBy = &review.ReviewedBy
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		request.AdminNotes = &trimmed
	}

	s.metrics.RecordRequestTransition(status)
	action := models.AuditActionMentorRequestReject
	event := MentorRequestRejected
	if status == models.MentorRequestApproved {
		action = models.AuditActionMentorRequestApprove
		event = MentorRequestApproved
		if s.capacity != nil {
			s.capacity.InvalidateCapacity(ctx)
		}
	}
	s.emitAudit(ctx, adminID, action, request.ID, map[string]string{
		"status":            string(status),
		"studentId":         request.StudentID,
		"requestedMentorId": request.RequestedMentorID,
	})
	s.publish(ctx, event, adminID, *request)
	return request, nil
}

// Get returns a request visible to the actor.
func (s *MentorRequestService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.MentorChangeRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor request not found")
		}
		return nil, appErrors.StoreFailure(err, "load mentor request")
	}
	switch {
	case actor.Role.IsAdmin():
	case actor.Role == models.RoleStudent && request.StudentID == actor.UserID:
	case actor.Role == models.RoleMentor && request.RequestedMentorID == actor.UserID:
	default:
		return nil, appErrors.ErrForbidden
	}
	return request, nil
}

// List returns requests scoped to the actor.
func (s *MentorRequestService) List(ctx context.Context, query dto.MentorRequestQuery, actor *models.JWTClaims) ([]models.MentorChangeRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	filter := models.MentorRequestFilter{
		Status:            query.Status,
		StudentID:         strings.TrimSpace(query.StudentID),
		RequestedMentorID: strings.TrimSpace(query.RequestedMentorID),
		Limit:             query.Limit,
		Offset:            query.Offset,
	}
	switch actor.Role {
	case models.RoleSuperAdmin, models.RoleAdmin:
	case models.RoleStudent:
		filter.StudentID = actor.UserID
	case models.RoleMentor:
		filter.RequestedMentorID = actor.UserID
	default:
		return nil, appErrors.ErrForbidden
	}
	requests, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, appErrors.StoreFailure(err, "list mentor requests")
	}
	return requests, nil
}

// FindInconsistencies lists resolved requests whose student pointers do not
// reflect the decision. Nothing is repaired.
func (s *MentorRequestService) FindInconsistencies(ctx context.Context) ([]models.MentorRequestInconsistency, error) {
	items, err := s.requests.ListInconsistencies(ctx)
	if err != nil {
		return nil, appErrors.StoreFailure(err, "find mentor request inconsistencies")
	}
	if len(items) > 0 {
		s.logger.Warn("mentor request inconsistencies found", zap.Int("count", len(items)))
	}
	return items, nil
}

func (s *MentorRequestService) lookupUser(ctx context.Context, id, label string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s not found", label))
		}
		return nil, appErrors.StoreFailure(err, "load "+label)
	}
	return user, nil
}

func (s *MentorRequestService) emitAudit(ctx context.Context, userID, action, requestID string, values map[string]string) {
	if s.audit == nil {
		return
	}
	entry := models.NewAuditEntry(userID, action, "mentor_request", requestID, "mentor-request-service").WithValues(nil, values)
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to persist audit log", zap.String("action", action), zap.Error(err))
	}
}

func (s *MentorRequestService) publish(ctx context.Context, eventType MentorRequestEventType, actorID string, request models.MentorChangeRequest) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, MentorRequestEvent{
		Type:       eventType,
		Request:    request,
		ActorID:    actorID,
		OccurredAt: s.now(),
	})
}

func verbFor(status models.MentorRequestStatus) string {
	if status == models.MentorRequestApproved {
		return "approve"
	}
	return "reject"
}
