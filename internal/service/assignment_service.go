package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-lms-api/internal/dto"
	"github.com/noah-isme/campus-lms-api/internal/models"
	"github.com/noah-isme/campus-lms-api/internal/repository"
	appErrors "github.com/noah-isme/campus-lms-api/pkg/errors"
)

type assignmentStore interface {
	Create(ctx context.Context, assignment *models.AssociateAssignment) error
	Exists(ctx context.Context, associateID, campus, house string) (bool, error)
	List(ctx context.Context, filter models.AssociateAssignmentFilter) ([]models.AssociateAssignment, error)
	Delete(ctx context.Context, id string) error
}

type userLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// AssignmentService manages which campus and house each academic associate covers.
type AssignmentService struct {
	repo      assignmentStore
	users     userLookup
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAssignmentService constructs the service.
func NewAssignmentService(repo assignmentStore, users userLookup, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AssignmentService{
		repo:      repo,
		users:     users,
		audit:     audit,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create scopes an associate to a campus and optionally a house.
func (s *AssignmentService) Create(ctx context.Context, req dto.CreateAssociateAssignmentRequest, actor *models.JWTClaims) (*models.AssociateAssignment, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	req.AssociateID = strings.TrimSpace(req.AssociateID)
	req.Campus = strings.TrimSpace(req.Campus)
	req.House = strings.TrimSpace(req.House)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	associate, err := s.users.FindByID(ctx, req.AssociateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "associate not found")
		}
		return nil, appErrors.StoreFailure(err, "load associate")
	}
	if associate.Role != models.RoleAcademicAssociate {
		return nil, appErrors.Clone(appErrors.ErrValidation, "associateId does not reference an academic associate")
	}

	exists, err := s.repo.Exists(ctx, associate.ID, req.Campus, req.House)
	if err != nil {
		return nil, appErrors.StoreFailure(err, "check assignment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "associate already assigned to this scope")
	}

	assignment := &models.AssociateAssignment{
		ID:          uuid.NewString(),
		AssociateID: associate.ID,
		Campus:      req.Campus,
		AssignedBy:  actor.UserID,
		CreatedAt:   s.now(),
	}
	if req.House != "" {
		house := req.House
		assignment.House = &house
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		if errors.Is(err, repository.ErrDuplicateAssignment) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "associate already assigned to this scope")
		}
		return nil, appErrors.StoreFailure(err, "create assignment")
	}
	s.emitAudit(ctx, actor.UserID, models.AuditActionAssignmentCreate, assignment.ID, assignment)
	return assignment, nil
}

// List returns assignments for admins.
func (s *AssignmentService) List(ctx context.Context, filter models.AssociateAssignmentFilter, actor *models.JWTClaims) ([]models.AssociateAssignment, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.StoreFailure(err, "list assignments")
	}
	return items, nil
}

// Delete removes an assignment.
func (s *AssignmentService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.StoreFailure(err, "delete assignment")
	}
	s.emitAudit(ctx, actor.UserID, models.AuditActionAssignmentDelete, id, nil)
	return nil
}

func (s *AssignmentService) emitAudit(ctx context.Context, userID, action, id string, values interface{}) {
	if s.audit == nil {
		return
	}
	entry := models.NewAuditEntry(userID, action, "associate_assignment", id, "assignment-service").WithValues(nil, values)
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to persist audit log", zap.String("action", action), zap.Error(err))
	}
}
