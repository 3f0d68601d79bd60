package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-lms-api/internal/dto"
	"github.com/noah-isme/campus-lms-api/internal/models"
	appErrors "github.com/noah-isme/campus-lms-api/pkg/errors"
	"github.com/noah-isme/campus-lms-api/pkg/paging"
)

const (
	mentorCapacityCacheKey     = "mentors:capacity:all"
	mentorCapacityCachePattern = "mentors:capacity:*"
)

type mentorDirectory interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	CountMenteesByMentor(ctx context.Context) (map[string]int, error)
}

// MentorCapacityConfig tunes the capacity listing.
type MentorCapacityConfig struct {
	DefaultMaxMentees int
	CacheTTL          time.Duration
	Batch             int
}

// MentorCapacityService reports how many more mentees each mentor can take.
type MentorCapacityService struct {
	users  mentorDirectory
	cache  *CacheService
	cfg    MentorCapacityConfig
	logger *zap.Logger
}

// NewMentorCapacityService constructs the service. cache may be nil.
func NewMentorCapacityService(users mentorDirectory, cache *CacheService, cfg MentorCapacityConfig, logger *zap.Logger) *MentorCapacityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultMaxMentees <= 0 {
		cfg.DefaultMaxMentees = 5
	}
	if cfg.Batch <= 0 {
		cfg.Batch = paging.DefaultBatch
	}
	return &MentorCapacityService{users: users, cache: cache, cfg: cfg, logger: logger}
}

// ListMentorsWithCapacity returns every active mentor with mentee counts,
// narrowed by exact campus/house/phase matches.
func (s *MentorCapacityService) ListMentorsWithCapacity(ctx context.Context, filter models.MentorCapacityFilter) ([]models.MentorCapacity, error) {
	all, err := s.allCapacities(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]models.MentorCapacity, 0, len(all))
	for _, item := range all {
		if filter.Matches(item) {
			result = append(result, item)
		}
	}
	return result, nil
}

// LoadMore returns the next window of the filtered listing after loaded items.
func (s *MentorCapacityService) LoadMore(ctx context.Context, filter models.MentorCapacityFilter, loaded int) (*dto.MentorCapacityPage, error) {
	items, err := s.ListMentorsWithCapacity(ctx, filter)
	if err != nil {
		return nil, err
	}
	window, more := paging.LoadMore(items, loaded, s.cfg.Batch)
	if loaded < 0 {
		loaded = 0
	}
	return &dto.MentorCapacityPage{
		Items:   window,
		Loaded:  loaded + len(window),
		Total:   len(items),
		HasMore: more,
	}, nil
}

// InvalidateCapacity drops the cached listing.
func (s *MentorCapacityService) InvalidateCapacity(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, mentorCapacityCachePattern); err != nil {
		s.logger.Warn("failed to invalidate mentor capacity cache", zap.Error(err))
	}
}

func (s *MentorCapacityService) allCapacities(ctx context.Context) ([]models.MentorCapacity, error) {
	return Remember(ctx, s.cache, mentorCapacityCacheKey, s.cfg.CacheTTL, s.loadCapacities)
}

func (s *MentorCapacityService) loadCapacities(ctx context.Context) ([]models.MentorCapacity, error) {
	role := models.RoleMentor
	active := true
	mentors, err := s.users.List(ctx, models.UserFilter{Role: &role, Active: &active})
	if err != nil {
		return nil, appErrors.StoreFailure(err, "list mentors")
	}
	counts, err := s.users.CountMenteesByMentor(ctx)
	if err != nil {
		return nil, appErrors.StoreFailure(err, "count mentees")
	}

	items := make([]models.MentorCapacity, 0, len(mentors))
	for _, mentor := range mentors {
		limit := mentor.MaxMentees
		if limit <= 0 {
			limit = s.cfg.DefaultMaxMentees
		}
		count := counts[mentor.ID]
		available := limit - count
		if available < 0 {
			available = 0
		}
		items = append(items, models.MentorCapacity{
			Mentor:             mentor.Info(),
			Campus:             mentor.Campus,
			House:              mentor.House,
			Phase:              mentor.Phase,
			CurrentMenteeCount: count,
			MaxMentees:         limit,
			AvailableSlots:     available,
		})
	}
	return items, nil
}
