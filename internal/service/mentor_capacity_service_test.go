package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-lms-api/internal/models"
	appErrors "github.com/noah-isme/campus-lms-api/pkg/errors"
)

type stubMentorDirectory struct {
	mentors   []models.User
	counts    map[string]int
	listCalls int
}

func (s *stubMentorDirectory) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	s.listCalls++
	return s.mentors, nil
}

func (s *stubMentorDirectory) CountMenteesByMentor(ctx context.Context) (map[string]int, error) {
	return s.counts, nil
}

type memoryCache struct {
	items map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string][]byte{}}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.items[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	for key := range m.items {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.items, key)
		}
	}
	return nil
}

func capacityMentors() []models.User {
	return []models.User{
		{ID: "m1", FullName: "Meera Nair", Role: models.RoleMentor, Campus: "Pune", House: "Bageshree", Phase: "1", MaxMentees: 3},
		{ID: "m2", FullName: "Dev Iyer", Role: models.RoleMentor, Campus: "Pune", House: "Malhar", Phase: "2"},
		{ID: "m3", FullName: "Kiran Shah", Role: models.RoleMentor, Campus: "Dharamshala", House: "Bageshree", Phase: "1", MaxMentees: 2},
	}
}

func TestListMentorsWithCapacity(t *testing.T) {
	dir := &stubMentorDirectory{mentors: capacityMentors(), counts: map[string]int{"m1": 1, "m3": 4}}
	svc := NewMentorCapacityService(dir, nil, MentorCapacityConfig{}, nil)

	items, err := svc.ListMentorsWithCapacity(context.Background(), models.MentorCapacityFilter{})
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, 1, items[0].CurrentMenteeCount)
	assert.Equal(t, 3, items[0].MaxMentees)
	assert.Equal(t, 2, items[0].AvailableSlots)

	// no override falls back to the configured default
	assert.Equal(t, 5, items[1].MaxMentees)
	assert.Equal(t, 5, items[1].AvailableSlots)

	// over capacity never goes negative
	assert.Equal(t, 4, items[2].CurrentMenteeCount)
	assert.Equal(t, 0, items[2].AvailableSlots)
}

func TestListMentorsWithCapacityFilters(t *testing.T) {
	dir := &stubMentorDirectory{mentors: capacityMentors()}
	svc := NewMentorCapacityService(dir, nil, MentorCapacityConfig{}, nil)

	items, err := svc.ListMentorsWithCapacity(context.Background(), models.MentorCapacityFilter{House: "Bageshree", Phase: "1"})
	require.NoError(t, err)
	require.Len(t, items, 2)

	items, err = svc.ListMentorsWithCapacity(context.Background(), models.MentorCapacityFilter{Campus: "Pune", House: "Bageshree"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "m1", items[0].Mentor.ID)

	items, err = svc.ListMentorsWithCapacity(context.Background(), models.MentorCapacityFilter{Campus: "pune"})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMentorCapacityCacheAndInvalidate(t *testing.T) {
	dir := &stubMentorDirectory{mentors: capacityMentors()}
	cache := NewCacheService(newMemoryCache(), nil, time.Minute, nil)
	svc := NewMentorCapacityService(dir, cache, MentorCapacityConfig{}, nil)

	_, err := svc.ListMentorsWithCapacity(context.Background(), models.MentorCapacityFilter{})
	require.NoError(t, err)
	_, err = svc.ListMentorsWithCapacity(context.Background(), models.MentorCapacityFilter{Phase: "2"})
	require.NoError(t, err)
	assert.Equal(t, 1, dir.listCalls)

	svc.InvalidateCapacity(context.Background())
	_, err = svc.ListMentorsWithCapacity(context.Background(), models.MentorCapacityFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, dir.listCalls)
}

func TestMentorCapacityLoadMore(t *testing.T) {
	mentors := make([]models.User, 23)
	for i := range mentors {
		mentors[i] = models.User{ID: fmt.Sprintf("m%02d", i), Role: models.RoleMentor}
	}
	svc := NewMentorCapacityService(&stubMentorDirectory{mentors: mentors}, nil, MentorCapacityConfig{}, nil)

	page, err := svc.LoadMore(context.Background(), models.MentorCapacityFilter{}, 0)
	require.NoError(t, err)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, 10, page.Loaded)
	assert.Equal(t, 23, page.Total)
	assert.True(t, page.HasMore)

	page, err = svc.LoadMore(context.Background(), models.MentorCapacityFilter{}, 20)
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, 23, page.Loaded)
	assert.False(t, page.HasMore)
	assert.Equal(t, "m20", page.Items[0].Mentor.ID)
}
