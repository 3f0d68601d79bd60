package notice

import (
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/campus-lms-api/pkg/errors"
)

type fakeTimer struct {
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{at: c.now + d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	due := make([]*fakeTimer, 0)
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	sort.Slice(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.fn()
	}
}

func newTestController() (*Controller, *fakeClock) {
	clock := &fakeClock{}
	return NewController(WithAfterFunc(clock.AfterFunc)), clock
}

func TestSuccessDismissedAfterThreeUnits(t *testing.T) {
	c, clock := newTestController()

	require.True(t, c.Begin("req-1"))
	c.Succeed("Request approved")
	assert.Equal(t, State{Kind: KindSuccess, Message: "Request approved"}, c.State())

	clock.Advance(2999 * time.Millisecond)
	assert.Equal(t, KindSuccess, c.State().Kind)

	clock.Advance(time.Millisecond)
	assert.Equal(t, Idle(), c.State())
}

func TestErrorDismissedAfterFiveUnits(t *testing.T) {
	c, clock := newTestController()

	c.Fail(appErrors.Clone(appErrors.ErrInvalidState, "mentor request already approved"), Fallback("approve request"))
	assert.Equal(t, "mentor request already approved", c.State().Message)

	clock.Advance(4 * time.Second)
	assert.Equal(t, KindError, c.State().Kind)
	clock.Advance(time.Second)
	assert.Equal(t, KindIdle, c.State().Kind)
}

func TestNewMessageResetsTimer(t *testing.T) {
	c, clock := newTestController()

	c.Succeed("first")
	clock.Advance(2 * time.Second)
	c.Fail(errors.New("second"), "fallback")

	// the success timer would have fired at 3s
	clock.Advance(2 * time.Second)
	assert.Equal(t, State{Kind: KindError, Message: "second"}, c.State())

	clock.Advance(3 * time.Second)
	assert.Equal(t, KindIdle, c.State().Kind)
}

func TestOnlyOneMessageVisible(t *testing.T) {
	c, clock := newTestController()
	steps := []func(){
		func() { c.Begin("a") },
		func() { c.Succeed("ok") },
		func() { c.Fail(errors.New("bad"), "fallback") },
		func() { clock.Advance(time.Second) },
		func() { c.Succeed("ok again") },
		func() { c.Begin("b") },
		func() { c.Fail(nil, "fallback") },
		func() { clock.Advance(10 * time.Second) },
	}
	for _, step := range steps {
		step()
		s := c.State()
		switch s.Kind {
		case KindIdle:
			assert.Empty(t, s.Message)
		case KindSuccess, KindError:
			assert.NotEmpty(t, s.Message)
		default:
			t.Fatalf("unexpected kind %q", s.Kind)
		}
	}
}

func TestBeginGuardsSameTarget(t *testing.T) {
	c, _ := newTestController()

	require.True(t, c.Begin("req-1"))
	assert.False(t, c.Begin("req-1"))
	assert.True(t, c.Begin("req-2"))
	assert.Equal(t, "req-2", c.State().ProcessingID)

	c.Succeed("done")
	assert.Empty(t, c.State().ProcessingID)
	assert.True(t, c.Begin("req-1"))
}

func TestBeginClearsMessage(t *testing.T) {
	c, clock := newTestController()

	c.Fail(errors.New("bad"), "fallback")
	require.True(t, c.Begin("req-1"))
	assert.Equal(t, State{Kind: KindIdle, ProcessingID: "req-1"}, c.State())

	clock.Advance(10 * time.Second)
	assert.Equal(t, "req-1", c.State().ProcessingID)
}

func TestStaleTimerDoesNotClearNewerMessage(t *testing.T) {
	c, clock := newTestController()

	c.Succeed("first")
	require.Len(t, clock.timers, 1)
	stale := clock.timers[0]

	c.Succeed("second")
	stale.fn()
	assert.Equal(t, "second", c.State().Message)
}

func TestErrorMessageFallbacks(t *testing.T) {
	fallback := Fallback("reject request")
	assert.Equal(t, "Failed to reject request. Please try again.", fallback)
	assert.Equal(t, fallback, ErrorMessage(nil, fallback))
	assert.Equal(t, fallback, ErrorMessage(appErrors.StoreFailure(errors.New("conn reset"), "reject mentor request"), fallback))
	assert.Equal(t, "mentor request not found", ErrorMessage(appErrors.Clone(appErrors.ErrNotFound, "mentor request not found"), fallback))
	assert.Equal(t, "boom", ErrorMessage(errors.New("boom"), fallback))
}

func TestRegistryKeepsControllersPerUser(t *testing.T) {
	clock := &fakeClock{}
	r := NewRegistry(WithAfterFunc(clock.AfterFunc))

	assert.Equal(t, Idle(), r.State("admin-1"))
	assert.Equal(t, 0, r.Len())

	assert.Equal(t, KindSuccess, r.Succeed("admin-1", "approved").Kind)
	require.True(t, r.Begin("admin-2", "req-9"))
	assert.False(t, r.Begin("admin-2", "req-9"))

	assert.Equal(t, KindSuccess, r.State("admin-1").Kind)
	assert.Equal(t, "req-9", r.State("admin-2").ProcessingID)
	assert.Equal(t, 2, r.Len())

	r.Close()
	clock.Advance(time.Minute)
	assert.Equal(t, KindSuccess, r.State("admin-1").Kind)
}

func TestRegistryDropsIdleControllers(t *testing.T) {
	clock := &fakeClock{}
	r := NewRegistry(WithAfterFunc(clock.AfterFunc))

	r.Succeed("admin-1", "approved")
	r.Fail("admin-2", errors.New("boom"), Fallback("reject request"))
	r.Dismiss("admin-3")
	assert.Equal(t, 2, r.Len())

	// an explicit dismiss of a settled banner releases it at once
	assert.Equal(t, Idle(), r.Dismiss("admin-2"))
	assert.Equal(t, 1, r.Len())

	// the success timer firing releases the last one
	clock.Advance(DefaultSuccessTTL)
	assert.Equal(t, Idle(), r.State("admin-1"))
	assert.Equal(t, 0, r.Len())

	// an in-flight action survives a dismiss
	require.True(t, r.Begin("admin-4", "req-1"))
	assert.Equal(t, "req-1", r.Dismiss("admin-4").ProcessingID)
	assert.Equal(t, 1, r.Len())
	assert.False(t, r.Begin("admin-4", "req-1"))
}
