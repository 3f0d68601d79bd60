package notice

import (
	"sync"
	"time"
)

// Default dismissal delays.
const (
	DefaultSuccessTTL = 3 * time.Second
	DefaultErrorTTL   = 5 * time.Second
)

// Timer is a cancellable delayed call.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func stdAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures a Controller.
type Option func(*Controller)

// WithTTL overrides the dismissal delays.
func WithTTL(success, failure time.Duration) Option {
	return func(c *Controller) {
		if success > 0 {
			c.successTTL = success
		}
		if failure > 0 {
			c.errorTTL = failure
		}
	}
}

// WithAfterFunc replaces the timer source.
func WithAfterFunc(f AfterFunc) Option {
	return func(c *Controller) {
		if f != nil {
			c.afterFunc = f
		}
	}
}

// Controller owns one banner State and its dismissal timer. At most one timer
// is pending; setting a message always stops the previous one first.
type Controller struct {
	mu         sync.Mutex
	state      State
	timer      Timer
	generation uint64
	successTTL time.Duration
	errorTTL   time.Duration
	afterFunc  AfterFunc
	// onIdle runs, without c.mu held, after a timer leaves the banner idle
	onIdle func()
}

// NewController builds an idle controller.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		state:      Idle(),
		successTTL: DefaultSuccessTTL,
		errorTTL:   DefaultErrorTTL,
		afterFunc:  stdAfterFunc,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// State returns the current banner.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Begin marks targetID as in flight. It returns false, changing nothing, when
// targetID is already being processed.
func (c *Controller) Begin(targetID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Processing(targetID) {
		return false
	}
	c.cancelLocked()
	c.state = Start(targetID)
	return true
}

// Succeed shows msg and schedules its dismissal.
func (c *Controller) Succeed(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Succeed(msg)
	c.scheduleLocked(c.successTTL)
}

// Fail shows the message resolved from err and schedules its dismissal.
func (c *Controller) Fail(err error, fallback string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Fail(ErrorMessage(err, fallback))
	c.scheduleLocked(c.errorTTL)
}

// Dismiss clears the message now.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	c.state = Dismiss(c.state)
}

// Close stops the pending timer.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
}

func (c *Controller) scheduleLocked(ttl time.Duration) {
	c.cancelLocked()
	gen := c.generation
	c.timer = c.afterFunc(ttl, func() {
		c.mu.Lock()
		// a timer that fired while being replaced must not clear the newer message
		if c.generation != gen {
			c.mu.Unlock()
			return
		}
		c.state = Dismiss(c.state)
		c.timer = nil
		idle, hook := c.idleLocked(), c.onIdle
		c.mu.Unlock()
		if idle && hook != nil {
			hook()
		}
	})
}

// Idle reports whether there is nothing to show, nothing in flight and no
// pending timer.
func (c *Controller) Idle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.idleLocked()
}

func (c *Controller) idleLocked() bool {
	return c.state == Idle() && c.timer == nil
}

func (c *Controller) cancelLocked() {
	c.generation++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
