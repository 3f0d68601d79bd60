package notice

import "sync"

// Registry holds one Controller per admin. A controller exists only while its
// banner shows a message or an action is in flight.
type Registry struct {
	mu          sync.Mutex
	controllers map[string]*Controller
	opts        []Option
}

// NewRegistry builds a registry whose controllers share opts.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{controllers: make(map[string]*Controller), opts: opts}
}

// Begin marks targetID as in flight for userID. See Controller.Begin.
func (r *Registry) Begin(userID, targetID string) bool {
	var ok bool
	r.update(userID, func(c *Controller) { ok = c.Begin(targetID) })
	return ok
}

// Succeed shows msg to userID and returns the resulting banner.
func (r *Registry) Succeed(userID, msg string) State {
	return r.update(userID, func(c *Controller) { c.Succeed(msg) })
}

// Fail shows the message resolved from err to userID and returns the banner.
func (r *Registry) Fail(userID string, err error, fallback string) State {
	return r.update(userID, func(c *Controller) { c.Fail(err, fallback) })
}

// Dismiss clears userID's message now.
func (r *Registry) Dismiss(userID string) State {
	return r.update(userID, func(c *Controller) { c.Dismiss() })
}

// State returns the banner for userID without creating a controller.
func (r *Registry) State(userID string) State {
	r.mu.Lock()
	c, ok := r.controllers[userID]
	r.mu.Unlock()
	if !ok {
		return Idle()
	}
	return c.State()
}

// Len is the number of admins with a live banner.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.controllers)
}

// Close stops every pending timer.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.controllers {
		c.Close()
	}
}

// update runs fn on userID's controller, creating it if needed, and drops the
// controller again when fn leaves it idle. r.mu is always taken before c.mu.
func (r *Registry) update(userID string, fn func(*Controller)) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.controllers[userID]
	if !ok {
		c = NewController(r.opts...)
		c.onIdle = func() { r.prune(userID, c) }
		r.controllers[userID] = c
	}
	fn(c)
	if c.Idle() {
		delete(r.controllers, userID)
	}
	return c.State()
}

func (r *Registry) prune(userID string, c *Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.controllers[userID] == c && c.Idle() {
		delete(r.controllers, userID)
	}
}
