package grid

import "time"

// Coordinator turns bursts of single-cell edits into infrequent batched
// persistence calls. It guarantees at most one save in flight per grid
// and never includes a coordinate in two concurrent calls.
//
// The coordinator does not own a timer; the hosting event loop asks for
// Deadline and calls StartSave when it is due. The clock is injectable
// for tests.
type Coordinator struct {
	store  *Store
	window time.Duration
	now    func() time.Time

	armed    bool
	deadline time.Time

	inFlight       bool
	retryRequested bool // a cycle expired or a flush arrived during a save
}

// NewCoordinator creates a coordinator for the store with the given
// debounce window.
func NewCoordinator(store *Store, window time.Duration) *Coordinator {
	return &Coordinator{
		store:  store,
		window: window,
		now:    time.Now,
	}
}

// SetNow injects the clock. Tests use a fixed or stepped clock.
func (c *Coordinator) SetNow(now func() time.Time) { c.now = now }

// Window returns the configured debounce window.
func (c *Coordinator) Window() time.Duration { return c.window }

// InFlight reports whether a save is currently outstanding.
func (c *Coordinator) InFlight() bool { return c.inFlight }

// NoteEdit (re)starts the debounce timer after an edit. It is a no-op in
// paste regime: staged patches are committed explicitly, never auto-saved.
func (c *Coordinator) NoteEdit() {
	if c.store.Regime() == RegimePaste {
		return
	}
	c.armed = true
	c.deadline = c.now().Add(c.window)
}

// Deadline returns the debounce deadline and whether the timer is armed.
func (c *Coordinator) Deadline() (time.Time, bool) {
	return c.deadline, c.armed
}

// Due reports whether the debounce timer has expired.
func (c *Coordinator) Due() bool {
	return c.armed && !c.now().Before(c.deadline)
}

// StartSave begins a save cycle if one is due. If a save is already in
// flight the newly-pending edits stay queued and a fresh cycle starts as
// soon as the current save resolves. The returned changes are the exact
// snapshot the persistence call must cover.
//
// A deadline armed before a paste does not fire while the staged patch is
// open: the timer stays armed and the expired cycle runs once the grid is
// back in the auto-save regime.
func (c *Coordinator) StartSave() ([]Change, bool) {
	if c.store.Regime() == RegimePaste {
		return nil, false
	}
	if !c.Due() {
		return nil, false
	}
	return c.startNow()
}

// Flush cancels the debounce timer and starts a save immediately if
// anything is pending, e.g. when a field loses focus or the user leaves
// the grid.
func (c *Coordinator) Flush() ([]Change, bool) {
	if c.store.Regime() == RegimePaste {
		return nil, false
	}
	if c.store.PendingCount() == 0 && !c.inFlight {
		c.armed = false
		return nil, false
	}
	c.armed = true
	c.deadline = c.now()
	return c.startNow()
}

func (c *Coordinator) startNow() ([]Change, bool) {
	c.armed = false
	if c.inFlight {
		// Single in-flight guarantee: queue this cycle instead.
		c.retryRequested = true
		return nil, false
	}
	changes := c.store.takePending()
	if len(changes) == 0 {
		return nil, false
	}
	c.inFlight = true
	return changes, true
}

// Resolve applies a save result. On success the store confirms the
// snapshot (keeping any newer edits pending); on failure the cells return
// to Modified with the error recorded. If a cycle was queued while the
// save was in flight, a new debounce cycle starts immediately. Failed
// cells alone do not re-arm the timer: they retry on the next edit or an
// explicit flush.
func (c *Coordinator) Resolve(changes []Change, err error) {
	if err != nil {
		c.store.MarkFailed(changes, err.Error())
	} else {
		c.store.MarkSaved(changes)
	}
	c.inFlight = false

	newCycle := c.retryRequested || (err == nil && c.store.PendingCount() > 0)
	c.retryRequested = false
	if newCycle && c.store.PendingCount() > 0 {
		c.armed = true
		c.deadline = c.now().Add(c.window)
	}
}
