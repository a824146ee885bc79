// package submit owns the state machine for one in-flight analysis request.
//
// Exactly one submission may be submitting at a time. Starting a new one
// supersedes the old without cancelling its network request; the superseded
// request's eventual completion is identified by submission id and dropped.
// That id comparison is the system's only defense against overlapping
// submissions racing each other.
package submit

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/teimsafety/ppectl/internal/media"
	"github.com/teimsafety/ppectl/internal/services"
	"github.com/teimsafety/ppectl/internal/shared"
)

// Controller drives the idle → submitting → completed/failed lifecycle and
// exposes it to the view layer as snapshots plus a change signal.
type Controller struct {
	mu       sync.Mutex
	detector services.Detector
	logger   *log.Logger

	blob     *media.Blob
	state    State
	progress int
	result   *services.DetectionResult
	err      error

	id     uint64 // id of the live submission; 0 when none
	lastID uint64 // monotonic counter, never reused
	done   bool

	events chan struct{}
}

// NewController creates a Controller submitting through the given detector.
func NewController(detector services.Detector, logger *log.Logger) *Controller {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Controller{
		detector: detector,
		logger:   logger,
		state:    StateIdle,
		events:   make(chan struct{}, 1),
	}
}

// Events signals whenever the snapshot changed. Consumers re-read Snapshot
// on each tick; signals are coalesced, never blocking the controller.
func (c *Controller) Events() <-chan struct{} {
	return c.events
}

// Snapshot returns the current view model.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		ID:       c.id,
		State:    c.state,
		Progress: c.progress,
		Result:   c.result,
		Err:      c.err,
	}
}

// Blob returns the currently acquired media, if any.
func (c *Controller) Blob() *media.Blob {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blob
}

// Acquire installs newly acquired media and returns the controller to idle.
// Any in-flight submission is superseded: its id is invalidated so a late
// completion or failure cannot touch visible state.
func (c *Controller) Acquire(blob *media.Blob) {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		return
	}

	c.blob = blob
	c.state = StateIdle
	c.progress = 0
	c.result = nil
	c.err = nil
	c.id = 0

	c.mu.Unlock()
	c.notify()
}

// Submit starts a submission for the acquired media. Without media it fails
// with [shared.ErrInvalidMedia] and no request is issued. A submission
// already in flight is superseded by the new one.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		return fmt.Errorf("%w: controller torn down", shared.ErrInvalidInput)
	}
	if c.blob == nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: no media acquired", shared.ErrInvalidMedia)
	}

	c.lastID++
	id := c.lastID
	c.id = id
	c.state = StateSubmitting
	c.progress = 0
	c.result = nil
	c.err = nil
	blob := c.blob

	c.mu.Unlock()
	c.notify()

	c.logger.Debug("submission started", "id", id, "kind", blob.Kind.String(), "bytes", len(blob.Data))
	go c.run(ctx, id, blob)
	return nil
}

// Teardown invalidates the live submission and stops event delivery. Pending
// completions become no-ops. Safe to call more than once.
func (c *Controller) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		return
	}
	c.done = true
	c.id = 0
	close(c.events)
}

func (c *Controller) run(ctx context.Context, id uint64, blob *media.Blob) {
	result, err := c.detector.Predict(ctx, blob, func(sent, total int64) {
		pct := 0
		if total > 0 {
			pct = int(sent * 100 / total)
		}
		c.applyProgress(id, pct)
	})

	if err != nil {
		c.applyFailure(id, err)
		return
	}
	c.applyResult(id, result)
}

// applyProgress records an upload progress event for submission id. Events
// for superseded ids are ignored entirely; within a submission the value is
// clamped to [0,100] and late lower values are dropped.
func (c *Controller) applyProgress(id uint64, pct int) {
	c.mu.Lock()
	if c.done || id != c.id || c.state != StateSubmitting {
		c.mu.Unlock()
		return
	}

	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	if pct <= c.progress {
		c.mu.Unlock()
		return
	}

	c.progress = pct
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) applyResult(id uint64, result *services.DetectionResult) {
	c.mu.Lock()
	if c.done || id != c.id {
		c.mu.Unlock()
		c.logger.Debug("stale result dropped", "id", id)
		return
	}

	c.state = StateCompleted
	c.progress = 100
	c.result = result
	c.err = nil

	c.mu.Unlock()
	c.notify()
}

func (c *Controller) applyFailure(id uint64, err error) {
	c.mu.Lock()
	if c.done || id != c.id {
		c.mu.Unlock()
		c.logger.Debug("stale failure dropped", "id", id, "err", err)
		return
	}

	c.state = StateFailed
	c.result = nil
	c.err = err

	c.mu.Unlock()
	c.notify()
}

// notify coalesces change signals without ever blocking. The lock is held
// across the send so Teardown cannot close the channel mid-send.
func (c *Controller) notify() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		return
	}

	select {
	case c.events <- struct{}{}:
	default:
	}
}
