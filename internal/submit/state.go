package submit

import (
	"github.com/teimsafety/ppectl/internal/services"
)

// State is the lifecycle position of the current submission. The controller
// holds exactly one tagged state at a time, so combinations like "loading
// with a stale result visible" cannot be represented.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Snapshot is the view-facing read model of the controller.
//
// Result is non-nil only in [StateCompleted]; Err only in [StateFailed].
type Snapshot struct {
	ID       uint64 // current submission id, 0 when none has started
	State    State
	Progress int // 0..100, monotonically non-decreasing within a submission
	Result   *services.DetectionResult
	Err      error
}
