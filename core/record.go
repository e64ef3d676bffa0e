package core

import (
	"sync"
	"time"
)

// RunRecord is the bookkeeping object an engine keeps per simulation run:
// status, the append-only frame history and the final result. It is safe for
// concurrent access.
//
// Contract:
//   - Frames are append-only; GetFrames returns a defensive copy
//   - Status/Result mutations update the Updated timestamp
//   - Clone performs a deep copy safe for independent use.
type RunRecord struct {
	ID      string    `json:"id"`
	Status  RunStatus `json:"status"`
	Frames  []Frame   `json:"frames"`
	Result  RunResult `json:"result"`
	Error   string    `json:"error,omitempty"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
	mu      sync.RWMutex
}

// NewRunRecord creates an initialized record for the given run ID.
func NewRunRecord(id string) *RunRecord {
	now := time.Now()
	return &RunRecord{ID: id, Status: RunStatusInitialized, Created: now, Updated: now}
}

// AppendFrame adds a frame to the history.
func (r *RunRecord) AppendFrame(f Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Frames = append(r.Frames, f)
	r.Updated = time.Now()
}

// GetFrames returns a copy of the frame history so callers cannot mutate
// internal state.
func (r *RunRecord) GetFrames() []Frame {
	r.mu.RLock()
	defer r.mu.RUnlock()
	frames := make([]Frame, len(r.Frames))
	copy(frames, r.Frames)
	return frames
}

// SetStatus updates the lifecycle status.
func (r *RunRecord) SetStatus(st RunStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = st
	r.Updated = time.Now()
}

// GetStatus returns the lifecycle status.
func (r *RunRecord) GetStatus() RunStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Status
}

// SetResult records the final metadata of the run.
func (r *RunRecord) SetResult(res RunResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Result = res
	r.Updated = time.Now()
}

// SetError records the terminal fault message alongside the error status.
func (r *RunRecord) SetError(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = RunStatusError
	r.Error = msg
	r.Updated = time.Now()
}

// Clone returns a deep copy of the record safe for independent mutation.
func (r *RunRecord) Clone() *RunRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &RunRecord{
		ID:      r.ID,
		Status:  r.Status,
		Frames:  make([]Frame, len(r.Frames)),
		Result:  r.Result,
		Error:   r.Error,
		Created: r.Created,
		Updated: r.Updated,
	}
	copy(clone.Frames, r.Frames)
	return clone
}

// RunStore persists run records and their evolving frame history.
type RunStore interface {
	Create(id string) (*RunRecord, error)
	Get(id string) (*RunRecord, error)
	AppendFrame(id string, f Frame) error
	SetStatus(id string, st RunStatus) error
	SetResult(id string, res RunResult) error
	SetError(id string, msg string) error
}
