package inmemory

import (
	"sync"

	"crusoe/internal/domain/economy"
)

type Snapshot struct {
	StepTotal    uint64            `json:"step_total"`
	StepSuccess  uint64            `json:"step_success"`
	StepConflict uint64            `json:"step_conflict"`
	StepFailure  uint64            `json:"step_failure"`
	Deaths       uint64            `json:"deaths"`
	ByAction     map[string]uint64 `json:"by_action"`
}

type Recorder struct {
	mu       sync.Mutex
	success  uint64
	conflict uint64
	failure  uint64
	deaths   uint64
	byAction map[string]uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byAction: map[string]uint64{},
	}
}

func (r *Recorder) RecordSuccess(action economy.Action, alive bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.success++
	r.byAction[action.String()]++
	if !alive {
		r.deaths++
	}
}

func (r *Recorder) RecordConflict() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conflict++
}

func (r *Recorder) RecordFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failure++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		StepSuccess:  r.success,
		StepConflict: r.conflict,
		StepFailure:  r.failure,
		StepTotal:    r.success + r.conflict + r.failure,
		Deaths:       r.deaths,
		ByAction:     make(map[string]uint64, len(r.byAction)),
	}
	for k, v := range r.byAction {
		out.ByAction[k] = v
	}
	return out
}

// SnapshotAny lets the HTTP layer serve the snapshot without importing this
// package.
func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
