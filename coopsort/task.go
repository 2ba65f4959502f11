package coopsort

import (
	"sync/atomic"
	"time"

	"github.com/teris-io/shortid"
)

// Task is the per-input-file state owned by the scheduler from creation
// until program exit, grounded on original_source/task1/Array.h's
// struct Array plus scheduler-side bookkeeping.
type Task struct {
	ID      int
	ShortID string // correlation token for logs/metrics, supplement over the bare index
	Path    string

	Ints []int32

	sorted atomic.Bool // false->true exactly once, never reverts

	SwapTimes int64         // number of preemptions where this task was running and lost the baton
	TotalCPU  time.Duration // wall-clock charged to this task between scheduler entries

	readErr error // set if the reader failed for this task's file
}

func newTask(id int, path string) *Task {
	sid, err := shortid.Generate()
	if err != nil {
		// shortid only fails on generator exhaustion/misconfiguration;
		// fall back to a deterministic label rather than aborting a
		// cooperative-scheduling run over a label string.
		sid = "t0"
	}
	return &Task{ID: id, ShortID: sid, Path: path}
}

func (t *Task) Sorted() bool   { return t.sorted.Load() }
func (t *Task) markSorted()    { t.sorted.Store(true) }
func (t *Task) addSwap()       { atomic.AddInt64(&t.SwapTimes, 1) }
func (t *Task) chargeCPU(d time.Duration) {
	t.TotalCPU += d
}
