package coopsort

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/nechda/cooptools/cmn"
	"github.com/nechda/cooptools/cmn/mono"
	"github.com/nechda/cooptools/cmn/nlog"
)

// tickSource abstracts the periodic-timer-plus-signal preemption
// mechanism. On Linux it is a real ITIMER_REAL/SIGALRM pair
// (timer_linux.go); elsewhere it falls back to a time.Ticker
// (timer_other.go) — a GOOS-sharded split.
type tickSource interface {
	// Arm starts delivering on the returned channel every interval.
	Arm(interval time.Duration) <-chan struct{}
	// Disarm stops delivery and closes the channel Arm returned.
	Disarm()
}

// Scheduler implements a cooperative, timer-preempted model: a single
// logical "running" task context at a time, a periodic timer that
// requests a checkpointed context to yield, and a chooser that picks
// the next not-yet-sorted task.
type Scheduler struct {
	tasks    []*Task
	contexts []*context
	timer    tickSource
	cfg      *cmn.Config
	metrics  *Metrics

	// current, lastEntry are touched exclusively by whichever task
	// context currently holds the baton (see context.go) — the baton
	// protocol is the only synchronization they need, matching the
	// single-thread contract of the original ucontext design.
	current   int
	lastEntry int64

	timeUp atomic.Bool
}

// NewScheduler creates one context per path, unstarted. cfg may be nil
// for cmn.Default().
func NewScheduler(paths []string, cfg *cmn.Config, metrics *Metrics) *Scheduler {
	if cfg == nil {
		cfg = cmn.Default()
	}
	s := &Scheduler{cfg: cfg, metrics: metrics, timer: newTickSource()}
	s.tasks = make([]*Task, len(paths))
	s.contexts = make([]*context, len(paths))
	for i, p := range paths {
		t := newTask(i, p)
		s.tasks[i] = t
		s.contexts[i] = newContext(i, t)
	}
	return s
}

func (s *Scheduler) Tasks() []*Task { return s.tasks }

func (s *Scheduler) allSorted() bool {
	for _, t := range s.tasks {
		if !t.Sorted() {
			return false
		}
	}
	return true
}

// pickNext is the chooser: starting from (current+1) mod N, advance
// until an unsorted task is found (the search
// wraps all the way back to current, so "the only unsorted task left is
// the one currently running" resolves to no-op continuation, not a hang).
func (s *Scheduler) pickNext(current, n int) (int, bool) {
	for i := 1; i <= n; i++ {
		idx := (current + i) % n
		if !s.tasks[idx].Sorted() {
			return idx, true
		}
	}
	return 0, false
}

// checkpoint is called by the currently running context's body
// periodically (see sorter.go's HeapSortCheckpoint). It is the Go
// realization of "the signal handler transfers execution onto the
// dedicated signal stack, constructs a scheduler context ... and swaps
// from the currently running task context into the scheduler context":
// here the chooser logic itself runs inline, in the caller's goroutine,
// because by the baton invariant at most one task context is ever
// running, so this body never executes concurrently with itself.
func (s *Scheduler) checkpoint(self *context) {
	if !s.timeUp.CompareAndSwap(true, false) {
		return
	}
	n := len(s.tasks)
	now := mono.NanoTime()
	self.task.chargeCPU(time.Duration(now - s.lastEntry))
	s.lastEntry = now

	next, any := s.pickNext(s.current, n)
	if !any {
		s.timer.Disarm()
		return
	}
	if next != s.current {
		self.task.addSwap()
		if s.metrics != nil {
			s.metrics.ObserveSwap(self.task)
		}
	}
	s.current = next
	if next == self.idx {
		// the only unsorted task left is the one already running:
		// nothing to hand off, just keep going.
		return
	}

	nextCtx := s.contexts[next]
	if !nextCtx.started {
		nextCtx.started = true
		nextCtx.start(s.taskBody(nextCtx), s.finish)
	}
	nextCtx.resume <- struct{}{}
	<-self.resume // park: wait to be chosen again
}

// finish hands the baton to the next unsorted task when self's body
// returns on its own, rather than being preempted by a timer tick.
// Completion is a yield point exactly like a preemption is: without this
// handoff a task that finishes inside its own slice — which every task
// with a small enough input does — would leave every other context
// unstarted, or strand a parked predecessor that nothing ever wakes.
func (s *Scheduler) finish(self *context) {
	now := mono.NanoTime()
	self.task.chargeCPU(time.Duration(now - s.lastEntry))
	s.lastEntry = now

	next, any := s.pickNext(self.idx, len(s.tasks))
	if !any {
		s.timer.Disarm()
		return
	}
	s.current = next

	nextCtx := s.contexts[next]
	if !nextCtx.started {
		nextCtx.started = true
		nextCtx.start(s.taskBody(nextCtx), s.finish)
	}
	nextCtx.resume <- struct{}{}
}

func (s *Scheduler) taskBody(c *context) func() {
	return func() {
		t := c.task
		ints, err := ReadInts(t.Path)
		if err != nil {
			t.readErr = err
			nlog.Errorf("task %s: %v", t.ShortID, err)
			return
		}
		t.Ints = ints
		HeapSortCheckpoint(t.Ints, func() { s.checkpoint(c) })
	}
}

// Run drives startup/termination: arm the timer, transfer control into
// task 0's context, then busy-wait on the
// all-sorted predicate before disarming and returning. Subsequent tasks
// are started lazily by the chooser the first time it selects them,
// exactly as in the ucontext source (a context that is never swapped
// into never runs).
func (s *Scheduler) Run() {
	n := len(s.tasks)
	if n == 0 {
		return
	}
	ticks := s.timer.Arm(s.cfg.TimeSlice)
	go func() {
		for range ticks {
			s.timeUp.Store(true)
		}
	}()

	s.current = 0
	s.lastEntry = mono.NanoTime()
	c0 := s.contexts[0]
	c0.started = true
	c0.start(s.taskBody(c0), s.finish)
	c0.resume <- struct{}{}

	for !s.allSorted() {
		runtime.Gosched()
	}
	s.timer.Disarm()
}
