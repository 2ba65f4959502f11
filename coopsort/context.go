package coopsort

// context is the Go-native stand-in for a ucontext_t: an opaque
// resumable unit of work with its own private stack region.
// Go has no user-context swap primitive, so each task gets its own
// goroutine — the language already gives it an independently growable
// stack — and the baton (who is allowed to run) is passed with a single
// unbuffered channel per context: sending on it wakes the goroutine
// blocked receiving on it, and a goroutine that wants to "park" itself
// (yield the CPU back, exactly like returning control after
// swapcontext) simply blocks on its own channel again.
//
// See DESIGN.md, Open Question "ucontext/sigaltstack -> Go".
type context struct {
	idx     int
	task    *Task
	resume  chan struct{}
	started bool
}

func newContext(idx int, t *Task) *context {
	return &context{idx: idx, task: t, resume: make(chan struct{})}
}

// start launches the context's goroutine. It blocks immediately on its
// own resume channel, exactly like a context created but not yet swapped
// into; body is expected to call Scheduler.checkpoint periodically so the
// scheduler can cooperatively preempt it (see scheduler.go). onDone runs
// once body returns on its own, handing the baton back to the scheduler
// exactly like a preemption would — completion is a yield point too, not
// just a timer tick.
func (c *context) start(body func(), onDone func(*context)) {
	go func() {
		<-c.resume
		body()
		c.task.markSorted()
		onDone(c)
	}()
}
