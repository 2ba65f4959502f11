//go:build linux

package coopsort

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/nechda/cooptools/cmn/nlog"
)

// realtimeTimer drives preemption off a periodic real-time interval
// timer (ITIMER_REAL) delivering SIGALRM. golang.org/x/sys/unix is the
// one place in the standard ecosystem that exposes setitimer directly.
type realtimeTimer struct {
	mu   sync.Mutex
	sig  chan os.Signal
	done chan struct{}
}

func newTickSource() tickSource { return &realtimeTimer{} }

func (r *realtimeTimer) Arm(interval time.Duration) <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sig = make(chan os.Signal, 4)
	r.done = make(chan struct{})
	signal.Notify(r.sig, syscall.SIGALRM)

	iv := unix.Itimerval{
		Interval: unix.NsecToTimeval(interval.Nanoseconds()),
		Value:    unix.NsecToTimeval(interval.Nanoseconds()),
	}
	if err := unix.Setitimer(unix.ITIMER_REAL, &iv, nil); err != nil {
		// timer setup failure is fatal: the scheduler has no way to
		// preempt a runaway task without it.
		nlog.Fatalf("setitimer: %v", err)
	}

	ticks := make(chan struct{})
	go func() {
		defer close(ticks)
		for {
			select {
			case _, ok := <-r.sig:
				if !ok {
					return
				}
				select {
				case ticks <- struct{}{}:
				case <-r.done:
					return
				}
			case <-r.done:
				return
			}
		}
	}()
	return ticks
}

func (r *realtimeTimer) Disarm() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done == nil {
		return
	}
	zero := unix.Itimerval{}
	unix.Setitimer(unix.ITIMER_REAL, &zero, nil)
	signal.Stop(r.sig)
	close(r.done)
	r.done = nil
}
