// Package cos provides common low-level types shared by coopsort and ufs:
// typed sentinel errors and a bounded error collector.
package cos

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// ErrNotFound is a typed error for a lookup that fails to resolve a name
// or handle to a live record.
type ErrNotFound struct {
	what string
}

func NewErrNotFound(format string, a ...any) *ErrNotFound {
	return &ErrNotFound{what: fmt.Sprintf(format, a...)}
}

func (e *ErrNotFound) Error() string { return e.what + " does not exist" }

func IsErrNotFound(err error) bool {
	_, ok := err.(*ErrNotFound)
	return ok
}

// Wrap and Cause re-export the pkg/errors wrap and cause helpers.
func Wrap(err error, msg string) error { return errors.Wrap(err, msg) }
func Cause(err error) error            { return errors.Cause(err) }

// maxErrs bounds how many distinct errors Errs will retain.
const maxErrs = 4

// Errs collects distinct errors (by message), keeping at most maxErrs; Err
// reports how many were kept and the first of them.
type Errs struct {
	mu   sync.Mutex
	errs []error
	cnt  int64
}

func (e *Errs) Add(err error) {
	if err == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, added := range e.errs {
		if added.Error() == err.Error() {
			return
		}
	}
	if len(e.errs) < maxErrs {
		e.errs = append(e.errs, err)
		atomic.StoreInt64(&e.cnt, int64(len(e.errs)))
	}
}

func (e *Errs) Cnt() int { return int(atomic.LoadInt64(&e.cnt)) }

func (e *Errs) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.errs) == 0 {
		return nil
	}
	return errors.Errorf("%d error(s), first: %v", len(e.errs), e.errs[0])
}
