// Package mono provides monotonic-clock helpers used for charging CPU
// time to tasks.
package mono

import "time"

var base = time.Now()

// NanoTime returns a monotonic reading in nanoseconds, counted from package
// initialisation. Rather than linkname into runtime.nanotime, this rides on
// time.Now's own embedded monotonic reading (stdlib-guaranteed since Go
// 1.9), which is portable and doesn't depend on runtime internals that can
// move under us.
func NanoTime() int64 { return int64(time.Since(base)) }

// Since returns the elapsed duration since a NanoTime reading.
func Since(start int64) time.Duration { return time.Duration(NanoTime() - start) }
