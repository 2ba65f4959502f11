//go:build debug

package debug

import "fmt"

func ON() bool { return true }

func Assert(cond bool, args ...any) {
	if !cond {
		panic(fmt.Sprintln(append([]any{"assertion failed:"}, args...)...))
	}
}

func Assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("assertion failed: "+format, args...))
	}
}

func AssertNoErr(err error) {
	if err != nil {
		panic(fmt.Sprintf("assertion failed: unexpected error: %v", err))
	}
}

func AssertFunc(fn func() bool) {
	if !fn() {
		panic("assertion failed: predicate returned false")
	}
}
