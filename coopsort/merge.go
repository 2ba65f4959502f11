package coopsort

import (
	"bufio"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// source is one sorted task's array plus its read cursor for the k-way
// merge.
type source struct {
	vals []int32
	idx  int
}

func (s *source) active() bool { return s.idx < len(s.vals) }
func (s *source) head() int32  { return s.vals[s.idx] }

// MergeWrite k-way merges the sorted sequences in tasks into outputPath
// as whitespace-separated decimals, each followed by one space. Sources
// of length 0 are inactive from the start.
//
// Algorithm: each step finds the minimum head across all active sources,
// then — for every source whose head equals that minimum — advances
// through all consecutive equal values, counting total occurrences across
// sources, then emits that many copies of the minimum. O(total*N),
// acceptable for the small N this scheduler targets (a heap-based merge
// is an equivalent, not chosen here — see DESIGN.md).
func MergeWrite(tasks []*Task, outputPath string) (int64, error) {
	sources := make([]*source, 0, len(tasks))
	for _, t := range tasks {
		sources = append(sources, &source{vals: t.Ints})
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return 0, errors.Wrapf(err, "create %s", outputPath)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	var written int64
	for {
		min, ok := minHead(sources)
		if !ok {
			break
		}
		count := 0
		for _, s := range sources {
			for s.active() && s.head() == min {
				count++
				s.idx++
			}
		}
		for i := 0; i < count; i++ {
			w.WriteString(strconv.FormatInt(int64(min), 10))
			w.WriteByte(' ')
			written++
		}
	}
	if err := w.Flush(); err != nil {
		return written, errors.Wrapf(err, "flush %s", outputPath)
	}
	return written, nil
}

func minHead(sources []*source) (int32, bool) {
	var (
		min   int32
		found bool
	)
	for _, s := range sources {
		if !s.active() {
			continue
		}
		if !found || s.head() < min {
			min = s.head()
			found = true
		}
	}
	return min, found
}
