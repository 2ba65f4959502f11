package coopsort

// HeapSort sorts a in non-decreasing order, in place, O(n log n) worst
// case, O(1) auxiliary space. Grounded on
// original_source/task1/Array.c:heapSort/heapify.
//
// The source swaps via a ^= b; b ^= a; a ^= b, which silently zeroes the
// slot whenever the two indices alias (largest == i is unreachable but
// the sibling swaps still triple-XOR the same slot). swap below always
// uses a temporary, so self-swap is a correct no-op regardless of how
// the call sites are structured.
func HeapSort(a []int32) { HeapSortCheckpoint(a, nil) }

// HeapSortCheckpoint is HeapSort instrumented with a checkpoint callback
// invoked after every heapify step (build phase and extraction phase
// alike) so the scheduler's cooperative-preemption checkpoint can decide
// whether this task should park. checkpoint may be nil.
func HeapSortCheckpoint(a []int32, checkpoint func()) {
	n := len(a)
	if n < 2 {
		return
	}
	for i := n/2 - 1; i >= 0; i-- {
		siftDown(a, i, n)
		if checkpoint != nil {
			checkpoint()
		}
	}
	for end := n - 1; end > 0; end-- {
		swap(a, 0, end)
		siftDown(a, 0, end)
		if checkpoint != nil {
			checkpoint()
		}
	}
}

func swap(a []int32, i, j int) {
	if i == j {
		return
	}
	a[i], a[j] = a[j], a[i]
}

func siftDown(a []int32, i, n int) {
	for {
		largest := i
		l := 2*i + 1
		r := l + 1
		if l < n && a[l] > a[largest] {
			largest = l
		}
		if r < n && a[r] > a[largest] {
			largest = r
		}
		if largest == i {
			return
		}
		swap(a, i, largest)
		i = largest
	}
}
