package coopsort

import (
	"math/rand"
	"sort"
	"testing"
)

func isNonDecreasing(a []int32) bool {
	for i := 1; i < len(a); i++ {
		if a[i-1] > a[i] {
			return false
		}
	}
	return true
}

func TestHeapSortCases(t *testing.T) {
	cases := [][]int32{
		nil,
		{},
		{1},
		{2, 1},
		{3, 1, 2},
		{5, 4, 3, 2, 1},
		{1, 1, 2},
		{1, 1, 1, 1},
		{-3, 5, -1, 0, 2},
	}
	for _, c := range cases {
		in := append([]int32(nil), c...)
		HeapSort(in)
		if !isNonDecreasing(in) {
			t.Errorf("not sorted: %v", in)
		}
	}
}

// TestHeapSortNoSelfAliasCrash guards against the source's latent
// XOR-self-swap bug: every index equal to its own sift target must
// leave the slice's multiset unchanged.
func TestHeapSortNoSelfAliasCrash(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 50; trial++ {
		n := rng.Intn(40)
		a := make([]int32, n)
		for i := range a {
			a[i] = int32(rng.Intn(10) - 5)
		}
		want := append([]int32(nil), a...)
		sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })

		HeapSort(a)
		if !isNonDecreasing(a) {
			t.Fatalf("trial %d: not sorted: %v", trial, a)
		}
		for i := range a {
			if a[i] != want[i] {
				t.Fatalf("trial %d: got %v, want %v", trial, a, want)
			}
		}
	}
}

func TestHeapSortCheckpointInvokedPerOuterStep(t *testing.T) {
	a := []int32{5, 3, 4, 1, 2}
	n := 0
	HeapSortCheckpoint(a, func() { n++ })
	if !isNonDecreasing(a) {
		t.Fatalf("not sorted: %v", a)
	}
	// 5 elements: 2 build-phase sift-downs plus 4 extraction steps.
	if want := 6; n != want {
		t.Errorf("checkpoint invoked %d times, want %d", n, want)
	}
}

func TestSwapSelfNoOp(t *testing.T) {
	a := []int32{1, 2, 3}
	swap(a, 1, 1)
	if a[1] != 2 {
		t.Errorf("self-swap mutated value: %v", a)
	}
}
