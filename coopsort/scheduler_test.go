package coopsort_test

import (
	"os"
	"path/filepath"

	"github.com/nechda/cooptools/cmn"
	"github.com/nechda/cooptools/coopsort"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func writeIntsFile(dir, name, contents string) string {
	p := filepath.Join(dir, name)
	Expect(os.WriteFile(p, []byte(contents), 0o644)).To(Succeed())
	return p
}

func nonDecreasing(a []int32) bool {
	for i := 1; i < len(a); i++ {
		if a[i-1] > a[i] {
			return false
		}
	}
	return true
}

func runScheduler(dir string, inputs map[string]string) []*coopsort.Task {
	paths := make([]string, 0, len(inputs))
	names := make([]string, 0, len(inputs))
	for name := range inputs {
		names = append(names, name)
	}
	for _, name := range names {
		paths = append(paths, writeIntsFile(dir, name, inputs[name]))
	}
	cfg := cmn.Default()
	sched := coopsort.NewScheduler(paths, cfg, nil)
	sched.Run()
	return sched.Tasks()
}

var _ = Describe("Scheduler", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "coopsort-")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(dir)).To(Succeed())
	})

	// Scenario C1-A.
	It("sorts and merges two files", func() {
		tasks := runScheduler(dir, map[string]string{
			"a.txt": "3 1 2",
			"b.txt": "5 4",
		})
		for _, tk := range tasks {
			Expect(tk.Sorted()).To(BeTrue())
		}
		out := filepath.Join(dir, "sorted.txt")
		_, err := coopsort.MergeWrite(tasks, out)
		Expect(err).NotTo(HaveOccurred())
		raw, err := os.ReadFile(out)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(Equal("1 2 3 4 5 "))
	})

	// Scenario C1-B: a single task, no other context ever needs to run.
	It("sorts a single input file alone", func() {
		tasks := runScheduler(dir, map[string]string{"a.txt": "7"})
		Expect(tasks).To(HaveLen(1))
		Expect(tasks[0].Sorted()).To(BeTrue())
		Expect(tasks[0].Ints).To(Equal([]int32{7}))
	})

	// Scenario C1-C: duplicates across inputs.
	It("merges duplicate values across tasks in the correct order", func() {
		tasks := runScheduler(dir, map[string]string{
			"a.txt": "1 1 2",
			"b.txt": "1 3",
		})
		out := filepath.Join(dir, "sorted.txt")
		_, err := coopsort.MergeWrite(tasks, out)
		Expect(err).NotTo(HaveOccurred())
		raw, err := os.ReadFile(out)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(Equal("1 1 1 2 3 "))
	})

	It("sorts every task to completion regardless of task count", func() {
		tasks := runScheduler(dir, map[string]string{
			"a.txt": "9 8 7 6 5 4 3 2 1",
			"b.txt": "20 19 18 17 16",
			"c.txt": "100",
		})
		for _, tk := range tasks {
			Expect(tk.Sorted()).To(BeTrue())
			Expect(nonDecreasing(tk.Ints)).To(BeTrue())
		}
	})
})
