// Command coopsort sorts one or more files of whitespace-separated decimal
// integers under a cooperative, timer-preempted scheduler and merges the
// results into a single non-decreasing output file.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/nechda/cooptools/admin"
	"github.com/nechda/cooptools/cmn"
	"github.com/nechda/cooptools/cmn/nlog"
	"github.com/nechda/cooptools/coopsort"
)

func main() {
	var (
		out      string
		slice    int64
		adminAdr string
	)
	flag.StringVar(&out, "out", "sorted.txt", "merged output path")
	flag.Int64Var(&slice, "slice", 2000, "scheduler time slice, microseconds")
	flag.StringVar(&adminAdr, "admin", "", "address to serve /metrics and /debug/state on (empty disables)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] file1 [file2 ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := cmn.Default()
	cfg.TimeSlice = time.Duration(slice) * time.Microsecond
	cfg.OutputPath = out
	cmn.SetCurrent(cfg)

	metrics := coopsort.NewMetrics()

	if adminAdr != "" {
		srv := admin.New(nil, metrics.Registry())
		go func() {
			if err := srv.Serve(adminAdr); err != nil {
				nlog.Warningf("admin server stopped: %v", err)
			}
		}()
	}

	sched := coopsort.NewScheduler(paths, cfg, metrics)
	sched.Run()

	mergeStart := time.Now()
	written, err := coopsort.MergeWrite(sched.Tasks(), cfg.OutputPath)
	mergeTime := time.Since(mergeStart)
	if err != nil {
		nlog.Errorf("merge: %v", err)
		os.Exit(1)
	}

	for _, t := range sched.Tasks() {
		fmt.Printf("task %s (%s): swap_times=%d total working time us=%d\n",
			t.ShortID, t.Path, t.SwapTimes, t.TotalCPU.Microseconds())
	}
	fmt.Printf("merge: wrote %d values to %s in %d us\n", written, cfg.OutputPath, mergeTime.Microseconds())
}
