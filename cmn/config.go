// Package cmn provides the small set of process-wide, read-mostly
// settings shared by coopsort and ufs.
package cmn

import "time"

type Config struct {
	// coopsort
	TimeSlice  time.Duration // default 2000us
	StackSize  int           // per-context stack hint (>=1MiB)
	OutputPath string        // default "sorted.txt"

	// ufs
	BlockSize   int   // 512B
	MaxFileSize int64 // 1GiB
}

func Default() *Config {
	return &Config{
		TimeSlice:   2000 * time.Microsecond,
		StackSize:   1 << 20,
		OutputPath:  "sorted.txt",
		BlockSize:   512,
		MaxFileSize: 1 << 30,
	}
}

// current is set once at process startup (main) and read everywhere else
// without locks, under a single-writer/many-reader contract.
var current = Default()

func Current() *Config { return current }

func SetCurrent(c *Config) { current = c }
