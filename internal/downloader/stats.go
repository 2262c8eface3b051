package downloader

import (
	"sort"
	"time"
)

// Stats aggregates the outcome of one download run.
type Stats struct {
	Total       int
	Succeeded   int
	Failed      int
	TotalBytes  int64
	Elapsed     time.Duration
	ByExtension map[string]int
}

func newStats() *Stats {
	return &Stats{ByExtension: make(map[string]int)}
}

// AverageSpeed returns the mean throughput in bytes per second, 0
// when no time elapsed.
func (s *Stats) AverageSpeed() float64 {
	secs := s.Elapsed.Seconds()
	if secs == 0 {
		return 0
	}
	return float64(s.TotalBytes) / secs
}

// ExtensionCount is one row of the per-extension breakdown.
type ExtensionCount struct {
	Extension string
	Count     int
}

// ExtensionsByCount returns the per-extension counts sorted by count
// descending, ties broken alphabetically.
func (s *Stats) ExtensionsByCount() []ExtensionCount {
	out := make([]ExtensionCount, 0, len(s.ByExtension))
	for ext, count := range s.ByExtension {
		out = append(out, ExtensionCount{Extension: ext, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Extension < out[j].Extension
	})
	return out
}
