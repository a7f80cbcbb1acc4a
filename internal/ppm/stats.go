package ppm

import "sync/atomic"

// Stats is a process-wide set of atomic per-result-code counters,
// reported via the admin HTTP surface's /stats endpoint and logged
// periodically — the Go equivalent of the reference implementation's
// end-of-run result tally (SPEC_FULL.md §4 item 6).
type Stats struct {
	success     int64
	speed       int64
	geoposition int64
	parseErr    int64
	missing     int64
	other       int64
}

// Record increments the counter for r.
func (s *Stats) Record(r Result) {
	switch r {
	case Success:
		atomic.AddInt64(&s.success, 1)
	case Speed:
		atomic.AddInt64(&s.speed, 1)
	case Geoposition:
		atomic.AddInt64(&s.geoposition, 1)
	case Parse:
		atomic.AddInt64(&s.parseErr, 1)
	case Missing:
		atomic.AddInt64(&s.missing, 1)
	case Other:
		atomic.AddInt64(&s.other, 1)
	}
}

// Snapshot returns a point-in-time copy of every counter, keyed by
// result name, for JSON serialization on /stats.
func (s *Stats) Snapshot() map[string]int64 {
	return map[string]int64{
		"Success":     atomic.LoadInt64(&s.success),
		"Speed":       atomic.LoadInt64(&s.speed),
		"Geoposition": atomic.LoadInt64(&s.geoposition),
		"Parse":       atomic.LoadInt64(&s.parseErr),
		"Missing":     atomic.LoadInt64(&s.missing),
		"Other":       atomic.LoadInt64(&s.other),
	}
}

// Total returns the sum of every counter.
func (s *Stats) Total() int64 {
	snap := s.Snapshot()
	var total int64
	for _, v := range snap {
		total += v
	}
	return total
}
