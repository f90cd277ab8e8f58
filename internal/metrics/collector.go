package metrics

import (
	"slices"
	"sync"
	"time"
)

// Stats is the timing of one strategy run.
type Stats struct {
	Strategy     string        `json:"strategy" yaml:"strategy"`
	Calculations int           `json:"calculations" yaml:"calculations"`
	Duration     time.Duration `json:"-" yaml:"-"`

	// Serialization-friendly duration fields.
	DurationNs      int64   `json:"duration_ns" yaml:"duration_ns"`
	DurationSeconds float64 `json:"duration_seconds" yaml:"duration_seconds"`
}

// NewStats builds Stats for a run of the named strategy.
func NewStats(strategy string, calculations int, elapsed time.Duration) Stats {
	if elapsed < 0 {
		elapsed = 0
	}
	return Stats{
		Strategy:        strategy,
		Calculations:    calculations,
		Duration:        elapsed,
		DurationNs:      elapsed.Nanoseconds(),
		DurationSeconds: elapsed.Seconds(),
	}
}

// Report is the artifact of one harness invocation.
type Report struct {
	RunID       string    `json:"run_id" yaml:"run_id"`
	Samples     int       `json:"samples" yaml:"samples"`
	Workers     int       `json:"workers" yaml:"workers"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Verified    bool      `json:"verified" yaml:"verified"`
	Strategies  []Stats   `json:"strategies" yaml:"strategies"`
}

// Collector records strategy timings in a thread-safe manner.
type Collector struct {
	mu    sync.Mutex
	stats []Stats
}

func NewCollector() *Collector {
	return &Collector{}
}

// Record stores the timing of one run and returns it.
func (c *Collector) Record(strategy string, calculations int, elapsed time.Duration) Stats {
	s := NewStats(strategy, calculations, elapsed)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = append(c.stats, s)
	return s
}

// Stats returns the recorded timings in recording order.
func (c *Collector) Stats() []Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.stats)
}

// Lookup returns the timing recorded for strategy.
func (c *Collector) Lookup(strategy string) (Stats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.stats {
		if s.Strategy == strategy {
			return s, true
		}
	}
	return Stats{}, false
}
