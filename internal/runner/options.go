package runner

import (
	"runtime"

	"golang.org/x/time/rate"

	"github.com/torosent/arraycompare/internal/deviation"
)

// Options configure the strategies.
type Options struct {
	Workers        int                         // pooled strategy bound (0 means GOMAXPROCS)
	SpawnRate      int                         // thread-per-item units started per second (0 means unlimited)
	Unpinned       bool                        // run thread-per-item units as plain goroutines
	Metric         deviation.Func              // per-element workload (nil means deviation.Max)
	Progress       *Progress                   // optional completion counter
	LimiterFactory func(rps int) *rate.Limiter // optional injection for tests
}

func (o *Options) normalize() {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.SpawnRate < 0 {
		o.SpawnRate = 0
	}
	if o.Metric == nil {
		o.Metric = deviation.Max
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			if rps <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			return rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}
