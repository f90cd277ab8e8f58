package runner

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/torosent/arraycompare/internal/sample"
)

// Pooled submits one task per sample to a pool of Options.Workers goroutines.
// Workers are reused across tasks; no task suspends once it starts.
type Pooled struct {
	opt Options
}

func NewPooled(opt Options) *Pooled {
	opt.normalize()
	return &Pooled{opt: opt}
}

func (p *Pooled) Name() string { return NamePooled }

// Workers returns the pool bound.
func (p *Pooled) Workers() int { return p.opt.Workers }

// Run returns deviations in completion order, which may differ from sample order.
// There is no timeout: a task that never returns blocks the run.
func (p *Pooled) Run(_ context.Context, set sample.Set) (Result, error) {
	p.opt.Progress.Reset(set.Len())

	start := time.Now()
	shared := set.Values()
	tasks := pool.NewWithResults[float64]().
		WithErrors().
		WithMaxGoroutines(p.opt.Workers)
	for i, value := range shared {
		tasks.Go(func() (float64, error) {
			return evaluate(p.Name(), i, p.opt, value, shared)
		})
	}
	results, err := tasks.Wait()
	elapsed := time.Since(start)
	if err != nil {
		return Result{}, err
	}

	if err := checkComplete(p.Name(), len(shared), len(results)); err != nil {
		return Result{}, err
	}
	if results == nil {
		results = []float64{}
	}
	return Result{Strategy: p.Name(), Deviations: results, Duration: elapsed}, nil
}
