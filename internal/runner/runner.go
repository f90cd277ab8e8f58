package runner

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/panics"

	"github.com/torosent/arraycompare/internal/sample"
)

// Strategy names as they appear in reports.
const (
	NameSequential    = "sequential"
	NameThreadPerItem = "thread-per-item"
	NamePooled        = "pooled"
)

// Result captures one strategy run.
type Result struct {
	Strategy   string
	Deviations []float64
	Duration   time.Duration
}

// Calculations returns the number of deviations produced.
func (r Result) Calculations() int { return len(r.Deviations) }

// Strategy evaluates the deviation of every sample under one scheduling model.
type Strategy interface {
	Name() string
	Run(ctx context.Context, set sample.Set) (Result, error)
}

// Strategies returns the three strategies in the order the harness runs them.
func Strategies(opt Options) []Strategy {
	return []Strategy{
		NewSequential(opt),
		NewThreadPerItem(opt),
		NewPooled(opt),
	}
}

// evaluate runs one unit of work and converts a panic into a UnitError.
func evaluate(strategy string, idx int, opt Options, value float64, shared []float64) (float64, error) {
	var dev float64
	if r := panics.Try(func() { dev = opt.Metric(value, shared) }); r != nil {
		return 0, &UnitError{Strategy: strategy, Index: idx, Err: r.AsError()}
	}
	opt.Progress.done()
	return dev, nil
}
