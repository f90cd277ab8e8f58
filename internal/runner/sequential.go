package runner

import (
	"context"
	"time"

	"github.com/torosent/arraycompare/internal/sample"
)

// Sequential evaluates every sample in order on the calling goroutine.
type Sequential struct {
	opt Options
}

func NewSequential(opt Options) *Sequential {
	opt.normalize()
	return &Sequential{opt: opt}
}

func (s *Sequential) Name() string { return NameSequential }

// Run returns deviations in sample order. It never suspends.
func (s *Sequential) Run(_ context.Context, set sample.Set) (Result, error) {
	data := set.Values()
	s.opt.Progress.Reset(len(data))

	start := time.Now()
	results := make([]float64, 0, len(data))
	for i, value := range data {
		dev, err := evaluate(s.Name(), i, s.opt, value, data)
		if err != nil {
			return Result{}, err
		}
		results = append(results, dev)
	}
	elapsed := time.Since(start)

	if err := checkComplete(s.Name(), len(data), len(results)); err != nil {
		return Result{}, err
	}
	return Result{Strategy: s.Name(), Deviations: results, Duration: elapsed}, nil
}
