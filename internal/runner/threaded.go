package runner

import (
	"context"
	"errors"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/torosent/arraycompare/internal/sample"
)

// ThreadPerItem starts one unit of execution per sample.
//
// Unless Options.Unpinned is set, every unit locks its goroutine to an OS
// thread and exits without unlocking, which makes the runtime retire that
// thread. Each sample therefore costs one OS thread, and thread creation is
// part of the measured time.
type ThreadPerItem struct {
	opt Options
}

func NewThreadPerItem(opt Options) *ThreadPerItem {
	opt.normalize()
	return &ThreadPerItem{opt: opt}
}

func (t *ThreadPerItem) Name() string { return NameThreadPerItem }

// Run returns deviations in sample order. Each unit writes only its own slot.
func (t *ThreadPerItem) Run(ctx context.Context, set sample.Set) (Result, error) {
	t.opt.Progress.Reset(set.Len())
	limiter := t.opt.LimiterFactory(t.opt.SpawnRate)

	start := time.Now()
	shared := set.Values()
	results := make([]float64, len(shared))
	written := make([]bool, len(shared))

	var g errgroup.Group
	for i, value := range shared {
		if err := limiter.Wait(ctx); err != nil {
			return Result{}, errors.Join(err, g.Wait())
		}
		g.Go(func() error {
			if !t.opt.Unpinned {
				runtime.LockOSThread()
			}
			dev, err := evaluate(t.Name(), i, t.opt, value, shared)
			if err != nil {
				return err
			}
			results[i] = dev
			written[i] = true
			return nil
		})
	}
	err := g.Wait()
	elapsed := time.Since(start)
	if err != nil {
		return Result{}, err
	}

	got := 0
	for _, ok := range written {
		if ok {
			got++
		}
	}
	if err := checkComplete(t.Name(), len(shared), got); err != nil {
		return Result{}, err
	}
	return Result{Strategy: t.Name(), Deviations: results, Duration: elapsed}, nil
}
