// Package runner provides the execution strategies benchmarked by arraycompare.
//
// Every strategy computes, for each sample, the maximum absolute deviation
// from the whole sample set, and measures the elapsed wall-clock time of
// doing so. The strategies differ only in how the per-sample units are
// scheduled:
//   - [Sequential]: one goroutine, samples evaluated in order
//   - [ThreadPerItem]: one OS-thread-pinned goroutine per sample, joined at the end
//   - [Pooled]: one task per sample on a pool bounded by [Options.Workers]
//
// # Basic Usage
//
//	set := sample.Generate(1000)
//	for _, s := range runner.Strategies(runner.Options{}) {
//		res, err := s.Run(ctx, set)
//		if err != nil {
//			return err
//		}
//		fmt.Println(s.Name(), res.Calculations(), res.Duration)
//	}
//
// # Shared Data
//
// Concurrent strategies take one private copy of the sample set per run and
// share it read-only between all units of that run. Units never write to
// shared state other than their own result slot.
//
// # Error Handling
//
// A unit that panics is reported as a [*UnitError]. A run whose result
// count differs from the sample count is reported as an [*InvariantError].
// There are no retries and no partial results.
package runner
