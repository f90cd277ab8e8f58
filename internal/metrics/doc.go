// Package metrics records the elapsed time of each strategy run.
//
// One [Stats] value is kept per strategy: the number of calculations and a
// single elapsed duration, exposed both as a [time.Duration] and as
// nanosecond/second fields for serialization. No further statistics are
// derived from the timings.
//
//	collector := metrics.NewCollector()
//	stats := collector.Record("pooled", res.Calculations(), res.Duration)
//
// [Report] bundles the per-strategy stats of one invocation with its run ID
// and is what the output package renders.
package metrics
