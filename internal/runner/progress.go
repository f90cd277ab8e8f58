package runner

import "sync/atomic"

// Progress counts completed units for the strategy currently running.
// All methods are safe on a nil receiver.
type Progress struct {
	completed atomic.Int64
	total     atomic.Int64
}

// Reset zeroes the counter and records the expected total.
func (p *Progress) Reset(total int) {
	if p == nil {
		return
	}
	p.completed.Store(0)
	p.total.Store(int64(total))
}

// Completed returns the number of finished units.
func (p *Progress) Completed() int64 {
	if p == nil {
		return 0
	}
	return p.completed.Load()
}

// Total returns the number of units expected by the current run.
func (p *Progress) Total() int64 {
	if p == nil {
		return 0
	}
	return p.total.Load()
}

func (p *Progress) done() {
	if p == nil {
		return
	}
	p.completed.Add(1)
}
