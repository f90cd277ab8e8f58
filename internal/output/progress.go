package output

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// CompletionSource reports how many units of the current run have finished.
type CompletionSource interface {
	Completed() int64
	Total() int64
}

// ProgressReporter displays real-time progress updates.
type ProgressReporter struct {
	source   CompletionSource
	label    string
	ticker   *time.Ticker
	done     chan struct{}
	finished chan struct{}
	writer   io.Writer
	active   int32
	start    time.Time
}

// NewProgressReporter creates a progress reporter that updates at the given interval.
func NewProgressReporter(source CompletionSource, label string, interval time.Duration, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &ProgressReporter{
		source:   source,
		label:    label,
		ticker:   time.NewTicker(interval),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
		writer:   writer,
		start:    time.Now(),
	}
}

// Start begins displaying progress updates in a background goroutine.
func (p *ProgressReporter) Start() {
	if !atomic.CompareAndSwapInt32(&p.active, 0, 1) {
		return // already running
	}
	go p.run()
}

// Stop halts progress updates and clears the progress line.
func (p *ProgressReporter) Stop() {
	if atomic.CompareAndSwapInt32(&p.active, 1, 0) {
		close(p.done)
		p.ticker.Stop()
		<-p.finished
		fmt.Fprint(p.writer, "\r\033[K")
	}
}

func (p *ProgressReporter) run() {
	defer close(p.finished)
	for {
		select {
		case <-p.ticker.C:
			fmt.Fprint(p.writer, p.line())
		case <-p.done:
			return
		}
	}
}

func (p *ProgressReporter) line() string {
	completed := p.source.Completed()
	total := p.source.Total()
	pct := 0.0
	if total > 0 {
		pct = float64(completed) / float64(total) * 100
	}
	return fmt.Sprintf("\r%s: %d/%d (%.0f%%) | %s",
		p.label, completed, total, pct, time.Since(p.start).Truncate(time.Millisecond))
}
