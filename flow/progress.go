package flow

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Progress counts traces through a streaming pass and logs the count
// at most once per interval, so a million-trace spool does not flood
// the log. Done always logs the final total.
type Progress struct {
	log   *Logger
	label string
	lim   *rate.Limiter
	count atomic.Int64
}

// NewProgress returns a meter logging under the given label. A zero
// interval logs every two seconds.
func NewProgress(log *Logger, label string, interval time.Duration) *Progress {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Progress{
		log:   log,
		label: label,
		lim:   rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Add counts n more traces and maybe logs.
func (p *Progress) Add(ctx context.Context, n int) {
	total := p.count.Add(int64(n))
	if p.lim.Allow() {
		p.log.InfoContext(ctx, p.label, "traces", total)
	}
}

// Count returns the running total.
func (p *Progress) Count() int {
	return int(p.count.Load())
}

// Done logs the final total.
func (p *Progress) Done(ctx context.Context) {
	p.log.InfoContext(ctx, p.label+" done", "traces", p.count.Load())
}
