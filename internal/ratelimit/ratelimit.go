package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrBudgetExhausted is returned once a pacer has handed out its whole per-run budget.
var ErrBudgetExhausted = errors.New("request budget exhausted")

// Pacer spaces successive external calls by a fixed interval and optionally
// caps the number of calls per run. The first call never waits. When the caller
// reports completion with Done, the interval is measured from the end of the
// previous call instead of its start.
type Pacer struct {
	mu       sync.Mutex
	name     string
	limiter  *rate.Limiter
	maxCalls int // 0 = unlimited
	used     int
	denied   int
	waited   time.Duration
	log      *slog.Logger
}

// NewPacer creates a pacer. interval <= 0 disables spacing; maxCalls <= 0 disables the budget.
func NewPacer(name string, interval time.Duration, maxCalls int, log *slog.Logger) *Pacer {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pacer{
		name:     name,
		limiter:  rate.NewLimiter(limit, 1),
		maxCalls: maxCalls,
		log:      log,
	}
}

// Wait blocks until the next call may start, then counts it against the budget.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	if p.maxCalls > 0 && p.used >= p.maxCalls {
		p.denied++
		p.mu.Unlock()
		p.log.Warn("rate limit reached", "pacer", p.name, "used", p.used, "limit", p.maxCalls)
		return fmt.Errorf("%s: %w", p.name, ErrBudgetExhausted)
	}
	p.used++
	p.mu.Unlock()

	start := time.Now()
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: wait: %w", p.name, err)
	}

	p.mu.Lock()
	p.waited += time.Since(start)
	p.mu.Unlock()
	return nil
}

// Done marks the end of the call admitted by the last Wait. The next Wait
// then blocks for the full interval counted from now.
func (p *Pacer) Done() {
	now := time.Now()
	// Tokens accrued while the call ran are dropped by shrinking the bucket to
	// zero and growing it back.
	p.limiter.SetBurstAt(now, 0)
	p.limiter.SetBurstAt(now, 1)
}

// Stats is a snapshot of pacer usage.
type Stats struct {
	Name   string        `json:"name"`
	Used   int           `json:"used"`
	Limit  int           `json:"limit"`
	Denied int           `json:"denied"`
	Waited time.Duration `json:"waited_ns"`
}

func (p *Pacer) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Stats{
		Name:   p.name,
		Used:   p.used,
		Limit:  p.maxCalls,
		Denied: p.denied,
		Waited: p.waited,
	}
}
