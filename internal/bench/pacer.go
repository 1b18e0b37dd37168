package bench

import (
	"context"
	"sync"
	"time"
)

// Pacer spaces call starts so that they follow a fixed rate.
//
// Pacer keeps a virtual drip time that advances by 1/rate per call. Next
// returns when the next call should start; a time in the past means the
// caller is behind schedule and should start immediately. Accumulated slack
// is capped at one call so a slow run never bursts.
//
// Pacer is safe for concurrent use.
type Pacer struct {
	rate        float64
	lastDrip    time.Time
	accumulated float64
	mu          sync.Mutex

	now func() time.Time
}

// NewPacer creates a pacer for rate calls per second. A non-positive rate
// is treated as one call per second. The first slot starts immediately.
func NewPacer(rate float64) *Pacer {
	if rate <= 0 {
		rate = 1.0
	}
	return &Pacer{rate: rate, lastDrip: time.Now(), accumulated: 1.0, now: time.Now}
}

// Rate returns the target rate in calls per second.
func (p *Pacer) Rate() float64 {
	return p.rate
}

// Next reserves the next slot and returns its start time.
func (p *Pacer) Next() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	elapsed := now.Sub(p.lastDrip).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}

	p.accumulated += elapsed * p.rate
	if p.accumulated > 1.0 {
		p.accumulated = 1.0
	}

	if p.accumulated >= 1.0 {
		p.accumulated -= 1.0
		p.lastDrip = now
		return now
	}

	// slots already handed out lie ahead of now
	base := now
	if p.lastDrip.After(now) {
		base = p.lastDrip
	}

	deficit := 1.0 - p.accumulated
	next := base.Add(time.Duration(deficit / p.rate * float64(time.Second)))
	p.accumulated = 0
	// lastDrip moves to the reserved slot so waking at next does not
	// count the same interval twice.
	p.lastDrip = next
	return next
}

// Wait blocks until the next slot or until ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	wait := time.Until(p.Next())
	if wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
