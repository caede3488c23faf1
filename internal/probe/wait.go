package probe

import (
	"context"
	"time"
)

// Condition is evaluated repeatedly by Waiter.Until.
type Condition func(ctx context.Context) (bool, error)

// Waiter pauses the reconciliation between observing and acting.
type Waiter interface {
	// Sleep pauses for d or until ctx is done.
	Sleep(ctx context.Context, d time.Duration) error

	// Until evaluates cond until it holds or timeout elapses. It reports whether the
	// condition was met; a condition error stops the wait immediately.
	Until(ctx context.Context, timeout time.Duration, cond Condition) (bool, error)
}

// Poller is the production Waiter.
type Poller struct {
	Interval time.Duration
}

// NewPoller returns a Poller checking every interval.
func NewPoller(interval time.Duration) Poller {
	return Poller{Interval: interval}
}

// Sleep implements Waiter.
func (Poller) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Until implements Waiter. The condition is always evaluated at least once and
// once more after the deadline, so a state reached during the last interval is seen.
func (p Poller) Until(ctx context.Context, timeout time.Duration, cond Condition) (bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		ok, err := cond(ctx)
		if err != nil || ok {
			return ok, err
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false, nil
		}
		step := p.Interval
		if step > remaining {
			step = remaining
		}
		if err := p.Sleep(ctx, step); err != nil {
			return false, err
		}
	}
}
