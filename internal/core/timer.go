package core

import (
	"context"
	"time"
)

// FixedStep paces generation ticks at a steady ticks-per-second rate. A zero
// rate disables pacing.
type FixedStep struct {
	step time.Duration
	next time.Time
	now  func() time.Time
}

// NewFixedStep constructs a FixedStep controller targeting the given TPS.
// Non-positive rates return an unpaced controller.
func NewFixedStep(tps int) *FixedStep {
	fs := &FixedStep{now: time.Now}
	fs.SetTPS(tps)
	return fs
}

// SetTPS changes the tick rate.
func (f *FixedStep) SetTPS(tps int) {
	if tps <= 0 {
		f.step = 0
		return
	}
	f.step = time.Second / time.Duration(tps)
}

// Paced reports whether ticks are rate limited.
func (f *FixedStep) Paced() bool { return f.step > 0 }

// Delay returns how long to wait before the next tick may start and reserves
// that slot. Late ticks are not made up: the schedule restarts from now.
func (f *FixedStep) Delay() time.Duration {
	if f.step == 0 {
		return 0
	}
	now := f.now()
	if f.next.IsZero() || f.next.Before(now) {
		f.next = now.Add(f.step)
		return 0
	}
	d := f.next.Sub(now)
	f.next = f.next.Add(f.step)
	return d
}

// Wait blocks until the next tick slot or until ctx is done.
func (f *FixedStep) Wait(ctx context.Context) error {
	d := f.Delay()
	if d <= 0 {
		return ctx.Err()
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
