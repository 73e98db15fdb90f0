package anim

import (
	"context"
	"math"
	"sync"
	"time"
)

// WaitFunc suspends for d or until ctx is cancelled. Real runs sleep;
// tests and deterministic exports substitute their own clock.
type WaitFunc func(ctx context.Context, d time.Duration) error

func realWait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		// Still yield once so cancellation is observable between steps.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Animator drives frame-stepped animations on a single goroutine. All
// suspension points go through the wait function, so one replay run never
// overlaps another animation tick. Completed waits advance an internal
// animation clock; timers scheduled with After fire off that clock, not the
// wall clock, so substituting the wait function rebases every lifetime in
// the run, overlay timeouts included.
type Animator struct {
	fps  int
	wait WaitFunc

	mu      sync.Mutex
	now     time.Duration
	seq     int
	pending []scheduled
}

type scheduled struct {
	id int
	at time.Duration
	fn func()
}

// New returns a real-time animator ticking at the given FPS.
func New(fps int) *Animator {
	if fps <= 0 {
		fps = 30
	}
	return &Animator{fps: fps, wait: realWait}
}

// Instant returns an animator that never sleeps: every Run collapses to its
// frame sequence without wall-clock delay. Used by tests and frame export.
func Instant(fps int) *Animator {
	a := New(fps)
	a.wait = func(ctx context.Context, d time.Duration) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}
	return a
}

// WithWait substitutes the wait function, keeping the frame math.
func WithWait(fps int, wait WaitFunc) *Animator {
	a := New(fps)
	if wait != nil {
		a.wait = wait
	}
	return a
}

func (a *Animator) FPS() int { return a.fps }

// Wait suspends for d (inter-element delays, "none" transitions which must
// still consume their duration to keep timing consistent across modes) and
// advances the animation clock on success.
func (a *Animator) Wait(ctx context.Context, d time.Duration) error {
	if err := a.wait(ctx, d); err != nil {
		return err
	}
	a.advance(d)
	return nil
}

// After schedules fn to run once the animation clock has advanced by d.
// Due callbacks fire inline on the animating goroutine, between waits.
// The returned function cancels the timer if it has not fired yet.
func (a *Animator) After(d time.Duration, fn func()) func() {
	a.mu.Lock()
	a.seq++
	id := a.seq
	a.pending = append(a.pending, scheduled{id: id, at: a.now + d, fn: fn})
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		for i := range a.pending {
			if a.pending[i].id == id {
				a.pending = append(a.pending[:i], a.pending[i+1:]...)
				return
			}
		}
	}
}

func (a *Animator) advance(d time.Duration) {
	a.mu.Lock()
	a.now += d
	var due []func()
	rest := a.pending[:0]
	for _, s := range a.pending {
		if s.at <= a.now {
			due = append(due, s.fn)
		} else {
			rest = append(rest, s)
		}
	}
	a.pending = rest
	a.mu.Unlock()

	for _, fn := range due {
		fn()
	}
}

// Run steps fn from 0 to 1 over the duration with the given easing, one call
// per frame, always ending on exactly 1.0. Cancellation surfaces as ctx.Err();
// the caller decides whether to force-complete the visual state.
func (a *Animator) Run(ctx context.Context, duration time.Duration, ease Easing, fn func(t float64)) error {
	if ease == nil {
		ease = Linear
	}

	frames := int(math.Round(duration.Seconds() * float64(a.fps)))
	if frames < 1 {
		frames = 1
	}
	interval := duration / time.Duration(frames)

	for i := 1; i <= frames; i++ {
		if err := a.Wait(ctx, interval); err != nil {
			return err
		}
		fn(ease(float64(i) / float64(frames)))
	}
	return nil
}
