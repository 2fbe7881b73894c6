// Package anim drives the short interpolated transitions of the player
// surface: snap-backs, exit slides and the details panel reveal.
package anim

import (
	"sync"
	"time"
)

// DefaultFrameInterval approximates 30 frames per second, plenty for a terminal.
const DefaultFrameInterval = 33 * time.Millisecond

// Animator runs at most one transition at a time. Starting a new transition
// first jumps the active one straight to its target, so callbacks observe a
// consistent final state before the next transition begins.
type Animator struct {
	mu       sync.Mutex
	interval time.Duration
	gen      uint64

	cancel     chan struct{}
	target     float64
	onFrame    func(float64)
	onComplete func()
}

// New returns an animator emitting frames at the default interval.
func New() *Animator {
	return NewWithInterval(DefaultFrameInterval)
}

// NewWithInterval returns an animator with an explicit frame interval.
// Tests use a short interval to keep transitions fast.
func NewWithInterval(interval time.Duration) *Animator {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Animator{interval: interval}
}

// Animate interpolates from one value to another over the given duration,
// invoking onFrame per step and onComplete once the target is reached.
// Callbacks run on the animator's goroutine and must not block.
func (a *Animator) Animate(from, to float64, duration time.Duration, onFrame func(float64), onComplete func()) {
	a.mu.Lock()
	a.finishLocked()

	if duration <= 0 {
		a.mu.Unlock()
		if onFrame != nil {
			onFrame(to)
		}
		if onComplete != nil {
			onComplete()
		}
		return
	}

	a.gen++
	gen := a.gen
	cancel := make(chan struct{})
	a.cancel = cancel
	a.target = to
	a.onFrame = onFrame
	a.onComplete = onComplete
	a.mu.Unlock()

	go a.run(gen, cancel, from, to, duration, onFrame, onComplete)
}

// Stop jumps the active transition to its target and releases its goroutine.
func (a *Animator) Stop() {
	a.mu.Lock()
	a.finishLocked()
	a.mu.Unlock()
}

// finishLocked completes the active transition at its target value.
func (a *Animator) finishLocked() {
	if a.cancel == nil {
		return
	}
	close(a.cancel)
	a.cancel = nil
	a.gen++

	if a.onFrame != nil {
		a.onFrame(a.target)
	}
	if a.onComplete != nil {
		a.onComplete()
	}
	a.onFrame = nil
	a.onComplete = nil
}

func (a *Animator) run(gen uint64, cancel chan struct{}, from, to float64, duration time.Duration, onFrame func(float64), onComplete func()) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-cancel:
			return
		case now := <-ticker.C:
			progress := float64(now.Sub(start)) / float64(duration)
			if progress >= 1 {
				a.mu.Lock()
				if gen != a.gen {
					a.mu.Unlock()
					return
				}
				a.cancel = nil
				a.gen++
				a.onFrame = nil
				a.onComplete = nil
				a.mu.Unlock()

				if onFrame != nil {
					onFrame(to)
				}
				if onComplete != nil {
					onComplete()
				}
				return
			}

			value := from + (to-from)*easeOutCubic(progress)
			a.mu.Lock()
			stale := gen != a.gen
			a.mu.Unlock()
			if stale {
				return
			}
			if onFrame != nil {
				onFrame(value)
			}
		}
	}
}

func easeOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}
