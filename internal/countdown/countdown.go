// Package countdown provides the remaining-time computation that drives
// auction close transitions in the UI.
package countdown

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Remaining is the displayable time left until a target instant. Display
// units are clamped to zero at the boundary; Expired is the authoritative
// flag for the closed state, not the clamped units.
type Remaining struct {
	Hours   int
	Minutes int
	Seconds int
	Expired bool
}

// Until computes the remaining time from now to the target instant. A target
// at or before now reports Expired with all units zero.
func Until(target, now time.Time) Remaining {
	left := target.Sub(now)
	r := Remaining{Expired: left <= 0}
	if left < 0 {
		left = 0
	}
	r.Hours = int(left / time.Hour)
	r.Minutes = int(left/time.Minute) % 60
	r.Seconds = int(left/time.Second) % 60
	return r
}

// Ticker recomputes Remaining on a one-second cadence against an injected
// clock. In production use clockwork.NewRealClock(); tests use a FakeClock.
type Ticker struct {
	clock clockwork.Clock
}

// NewTicker creates a Ticker backed by the given clock.
func NewTicker(clock clockwork.Clock) *Ticker {
	return &Ticker{clock: clock}
}

// Watch delivers one Remaining immediately and then one per second until the
// context is cancelled. A target already in the past reports Expired on the
// very first delivery. The channel is closed and the underlying timer
// released when the context ends.
func (t *Ticker) Watch(ctx context.Context, target time.Time) <-chan Remaining {
	out := make(chan Remaining, 1)
	out <- Until(target, t.clock.Now())

	go func() {
		defer close(out)
		ticker := t.clock.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				select {
				case out <- Until(target, t.clock.Now()):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
