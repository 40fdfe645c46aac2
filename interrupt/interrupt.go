// Package interrupt provides cooperative cancellation for long-running fits:
// an atomic token polled at safe points between tree builds, and a
// process-wide guard that ties the token to the OS interrupt signal.
//
// Only one guard may be armed at a time. Nested or concurrent attempts to arm
// return an inactive guard that leaves the previous handler in control, and
// every exit path must release the guard so the previous signal disposition
// comes back.
package interrupt

import (
	"os"
	"os/signal"
	"sync/atomic"

	isoErrors "github.com/ezoic/isoforest/pkg/errors"
)

// Token is a cancellation flag shared between a fitting loop and whatever
// sets it: a signal guard or a caller-driven cancel. Safe for concurrent use.
//
// The zero value is ready to use and not interrupted.
type Token struct {
	flag atomic.Bool
}

// Set marks the token interrupted.
func (t *Token) Set() { t.flag.Store(true) }

// Clear resets the token.
func (t *Token) Clear() { t.flag.Store(false) }

// Interrupted reports whether the token has been set.
func (t *Token) Interrupted() bool { return t.flag.Load() }

// Check returns ErrInterrupted when the token has been set, nil otherwise.
// Fitting loops call this between tree builds, never mid-partition, so
// completed trees are always left intact.
func (t *Token) Check() error {
	if t.flag.Load() {
		return isoErrors.ErrInterrupted
	}
	return nil
}

// handlerArmed is the process-wide ownership flag: true while some guard is
// actively relaying the interrupt signal.
var handlerArmed atomic.Bool

// SignalGuard relays os.Interrupt into a Token for its lifetime. Obtain one
// with Arm and release it on every exit path:
//
//	guard := interrupt.Arm(token)
//	defer guard.Release()
type SignalGuard struct {
	token  *Token
	ch     chan os.Signal
	done   chan struct{}
	active bool
}

// Arm installs the interrupt relay for token and returns the owning guard.
// If another guard is already armed anywhere in the process, the returned
// guard is inactive and all its methods are no-ops.
func Arm(token *Token) *SignalGuard {
	g := &SignalGuard{token: token}
	if !handlerArmed.CompareAndSwap(false, true) {
		return g
	}
	g.active = true
	token.Clear()
	g.ch = make(chan os.Signal, 1)
	g.done = make(chan struct{})
	signal.Notify(g.ch, os.Interrupt)
	go func() {
		defer close(g.done)
		for range g.ch {
			token.Set()
		}
	}()
	return g
}

// Active reports whether this guard owns the relay.
func (g *SignalGuard) Active() bool { return g.active }

// Release restores the previous signal disposition and gives up ownership.
// Idempotent, and a no-op on inactive guards.
func (g *SignalGuard) Release() {
	if !g.active {
		return
	}
	g.active = false
	signal.Stop(g.ch)
	close(g.ch)
	<-g.done
	handlerArmed.Store(false)
}

// Check polls the token and, on a hit, releases the guard before reporting
// ErrInterrupted, so the previous handler is back in control by the time the
// caller unwinds.
func (g *SignalGuard) Check() error {
	if err := g.token.Check(); err != nil {
		g.Release()
		return err
	}
	return nil
}
