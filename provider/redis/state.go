package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	pr "github.com/unkn0wn-root/cachekit/provider"
)

// State is the connection state of a Redis provider.
type State int32

const (
	StateConnecting State = iota
	StateConnected
	StateDisconnected
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// State returns the current connection state.
func (p *Redis) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Ready blocks until the provider is connected. It returns ErrClosed once the
// provider is closed, and ctx.Err() joined with the last connection error when
// ctx ends first.
func (p *Redis) Ready(ctx context.Context) error {
	for {
		p.mu.Lock()
		st, ready := p.state, p.ready
		p.mu.Unlock()

		switch st {
		case StateConnected:
			return nil
		case StateClosed:
			return pr.ErrClosed
		}

		select {
		case <-ready:
			// re-check: the connection may have dropped again already
		case <-p.ctx.Done():
			return pr.ErrClosed
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ctx.Err(), p.notConnected())
		}
	}
}

// guard is the fail-fast gate in front of every command.
func (p *Redis) guard() error {
	p.mu.Lock()
	st := p.state
	p.mu.Unlock()
	switch st {
	case StateConnected:
		return nil
	case StateClosed:
		return pr.ErrClosed
	default:
		return p.notConnected()
	}
}

func (p *Redis) notConnected() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return &pr.ConnError{Provider: p.name, State: p.state.String(), Err: p.lastErr}
}

func (p *Redis) markUp() {
	p.mu.Lock()
	if p.state == StateConnected || p.state == StateClosed {
		p.mu.Unlock()
		return
	}
	p.state = StateConnected
	p.lastErr = nil
	close(p.ready)
	p.mu.Unlock()

	p.events.Connected(p.name)
}

// markDown reports whether the provider was connected before the failure.
func (p *Redis) markDown(err error) bool {
	p.mu.Lock()
	if p.state == StateClosed {
		p.mu.Unlock()
		return false
	}
	wasUp := p.state == StateConnected
	if wasUp {
		p.ready = make(chan struct{})
	}
	p.state = StateDisconnected
	p.lastErr = err
	p.mu.Unlock()

	p.events.ConnectionError(p.name, err)
	return wasUp
}

// wake cuts the monitor's healthy wait short.
func (p *Redis) wake() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// monitor pings right away, then every healthInterval while healthy and on an
// exponential backoff (capped at healthInterval) while not. A command that
// loses the connection wakes it so the backoff starts at retryInitial.
func (p *Redis) monitor() {
	defer p.wg.Done()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.retryInitial
	b.MaxInterval = p.healthInterval

	var wait time.Duration
	for {
		t := time.NewTimer(wait)
		select {
		case <-p.ctx.Done():
			t.Stop()
			return
		case <-p.kick:
			t.Stop()
			wait = b.NextBackOff()
			continue
		case <-t.C:
		}

		if err := p.ping(); err != nil {
			if p.ctx.Err() != nil {
				return
			}
			p.markDown(err)
			wait = b.NextBackOff()
			continue
		}
		p.markUp()
		b.Reset()
		wait = p.healthInterval
	}
}

func (p *Redis) ping() error {
	ctx, cancel := context.WithTimeout(p.ctx, p.pingTimeout)
	defer cancel()
	return p.rdb.Ping(ctx).Err()
}
