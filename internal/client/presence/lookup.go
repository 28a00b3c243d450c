package presence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/chattypatty/internal/client/protocol"
	"github.com/dmitrijs2005/chattypatty/internal/common"
)

// Lookup asks the server for the address of username.
//
// It returns ErrTimeout when no answer arrives within timeout (zero means
// the configured LookupTimeout) and common.ErrNotFound when the server
// answers without an address. A lookup issued before the session is
// Listening waits for it within the same timeout. Concurrent lookups of the
// same username share one request and one outcome; each caller still gives
// up after its own timeout.
func (s *Session) Lookup(ctx context.Context, username string, timeout time.Duration) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", common.ErrInvalidUsername
	}
	if timeout <= 0 {
		timeout = s.cfg.LookupTimeout
	}

	ch := s.lookups.DoChan(username, func() (any, error) {
		return s.lookup(username, timeout)
	})

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		if r.Err != nil {
			return "", r.Err
		}
		return r.Val.(string), nil
	case <-timer.C:
		return "", ErrTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Session) lookup(username string, timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-s.ready:
	case <-s.done:
		return "", s.closedErr()
	case <-timer.C:
		return "", ErrTimeout
	}

	p := &pendingLookup{username: username, ch: make(chan lookupResult, 1)}

	s.mu.Lock()
	if s.state != Listening {
		s.mu.Unlock()
		return "", s.closedErr()
	}
	s.pending = append(s.pending, p)
	s.mu.Unlock()

	frame, err := protocol.GetIP(s.cfg.LookupField, username)
	if err != nil {
		s.dropPending(p)
		return "", err
	}
	if err := s.write(frame); err != nil {
		s.dropPending(p)
		return "", fmt.Errorf("%w: %w", ErrServerUnreachable, err)
	}
	s.log.Debug(s.ctx, "lookup sent", "target", username)

	select {
	case r := <-p.ch:
		return r.addr, r.err
	case <-timer.C:
	}

	if !s.abandon(p) {
		// claimed by a response or by finish; the result is on its way
		r := <-p.ch
		return r.addr, r.err
	}
	return "", ErrTimeout
}

// abandon marks a timed-out lookup so that the response still owed for it
// is consumed without completing a later lookup. It reports false when p
// has already been claimed.
func (s *Session) abandon(p *pendingLookup) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range s.pending {
		if q == p {
			p.abandoned = true
			return true
		}
	}
	return false
}

func (s *Session) closedErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reason == ReasonNone {
		return ErrNotConnected
	}
	return s.reason.Err()
}

func (s *Session) dropPending(p *pendingLookup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, q := range s.pending {
		if q == p {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

// resolveLookup completes the pending lookup an ip_response belongs to: the
// one for the echoed username if present, else the oldest one. Abandoned
// lookups stay queued until their response arrives, so positional matching
// stays aligned with the request order.
func (s *Session) resolveLookup(f protocol.Frame) {
	s.mu.Lock()
	idx := -1
	if f.Username != "" {
		for i, p := range s.pending {
			if p.username == f.Username {
				idx = i
				break
			}
		}
	} else if len(s.pending) > 0 {
		idx = 0
	}
	if idx < 0 {
		s.mu.Unlock()
		s.log.Debug(s.ctx, "unsolicited ip_response", "username", f.Username)
		return
	}
	p := s.pending[idx]
	s.pending = append(s.pending[:idx], s.pending[idx+1:]...)
	late := p.abandoned
	s.mu.Unlock()

	if f.HasIP {
		s.recordAddress(p.username, f.IP)
	}
	if late {
		s.log.Debug(s.ctx, "late ip_response", "username", p.username, "found", f.HasIP)
		return
	}

	if !f.HasIP {
		p.ch <- lookupResult{err: fmt.Errorf("%s: %w", p.username, common.ErrNotFound)}
		return
	}
	p.ch <- lookupResult{addr: f.IP}
}

func (s *Session) recordAddress(username, addr string) {
	if s.dir == nil {
		return
	}
	if err := s.dir.Resolve(s.ctx, username, addr); err != nil {
		s.log.Warn(s.ctx, "record resolved address failed", "username", username, "error", err)
	}
}
