// Package runner owns the background side of the client. A Runner is one
// long-lived goroutine, started once, that creates, replaces and stops
// presence sessions on request from the foreground. The foreground talks to
// it only through commands and reads its progress from an atomically
// published Status or from event subscriptions, so it never blocks on the
// network.
package runner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/chattypatty/internal/client/models"
	"github.com/dmitrijs2005/chattypatty/internal/client/presence"
	"github.com/dmitrijs2005/chattypatty/internal/logging"
)

var ErrClosed = errors.New("runner closed")

// Status is a point-in-time view of the current session.
type Status struct {
	SessionID string
	State     presence.State
	Reason    presence.Reason
	Online    presence.OnlineSet
}

type LookupResult struct {
	Username string
	Address  string
	Err      error
}

type EventType string

const (
	EventState  EventType = "state"
	EventOnline EventType = "online"
	EventLookup EventType = "lookup"
)

type Event struct {
	Type      EventType
	SessionID string
	State     presence.State
	Reason    presence.Reason
	Online    presence.OnlineSet
	Lookup    *LookupResult
}

// session is the part of *presence.Session the runner drives.
type session interface {
	ID() string
	Lookup(ctx context.Context, username string, timeout time.Duration) (string, error)
	Stop()
}

type connectFunc func(ctx context.Context, cfg presence.Config, p models.Profile, deps presence.Deps) session

func presenceConnect(ctx context.Context, cfg presence.Config, p models.Profile, deps presence.Deps) session {
	return presence.Connect(ctx, cfg, p, deps)
}

type connectCmd struct{ profile models.Profile }
type stopCmd struct{ ack chan struct{} }
type lookupCmd struct {
	username string
	reply    chan LookupResult
}

type Runner struct {
	cfg     presence.Config
	dir     presence.Directory
	log     logging.Logger
	connect connectFunc

	ctx    context.Context
	cancel context.CancelFunc

	cmds    chan any
	stopped chan struct{}

	startOnce sync.Once
	closeOnce sync.Once

	statusMu sync.Mutex
	status   atomic.Pointer[Status]

	subMu     sync.Mutex
	listeners []chan Event
	closed    bool
}

func New(cfg presence.Config, dir presence.Directory, log logging.Logger) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{
		cfg:     cfg,
		dir:     dir,
		log:     log.With("component", "runner"),
		connect: presenceConnect,
		ctx:     ctx,
		cancel:  cancel,
		cmds:    make(chan any, 16),
		stopped: make(chan struct{}),
	}
	r.status.Store(&Status{State: presence.Disconnected})
	return r
}

// Start launches the runner goroutine. Calling it again has no effect.
func (r *Runner) Start() {
	r.startOnce.Do(func() { go r.loop() })
}

// Close stops the current session and the runner goroutine and closes all
// subscriptions. The runner cannot be restarted.
func (r *Runner) Close() {
	r.closeOnce.Do(func() {
		r.Start()
		r.cancel()
		<-r.stopped

		r.subMu.Lock()
		for _, ch := range r.listeners {
			close(ch)
		}
		r.listeners = nil
		r.closed = true
		r.subMu.Unlock()
	})
}

func (r *Runner) send(cmd any) error {
	select {
	case <-r.ctx.Done():
		return ErrClosed
	default:
	}
	select {
	case r.cmds <- cmd:
		return nil
	case <-r.ctx.Done():
		return ErrClosed
	}
}

// Connect replaces the current session, if any, with a new one for profile.
// It does not wait for the connection.
func (r *Runner) Connect(p models.Profile) error {
	return r.send(connectCmd{profile: p})
}

// Disconnect stops the current session and waits until it is closed.
func (r *Runner) Disconnect() error {
	ack := make(chan struct{})
	if err := r.send(stopCmd{ack: ack}); err != nil {
		return err
	}
	select {
	case <-ack:
		return nil
	case <-r.stopped:
		return nil
	}
}

// Lookup queues a lookup and returns at once. The result arrives on the
// returned channel and is also published as an EventLookup.
func (r *Runner) Lookup(username string) <-chan LookupResult {
	reply := make(chan LookupResult, 1)
	if err := r.send(lookupCmd{username: username, reply: reply}); err != nil {
		reply <- LookupResult{Username: username, Err: err}
	}
	return reply
}

// Status returns the latest published status.
func (r *Runner) Status() Status {
	return *r.status.Load()
}

func (r *Runner) loop() {
	defer close(r.stopped)

	var cur session
	stop := func() {
		if cur != nil {
			cur.Stop()
			cur = nil
		}
	}

	for {
		select {
		case <-r.ctx.Done():
			stop()
			return

		case cmd := <-r.cmds:
			switch c := cmd.(type) {
			case connectCmd:
				stop()
				r.log.Info(r.ctx, "connecting", "server", r.cfg.ServerURL, "user", c.profile.Username)
				cur = r.connect(r.ctx, r.cfg, c.profile, presence.Deps{
					Directory: r.dir,
					Observer:  r,
					Logger:    r.log,
				})

			case stopCmd:
				stop()
				close(c.ack)

			case lookupCmd:
				if cur == nil {
					r.deliver(c.reply, "", LookupResult{Username: c.username, Err: presence.ErrNotConnected})
					continue
				}
				s := cur
				go func() {
					// Stopping s resolves the lookup with presence.ErrCancelled.
					addr, err := s.Lookup(context.Background(), c.username, r.cfg.LookupTimeout)
					r.deliver(c.reply, s.ID(), LookupResult{Username: c.username, Address: addr, Err: err})
				}()
			}
		}
	}
}

func (r *Runner) deliver(reply chan LookupResult, sessionID string, res LookupResult) {
	reply <- res
	r.publish(Event{Type: EventLookup, SessionID: sessionID, Lookup: &res})
}

// StateChanged implements presence.Observer.
func (r *Runner) StateChanged(id string, st presence.State, reason presence.Reason) {
	r.statusMu.Lock()
	next := *r.status.Load()
	if next.SessionID != id {
		next.Online = nil
	}
	next.SessionID, next.State, next.Reason = id, st, reason
	if st == presence.Closed {
		next.Online = nil
	}
	r.status.Store(&next)
	r.statusMu.Unlock()

	r.publish(Event{Type: EventState, SessionID: id, State: st, Reason: reason})
}

// OnlineChanged implements presence.Observer.
func (r *Runner) OnlineChanged(id string, online presence.OnlineSet) {
	r.statusMu.Lock()
	next := *r.status.Load()
	next.SessionID = id
	next.Online = online
	r.status.Store(&next)
	r.statusMu.Unlock()

	r.publish(Event{Type: EventOnline, SessionID: id, Online: online})
}
