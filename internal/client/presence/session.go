package presence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/chattypatty/internal/client/models"
	"github.com/dmitrijs2005/chattypatty/internal/client/protocol"
	"github.com/dmitrijs2005/chattypatty/internal/logging"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/singleflight"
)

// Directory is the part of the local directory the session writes to.
type Directory interface {
	Merge(ctx context.Context, usernames []string) error
	Resolve(ctx context.Context, username, address string) error
}

// Observer receives session progress. Callbacks run on session goroutines
// and must not block for long or call Stop.
type Observer interface {
	StateChanged(id string, state State, reason Reason)
	OnlineChanged(id string, online OnlineSet)
}

type nopObserver struct{}

func (nopObserver) StateChanged(string, State, Reason) {}
func (nopObserver) OnlineChanged(string, OnlineSet)    {}

type Deps struct {
	Directory Directory
	Observer  Observer
	Logger    logging.Logger
	Dialer    *websocket.Dialer
}

type lookupResult struct {
	addr string
	err  error
}

type pendingLookup struct {
	username  string
	ch        chan lookupResult
	abandoned bool
}

type Session struct {
	id      string
	cfg     Config
	profile models.Profile
	dir     Directory
	obs     Observer
	log     logging.Logger
	dialer  *websocket.Dialer

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	state   State
	reason  Reason
	conn    *websocket.Conn
	online  OnlineSet
	pending []*pendingLookup

	writeMu sync.Mutex
	lookups singleflight.Group
	wg      sync.WaitGroup

	ready    chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Connect starts a session for profile and returns at once. Dialing,
// registration and the receive loop run on the session's goroutines.
// Cancelling ctx has the same effect as Stop without waiting.
func Connect(ctx context.Context, cfg Config, profile models.Profile, deps Deps) *Session {
	cfg = cfg.withDefaults()

	s := &Session{
		id:      uuid.NewString(),
		cfg:     cfg,
		profile: profile,
		dir:     deps.Directory,
		obs:     deps.Observer,
		log:     deps.Logger,
		dialer:  deps.Dialer,
		state:   Disconnected,
		online:  OnlineSet{},
		ready:   make(chan struct{}),
		done:    make(chan struct{}),
	}
	if s.obs == nil {
		s.obs = nopObserver{}
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	s.log = s.log.With("component", "presence", "session", s.id)
	if s.dialer == nil {
		s.dialer = &websocket.Dialer{
			Proxy:            websocket.DefaultDialer.Proxy,
			HandshakeTimeout: cfg.HandshakeTimeout,
		}
	}
	s.ctx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))

	s.setState(Connecting)
	go s.run()
	go func() {
		select {
		case <-ctx.Done():
			s.recordReason(Cancelled)
			s.shutdown()
		case <-s.done:
		}
	}()
	return s
}

func (s *Session) ID() string { return s.id }

// Done is closed once the session is Closed and its last callback returned.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) State() (State, Reason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.reason
}

// Online returns a copy of the live online set.
func (s *Session) Online() OnlineSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online.clone()
}

// Stop closes the session with reason Cancelled and waits until it is fully
// shut down. Pending lookups fail with ErrCancelled. It is safe to call from
// any goroutine and more than once, but not from an Observer callback.
func (s *Session) Stop() {
	s.recordReason(Cancelled)
	s.shutdown()
	<-s.done
}

func (s *Session) shutdown() {
	s.stopOnce.Do(func() {
		s.cancel()
		s.mu.Lock()
		conn := s.conn
		s.mu.Unlock()
		if conn != nil {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		}
	})
}

// recordReason sets the close reason unless one is already recorded.
func (s *Session) recordReason(r Reason) {
	s.mu.Lock()
	if s.reason == ReasonNone {
		s.reason = r
	}
	s.mu.Unlock()
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	if s.state == Closed || s.state == st {
		s.mu.Unlock()
		return
	}
	s.state = st
	s.mu.Unlock()

	s.log.Debug(s.ctx, "state changed", "state", st.String())
	s.obs.StateChanged(s.id, st, ReasonNone)
}

func (s *Session) run() {
	defer s.finish()

	conn, err := s.dial()
	if err != nil {
		s.recordReason(ServerUnreachable)
		s.log.Warn(s.ctx, "connect failed", "server", s.cfg.ServerURL, "error", err)
		return
	}

	s.mu.Lock()
	if s.reason != ReasonNone {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.conn = conn
	s.mu.Unlock()

	s.setState(Registered)

	if err := s.write(protocol.Register(s.profile.Username, s.profile.Address)); err != nil {
		s.recordReason(ServerUnreachable)
		s.log.Warn(s.ctx, "register failed", "error", err)
		return
	}

	s.armReadDeadline(conn)
	s.setState(Listening)
	close(s.ready)
	s.log.Info(s.ctx, "listening", "server", s.cfg.ServerURL, "user", s.profile.Username)

	if s.cfg.PingInterval > 0 {
		s.wg.Add(1)
		go s.keepalive(conn)
	}

	s.readLoop(conn)
}

func (s *Session) dial() (*websocket.Conn, error) {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.HandshakeTimeout)
	defer cancel()

	conn, resp, err := s.dialer.DialContext(ctx, s.cfg.ServerURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("%w: handshake status %d: %w", ErrServerUnreachable, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrServerUnreachable, err)
	}
	return conn, nil
}

func (s *Session) armReadDeadline(conn *websocket.Conn) {
	idle := s.cfg.idleTimeout()
	if idle <= 0 {
		return
	}
	_ = conn.SetReadDeadline(time.Now().Add(idle))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(idle))
	})
}

func (s *Session) keepalive(conn *websocket.Conn) {
	defer s.wg.Done()

	t := time.NewTicker(s.cfg.PingInterval)
	defer t.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-t.C:
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.cfg.WriteTimeout))
			if err != nil {
				s.log.Debug(s.ctx, "keepalive ping failed", "error", err)
				return
			}
		}
	}
}

// readLoop handles frames strictly in arrival order until the connection
// fails or a frame cannot be handled.
func (s *Session) readLoop(conn *websocket.Conn) {
	idle := s.cfg.idleTimeout()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				s.recordReason(NormalClose)
				s.log.Info(s.ctx, "server closed session")
			} else {
				s.recordReason(ServerUnreachable)
				s.log.Warn(s.ctx, "connection lost", "error", err)
			}
			return
		}
		if idle > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(idle))
		}

		if err := s.handle(data); err != nil {
			if errors.Is(err, ErrProtocol) {
				s.recordReason(ProtocolError)
				s.log.Error(s.ctx, "bad frame from server", "error", err)
			} else {
				s.recordReason(ServerUnreachable)
				s.log.Warn(s.ctx, "write failed", "error", err)
			}
			return
		}
	}
}

func (s *Session) handle(data []byte) error {
	f, err := protocol.Parse(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	if !protocol.FromServer(f.Type) {
		return fmt.Errorf("%w: unexpected %s frame", ErrProtocol, f.Type)
	}

	switch f.Type {
	case protocol.TypePing:
		return s.write(protocol.Pong())
	case protocol.TypeUserList:
		s.applyUserList(f.Users)
	case protocol.TypeIPResponse:
		s.resolveLookup(f)
	}
	return nil
}

func (s *Session) write(data []byte) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Session) applyUserList(users []string) {
	if s.dir != nil {
		if err := s.dir.Merge(s.ctx, users); err != nil {
			s.log.Warn(s.ctx, "directory merge failed", "error", err)
		}
	}

	s.mu.Lock()
	next := make(OnlineSet, len(s.online)+len(users))
	for u := range s.online {
		next[u] = false
	}
	for _, u := range users {
		if u != "" {
			next[u] = true
		}
	}
	s.online = next
	snap := next.clone()
	s.mu.Unlock()

	s.log.Debug(s.ctx, "online snapshot", "online", snap.Count())
	s.obs.OnlineChanged(s.id, snap)
}

func (s *Session) finish() {
	s.cancel()
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
	s.wg.Wait()

	s.mu.Lock()
	if s.reason == ReasonNone {
		s.reason = ServerUnreachable
	}
	reason := s.reason
	s.state = Closed
	pending := s.pending
	s.pending = nil
	hadOnline := len(s.online) > 0
	s.online = OnlineSet{}
	s.mu.Unlock()

	for _, p := range pending {
		p.ch <- lookupResult{err: reason.Err()}
	}
	if hadOnline {
		s.obs.OnlineChanged(s.id, OnlineSet{})
	}

	s.log.Info(s.ctx, "session closed", "reason", reason.String())
	s.obs.StateChanged(s.id, Closed, reason)
	close(s.done)
}
