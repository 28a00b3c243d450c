// Package rendezvoustest runs an in-process rendezvous server for tests. It
// accepts websocket clients, records every frame they send and lets the test
// push server frames (ping, user_list, ip_response) or drop the connection.
package rendezvoustest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/chattypatty/internal/client/protocol"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Server struct {
	t   testing.TB
	srv *httptest.Server

	reject atomic.Bool
	silent atomic.Bool
	conns  chan *Conn

	mu      sync.Mutex
	onFrame func(c *Conn, f protocol.Frame)
	all     []*Conn
}

// New starts a server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{t: t, conns: make(chan *Conn, 16)}
	s.srv = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// URL is the ws:// address of the server.
func (s *Server) URL() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http")
}

// Reject makes subsequent handshakes fail with 503.
func (s *Server) Reject(v bool) { s.reject.Store(v) }

// SilentPings stops answering websocket control pings, so a client relying
// on pongs sees its connection go idle.
func (s *Server) SilentPings(v bool) { s.silent.Store(v) }

// OnFrame installs a hook called from the connection's read loop for every
// parsed client frame, after it has been recorded.
func (s *Server) OnFrame(fn func(c *Conn, f protocol.Frame)) {
	s.mu.Lock()
	s.onFrame = fn
	s.mu.Unlock()
}

func (s *Server) Close() {
	s.mu.Lock()
	all := append([]*Conn(nil), s.all...)
	s.mu.Unlock()
	for _, c := range all {
		c.Drop()
	}
	s.srv.Close()
}

// Accept waits for the next client connection.
func (s *Server) Accept(timeout time.Duration) *Conn {
	s.t.Helper()
	select {
	case c := <-s.conns:
		return c
	case <-time.After(timeout):
		s.t.Fatalf("rendezvoustest: no client connected within %v", timeout)
		return nil
	}
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if s.reject.Load() {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &Conn{
		t:      s.t,
		ws:     ws,
		frames: make(chan protocol.Frame, 1024),
		done:   make(chan struct{}),
	}
	ws.SetPingHandler(func(data string) error {
		if s.silent.Load() {
			return nil
		}
		c.writeMu.Lock()
		defer c.writeMu.Unlock()
		return ws.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	s.mu.Lock()
	s.all = append(s.all, c)
	s.mu.Unlock()

	s.conns <- c
	c.readLoop(s)
}

// Conn is one accepted client connection.
type Conn struct {
	t  testing.TB
	ws *websocket.Conn

	writeMu sync.Mutex
	frames  chan protocol.Frame
	done    chan struct{}

	mu       sync.Mutex
	received []protocol.Frame
	bad      [][]byte

	pongs  atomic.Int32
	getIPs atomic.Int32
}

func (c *Conn) readLoop(s *Server) {
	defer close(c.done)
	defer c.ws.Close()
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		f, err := protocol.Parse(data)
		if err != nil {
			c.mu.Lock()
			c.bad = append(c.bad, data)
			c.mu.Unlock()
			continue
		}

		switch f.Type {
		case protocol.TypePong:
			c.pongs.Add(1)
		case protocol.TypeGetIP:
			c.getIPs.Add(1)
		}

		c.mu.Lock()
		c.received = append(c.received, f)
		c.mu.Unlock()

		s.mu.Lock()
		hook := s.onFrame
		s.mu.Unlock()
		if hook != nil {
			hook(c, f)
		}

		select {
		case c.frames <- f:
		default:
		}
	}
}

// Send writes a raw text frame to the client.
func (c *Conn) Send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(2 * time.Second))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// MustSend is Send failing the test on error.
func (c *Conn) MustSend(data []byte) {
	c.t.Helper()
	if err := c.Send(data); err != nil {
		c.t.Fatalf("rendezvoustest: send: %v", err)
	}
}

// Next returns the next frame received from the client.
func (c *Conn) Next(timeout time.Duration) protocol.Frame {
	c.t.Helper()
	select {
	case f := <-c.frames:
		return f
	case <-time.After(timeout):
		c.t.Fatalf("rendezvoustest: no frame within %v", timeout)
		return protocol.Frame{}
	}
}

// NextOfType skips frames until one of type typ arrives.
func (c *Conn) NextOfType(typ string, timeout time.Duration) protocol.Frame {
	c.t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case f := <-c.frames:
			if f.Type == typ {
				return f
			}
		case <-deadline:
			c.t.Fatalf("rendezvoustest: no %s frame within %v", typ, timeout)
			return protocol.Frame{}
		}
	}
}

// Received returns a copy of all frames received so far, in order.
func (c *Conn) Received() []protocol.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]protocol.Frame(nil), c.received...)
}

// Invalid returns frames that failed to parse.
func (c *Conn) Invalid() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.bad...)
}

func (c *Conn) Pongs() int  { return int(c.pongs.Load()) }
func (c *Conn) GetIPs() int { return int(c.getIPs.Load()) }

// Done is closed once the client side of the connection is gone.
func (c *Conn) Done() <-chan struct{} { return c.done }

// CloseWith sends a close frame with code and closes the connection.
func (c *Conn) CloseWith(code int, text string) {
	c.writeMu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(time.Second))
	c.writeMu.Unlock()
	_ = c.ws.Close()
}

// Drop closes the underlying TCP connection without a close frame.
func (c *Conn) Drop() {
	_ = c.ws.NetConn().Close()
}
