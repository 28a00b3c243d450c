package presence

import "errors"

var (
	// ErrServerUnreachable is returned when the server cannot be reached
	// or the connection was lost.
	ErrServerUnreachable = errors.New("server unreachable")

	// ErrTimeout is returned by Lookup when no answer arrived in time.
	ErrTimeout = errors.New("lookup timed out")

	// ErrProtocol is returned when the server sent a frame the client does
	// not understand.
	ErrProtocol = errors.New("protocol error")

	// ErrCancelled is returned to lookups outstanding when Stop was called.
	ErrCancelled = errors.New("session cancelled")

	// ErrNotConnected is returned when there is no session to serve a request.
	ErrNotConnected = errors.New("not connected")

	// ErrClosed is returned to lookups outstanding when the server closed
	// the session normally.
	ErrClosed = errors.New("session closed by server")
)
