// Package presence maintains one websocket session with the rendezvous
// server.
//
// A Session registers the local profile, answers server pings, merges the
// online snapshots pushed by the server into the local directory and serves
// username-to-address lookups. Its life is a one-way state machine:
//
//	Disconnected -> Connecting -> Registered -> Listening -> Closed(reason)
//
// Closed is terminal; reconnecting means starting a new Session. All network
// I/O happens on the session's own goroutines. Progress is reported through
// an Observer whose callbacks are invoked from those goroutines, in order.
package presence
