package presence

type State int

const (
	Disconnected State = iota
	Connecting
	Registered
	Listening
	Closed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Registered:
		return "registered"
	case Listening:
		return "listening"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// Reason explains why a session reached Closed.
type Reason int

const (
	ReasonNone Reason = iota
	NormalClose
	ServerUnreachable
	ProtocolError
	Cancelled
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return ""
	case NormalClose:
		return "normal close"
	case ServerUnreachable:
		return "server unreachable"
	case ProtocolError:
		return "protocol error"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// Err maps a close reason to the error given to pending lookups.
func (r Reason) Err() error {
	switch r {
	case NormalClose:
		return ErrClosed
	case ProtocolError:
		return ErrProtocol
	case Cancelled:
		return ErrCancelled
	}
	return ErrServerUnreachable
}

// OnlineSet maps usernames seen in server snapshots to whether they were in
// the latest one.
type OnlineSet map[string]bool

func (o OnlineSet) clone() OnlineSet {
	out := make(OnlineSet, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Count returns how many users are currently online.
func (o OnlineSet) Count() int {
	n := 0
	for _, v := range o {
		if v {
			n++
		}
	}
	return n
}
