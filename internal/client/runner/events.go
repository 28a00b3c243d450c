package runner

const subscriberBuffer = 64

// Subscribe returns a channel receiving runner events. Delivery is lossy: a
// subscriber that falls behind misses events and should poll Status.
func (r *Runner) Subscribe() chan Event {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	ch := make(chan Event, subscriberBuffer)
	if r.closed {
		close(ch)
		return ch
	}
	r.listeners = append(r.listeners, ch)
	return ch
}

func (r *Runner) Unsubscribe(ch chan Event) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	for i, listener := range r.listeners {
		if listener == ch {
			close(listener)
			r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
			return
		}
	}
}

func (r *Runner) publish(evt Event) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	for _, ch := range r.listeners {
		select {
		case ch <- evt:
		default:
		}
	}
}
