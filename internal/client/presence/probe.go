package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// Probe checks that the server accepts a websocket connection, then closes
// it without registering.
func Probe(ctx context.Context, cfg Config) error {
	cfg = cfg.withDefaults()

	ctx, cancel := context.WithTimeout(ctx, cfg.HandshakeTimeout)
	defer cancel()

	d := websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: cfg.HandshakeTimeout,
	}
	conn, _, err := d.DialContext(ctx, cfg.ServerURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrServerUnreachable, err)
	}
	defer conn.Close()

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(cfg.WriteTimeout))
	return nil
}
