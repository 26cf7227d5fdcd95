package realtime

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"time"

	"servisync/models"
	"servisync/utils"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// EventHandler receives decoded push events. Handlers must be safe to call
// from the channel's read goroutine.
type EventHandler func(ev models.RealtimeEvent)

// Channel owns the single persistent socket connection of an authenticated
// session. It dials when started, redials on drops with a fixed backoff and a
// bounded number of consecutive attempts, and hands every decoded event to
// the handler. Exhausting the retries silences push updates but nothing else:
// the polling backstop keeps the view converging.
type Channel struct {
	socketURL   string
	token       string
	maxAttempts int
	backoff     time.Duration
	handler     EventHandler
	logger      *zap.Logger
	dialer      *websocket.Dialer

	mu      sync.Mutex
	conn    *websocket.Conn
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewChannel prepares a channel; no connection is made until Start.
func NewChannel(socketURL, token string, maxAttempts int, backoff time.Duration, handler EventHandler) *Channel {
	return &Channel{
		socketURL:   socketURL,
		token:       token,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		handler:     handler,
		logger:      utils.GetLogger(),
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

// Start opens the connection in the background. Calling Start twice on a live
// channel is a no-op: one session, one socket.
func (c *Channel) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return
	}
	c.started = true
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.run(ctx)
}

// Close tears the connection down and stops reconnecting. It blocks until the
// run loop has exited, so no event can be delivered into the next session.
func (c *Channel) Close() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.started = false
	c.cancel()
	if c.conn != nil {
		c.conn.Close()
	}
	done := c.done
	c.mu.Unlock()
	<-done
}

func (c *Channel) run(ctx context.Context) {
	defer close(c.done)

	attempts := 0
	for {
		if ctx.Err() != nil {
			return
		}
		conn, err := c.dial(ctx)
		if err != nil {
			attempts++
			if attempts >= c.maxAttempts {
				c.logger.Warn("realtime channel gave up reconnecting, polling remains the update path",
					zap.Int("attempts", attempts))
				return
			}
			c.logger.Debug("realtime dial failed, retrying",
				zap.Int("attempt", attempts), zap.Error(err))
			if !sleepCtx(ctx, c.backoff) {
				return
			}
			continue
		}

		// A successful connection resets the retry budget.
		attempts = 0
		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()
		c.logger.Info("realtime channel connected")

		c.readLoop(ctx, conn)

		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		conn.Close()

		if ctx.Err() != nil {
			return
		}
		attempts++
		if attempts >= c.maxAttempts {
			c.logger.Warn("realtime channel gave up reconnecting, polling remains the update path",
				zap.Int("attempts", attempts))
			return
		}
		if !sleepCtx(ctx, c.backoff) {
			return
		}
	}
}

func (c *Channel) dial(ctx context.Context) (*websocket.Conn, error) {
	u, err := url.Parse(c.socketURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("token", c.token)
	u.RawQuery = q.Encode()

	conn, resp, err := c.dialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, err
}

func (c *Channel) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Debug("realtime read failed", zap.Error(err))
			}
			return
		}

		var envelope models.RealtimeEnvelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			c.logger.Warn("discarding malformed realtime frame", zap.Error(err))
			continue
		}

		switch envelope.Event {
		case models.EventBookingCreated, models.EventBookingUpdated:
			var raw models.RawBooking
			if err := json.Unmarshal(envelope.Data, &raw); err != nil {
				c.logger.Warn("discarding realtime event with malformed booking",
					zap.String("event", string(envelope.Event)), zap.Error(err))
				continue
			}
			c.handler(models.RealtimeEvent{Kind: envelope.Event, Booking: raw})
		default:
			c.logger.Debug("ignoring unknown realtime event", zap.String("event", string(envelope.Event)))
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
