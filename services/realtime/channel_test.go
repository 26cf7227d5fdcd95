package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"servisync/models"

	"github.com/gorilla/websocket"
)

type eventSink struct {
	mu     sync.Mutex
	events []models.RealtimeEvent
}

func (s *eventSink) handle(ev models.RealtimeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *eventSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func (s *eventSink) last() (models.RealtimeEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return models.RealtimeEvent{}, false
	}
	return s.events[len(s.events)-1], true
}

// tokenCapture records the auth token the server saw.
type tokenCapture struct {
	mu sync.Mutex
	v  string
}

func (c *tokenCapture) set(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.v = v
}

func (c *tokenCapture) get() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

// pushServer upgrades connections and writes the given frames to each client.
func pushServer(t *testing.T, gotToken *tokenCapture, frames ...string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotToken != nil {
			gotToken.set(r.URL.Query().Get("token"))
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for _, frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		}
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func frame(t *testing.T, kind models.EventKind, raw models.RawBooking) string {
	t.Helper()
	data, err := json.Marshal(raw)
	if err != nil {
		t.Fatal(err)
	}
	env, err := json.Marshal(models.RealtimeEnvelope{Event: kind, Data: data})
	if err != nil {
		t.Fatal(err)
	}
	return string(env)
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestChannelDeliversTypedEvents(t *testing.T) {
	sink := &eventSink{}
	gotToken := &tokenCapture{}
	srv := pushServer(t, gotToken,
		frame(t, models.EventBookingCreated, models.RawBooking{ID: "b1", Status: "PENDING"}),
		frame(t, models.EventBookingUpdated, models.RawBooking{ID: "b1", Status: "COMPLETED"}),
	)
	defer srv.Close()

	ch := NewChannel(wsURL(srv), "session-token", 3, 10*time.Millisecond, sink.handle)
	ch.Start()
	defer ch.Close()

	waitFor(t, func() bool { return sink.count() >= 2 }, "events were not delivered")

	last, _ := sink.last()
	if last.Kind != models.EventBookingUpdated || last.Booking.Status != "COMPLETED" {
		t.Fatalf("unexpected last event: %+v", last)
	}
	if got := gotToken.get(); got != "session-token" {
		t.Fatalf("socket must authenticate with the session token, got %q", got)
	}
}

func TestChannelSkipsMalformedAndUnknownFrames(t *testing.T) {
	sink := &eventSink{}
	srv := pushServer(t, nil,
		"this is not json",
		`{"event":"technician:location","data":{}}`,
		frame(t, models.EventBookingCreated, models.RawBooking{ID: "b1", Status: "PENDING"}),
	)
	defer srv.Close()

	ch := NewChannel(wsURL(srv), "", 3, 10*time.Millisecond, sink.handle)
	ch.Start()
	defer ch.Close()

	waitFor(t, func() bool { return sink.count() >= 1 }, "valid event after garbage was not delivered")
	last, _ := sink.last()
	if last.Booking.ID != "b1" {
		t.Fatalf("unexpected event: %+v", last)
	}
}

func TestChannelReconnectsAfterDrop(t *testing.T) {
	sink := &eventSink{}
	upgrader := websocket.Upgrader{}
	var mu sync.Mutex
	connCount := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		connCount++
		n := connCount
		mu.Unlock()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		if n == 1 {
			// Drop the first connection immediately.
			conn.Close()
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(frame(t, models.EventBookingCreated, models.RawBooking{ID: "b1", Status: "PENDING"})))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	ch := NewChannel(wsURL(srv), "", 5, 10*time.Millisecond, sink.handle)
	ch.Start()
	defer ch.Close()

	waitFor(t, func() bool { return sink.count() >= 1 }, "channel did not recover from a dropped connection")
}

func TestChannelGivesUpAfterBoundedRetries(t *testing.T) {
	// A server that never upgrades: every dial fails.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no", http.StatusForbidden)
	}))
	defer srv.Close()

	sink := &eventSink{}
	ch := NewChannel(wsURL(srv), "", 2, 5*time.Millisecond, sink.handle)
	ch.Start()

	// The run loop must terminate on its own; Close must not hang either way.
	done := make(chan struct{})
	go func() {
		time.Sleep(200 * time.Millisecond)
		ch.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("channel did not stop after exhausting retries")
	}
	if sink.count() != 0 {
		t.Fatalf("no events should have been delivered, got %d", sink.count())
	}
}

func TestChannelCloseIsIdempotentAndStopsDelivery(t *testing.T) {
	sink := &eventSink{}
	srv := pushServer(t, nil, frame(t, models.EventBookingCreated, models.RawBooking{ID: "b1", Status: "PENDING"}))
	defer srv.Close()

	ch := NewChannel(wsURL(srv), "", 3, 10*time.Millisecond, sink.handle)
	ch.Start()
	waitFor(t, func() bool { return sink.count() >= 1 }, "event not delivered before close")

	ch.Close()
	ch.Close() // second close is a no-op

	settled := sink.count()
	time.Sleep(50 * time.Millisecond)
	if sink.count() != settled {
		t.Fatal("events leaked after Close")
	}
}
