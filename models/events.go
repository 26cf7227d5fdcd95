package models

import "encoding/json"

// EventKind identifies a push event on the realtime channel.
type EventKind string

const (
	EventBookingCreated EventKind = "booking:created"
	EventBookingUpdated EventKind = "booking:updated"
)

// RealtimeEnvelope is the wire frame delivered over the socket.
type RealtimeEnvelope struct {
	Event EventKind       `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// RealtimeEvent is a decoded push event handed to the booking store.
// Delivery is at-least-once: duplicates and reordering relative to a
// concurrent list fetch are expected and must be safe to apply.
type RealtimeEvent struct {
	Kind    EventKind
	Booking RawBooking
}
