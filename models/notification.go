package models

import "time"

// Cue is a fire-and-forget notification side effect: the UI plays a sound or
// shows a toast for it, nothing in the sync layer depends on its delivery.
type Cue struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"` // e.g. "booking_created", "status_changed"
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Sound     string         `json:"sound,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}
