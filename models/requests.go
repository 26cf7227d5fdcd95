package models

import "time"

// Attachment is a binary file sent with a request (e.g. a reference photo on
// create, a completion photo on status change). When present the request goes
// out as multipart instead of JSON.
type Attachment struct {
	FileName    string
	ContentType string
	Data        []byte
}

// BookingRequest is the payload for creating a booking.
type BookingRequest struct {
	ServiceID   string    `json:"serviceId"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Notes       string    `json:"notes,omitempty"`
	Location    string    `json:"location,omitempty"`

	// IdempotencyKey lets the backend dedupe retried creates.
	IdempotencyKey string `json:"idempotencyKey,omitempty"`

	Attachment *Attachment `json:"-"`
}

// StatusUpdate is the payload for a status-change mutation.
type StatusUpdate struct {
	Status         Status      `json:"status"`
	CompletionNote string      `json:"completionNote,omitempty"`
	Attachment     *Attachment `json:"-"`
}

// ReviewRequest is the payload for submitting a review.
type ReviewRequest struct {
	BookingID        string `json:"bookingId"`
	Rating           int    `json:"rating"`
	TechnicianRating int    `json:"technicianRating,omitempty"`
	Review           string `json:"review"`
}
