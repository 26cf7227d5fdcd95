package models

import "time"

// Status is the canonical client-side booking state. The server speaks its
// own code set; services/booking.MapStatus is the only place wire codes are
// translated, nothing downstream re-derives status strings.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusAssigned   Status = "Assigned"
	StatusInProgress Status = "InProgress"
	StatusCompleted  Status = "Completed"
	StatusCanceled   Status = "Canceled"
)

// Terminal reports whether no further status transition is expected.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// Technician is the assigned technician summary, present only once the
// marketplace has matched the booking.
type Technician struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Image string `json:"image,omitempty"`
}

// Review is attached to a booking once the customer has rated it. Its
// presence is the sole signal that a booking has been reviewed.
type Review struct {
	ID               string `json:"id,omitempty"`
	Rating           int    `json:"rating"`
	TechnicianRating int    `json:"technicianRating,omitempty"`
	Comment          string `json:"comment,omitempty"`
}

// Booking is the canonical client-owned booking record.
type Booking struct {
	ID           string      `json:"id"`           // Unique booking identifier, never reused
	Status       Status      `json:"status"`       // Canonical state, see Status
	ScheduledAt  time.Time   `json:"scheduledAt"`  // When the service is due
	Date         string      `json:"date"`         // Display date derived from ScheduledAt
	Time         string      `json:"time"`         // Display time derived from ScheduledAt
	ServiceName  string      `json:"serviceName"`  // Descriptive only, not used in reconciliation
	CategoryName string      `json:"categoryName"` // Descriptive only
	Price        float64     `json:"price"`
	Technician   *Technician `json:"technician,omitempty"`
	Review       *Review     `json:"review,omitempty"`

	// Opaque pass-through fields.
	SecurityPin    string `json:"securityPin,omitempty"`
	Notes          string `json:"notes,omitempty"`
	Location       string `json:"location,omitempty"`
	ReferenceImage string `json:"referenceImage,omitempty"`
}

// AwaitingReview reports whether the booking belongs in the pending-review
// queue: completed, and never reviewed.
func (b *Booking) AwaitingReview() bool {
	return b.Status == StatusCompleted && b.Review == nil
}
