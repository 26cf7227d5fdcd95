package models

import "time"

// Raw wire records as the marketplace backend sends them. Nested objects are
// pointers because the backend omits them freely (no technician before
// assignment, no review before rating, sometimes no category at all).

type RawCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RawService struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Category *RawCategory `json:"category,omitempty"`
}

type RawTechnician struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Image string `json:"image,omitempty"`
}

type RawReview struct {
	ID               string `json:"id,omitempty"`
	Rating           int    `json:"rating"`
	TechnicianRating int    `json:"technicianRating,omitempty"`
	Review           string `json:"review,omitempty"`
}

// RawBooking is a single booking record on the wire.
type RawBooking struct {
	ID             string         `json:"id"`
	Status         string         `json:"status"` // server wire code, e.g. "IN_PROGRESS"
	ScheduledAt    time.Time      `json:"scheduledAt"`
	Service        *RawService    `json:"service,omitempty"`
	Price          float64        `json:"price"`
	Technician     *RawTechnician `json:"technician,omitempty"`
	Review         *RawReview     `json:"review,omitempty"`
	SecurityPin    string         `json:"securityPin,omitempty"`
	Notes          string         `json:"notes,omitempty"`
	Location       string         `json:"location,omitempty"`
	ReferenceImage string         `json:"referenceImage,omitempty"`
}
