package booking

import (
	"context"

	"servisync/models"
)

// Snapshot is the derived view republished to consumers after every merge.
type Snapshot struct {
	Bookings       []models.Booking `json:"bookings"`
	PendingReviews []models.Booking `json:"pendingReviews"`
}

// Store reconciles the three booking sources (list polling, push events,
// local optimistic mutations) into one consistent collection and exposes the
// mutation operations the UI layer calls.
type Store interface {
	// Read side.
	Snapshot() Snapshot
	Get(id string) (models.Booking, bool)
	Subscribe() (<-chan Snapshot, func())

	// Source feeds.
	FetchAll(ctx context.Context) error
	ApplyRemoteEvent(ev models.RealtimeEvent)

	// Mutations.
	Create(ctx context.Context, req models.BookingRequest) (models.Booking, error)
	Cancel(ctx context.Context, id string) error
	ChangeStatus(ctx context.Context, id string, upd models.StatusUpdate) error
	SubmitReview(ctx context.Context, req models.ReviewRequest) (models.Booking, error)

	// Lifecycle.
	WarmStart(ctx context.Context)
	Close()
}
