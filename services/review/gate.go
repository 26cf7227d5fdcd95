package review

import (
	"sync"

	"servisync/models"
	"servisync/services/booking"
)

// Gate surfaces exactly one completed-unreviewed booking at a time to the
// review prompt. It holds no state of its own beyond a pointer to the item
// currently displayed: the queue is derived from the store snapshot, and the
// pointer advances only because the queue shrank (a review landed). Dismissal
// is not persisted: a dismissed booking reappears on the next recompute
// until it is actually reviewed.
type Gate struct {
	mu        sync.Mutex
	queue     []models.Booking
	currentID string
}

func NewGate() *Gate {
	return &Gate{}
}

// Apply ingests a fresh store snapshot and recomputes the queue. If the
// previously displayed booking is still pending it stays current, otherwise
// the pointer resets to the new head.
func (g *Gate) Apply(snap booking.Snapshot) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queue = snap.PendingReviews

	for _, b := range g.queue {
		if b.ID == g.currentID {
			return
		}
	}
	if len(g.queue) > 0 {
		g.currentID = g.queue[0].ID
	} else {
		g.currentID = ""
	}
}

// Current returns the booking the prompt should show, if any.
func (g *Gate) Current() (models.Booking, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, b := range g.queue {
		if b.ID == g.currentID {
			return b, true
		}
	}
	return models.Booking{}, false
}

// Pending returns the whole derived queue.
func (g *Gate) Pending() []models.Booking {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]models.Booking, len(g.queue))
	copy(out, g.queue)
	return out
}

// Run consumes store snapshots until the subscription channel closes.
func (g *Gate) Run(snapshots <-chan booking.Snapshot) {
	for snap := range snapshots {
		g.Apply(snap)
	}
}
