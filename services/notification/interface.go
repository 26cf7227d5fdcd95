package notification

import (
	"fmt"
	"sync"
	"time"

	"servisync/models"
	"servisync/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier receives fire-and-forget cues from the sync layer. Implementations
// must never block the caller and must never fail loudly; a dropped cue costs
// a missed sound, nothing more.
type Notifier interface {
	BookingCreated(b models.Booking)
	StatusChanged(b models.Booking, previous models.Status)
	Drain() []models.Cue
}

// DefaultNotifier buffers cues in a bounded in-memory ring the UI gateway
// drains. Overflow drops the oldest cue.
type DefaultNotifier struct {
	mu   sync.Mutex
	cues []models.Cue
	cap  int
}

const defaultCueCapacity = 64

func NewDefaultNotifier() *DefaultNotifier {
	return &DefaultNotifier{cap: defaultCueCapacity}
}

// BookingCreated queues a cue for a booking that just appeared.
func (n *DefaultNotifier) BookingCreated(b models.Booking) {
	n.push(models.Cue{
		ID:      uuid.New().String(),
		Type:    "booking_created",
		Title:   "New Booking",
		Message: fmt.Sprintf("Your %s booking for %s at %s is in.", b.ServiceName, b.Date, b.Time),
		Sound:   "chime",
		Data: map[string]any{
			"bookingId": b.ID,
			"status":    b.Status,
		},
		CreatedAt: time.Now(),
	})
}

// StatusChanged queues a cue for a booking whose status moved.
func (n *DefaultNotifier) StatusChanged(b models.Booking, previous models.Status) {
	if b.Status == previous {
		return
	}
	n.push(models.Cue{
		ID:      uuid.New().String(),
		Type:    "status_changed",
		Title:   "Booking Update",
		Message: fmt.Sprintf("Your %s booking is now %s.", b.ServiceName, b.Status),
		Sound:   "ding",
		Data: map[string]any{
			"bookingId": b.ID,
			"status":    b.Status,
			"previous":  previous,
		},
		CreatedAt: time.Now(),
	})
}

// Drain returns the queued cues and empties the buffer.
func (n *DefaultNotifier) Drain() []models.Cue {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.cues
	n.cues = nil
	return out
}

func (n *DefaultNotifier) push(cue models.Cue) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.cues) >= n.cap {
		n.cues = n.cues[1:]
	}
	n.cues = append(n.cues, cue)
	utils.GetLogger().Debug("queued notification cue",
		zap.String("type", cue.Type),
		zap.Any("data", cue.Data))
}
