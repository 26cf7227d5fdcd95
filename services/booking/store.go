package booking

import (
	"context"
	"sync"
	"time"

	"servisync/backend"
	"servisync/models"
	"servisync/services/notification"
	"servisync/utils"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var _ Store = (*DefaultStore)(nil)

// DefaultStore implements Store. One instance lives per authenticated
// session; Close tears it down and a fresh login builds a new one, so state
// never leaks across identities.
type DefaultStore struct {
	api      backend.API
	notifier notification.Notifier
	cache    *SnapshotCache
	locale   *time.Location
	logger   *zap.Logger

	// refreshLimiter smooths the forced refetches issued after optimistic
	// writes so a burst of mutations cannot stampede the list endpoint.
	refreshLimiter *rate.Limiter

	mu       sync.RWMutex
	bookings map[string]models.Booking
	order    []string // insertion order, kept for stable snapshots
	subs     map[int]chan Snapshot
	nextSub  int
	closed   bool
}

// NewDefaultStore wires a store against the backend API. The notifier and
// cache are optional; locale defaults to time.Local.
func NewDefaultStore(api backend.API, notifier notification.Notifier, cache *SnapshotCache, locale *time.Location) *DefaultStore {
	if locale == nil {
		locale = time.Local
	}
	return &DefaultStore{
		api:            api,
		notifier:       notifier,
		cache:          cache,
		locale:         locale,
		logger:         utils.GetLogger(),
		refreshLimiter: rate.NewLimiter(rate.Every(2*time.Second), 3),
		bookings:       make(map[string]models.Booking),
		subs:           make(map[int]chan Snapshot),
	}
}

// Snapshot returns the current merged view.
func (s *DefaultStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Get returns a single booking by id.
func (s *DefaultStore) Get(id string) (models.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	return b, ok
}

// Subscribe registers a consumer for snapshot updates. The channel carries
// the latest snapshot only: a slow consumer sees fewer frames, never stale
// ones. The returned func unsubscribes.
func (s *DefaultStore) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Snapshot, 1)
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
}

// FetchAll refreshes the collection from the list endpoint. Records are
// merged by id (upsert), never a wholesale replace, so locally-known bookings
// the response does not mention survive, including optimistic entries whose
// confirming create is still in flight. Read failures keep the prior state:
// stale-but-present beats empty.
func (s *DefaultStore) FetchAll(ctx context.Context) error {
	raws, err := s.api.ListBookings(ctx)
	if err != nil {
		s.logger.Warn("booking list refresh failed, keeping prior state", zap.Error(err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return NewStoreClosedError()
	}
	for _, raw := range raws {
		s.upsertLocked(Normalize(raw, s.locale))
	}
	s.publishLocked()
	return nil
}

// ApplyRemoteEvent feeds a push event into the collection. Created and
// updated both resolve to an upsert by id, which makes duplicate delivery and
// reordering against a concurrent FetchAll harmless. The server is
// authoritative: whatever status the event asserts is applied, even when it
// skips states the client expected in between.
func (s *DefaultStore) ApplyRemoteEvent(ev models.RealtimeEvent) {
	incoming := Normalize(ev.Booking, s.locale)
	if incoming.ID == "" {
		s.logger.Warn("discarding realtime event without booking id", zap.String("kind", string(ev.Kind)))
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	prev, existed := s.bookings[incoming.ID]
	merged := s.upsertLocked(incoming)
	s.publishLocked()
	s.mu.Unlock()

	if s.notifier == nil {
		return
	}
	switch {
	case !existed:
		s.notifier.BookingCreated(merged)
	case prev.Status != merged.Status:
		s.notifier.StatusChanged(merged, prev.Status)
	}
}

// upsertLocked merges an incoming normalized record into the collection and
// returns the stored result. The incoming record wins field-by-field, with
// two exceptions for server omissions: a review already known locally is
// write-once and never detaches, and an assigned technician is not forgotten
// because one response left it out.
func (s *DefaultStore) upsertLocked(incoming models.Booking) models.Booking {
	existing, ok := s.bookings[incoming.ID]
	if !ok {
		s.bookings[incoming.ID] = incoming
		s.order = append(s.order, incoming.ID)
		return incoming
	}
	if incoming.Review == nil {
		incoming.Review = existing.Review
	}
	if incoming.Technician == nil {
		incoming.Technician = existing.Technician
	}
	s.bookings[incoming.ID] = incoming
	return incoming
}

// snapshotLocked builds the derived view: the full collection in insertion
// order plus the pending-review queue (completed, unreviewed). Both are
// computed from the same state under the same lock, so no frame can show a
// reviewed booking still queued or a completed-unreviewed one missing.
func (s *DefaultStore) snapshotLocked() Snapshot {
	snap := Snapshot{
		Bookings:       make([]models.Booking, 0, len(s.order)),
		PendingReviews: []models.Booking{},
	}
	for _, id := range s.order {
		b, ok := s.bookings[id]
		if !ok {
			continue
		}
		snap.Bookings = append(snap.Bookings, b)
		if b.AwaitingReview() {
			snap.PendingReviews = append(snap.PendingReviews, b)
		}
	}
	return snap
}

// publishLocked fans the current snapshot out to subscribers and persists it
// to the warm-start cache. Subscriber channels hold the latest frame only.
func (s *DefaultStore) publishLocked() {
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// Replace the stale frame the consumer has not read yet.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
	if s.cache != nil {
		bookings := snap.Bookings
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := s.cache.Save(ctx, bookings); err != nil {
				s.logger.Debug("snapshot cache save failed", zap.Error(err))
			}
		}()
	}
}

// WarmStart seeds the collection from the snapshot cache so the UI renders
// the previous session's view while the first fetch is in flight. Cache
// misses and errors are silent; the poll path corrects everything anyway.
func (s *DefaultStore) WarmStart(ctx context.Context) {
	if s.cache == nil {
		return
	}
	cached, err := s.cache.Load(ctx)
	if err != nil || len(cached) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || len(s.bookings) > 0 {
		return
	}
	for _, b := range cached {
		s.upsertLocked(b)
	}
	s.publishLocked()
	s.logger.Info("warm-started booking store from cached snapshot", zap.Int("bookings", len(cached)))
}

// Close tears the store down: subscribers are closed and further feeds are
// ignored. The socket and poll timer are owned by their own components; the
// session wiring shuts those down alongside.
func (s *DefaultStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.bookings = make(map[string]models.Booking)
	s.order = nil
}
