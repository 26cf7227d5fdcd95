package booking

import (
	"context"
	"fmt"
	"time"

	"servisync/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Create submits a booking request and inserts the server-confirmed record on
// success. Creation is confirm-then-insert (the request may fail validation),
// unlike status mutations which apply optimistically first. A failed create
// leaves the collection untouched.
func (s *DefaultStore) Create(ctx context.Context, req models.BookingRequest) (models.Booking, error) {
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.New().String()
	}

	raw, err := s.api.CreateBooking(ctx, req)
	if err != nil {
		s.logger.Warn("booking create failed", zap.Error(err))
		return models.Booking{}, fmt.Errorf("create booking: %w", err)
	}

	confirmed := Normalize(raw, s.locale)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return models.Booking{}, NewStoreClosedError()
	}
	merged := s.upsertLocked(confirmed)
	s.publishLocked()
	return merged, nil
}

// Cancel optimistically marks the booking Canceled before the network call so
// the UI reacts instantly. On failure the store schedules a forced refetch,
// which restores whatever the server holds. Failed status changes roll back
// the same way, so there is a single rollback policy for optimistic writes.
// Bookings already in a terminal state are rejected locally; there is nothing
// left to cancel and the optimistic flip would misreport a completed job.
func (s *DefaultStore) Cancel(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return NewStoreClosedError()
	}
	b, ok := s.bookings[id]
	if !ok {
		s.mu.Unlock()
		return NewNotFoundError(id)
	}
	if b.Status.Terminal() {
		s.mu.Unlock()
		return NewTerminalStateError(id, b.Status)
	}
	b.Status = models.StatusCanceled
	s.bookings[id] = b
	s.publishLocked()
	s.mu.Unlock()

	if err := s.api.CancelBooking(ctx, id); err != nil {
		s.logger.Warn("booking cancel failed, forcing refresh", zap.String("id", id), zap.Error(err))
		s.forceRefresh(ctx)
		return fmt.Errorf("cancel booking %s: %w", id, err)
	}
	return nil
}

// ChangeStatus applies the new status locally, pushes it to the backend, then
// refreshes the full list regardless of outcome. The unconditional refetch
// reconciles any drift; on failure it doubles as the rollback.
func (s *DefaultStore) ChangeStatus(ctx context.Context, id string, upd models.StatusUpdate) error {
	// Callers may pass wire codes ("COMPLETED") as well as canonical values.
	// Canonicalize before the optimistic write so derived views see the same
	// status the eventual refetch would produce.
	upd.Status = MapStatus(string(upd.Status))

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return NewStoreClosedError()
	}
	b, ok := s.bookings[id]
	if !ok {
		s.mu.Unlock()
		return NewNotFoundError(id)
	}
	b.Status = upd.Status
	s.bookings[id] = b
	s.publishLocked()
	s.mu.Unlock()

	_, err := s.api.UpdateBookingStatus(ctx, id, upd)
	s.forceRefresh(ctx)
	if err != nil {
		s.logger.Warn("status change failed, refresh will roll back",
			zap.String("id", id), zap.String("status", string(upd.Status)), zap.Error(err))
		return fmt.Errorf("change status of booking %s: %w", id, err)
	}
	return nil
}

// SubmitReview posts the review and, on success, attaches it to the local
// booking. Attaching the review and recomputing the pending-review queue
// happen under one lock, so the UI never observes the booking off the queue
// without its review, or still queued with one.
func (s *DefaultStore) SubmitReview(ctx context.Context, req models.ReviewRequest) (models.Booking, error) {
	s.mu.RLock()
	b, ok := s.bookings[req.BookingID]
	if ok && b.Review != nil {
		s.mu.RUnlock()
		return b, NewAlreadyReviewedError(req.BookingID)
	}
	s.mu.RUnlock()
	if !ok {
		return models.Booking{}, NewNotFoundError(req.BookingID)
	}

	ref, err := s.api.SubmitReview(ctx, req)
	if err != nil {
		s.logger.Warn("review submit failed", zap.String("bookingId", req.BookingID), zap.Error(err))
		return models.Booking{}, fmt.Errorf("submit review for booking %s: %w", req.BookingID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return models.Booking{}, NewStoreClosedError()
	}
	b, ok = s.bookings[req.BookingID]
	if !ok {
		return models.Booking{}, NewNotFoundError(req.BookingID)
	}
	// Write-once: a review raced in from another source, keep it.
	if b.Review == nil {
		b.Review = &models.Review{
			ID:               ref.ID,
			Rating:           req.Rating,
			TechnicianRating: req.TechnicianRating,
			Comment:          req.Review,
		}
		s.bookings[req.BookingID] = b
	}
	s.publishLocked()
	return b, nil
}

// forceRefresh runs a rate-limited FetchAll in the background. The limiter
// smooths bursts without skipping the refresh itself.
func (s *DefaultStore) forceRefresh(ctx context.Context) {
	go func() {
		if err := s.refreshLimiter.Wait(context.WithoutCancel(ctx)); err != nil {
			return
		}
		refreshCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.FetchAll(refreshCtx); err != nil {
			s.logger.Warn("forced refresh failed", zap.Error(err))
		}
	}()
}
