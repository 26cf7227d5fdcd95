package booking

import (
	"context"
	"testing"
	"time"

	"servisync/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func newTestCache(t *testing.T) *SnapshotCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewSnapshotCache(client, "user-42")
}

func TestSnapshotCacheRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	bookings := []models.Booking{
		{ID: "b1", Status: models.StatusCompleted, ScheduledAt: time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)},
		{ID: "b2", Status: models.StatusPending, Review: &models.Review{Rating: 4}},
	}
	if err := cache.Save(ctx, bookings); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := cache.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 2 || loaded[0].ID != "b1" || loaded[1].Review == nil {
		t.Fatalf("unexpected cached snapshot: %+v", loaded)
	}
}

func TestSnapshotCacheColdLoad(t *testing.T) {
	cache := newTestCache(t)
	loaded, err := cache.Load(context.Background())
	if err != nil {
		t.Fatalf("cold load must not error: %v", err)
	}
	if loaded != nil {
		t.Fatalf("cold cache should return nil, got %+v", loaded)
	}
}

func TestSnapshotCacheClear(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	if err := cache.Save(ctx, []models.Booking{{ID: "b1"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	loaded, err := cache.Load(ctx)
	if err != nil || loaded != nil {
		t.Fatalf("cleared cache should be cold, got %+v, %v", loaded, err)
	}
}

func TestClearOnIdentityChangeReleasesPreviousSnapshot(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	ctx := context.Background()

	prev := NewSnapshotCache(client, "user-1")
	if err := prev.Save(ctx, []models.Booking{{ID: "b1"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := ClearOnIdentityChange(ctx, client, "user-1"); err != nil {
		t.Fatalf("first sign-in: %v", err)
	}

	// A same-identity restart keeps the snapshot for warm start.
	if err := ClearOnIdentityChange(ctx, client, "user-1"); err != nil {
		t.Fatalf("same-identity restart: %v", err)
	}
	if loaded, _ := prev.Load(ctx); len(loaded) != 1 {
		t.Fatal("same-identity restart must keep the snapshot")
	}

	// A different identity signing in releases the previous one's key.
	if err := ClearOnIdentityChange(ctx, client, "user-2"); err != nil {
		t.Fatalf("identity change: %v", err)
	}
	if loaded, _ := prev.Load(ctx); loaded != nil {
		t.Fatalf("previous identity's snapshot must be released, got %+v", loaded)
	}
}

func TestWarmStartSeedsStoreFromCache(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()
	if err := cache.Save(ctx, []models.Booking{{ID: "b1", Status: models.StatusAssigned}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	s := NewDefaultStore(&fakeAPI{}, nil, cache, time.UTC)
	s.WarmStart(ctx)

	b, ok := s.Get("b1")
	if !ok || b.Status != models.StatusAssigned {
		t.Fatalf("warm start did not seed the store: %+v ok=%v", b, ok)
	}
}

func TestWarmStartNeverOverwritesLiveData(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()
	if err := cache.Save(ctx, []models.Booking{{ID: "b1", Status: models.StatusPending}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	s := NewDefaultStore(&fakeAPI{}, nil, cache, time.UTC)
	s.ApplyRemoteEvent(models.RealtimeEvent{Kind: models.EventBookingCreated, Booking: rawBooking("b1", "COMPLETED")})

	s.WarmStart(ctx)

	b, _ := s.Get("b1")
	if b.Status != models.StatusCompleted {
		t.Fatalf("warm start must not clobber live state, got %q", b.Status)
	}
}
