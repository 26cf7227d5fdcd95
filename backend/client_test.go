package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"servisync/models"
)

func TestListBookings(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/bookings" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]models.RawBooking{
			{ID: "b1", Status: "PENDING"},
			{ID: "b2", Status: "COMPLETED"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok123", 5*time.Second)
	got, err := c.ListBookings(context.Background())
	if err != nil {
		t.Fatalf("ListBookings: %v", err)
	}
	if len(got) != 2 || got[1].Status != "COMPLETED" {
		t.Fatalf("unexpected bookings: %+v", got)
	}
	if gotAuth != "Bearer tok123" {
		t.Fatalf("missing bearer auth, got %q", gotAuth)
	}
}

func TestCreateBookingJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q, want JSON", ct)
		}
		var req models.BookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.IdempotencyKey != "key-1" {
			t.Errorf("idempotency key not forwarded: %q", req.IdempotencyKey)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.RawBooking{ID: "b9", Status: "PENDING"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	got, err := c.CreateBooking(context.Background(), models.BookingRequest{
		ServiceID:      "svc1",
		ScheduledAt:    time.Now(),
		IdempotencyKey: "key-1",
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if got.ID != "b9" {
		t.Fatalf("created id = %q, want b9", got.ID)
	}
}

func TestCreateBookingMultipartWithAttachment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("content type = %q, want multipart", r.Header.Get("Content-Type"))
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if r.FormValue("serviceId") != "svc1" {
			t.Errorf("serviceId = %q", r.FormValue("serviceId"))
		}
		f, fh, err := r.FormFile("referenceImage")
		if err != nil {
			t.Fatalf("file part missing: %v", err)
		}
		defer f.Close()
		if fh.Filename != "leak.jpg" {
			t.Errorf("filename = %q", fh.Filename)
		}
		json.NewEncoder(w).Encode(models.RawBooking{ID: "b10", Status: "PENDING"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	got, err := c.CreateBooking(context.Background(), models.BookingRequest{
		ServiceID:   "svc1",
		ScheduledAt: time.Now(),
		Attachment: &models.Attachment{
			FileName:    "leak.jpg",
			ContentType: "image/jpeg",
			Data:        []byte{0xff, 0xd8},
		},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if got.ID != "b10" {
		t.Fatalf("created id = %q, want b10", got.ID)
	}
}

func TestUpdateBookingStatusJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/bookings/b1/status" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(models.RawBooking{ID: "b1", Status: "IN_PROGRESS"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	got, err := c.UpdateBookingStatus(context.Background(), "b1", models.StatusUpdate{Status: models.StatusInProgress})
	if err != nil {
		t.Fatalf("UpdateBookingStatus: %v", err)
	}
	if got.Status != "IN_PROGRESS" {
		t.Fatalf("status = %q", got.Status)
	}
}

func TestErrorResponsesMapToAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"message": "rating out of range"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	_, err := c.SubmitReview(context.Background(), models.ReviewRequest{BookingID: "b1", Rating: 9})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsClientError(err) {
		t.Fatalf("422 must classify as client error: %v", err)
	}
	if !strings.Contains(err.Error(), "rating out of range") {
		t.Fatalf("server message lost: %v", err)
	}
}

func TestServerErrorIsNotClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	err := c.CancelBooking(context.Background(), "b1")
	if err == nil {
		t.Fatal("expected error")
	}
	if IsClientError(err) {
		t.Fatalf("500 must not classify as client error: %v", err)
	}
}
