package backend

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"servisync/models"
)

// ListBookings fetches the caller's full booking list.
func (c *Client) ListBookings(ctx context.Context) ([]models.RawBooking, error) {
	var out []models.RawBooking
	if err := c.getJSON(ctx, "/bookings", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateBooking submits a booking request. With an attachment the request
// goes out as multipart, otherwise as JSON.
func (c *Client) CreateBooking(ctx context.Context, req models.BookingRequest) (models.RawBooking, error) {
	var out models.RawBooking
	if req.Attachment == nil {
		if err := c.postJSON(ctx, "/bookings", req, &out); err != nil {
			return models.RawBooking{}, err
		}
		return out, nil
	}

	fields := map[string]string{
		"serviceId":   req.ServiceID,
		"scheduledAt": req.ScheduledAt.Format(time.RFC3339),
	}
	if req.Notes != "" {
		fields["notes"] = req.Notes
	}
	if req.Location != "" {
		fields["location"] = req.Location
	}
	if req.IdempotencyKey != "" {
		fields["idempotencyKey"] = req.IdempotencyKey
	}
	if err := c.postMultipart(ctx, "/bookings", fields, "referenceImage", req.Attachment, &out); err != nil {
		return models.RawBooking{}, err
	}
	return out, nil
}

// CancelBooking asks the backend to cancel a booking. Cancellation is a
// status transition server-side, the record is never deleted.
func (c *Client) CancelBooking(ctx context.Context, id string) error {
	return c.postJSON(ctx, "/bookings/"+id+"/cancel", struct{}{}, nil)
}

// UpdateBookingStatus pushes a status change, multipart when a completion
// attachment is included.
func (c *Client) UpdateBookingStatus(ctx context.Context, id string, upd models.StatusUpdate) (models.RawBooking, error) {
	var out models.RawBooking
	if upd.Attachment == nil {
		if err := c.patchJSON(ctx, "/bookings/"+id+"/status", upd, &out); err != nil {
			return models.RawBooking{}, err
		}
		return out, nil
	}

	fields := map[string]string{"status": string(upd.Status)}
	if upd.CompletionNote != "" {
		fields["completionNote"] = upd.CompletionNote
	}
	if err := c.postMultipart(ctx, "/bookings/"+id+"/status", fields, "completionImage", upd.Attachment, &out); err != nil {
		return models.RawBooking{}, err
	}
	return out, nil
}

// SubmitReview posts a review for a completed booking.
func (c *Client) SubmitReview(ctx context.Context, req models.ReviewRequest) (models.RawReview, error) {
	var out models.RawReview
	if err := c.postJSON(ctx, "/reviews", req, &out); err != nil {
		return models.RawReview{}, err
	}
	return out, nil
}

func (c *Client) postMultipart(ctx context.Context, path string, fields map[string]string, fileField string, att *models.Attachment, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("write multipart field %s: %w", k, err)
		}
	}
	part, err := w.CreateFormFile(fileField, att.FileName)
	if err != nil {
		return fmt.Errorf("create multipart file part: %w", err)
	}
	if _, err := part.Write(att.Data); err != nil {
		return fmt.Errorf("write multipart file: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, &buf, w.FormDataContentType())
	if err != nil {
		return err
	}
	return c.do(req, out)
}
