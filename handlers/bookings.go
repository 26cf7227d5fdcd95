package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"servisync/backend"
	"servisync/models"
	"servisync/services/booking"
	"servisync/services/notification"
	"servisync/services/review"
	"servisync/utils"

	"github.com/gin-gonic/gin"
)

// HandlerBundle carries the session-scoped services the gateway exposes.
type HandlerBundle struct {
	Store    booking.Store
	Gate     *review.Gate
	Notifier notification.Notifier
}

// GetBookingsHandler returns the current merged snapshot.
func (hb *HandlerBundle) GetBookingsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, hb.Store.Snapshot())
}

// GetBookingHandler returns a single booking by id.
func (hb *HandlerBundle) GetBookingHandler(c *gin.Context) {
	id := c.Param("id")
	b, ok := hb.Store.Get(id)
	if !ok {
		utils.JSONErrorCode(c, http.StatusNotFound, "bookingNotFound", "booking not found", id)
		return
	}
	c.JSON(http.StatusOK, b)
}

// RefreshBookingsHandler forces an immediate full-list refresh.
func (hb *HandlerBundle) RefreshBookingsHandler(c *gin.Context) {
	if err := hb.Store.FetchAll(c.Request.Context()); err != nil {
		// Prior state is still served; the client keeps what it had.
		utils.JSONError(c, http.StatusBadGateway, "refresh failed, showing last known state", err.Error())
		return
	}
	c.JSON(http.StatusOK, hb.Store.Snapshot())
}

// CreateBookingHandler submits a new booking. JSON for plain requests,
// multipart when a reference image rides along.
func (hb *HandlerBundle) CreateBookingHandler(c *gin.Context) {
	var req models.BookingRequest

	if isMultipart(c) {
		scheduledAt, err := time.Parse(time.RFC3339, c.PostForm("scheduledAt"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scheduledAt", "details": err.Error()})
			return
		}
		req = models.BookingRequest{
			ServiceID:   c.PostForm("serviceId"),
			ScheduledAt: scheduledAt,
			Notes:       c.PostForm("notes"),
			Location:    c.PostForm("location"),
		}
		att, err := formAttachment(c, "referenceImage")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attachment", "details": err.Error()})
			return
		}
		req.Attachment = att
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	created, err := hb.Store.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(writeErrorStatus(err), gin.H{"error": "failed to create booking", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// CancelBookingHandler cancels a booking. The local state flips immediately;
// a backend failure is reported but the refresh path handles recovery.
func (hb *HandlerBundle) CancelBookingHandler(c *gin.Context) {
	id := c.Param("id")
	if err := hb.Store.Cancel(c.Request.Context(), id); err != nil {
		var se *booking.StoreError
		if errors.As(err, &se) {
			switch se.Code {
			case "bookingNotFound":
				utils.JSONErrorCode(c, http.StatusNotFound, se.Code, "booking not found", id)
				return
			case "terminalState":
				utils.JSONErrorCode(c, http.StatusConflict, se.Code, "booking can no longer be canceled", se.Message)
				return
			}
		}
		c.JSON(writeErrorStatus(err), gin.H{"error": "failed to cancel booking", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": models.StatusCanceled})
}

// UpdateBookingStatusHandler pushes a status change, multipart when a
// completion image is attached.
func (hb *HandlerBundle) UpdateBookingStatusHandler(c *gin.Context) {
	id := c.Param("id")
	var upd models.StatusUpdate

	if isMultipart(c) {
		upd = models.StatusUpdate{
			Status:         models.Status(c.PostForm("status")),
			CompletionNote: c.PostForm("completionNote"),
		}
		att, err := formAttachment(c, "completionImage")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attachment", "details": err.Error()})
			return
		}
		upd.Attachment = att
	} else if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	if err := hb.Store.ChangeStatus(c.Request.Context(), id, upd); err != nil {
		var se *booking.StoreError
		if errors.As(err, &se) && se.Code == "bookingNotFound" {
			utils.JSONErrorCode(c, http.StatusNotFound, se.Code, "booking not found", id)
			return
		}
		c.JSON(writeErrorStatus(err), gin.H{"error": "failed to update status", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": upd.Status})
}

func isMultipart(c *gin.Context) bool {
	ct := c.ContentType()
	return ct == "multipart/form-data"
}

// formAttachment reads an optional uploaded file into an Attachment.
func formAttachment(c *gin.Context, field string) (*models.Attachment, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &models.Attachment{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// writeErrorStatus picks a response code for a failed write: backend
// rejections map to 422, everything else is a bad gateway.
func writeErrorStatus(err error) int {
	if backend.IsClientError(err) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}
