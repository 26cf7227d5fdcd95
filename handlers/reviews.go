package handlers

import (
	"errors"
	"net/http"

	"servisync/models"
	"servisync/services/booking"
	"servisync/utils"

	"github.com/gin-gonic/gin"
)

// PendingReviewsHandler returns the derived review queue plus the single
// booking the prompt should currently show.
func (hb *HandlerBundle) PendingReviewsHandler(c *gin.Context) {
	resp := gin.H{"pending": hb.Gate.Pending()}
	if current, ok := hb.Gate.Current(); ok {
		resp["current"] = current
	}
	c.JSON(http.StatusOK, resp)
}

// SubmitReviewHandler posts a review and returns the updated booking. The
// booking leaves the pending queue in the same store update.
func (hb *HandlerBundle) SubmitReviewHandler(c *gin.Context) {
	var req models.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if req.BookingID == "" || req.Rating < 1 || req.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bookingId and a 1-5 rating are required"})
		return
	}

	updated, err := hb.Store.SubmitReview(c.Request.Context(), req)
	if err != nil {
		var se *booking.StoreError
		if errors.As(err, &se) {
			switch se.Code {
			case "bookingNotFound":
				utils.JSONErrorCode(c, http.StatusNotFound, se.Code, "booking not found", req.BookingID)
				return
			case "alreadyReviewed":
				utils.JSONErrorCode(c, http.StatusConflict, se.Code, "booking already reviewed", req.BookingID)
				return
			}
		}
		c.JSON(writeErrorStatus(err), gin.H{"error": "failed to submit review", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DrainCuesHandler hands the queued notification cues to the UI and clears
// the buffer. Cues are fire-and-forget: a crash between drain and playback
// just loses sounds.
func (hb *HandlerBundle) DrainCuesHandler(c *gin.Context) {
	cues := hb.Notifier.Drain()
	if cues == nil {
		cues = []models.Cue{}
	}
	c.JSON(http.StatusOK, gin.H{"cues": cues})
}

// HealthHandler reports gateway liveness.
func (hb *HandlerBundle) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
