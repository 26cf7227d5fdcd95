package routes

import (
	"time"

	"servisync/handlers"
	"servisync/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterSyncRoutes registers the gateway endpoints the presentation layer
// consumes. The UI only ever reads snapshots and invokes these mutations; it
// never talks to the marketplace backend or the socket directly.
func RegisterSyncRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())

	r.GET("/health", hb.HealthHandler)

	api := r.Group("/api")
	{
		api.GET("/bookings", hb.GetBookingsHandler)
		api.GET("/bookings/:id", hb.GetBookingHandler)
		api.POST("/bookings", hb.CreateBookingHandler)
		api.POST("/bookings/refresh", hb.RefreshBookingsHandler)
		api.POST("/bookings/:id/cancel", hb.CancelBookingHandler)
		api.PATCH("/bookings/:id/status", hb.UpdateBookingStatusHandler)

		api.GET("/reviews/pending", hb.PendingReviewsHandler)
		api.POST("/reviews", hb.SubmitReviewHandler)

		api.GET("/cues", hb.DrainCuesHandler)
	}
}
