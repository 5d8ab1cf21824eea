package routes

import (
	"time"

	"consultly/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all endpoints of the booking engine.
func RegisterRoutes(r *gin.Engine, bookingHandler *handlers.BookingHandler, healthHandler *handlers.HealthHandler) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", healthHandler.HealthzHandler)

	api := r.Group("/api")
	{
		api.GET("/availability", bookingHandler.ListAvailableSlotsHandler)

		bookings := api.Group("/bookings")
		{
			bookings.POST("", bookingHandler.CreateBookingHandler)
			bookings.GET("", bookingHandler.ListBookingsHandler)
			bookings.GET("/:id", bookingHandler.GetBookingHandler)
			bookings.PATCH("/:id", bookingHandler.UpdateBookingHandler)
			bookings.DELETE("/:id", bookingHandler.CancelBookingHandler)
		}
	}
}
