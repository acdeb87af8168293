package transport

import (
	"github.com/gin-gonic/gin"

	"github.com/ds124wfegd/hotel-booking/internal/transport/middleware"
)

func InitRoutes(bookingHandler *BookingHandler, roomHandler *RoomHandler, guestHandler *GuestHandler, discountHandler *DiscountHandler) *gin.Engine {

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(30))

	// API routes
	api := router.Group("/api")
	{
		// Booking routes
		bookings := api.Group("/bookings")
		{
			bookings.POST("", bookingHandler.CreateBooking)
			bookings.GET("", bookingHandler.ListBookings)
			bookings.GET("/:id", bookingHandler.GetBooking)
			bookings.PUT("/:id", bookingHandler.UpdateBooking)
			bookings.PATCH("/:id/cancel", bookingHandler.CancelBooking)
			bookings.DELETE("/:id", bookingHandler.DeleteBooking)
			bookings.GET("/:id/payments", bookingHandler.GetBookingPayments)
		}

		// Room routes
		rooms := api.Group("/rooms")
		{
			rooms.POST("", roomHandler.CreateRoom)
			rooms.GET("", roomHandler.GetAllRooms)
			rooms.GET("/:id", roomHandler.GetRoom)
			rooms.PUT("/:id", roomHandler.UpdateRoom)
			rooms.GET("/:id/availability", roomHandler.CheckAvailability)
		}

		// Guest routes
		guests := api.Group("/guests")
		{
			guests.GET("", guestHandler.GetAllGuests)
			guests.GET("/:id", guestHandler.GetGuest)
		}

		// Discount routes
		api.GET("/packages", discountHandler.GetActivePackages)
		api.GET("/promotions", discountHandler.GetActivePromotions)
		api.GET("/coupons/:code", discountHandler.GetCoupon)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return router
}
