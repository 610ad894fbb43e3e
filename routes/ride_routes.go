package routes

import (
	"tushare/internal/handlers"
	"tushare/internal/middleware"
	"tushare/internal/models"
	"tushare/internal/repositories/interfaces"

	"github.com/gin-gonic/gin"
)

func SetupRideRoutes(r *gin.RouterGroup, rideHandler *handlers.RideHandler, userRepo interfaces.UserRepository) {
	rides := r.Group("/rides")
	{
		// Passenger endpoints
		passenger := rides.Group("")
		passenger.Use(middleware.RoleRequired(userRepo, models.UserRolePassenger))
		{
			passenger.GET("", rideHandler.GetAvailableRides)
			passenger.GET("/booked", rideHandler.GetBookedRides)
			passenger.POST("/:ride_id/book", rideHandler.BookRide)
		}

		// Driver endpoints
		driver := rides.Group("")
		driver.Use(middleware.RoleRequired(userRepo, models.UserRoleDriver))
		{
			driver.POST("/new-ride", rideHandler.CreateRide)
			driver.PUT("/:ride_id", rideHandler.UpdateRide)
			driver.DELETE("/:ride_id", rideHandler.DeleteRide)
		}

		// Any verified member
		member := rides.Group("")
		member.Use(middleware.RoleRequired(userRepo, models.UserRolePassenger, models.UserRoleDriver))
		{
			member.GET("/:ride_id", rideHandler.GetRide)
		}
	}

	bookings := r.Group("/bookings")
	bookings.Use(middleware.RoleRequired(userRepo, models.UserRolePassenger))
	{
		bookings.POST("/:booking_id/cancel", rideHandler.CancelBooking)
	}
}
