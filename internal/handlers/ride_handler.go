package handlers

import (
	"tushare/internal/middleware"
	"tushare/internal/services"
	"tushare/internal/utils"
	"tushare/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideHandler struct {
	rideService services.RideService
	logger      *logger.Logger
}

func NewRideHandler(rideService services.RideService, log *logger.Logger) *RideHandler {
	return &RideHandler{
		rideService: rideService,
		logger:      log,
	}
}

func (h *RideHandler) CreateRide(c *gin.Context) {
	driverID, err := middleware.GetUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, "not authenticated")
		return
	}

	var req services.CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid ride payload")
		return
	}

	ride, err := h.rideService.CreateRide(c.Request.Context(), driverID, &req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	utils.CreatedResponse(c, "ride created", ride)
}

// GetAvailableRides handles GET /rides?destination=...
func (h *RideHandler) GetAvailableRides(c *gin.Context) {
	destination := c.Query("destination")

	rides, err := h.rideService.GetAvailableRides(c.Request.Context(), destination)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "", rides, &utils.Meta{Count: len(rides)})
}

func (h *RideHandler) GetRide(c *gin.Context) {
	rideID, ok := h.rideIDParam(c)
	if !ok {
		return
	}

	ride, err := h.rideService.GetRide(c.Request.Context(), rideID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "", ride)
}

func (h *RideHandler) UpdateRide(c *gin.Context) {
	driverID, err := middleware.GetUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, "not authenticated")
		return
	}

	rideID, ok := h.rideIDParam(c)
	if !ok {
		return
	}

	var req services.UpdateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid ride payload")
		return
	}

	ride, err := h.rideService.UpdateRide(c.Request.Context(), rideID, driverID, &req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "ride updated", ride)
}

func (h *RideHandler) DeleteRide(c *gin.Context) {
	driverID, err := middleware.GetUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, "not authenticated")
		return
	}

	rideID, ok := h.rideIDParam(c)
	if !ok {
		return
	}

	if err := h.rideService.DeleteRide(c.Request.Context(), rideID, driverID); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	utils.NoContentResponse(c)
}

func (h *RideHandler) BookRide(c *gin.Context) {
	passengerID, err := middleware.GetUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, "not authenticated")
		return
	}

	rideID, ok := h.rideIDParam(c)
	if !ok {
		return
	}

	booking, err := h.rideService.BookRide(c.Request.Context(), rideID, passengerID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	utils.CreatedResponse(c, "ride booked", booking)
}

func (h *RideHandler) CancelBooking(c *gin.Context) {
	passengerID, err := middleware.GetUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, "not authenticated")
		return
	}

	bookingID, err := primitive.ObjectIDFromHex(c.Param("booking_id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid booking id")
		return
	}

	if err := h.rideService.CancelBooking(c.Request.Context(), bookingID, passengerID); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "booking canceled", nil)
}

func (h *RideHandler) GetBookedRides(c *gin.Context) {
	passengerID, err := middleware.GetUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, "not authenticated")
		return
	}

	rides, err := h.rideService.GetBookedRides(c.Request.Context(), passengerID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "", rides, &utils.Meta{Count: len(rides)})
}

func (h *RideHandler) rideIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	rideID, err := primitive.ObjectIDFromHex(c.Param("ride_id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid ride id")
		return primitive.NilObjectID, false
	}
	return rideID, true
}
