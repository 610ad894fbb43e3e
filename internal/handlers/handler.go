package handlers

import (
	"errors"
	"net/http"

	"tushare/internal/services"
	"tushare/internal/utils"
	"tushare/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondServiceError translates a service error into the API envelope.
// Validation failures become field-level 400s; anything not in the
// domain taxonomy becomes an opaque 500 and is logged in full.
func respondServiceError(c *gin.Context, log *logger.Logger, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		utils.ValidationErrorResponse(c, utils.FormatValidationErrors(validationErrs))
		return
	}

	status, code := services.ErrorStatus(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.Request.URL.Path).Error("Request failed")
		if code == "INTERNAL_ERROR" {
			utils.InternalServerErrorResponse(c)
			return
		}
	}

	utils.ErrorResponse(c, status, code, publicMessage(err, status))
}

// publicMessage strips wrapping so storage details never reach clients.
func publicMessage(err error, status int) string {
	if status == http.StatusInternalServerError {
		for _, known := range []error{services.ErrCannotCompleteBooking, services.ErrTokenMissingEmail} {
			if errors.Is(err, known) {
				return known.Error()
			}
		}
		return utils.ErrInternalServer
	}
	return err.Error()
}
