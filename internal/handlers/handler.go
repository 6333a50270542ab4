package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tripora/server/internal/middleware"
	"github.com/tripora/server/internal/models"
)

// statusFor maps service-layer errors onto HTTP status codes. Anything
// unrecognized is a 500 and must not leak its message to the client.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrPackageNotFound),
		errors.Is(err, models.ErrDetailNotFound),
		errors.Is(err, models.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidCredentials),
		errors.Is(err, models.ErrMissingAuthHeader),
		errors.Is(err, models.ErrMissingToken),
		errors.Is(err, models.ErrInvalidToken),
		errors.Is(err, models.ErrTokenExpired),
		errors.Is(err, models.ErrSessionInvalid),
		errors.Is(err, models.ErrSessionSuperseded):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrDetailExists):
		return http.StatusConflict
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrDuplicateEmail),
		errors.Is(err, models.ErrAlreadyCancelled),
		errors.Is(err, models.ErrAlreadyLoggedOut),
		errors.Is(err, models.ErrResetTokenInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error response for err. 500s get a generic message and the
// real error goes through the gin error chain for the logger middleware.
func fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		c.Error(err)
		c.JSON(status, models.ErrorResponse("Server error"))
		return
	}
	c.JSON(status, models.ErrorResponse(err.Error()))
}

// currentUserID pulls the authenticated user ID out of the request context.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
	}
	return id, ok
}

// objectIDParam parses the named path parameter as an ObjectID.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid id"))
		return primitive.NilObjectID, false
	}
	return id, true
}
