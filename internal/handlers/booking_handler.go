package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tripora/server/internal/models"
	"github.com/tripora/server/internal/services"
)

type createBookingRequest struct {
	PackageID       string                  `json:"packageId" binding:"required"`
	TravelDate      string                  `json:"travelDate" binding:"required"`
	Travelers       int                     `json:"travelers" binding:"required,min=1"`
	TravelerDetails []models.TravelerDetail `json:"travelerDetails"`
	ContactDetails  *models.ContactDetails  `json:"contactDetails"`
	SpecialRequests string                  `json:"specialRequests"`
}

// parseTravelDate accepts either a bare date or a full timestamp.
func parseTravelDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func CreateBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		var req createBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		packageID, err := primitive.ObjectIDFromHex(req.PackageID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid package id"))
			return
		}

		travelDate, err := parseTravelDate(req.TravelDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid travel date"))
			return
		}

		booking, err := b.CreateBooking(c.Request.Context(), userID, services.CreateBookingInput{
			PackageID:       packageID,
			TravelDate:      travelDate,
			Travelers:       req.Travelers,
			TravelerDetails: req.TravelerDetails,
			ContactDetails:  req.ContactDetails,
			SpecialRequests: req.SpecialRequests,
		})
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(booking, "booking created successfully"))
	}
}

type listBookingsRequest struct {
	Page          int    `json:"page"`
	Limit         int    `json:"limit"`
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
}

// listParams reads pagination and filters from the JSON body, falling back
// to query parameters; an empty body means the defaults.
func listParams(c *gin.Context) listBookingsRequest {
	var req listBookingsRequest
	_ = c.ShouldBindJSON(&req)
	if req.Page == 0 {
		if p, err := strconv.Atoi(c.Query("page")); err == nil {
			req.Page = p
		}
	}
	if req.Limit == 0 {
		if l, err := strconv.Atoi(c.Query("limit")); err == nil {
			req.Limit = l
		}
	}
	if req.Status == "" {
		req.Status = c.Query("status")
	}
	if req.PaymentStatus == "" {
		req.PaymentStatus = c.Query("paymentStatus")
	}
	return req
}

// MyBookings lists the caller's own bookings, newest first.
func MyBookings(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		req := listParams(c)
		bookings, pagination, err := b.ListUserBookings(c.Request.Context(), userID, req.Page, req.Limit)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(bookings, pagination))
	}
}

// GetBooking fetches one booking. A booking that belongs to someone else
// looks exactly like a missing one.
func GetBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		bookingID, ok := objectIDParam(c, "id")
		if !ok {
			return
		}

		booking, err := b.GetBooking(c.Request.Context(), bookingID, userID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, "booking retrieved"))
	}
}

type updatePaymentRequest struct {
	PaymentStatus  string                 `json:"paymentStatus" binding:"required"`
	PaymentDetails *models.PaymentDetails `json:"paymentDetails"`
}

func UpdatePaymentStatus(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		bookingID, ok := objectIDParam(c, "id")
		if !ok {
			return
		}

		var req updatePaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		booking, err := b.UpdatePaymentStatus(c.Request.Context(), bookingID, userID, req.PaymentStatus, req.PaymentDetails)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, "payment status updated"))
	}
}

type cancelBookingRequest struct {
	CancellationReason string `json:"cancellationReason"`
}

func CancelBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		bookingID, ok := objectIDParam(c, "id")
		if !ok {
			return
		}

		var req cancelBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		booking, refundAmount, message, err := b.CancelBooking(c.Request.Context(), bookingID, userID, req.CancellationReason)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"booking":      booking,
			"refundAmount": refundAmount,
		}, message))
	}
}

// AllBookings is the admin view across every user, optionally filtered by
// booking or payment status.
func AllBookings(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := listParams(c)
		filter := models.BookingFilter{
			BookingStatus: req.Status,
			PaymentStatus: req.PaymentStatus,
		}

		bookings, pagination, err := b.ListAllBookings(c.Request.Context(), filter, req.Page, req.Limit)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(bookings, pagination))
	}
}

func BookingStatistics(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := b.GetStatistics(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(stats, "statistics retrieved"))
	}
}
