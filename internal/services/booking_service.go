package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tripora/server/internal/models"
)

type BookingService struct {
	bookings models.BookingRepo
	packages models.PackageRepo
	users    models.UserRepo
	now      func() time.Time
}

func NewBookingService(bookings models.BookingRepo, packages models.PackageRepo, users models.UserRepo) *BookingService {
	return &BookingService{
		bookings: bookings,
		packages: packages,
		users:    users,
		now:      time.Now,
	}
}

type CreateBookingInput struct {
	PackageID       primitive.ObjectID
	TravelDate      time.Time
	Travelers       int
	TravelerDetails []models.TravelerDetail
	ContactDetails  *models.ContactDetails
	SpecialRequests string
}

// CreateBooking derives the total from the package detail's adult price when
// one is set, falling back to the package's flat price. Nothing prevents the
// same user booking the same package and date twice; that is intentional.
func (bs *BookingService) CreateBooking(ctx context.Context, userID primitive.ObjectID, in CreateBookingInput) (*models.Booking, error) {
	if in.Travelers < 1 {
		return nil, fmt.Errorf("%w: travelers must be at least 1", models.ErrValidation)
	}

	user, err := bs.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	pkg, err := bs.packages.GetPackageByID(ctx, in.PackageID, true)
	if err != nil {
		return nil, err
	}

	unitPrice := pkg.Price
	detail, err := bs.packages.GetPackageDetail(ctx, in.PackageID)
	if err != nil && err != models.ErrDetailNotFound {
		return nil, err
	}
	if detail != nil && detail.Pricing.AdultPrice > 0 {
		unitPrice = detail.Pricing.AdultPrice
	}

	contact := in.ContactDetails
	if contact == nil || contact.PrimaryContact.Name == "" {
		contact = &models.ContactDetails{
			PrimaryContact: models.ContactPerson{
				Name:  user.Name,
				Email: user.Email,
				Phone: user.Phone,
			},
		}
	}

	nowTime := bs.now()
	booking := &models.Booking{
		UserID:          userID,
		PackageID:       in.PackageID,
		TravelDate:      in.TravelDate,
		Travelers:       in.Travelers,
		TotalAmount:     float64(in.Travelers) * unitPrice,
		TravelerDetails: in.TravelerDetails,
		ContactDetails:  *contact,
		PaymentStatus:   models.PaymentPending,
		BookingStatus:   models.BookingPending,
		SpecialRequests: in.SpecialRequests,
		CreatedAt:       nowTime,
		UpdatedAt:       nowTime,
	}
	if booking.TravelerDetails == nil {
		booking.TravelerDetails = []models.TravelerDetail{}
	}
	return bs.bookings.CreateBooking(ctx, booking)
}

func (bs *BookingService) ListUserBookings(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.Booking, models.Pagination, error) {
	page, limit = normalizePage(page, limit)
	bookings, total, err := bs.bookings.ListUserBookings(ctx, userID, (page-1)*limit, limit)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return bookings, models.NewPagination(page, limit, total), nil
}

// GetBooking is ownership-scoped: a booking owned by someone else is
// indistinguishable from a missing one.
func (bs *BookingService) GetBooking(ctx context.Context, bookingID, userID primitive.ObjectID) (*models.Booking, error) {
	return bs.bookings.GetBookingForUser(ctx, bookingID, userID)
}

// UpdatePaymentStatus merges the supplied payment details onto whatever was
// recorded before, stamping paymentDate. A successful payment forces the
// booking to confirmed; no other payment status touches bookingStatus.
func (bs *BookingService) UpdatePaymentStatus(ctx context.Context, bookingID, userID primitive.ObjectID, paymentStatus string, details *models.PaymentDetails) (*models.Booking, error) {
	switch paymentStatus {
	case models.PaymentPending, models.PaymentSuccess, models.PaymentFailed:
	default:
		return nil, fmt.Errorf("%w: invalid payment status %q", models.ErrValidation, paymentStatus)
	}

	booking, err := bs.bookings.GetBookingForUser(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}

	merged := booking.PaymentDetails
	if details != nil {
		merged = mergePaymentDetails(booking.PaymentDetails, details)
		merged.PaymentDate = bs.now()
	}

	bookingStatus := booking.BookingStatus
	if paymentStatus == models.PaymentSuccess {
		bookingStatus = models.BookingConfirmed
	}
	return bs.bookings.SetPayment(ctx, bookingID, paymentStatus, merged, bookingStatus)
}

func mergePaymentDetails(existing, update *models.PaymentDetails) *models.PaymentDetails {
	merged := models.PaymentDetails{}
	if existing != nil {
		merged = *existing
	}
	if update.PaymentMethod != "" {
		merged.PaymentMethod = update.PaymentMethod
	}
	if update.TransactionID != "" {
		merged.TransactionID = update.TransactionID
	}
	if update.PaymentGateway != "" {
		merged.PaymentGateway = update.PaymentGateway
	}
	return &merged
}

// DaysUntilTravel counts whole days from now to the travel date, rounding up.
func DaysUntilTravel(travelDate, now time.Time) int {
	return int(math.Ceil(travelDate.Sub(now).Hours() / 24))
}

// RefundPercent implements the fixed cancellation schedule. Boundaries are
// strict: exactly 15 days out refunds 50%, exactly 3 days out refunds
// nothing.
func RefundPercent(daysUntilTravel int) float64 {
	switch {
	case daysUntilTravel > 15:
		return 0.75
	case daysUntilTravel > 7:
		return 0.50
	case daysUntilTravel > 3:
		return 0.25
	default:
		return 0
	}
}

// CancelBooking applies the refund schedule and records the cancellation.
// Cancelling an already-cancelled booking fails without touching the stored
// cancellation details.
func (bs *BookingService) CancelBooking(ctx context.Context, bookingID, userID primitive.ObjectID, reason string) (*models.Booking, float64, string, error) {
	booking, err := bs.bookings.GetBookingForUser(ctx, bookingID, userID)
	if err != nil {
		return nil, 0, "", err
	}
	if booking.BookingStatus == models.BookingCancelled {
		return nil, 0, "", models.ErrAlreadyCancelled
	}

	nowTime := bs.now()
	refundAmount := booking.TotalAmount * RefundPercent(DaysUntilTravel(booking.TravelDate, nowTime))

	refundStatus := models.RefundProcessed
	if refundAmount > 0 {
		refundStatus = models.RefundPending
	}
	details := &models.CancellationDetails{
		CancelledAt:        nowTime,
		CancellationReason: reason,
		RefundAmount:       refundAmount,
		RefundStatus:       refundStatus,
	}

	cancelled, err := bs.bookings.Cancel(ctx, bookingID, details)
	if err != nil {
		return nil, 0, "", err
	}

	message := "No refund applicable as per cancellation policy"
	if refundAmount > 0 {
		message = fmt.Sprintf("Refund of %.2f will be processed within 5-7 business days", refundAmount)
	}
	return cancelled, refundAmount, message, nil
}

func (bs *BookingService) ListAllBookings(ctx context.Context, filter models.BookingFilter, page, limit int) ([]*models.Booking, models.Pagination, error) {
	page, limit = normalizePage(page, limit)
	bookings, total, err := bs.bookings.ListAllBookings(ctx, filter, (page-1)*limit, limit)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return bookings, models.NewPagination(page, limit, total), nil
}

// GetStatistics aggregates counts and revenue, with the monthly breakdown
// restricted to the current calendar year.
func (bs *BookingService) GetStatistics(ctx context.Context) (*models.BookingStats, error) {
	nowTime := bs.now()
	yearStart := time.Date(nowTime.Year(), time.January, 1, 0, 0, 0, 0, nowTime.Location())
	return bs.bookings.GetStatistics(ctx, yearStart)
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}
