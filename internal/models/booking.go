package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const BookingsColName = "bookings"

const (
	PaymentPending = "pending"
	PaymentSuccess = "success"
	PaymentFailed  = "failed"

	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"

	RefundPending   = "pending"
	RefundProcessed = "processed"
	RefundRejected  = "rejected"
)

type TravelerDetail struct {
	Name     string `bson:"name" json:"name" validate:"required"`
	Age      int    `bson:"age" json:"age" validate:"required,min=0"`
	Gender   string `bson:"gender" json:"gender" validate:"required,oneof=male female other"`
	Phone    string `bson:"phone,omitempty" json:"phone,omitempty"`
	Email    string `bson:"email,omitempty" json:"email,omitempty"`
	IDType   string `bson:"idType,omitempty" json:"idType,omitempty" validate:"omitempty,oneof=passport aadhar driving_license voter_id"`
	IDNumber string `bson:"idNumber,omitempty" json:"idNumber,omitempty"`
}

type ContactPerson struct {
	Name  string `bson:"name" json:"name"`
	Phone string `bson:"phone" json:"phone"`
	Email string `bson:"email" json:"email"`
}

type EmergencyContact struct {
	Name     string `bson:"name" json:"name"`
	Phone    string `bson:"phone" json:"phone"`
	Relation string `bson:"relation" json:"relation"`
}

type ContactDetails struct {
	PrimaryContact   ContactPerson     `bson:"primaryContact" json:"primaryContact"`
	EmergencyContact *EmergencyContact `bson:"emergencyContact,omitempty" json:"emergencyContact,omitempty"`
}

type PaymentDetails struct {
	PaymentMethod  string    `bson:"paymentMethod,omitempty" json:"paymentMethod,omitempty" validate:"omitempty,oneof=credit_card debit_card upi net_banking wallet"`
	TransactionID  string    `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	PaymentDate    time.Time `bson:"paymentDate,omitempty" json:"paymentDate,omitempty"`
	PaymentGateway string    `bson:"paymentGateway,omitempty" json:"paymentGateway,omitempty"`
}

type CancellationDetails struct {
	CancelledAt        time.Time `bson:"cancelledAt" json:"cancelledAt"`
	CancellationReason string    `bson:"cancellationReason" json:"cancellationReason"`
	RefundAmount       float64   `bson:"refundAmount" json:"refundAmount"`
	RefundStatus       string    `bson:"refundStatus" json:"refundStatus"`
}

type Booking struct {
	ID                  primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID              primitive.ObjectID   `bson:"userId" json:"userId"`
	PackageID           primitive.ObjectID   `bson:"packageId" json:"packageId"`
	TravelDate          time.Time            `bson:"travelDate" json:"travelDate"`
	Travelers           int                  `bson:"travelers" json:"travelers" validate:"required,min=1"`
	TotalAmount         float64              `bson:"totalAmount" json:"totalAmount" validate:"min=0"`
	TravelerDetails     []TravelerDetail     `bson:"travelerDetails" json:"travelerDetails"`
	ContactDetails      ContactDetails       `bson:"contactDetails" json:"contactDetails"`
	PaymentStatus       string               `bson:"paymentStatus" json:"paymentStatus"`
	BookingStatus       string               `bson:"bookingStatus" json:"bookingStatus"`
	PaymentDetails      *PaymentDetails      `bson:"paymentDetails,omitempty" json:"paymentDetails,omitempty"`
	CancellationDetails *CancellationDetails `bson:"cancellationDetails,omitempty" json:"cancellationDetails,omitempty"`
	SpecialRequests     string               `bson:"specialRequests,omitempty" json:"specialRequests,omitempty"`
	CreatedAt           time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// BookingFilter holds the optional admin-listing equality filters.
type BookingFilter struct {
	BookingStatus string
	PaymentStatus string
}

type BookingOverview struct {
	TotalBookings     int64   `json:"totalBookings"`
	ConfirmedBookings int64   `json:"confirmedBookings"`
	PendingBookings   int64   `json:"pendingBookings"`
	CancelledBookings int64   `json:"cancelledBookings"`
	TotalRevenue      float64 `json:"totalRevenue"`
}

type MonthlyStat struct {
	Month   int     `bson:"_id" json:"month"`
	Count   int64   `bson:"count" json:"count"`
	Revenue float64 `bson:"revenue" json:"revenue"`
}

type BookingStats struct {
	Overview     BookingOverview `json:"overview"`
	MonthlyStats []MonthlyStat   `json:"monthlyStats"`
}

type BookingRepo interface {
	CreateBooking(ctx context.Context, booking *Booking) (*Booking, error)
	// GetBookingForUser scopes the lookup by owner; a booking that exists
	// but belongs to someone else is reported as not found.
	GetBookingForUser(ctx context.Context, bookingID, userID primitive.ObjectID) (*Booking, error)
	ListUserBookings(ctx context.Context, userID primitive.ObjectID, skip, limit int) ([]*Booking, int64, error)
	ListAllBookings(ctx context.Context, filter BookingFilter, skip, limit int) ([]*Booking, int64, error)
	SetPayment(ctx context.Context, bookingID primitive.ObjectID, paymentStatus string, details *PaymentDetails, bookingStatus string) (*Booking, error)
	// Cancel flips the booking to cancelled, conditional on it not being
	// cancelled already.
	Cancel(ctx context.Context, bookingID primitive.ObjectID, details *CancellationDetails) (*Booking, error)
	GetStatistics(ctx context.Context, yearStart time.Time) (*BookingStats, error)
}

func (mdb *MongodbRepo) CreateBooking(ctx context.Context, booking *Booking) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	if _, err := col.InsertOne(ctx, booking); err != nil {
		return nil, fmt.Errorf("error inserting booking: %v", err)
	}
	return booking, nil
}

func (mdb *MongodbRepo) GetBookingForUser(ctx context.Context, bookingID, userID primitive.ObjectID) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var booking Booking
	err = col.FindOne(ctx, bson.M{"_id": bookingID, "userId": userID}).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("error finding booking: %v", err)
	}
	return &booking, nil
}

func (mdb *MongodbRepo) ListUserBookings(ctx context.Context, userID primitive.ObjectID, skip, limit int) ([]*Booking, int64, error) {
	return mdb.listBookings(ctx, bson.M{"userId": userID}, skip, limit)
}

func (mdb *MongodbRepo) ListAllBookings(ctx context.Context, filter BookingFilter, skip, limit int) ([]*Booking, int64, error) {
	query := bson.M{}
	if filter.BookingStatus != "" {
		query["bookingStatus"] = filter.BookingStatus
	}
	if filter.PaymentStatus != "" {
		query["paymentStatus"] = filter.PaymentStatus
	}
	return mdb.listBookings(ctx, query, skip, limit)
}

func (mdb *MongodbRepo) listBookings(ctx context.Context, query bson.M, skip, limit int) ([]*Booking, int64, error) {
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting collection: %v", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error finding bookings: %v", err)
	}
	defer cursor.Close(ctx)

	var bookings []*Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, 0, fmt.Errorf("error decoding bookings: %v", err)
	}

	total, err := col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting bookings: %v", err)
	}
	return bookings, total, nil
}

func (mdb *MongodbRepo) SetPayment(ctx context.Context, bookingID primitive.ObjectID, paymentStatus string, details *PaymentDetails, bookingStatus string) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	fields := bson.M{
		"paymentStatus": paymentStatus,
		"bookingStatus": bookingStatus,
		"updatedAt":     time.Now(),
	}
	if details != nil {
		fields["paymentDetails"] = details
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Booking
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": bookingID}, bson.M{"$set": fields}, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("error updating payment: %v", err)
	}
	return &updated, nil
}

func (mdb *MongodbRepo) Cancel(ctx context.Context, bookingID primitive.ObjectID, details *CancellationDetails) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	// The filter excludes already-cancelled bookings so a concurrent second
	// cancel cannot overwrite the first one's cancellationDetails.
	filter := bson.M{
		"_id":           bookingID,
		"bookingStatus": bson.M{"$ne": BookingCancelled},
	}
	update := bson.M{"$set": bson.M{
		"bookingStatus":       BookingCancelled,
		"cancellationDetails": details,
		"updatedAt":           time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Booking
	err = col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrAlreadyCancelled
		}
		return nil, fmt.Errorf("error cancelling booking: %v", err)
	}
	return &updated, nil
}

// GetStatistics aggregates the admin dashboard numbers: status counts,
// revenue over successful payments, and a per-month breakdown of bookings
// created since yearStart, ascending by month.
func (mdb *MongodbRepo) GetStatistics(ctx context.Context, yearStart time.Time) (*BookingStats, error) {
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	stats := &BookingStats{MonthlyStats: []MonthlyStat{}}

	total, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("error counting bookings: %v", err)
	}
	stats.Overview.TotalBookings = total

	for status, dst := range map[string]*int64{
		BookingConfirmed: &stats.Overview.ConfirmedBookings,
		BookingPending:   &stats.Overview.PendingBookings,
		BookingCancelled: &stats.Overview.CancelledBookings,
	} {
		count, err := col.CountDocuments(ctx, bson.M{"bookingStatus": status})
		if err != nil {
			return nil, fmt.Errorf("error counting %s bookings: %v", status, err)
		}
		*dst = count
	}

	revenuePipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"paymentStatus": PaymentSuccess}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$totalAmount"},
		}}},
	}
	revCursor, err := col.Aggregate(ctx, revenuePipeline)
	if err != nil {
		return nil, fmt.Errorf("error aggregating revenue: %v", err)
	}
	defer revCursor.Close(ctx)

	var revResult []struct {
		Total float64 `bson:"total"`
	}
	if err := revCursor.All(ctx, &revResult); err != nil {
		return nil, fmt.Errorf("error decoding revenue: %v", err)
	}
	if len(revResult) > 0 {
		stats.Overview.TotalRevenue = revResult[0].Total
	}

	monthlyPipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": yearStart}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$month": "$createdAt"},
			"count": bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": bson.M{
				"$cond": bson.A{
					bson.M{"$eq": bson.A{"$paymentStatus", PaymentSuccess}},
					"$totalAmount",
					0,
				},
			}},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	monthCursor, err := col.Aggregate(ctx, monthlyPipeline)
	if err != nil {
		return nil, fmt.Errorf("error aggregating monthly stats: %v", err)
	}
	defer monthCursor.Close(ctx)

	if err := monthCursor.All(ctx, &stats.MonthlyStats); err != nil {
		return nil, fmt.Errorf("error decoding monthly stats: %v", err)
	}
	return stats, nil
}

// EnsureBookingIndexes covers the hot listing paths.
func (mdb *MongodbRepo) EnsureBookingIndexes(ctx context.Context) error {
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
			Options: options.Index().SetName("user_created_idx"),
		},
		{
			Keys:    bson.D{{Key: "paymentStatus", Value: 1}},
			Options: options.Index().SetName("payment_status_idx"),
		},
	}
	if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("error creating booking indexes: %v", err)
	}
	return nil
}
