package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tripora/server/internal/models"
)

var errMockMail = errors.New("mock mail failure")

// fakeUserRepo is an in-memory models.UserRepo.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]*models.User{}}
}

func (f *fakeUserRepo) add(user *models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	cp := *user
	f.users[user.ID] = &cp
	return user
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	f.mu.Lock()
	for _, u := range f.users {
		if u.Email == user.Email {
			f.mu.Unlock()
			return nil, models.ErrDuplicateEmail
		}
	}
	f.mu.Unlock()
	return f.add(user), nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (f *fakeUserRepo) SetResetToken(ctx context.Context, id primitive.ObjectID, hashedToken string, expires time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.ErrUserNotFound
	}
	u.ResetPasswordToken = hashedToken
	u.ResetPasswordExpires = &expires
	return nil
}

func (f *fakeUserRepo) ClearResetToken(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.ErrUserNotFound
	}
	u.ResetPasswordToken = ""
	u.ResetPasswordExpires = nil
	return nil
}

func (f *fakeUserRepo) FindByResetToken(ctx context.Context, hashedToken string, now time.Time) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ResetPasswordToken == hashedToken && u.ResetPasswordExpires != nil && u.ResetPasswordExpires.After(now) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrResetTokenInvalid
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.ErrUserNotFound
	}
	u.Password = passwordHash
	u.ResetPasswordToken = ""
	u.ResetPasswordExpires = nil
	return nil
}

func (f *fakeUserRepo) SetCurrentSessionToken(ctx context.Context, id primitive.ObjectID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.ErrUserNotFound
	}
	u.CurrentSessionToken = token
	return nil
}

// fakeSessionRepo is an in-memory models.SessionRepo.
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions []*models.Session
}

func newFakeSessionRepo() *fakeSessionRepo { return &fakeSessionRepo{} }

func (f *fakeSessionRepo) CreateSession(ctx context.Context, session *models.Session) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if session.ID.IsZero() {
		session.ID = primitive.NewObjectID()
	}
	cp := *session
	f.sessions = append(f.sessions, &cp)
	return session, nil
}

func (f *fakeSessionRepo) GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.UserID == userID && s.Status == models.SessionActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeSessionRepo) GetActiveByToken(ctx context.Context, token string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.Token == token && s.Status == models.SessionActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeSessionRepo) DeactivateByToken(ctx context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.Token == token && s.Status == models.SessionActive {
			s.Status = models.SessionInactive
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSessionRepo) DeactivateByUser(ctx context.Context, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.UserID == userID {
			s.Status = models.SessionInactive
		}
	}
	return nil
}

func (f *fakeSessionRepo) activeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.sessions {
		if s.Status == models.SessionActive {
			n++
		}
	}
	return n
}

// fakePackageRepo is an in-memory models.PackageRepo.
type fakePackageRepo struct {
	mu       sync.Mutex
	packages map[primitive.ObjectID]*models.Package
	details  map[primitive.ObjectID]*models.PackageDetail
}

func newFakePackageRepo() *fakePackageRepo {
	return &fakePackageRepo{
		packages: map[primitive.ObjectID]*models.Package{},
		details:  map[primitive.ObjectID]*models.PackageDetail{},
	}
}

func (f *fakePackageRepo) CreatePackage(ctx context.Context, pkg *models.Package) (*models.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pkg.ID.IsZero() {
		pkg.ID = primitive.NewObjectID()
	}
	cp := *pkg
	f.packages[pkg.ID] = &cp
	return pkg, nil
}

func (f *fakePackageRepo) UpdatePackage(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pkg, ok := f.packages[id]
	if !ok {
		return nil, models.ErrPackageNotFound
	}
	for k, v := range fields {
		switch k {
		case "title":
			pkg.Title = v.(string)
		case "description":
			pkg.Description = v.(string)
		case "locations":
			pkg.Locations = v.([]string)
		case "price":
			pkg.Price = v.(float64)
		case "duration":
			pkg.Duration = v.(string)
		case "imageUrl":
			pkg.ImageURL = v.(string)
		}
	}
	pkg.UpdatedAt = time.Now()
	cp := *pkg
	return &cp, nil
}

func (f *fakePackageRepo) GetPackageByID(ctx context.Context, id primitive.ObjectID, includeInactive bool) (*models.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pkg, ok := f.packages[id]
	if !ok {
		return nil, models.ErrPackageNotFound
	}
	if !includeInactive && pkg.Status != models.PackageActive {
		return nil, models.ErrPackageNotFound
	}
	cp := *pkg
	return &cp, nil
}

func (f *fakePackageRepo) ListPackages(ctx context.Context, activeOnly bool) ([]*models.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Package
	for _, pkg := range f.packages {
		if activeOnly && pkg.Status != models.PackageActive {
			continue
		}
		cp := *pkg
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakePackageRepo) SoftDeletePackage(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	pkg, ok := f.packages[id]
	if !ok {
		return models.ErrPackageNotFound
	}
	pkg.Status = models.PackageInactive
	pkg.UpdatedAt = time.Now()
	return nil
}

func (f *fakePackageRepo) CreatePackageDetail(ctx context.Context, detail *models.PackageDetail) (*models.PackageDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.details[detail.PackageID]; exists {
		return nil, models.ErrDetailExists
	}
	if detail.ID.IsZero() {
		detail.ID = primitive.NewObjectID()
	}
	cp := *detail
	f.details[detail.PackageID] = &cp
	return detail, nil
}

func (f *fakePackageRepo) UpdatePackageDetail(ctx context.Context, packageID primitive.ObjectID, fields bson.M) (*models.PackageDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	detail, ok := f.details[packageID]
	if !ok {
		return nil, models.ErrDetailNotFound
	}
	for k, v := range fields {
		switch k {
		case "inclusions":
			detail.Inclusions = v.([]string)
		case "exclusions":
			detail.Exclusions = v.([]string)
		case "terms":
			detail.Terms = v.([]string)
		case "bestTimeToVisit":
			detail.BestTimeToVisit = v.(string)
		case "groupSize":
			detail.GroupSize = v.(models.GroupSize)
		case "pricing":
			detail.Pricing = v.(models.DetailPricing)
		case "itinerary":
			detail.Itinerary = v.([]models.ItineraryDay)
		case "gallery":
			detail.Gallery = v.([]models.GalleryItem)
		case "reviews":
			detail.Reviews = v.([]models.PackageReview)
		}
	}
	detail.UpdatedAt = time.Now()
	cp := *detail
	return &cp, nil
}

func (f *fakePackageRepo) GetPackageDetail(ctx context.Context, packageID primitive.ObjectID) (*models.PackageDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	detail, ok := f.details[packageID]
	if !ok {
		return nil, models.ErrDetailNotFound
	}
	cp := *detail
	return &cp, nil
}

func (f *fakePackageRepo) DeletePackageDetail(ctx context.Context, packageID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.details, packageID)
	return nil
}

// fakeBookingRepo is an in-memory models.BookingRepo.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[primitive.ObjectID]*models.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: map[primitive.ObjectID]*models.Booking{}}
}

func (f *fakeBookingRepo) CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	cp := *booking
	f.bookings[booking.ID] = &cp
	return booking, nil
}

func (f *fakeBookingRepo) GetBookingForUser(ctx context.Context, bookingID, userID primitive.ObjectID) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[bookingID]
	if !ok || b.UserID != userID {
		return nil, models.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookingRepo) ListUserBookings(ctx context.Context, userID primitive.ObjectID, skip, limit int) ([]*models.Booking, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []*models.Booking
	for _, b := range f.bookings {
		if b.UserID == userID {
			cp := *b
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if skip >= len(all) {
		return nil, total, nil
	}
	end := skip + limit
	if end > len(all) {
		end = len(all)
	}
	return all[skip:end], total, nil
}

func (f *fakeBookingRepo) ListAllBookings(ctx context.Context, filter models.BookingFilter, skip, limit int) ([]*models.Booking, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []*models.Booking
	for _, b := range f.bookings {
		if filter.BookingStatus != "" && b.BookingStatus != filter.BookingStatus {
			continue
		}
		if filter.PaymentStatus != "" && b.PaymentStatus != filter.PaymentStatus {
			continue
		}
		cp := *b
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if skip >= len(all) {
		return nil, total, nil
	}
	end := skip + limit
	if end > len(all) {
		end = len(all)
	}
	return all[skip:end], total, nil
}

func (f *fakeBookingRepo) SetPayment(ctx context.Context, bookingID primitive.ObjectID, paymentStatus string, details *models.PaymentDetails, bookingStatus string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[bookingID]
	if !ok {
		return nil, models.ErrBookingNotFound
	}
	b.PaymentStatus = paymentStatus
	b.PaymentDetails = details
	b.BookingStatus = bookingStatus
	b.UpdatedAt = time.Now()
	cp := *b
	return &cp, nil
}

func (f *fakeBookingRepo) Cancel(ctx context.Context, bookingID primitive.ObjectID, details *models.CancellationDetails) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[bookingID]
	if !ok || b.BookingStatus == models.BookingCancelled {
		return nil, models.ErrAlreadyCancelled
	}
	b.BookingStatus = models.BookingCancelled
	b.CancellationDetails = details
	b.UpdatedAt = time.Now()
	cp := *b
	return &cp, nil
}

func (f *fakeBookingRepo) GetStatistics(ctx context.Context, yearStart time.Time) (*models.BookingStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &models.BookingStats{}
	for _, b := range f.bookings {
		stats.Overview.TotalBookings++
		switch b.BookingStatus {
		case models.BookingConfirmed:
			stats.Overview.ConfirmedBookings++
		case models.BookingPending:
			stats.Overview.PendingBookings++
		case models.BookingCancelled:
			stats.Overview.CancelledBookings++
		}
		if b.PaymentStatus == models.PaymentSuccess {
			stats.Overview.TotalRevenue += b.TotalAmount
		}
	}
	return stats, nil
}

// fakeMailer records outgoing mail and can be told to fail.
type fakeMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	failNow bool
}

type sentMail struct {
	to      []string
	subject string
	body    string
}

func (f *fakeMailer) Send(to []string, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNow {
		return errMockMail
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}
