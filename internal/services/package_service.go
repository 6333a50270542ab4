package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tripora/server/internal/models"
)

type PackageService struct {
	packages models.PackageRepo
	now      func() time.Time
}

func NewPackageService(packages models.PackageRepo) *PackageService {
	return &PackageService{
		packages: packages,
		now:      time.Now,
	}
}

// ListActivePackages is the public catalog view: active only, newest first.
func (ps *PackageService) ListActivePackages(ctx context.Context) ([]*models.Package, error) {
	return ps.packages.ListPackages(ctx, true)
}

// ListAllPackages is the admin view and includes soft-deleted packages.
func (ps *PackageService) ListAllPackages(ctx context.Context) ([]*models.Package, error) {
	return ps.packages.ListPackages(ctx, false)
}

// GetPackageByID hides soft-deleted packages from non-admin callers.
func (ps *PackageService) GetPackageByID(ctx context.Context, id primitive.ObjectID, admin bool) (*models.Package, error) {
	return ps.packages.GetPackageByID(ctx, id, admin)
}

func (ps *PackageService) CreatePackage(ctx context.Context, createdBy primitive.ObjectID, pkg *models.Package) (*models.Package, error) {
	if err := models.Validate.Struct(pkg); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	nowTime := ps.now()
	pkg.CreatedBy = createdBy
	pkg.Status = models.PackageActive
	pkg.CreatedAt = nowTime
	pkg.UpdatedAt = nowTime
	return ps.packages.CreatePackage(ctx, pkg)
}

// UpdatePackageInput carries the optional fields of a partial update; nil
// means "leave unchanged".
type UpdatePackageInput struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Locations   []string  `json:"locations"`
	Price       *float64  `json:"price"`
	Duration    *string   `json:"duration"`
	ImageURL    *string   `json:"imageUrl"`
}

func (ps *PackageService) UpdatePackage(ctx context.Context, id primitive.ObjectID, in UpdatePackageInput) (*models.Package, error) {
	fields := bson.M{}
	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Locations != nil {
		fields["locations"] = in.Locations
	}
	if in.Price != nil {
		fields["price"] = *in.Price
	}
	if in.Duration != nil {
		fields["duration"] = *in.Duration
	}
	if in.ImageURL != nil {
		fields["imageUrl"] = *in.ImageURL
	}
	return ps.packages.UpdatePackage(ctx, id, fields)
}

// SoftDeletePackage flips the package invisible and hard-deletes its detail
// document. The asymmetry is deliberate: the package row survives for booking
// history, the detail does not.
func (ps *PackageService) SoftDeletePackage(ctx context.Context, id primitive.ObjectID) error {
	if err := ps.packages.SoftDeletePackage(ctx, id); err != nil {
		return err
	}
	return ps.packages.DeletePackageDetail(ctx, id)
}

// AddPackageDetails enforces the 1:1 invariant: a second detail document for
// the same package is a conflict, not an upsert.
func (ps *PackageService) AddPackageDetails(ctx context.Context, createdBy primitive.ObjectID, detail *models.PackageDetail) (*models.PackageDetail, error) {
	if _, err := ps.packages.GetPackageByID(ctx, detail.PackageID, true); err != nil {
		return nil, err
	}
	nowTime := ps.now()
	detail.CreatedBy = createdBy
	detail.CreatedAt = nowTime
	detail.UpdatedAt = nowTime
	return ps.packages.CreatePackageDetail(ctx, detail)
}

// UpdatePackageDetailInput mirrors UpdatePackageInput for the detail
// document.
type UpdatePackageDetailInput struct {
	Itinerary       []models.ItineraryDay  `json:"itinerary"`
	Inclusions      []string               `json:"inclusions"`
	Exclusions      []string               `json:"exclusions"`
	Terms           []string               `json:"terms"`
	BestTimeToVisit *string                `json:"bestTimeToVisit"`
	GroupSize       *models.GroupSize      `json:"groupSize"`
	Pricing         *models.DetailPricing  `json:"pricing"`
	Gallery         []models.GalleryItem   `json:"gallery"`
	Reviews         []models.PackageReview `json:"reviews"`
}

func (ps *PackageService) UpdatePackageDetails(ctx context.Context, packageID primitive.ObjectID, in UpdatePackageDetailInput) (*models.PackageDetail, error) {
	fields := bson.M{}
	if in.Itinerary != nil {
		fields["itinerary"] = in.Itinerary
	}
	if in.Inclusions != nil {
		fields["inclusions"] = in.Inclusions
	}
	if in.Exclusions != nil {
		fields["exclusions"] = in.Exclusions
	}
	if in.Terms != nil {
		fields["terms"] = in.Terms
	}
	if in.BestTimeToVisit != nil {
		fields["bestTimeToVisit"] = *in.BestTimeToVisit
	}
	if in.GroupSize != nil {
		fields["groupSize"] = *in.GroupSize
	}
	if in.Pricing != nil {
		fields["pricing"] = *in.Pricing
	}
	if in.Gallery != nil {
		fields["gallery"] = in.Gallery
	}
	if in.Reviews != nil {
		fields["reviews"] = in.Reviews
	}
	return ps.packages.UpdatePackageDetail(ctx, packageID, fields)
}

func (ps *PackageService) GetPackageDetails(ctx context.Context, packageID primitive.ObjectID) (*models.PackageDetail, error) {
	return ps.packages.GetPackageDetail(ctx, packageID)
}

func (ps *PackageService) DeletePackageDetails(ctx context.Context, packageID primitive.ObjectID) error {
	if _, err := ps.packages.GetPackageDetail(ctx, packageID); err != nil {
		return err
	}
	return ps.packages.DeletePackageDetail(ctx, packageID)
}
