package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tripora/server/internal/models"
)

func strptr(s string) *string   { return &s }
func f64ptr(f float64) *float64 { return &f }

func newTestPackageService() (*PackageService, *fakePackageRepo) {
	repo := newFakePackageRepo()
	return NewPackageService(repo), repo
}

func createTestPackage(t *testing.T, ps *PackageService) *models.Package {
	t.Helper()
	pkg, err := ps.CreatePackage(context.Background(), primitive.NewObjectID(), &models.Package{
		Title:       "Rajasthan Heritage Tour",
		Description: "Forts, palaces and the Thar desert",
		Locations:   []string{"Jaipur", "Jodhpur", "Jaisalmer"},
		Price:       25000,
		Duration:    "7 days / 6 nights",
	})
	if err != nil {
		t.Fatalf("CreatePackage failed: %v", err)
	}
	return pkg
}

func TestCreatePackageDefaults(t *testing.T) {
	ps, _ := newTestPackageService()
	pkg := createTestPackage(t, ps)

	if pkg.Status != models.PackageActive {
		t.Errorf("status = %d, want active", pkg.Status)
	}
	if pkg.CreatedAt.IsZero() || pkg.UpdatedAt.IsZero() {
		t.Error("timestamps not stamped")
	}
}

func TestCreatePackageRejectsInvalid(t *testing.T) {
	ps, _ := newTestPackageService()
	_, err := ps.CreatePackage(context.Background(), primitive.NewObjectID(), &models.Package{
		Title: "No price",
	})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestUpdatePackageStampsUpdatedAt(t *testing.T) {
	ps, _ := newTestPackageService()
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ps.now = func() time.Time { return created }
	pkg := createTestPackage(t, ps)

	updated, err := ps.UpdatePackage(context.Background(), pkg.ID, UpdatePackageInput{
		Price: f64ptr(27500),
		Title: strptr("Rajasthan Royal Tour"),
	})
	if err != nil {
		t.Fatalf("UpdatePackage failed: %v", err)
	}
	if updated.Price != 27500 || updated.Title != "Rajasthan Royal Tour" {
		t.Errorf("update not applied: %+v", updated)
	}
	if updated.Description != pkg.Description {
		t.Error("untouched field changed")
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Errorf("updatedAt %v not after createdAt %v", updated.UpdatedAt, updated.CreatedAt)
	}
}

func TestSoftDeleteHidesFromPublic(t *testing.T) {
	ps, _ := newTestPackageService()
	pkg := createTestPackage(t, ps)

	if err := ps.SoftDeletePackage(context.Background(), pkg.ID); err != nil {
		t.Fatalf("SoftDeletePackage failed: %v", err)
	}

	if _, err := ps.GetPackageByID(context.Background(), pkg.ID, false); !errors.Is(err, models.ErrPackageNotFound) {
		t.Errorf("public lookup: err = %v, want ErrPackageNotFound", err)
	}
	got, err := ps.GetPackageByID(context.Background(), pkg.ID, true)
	if err != nil {
		t.Fatalf("admin lookup failed: %v", err)
	}
	if got.Status != models.PackageInactive {
		t.Errorf("status = %d, want inactive", got.Status)
	}

	public, err := ps.ListActivePackages(context.Background())
	if err != nil {
		t.Fatalf("ListActivePackages failed: %v", err)
	}
	if len(public) != 0 {
		t.Errorf("public list has %d packages, want 0", len(public))
	}
	all, err := ps.ListAllPackages(context.Background())
	if err != nil {
		t.Fatalf("ListAllPackages failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("admin list has %d packages, want 1", len(all))
	}
}

func TestSoftDeleteCascadesToDetails(t *testing.T) {
	ps, _ := newTestPackageService()
	pkg := createTestPackage(t, ps)

	if _, err := ps.AddPackageDetails(context.Background(), primitive.NewObjectID(), &models.PackageDetail{
		PackageID:  pkg.ID,
		Inclusions: []string{"Hotel", "Breakfast"},
	}); err != nil {
		t.Fatalf("AddPackageDetails failed: %v", err)
	}

	if err := ps.SoftDeletePackage(context.Background(), pkg.ID); err != nil {
		t.Fatalf("SoftDeletePackage failed: %v", err)
	}
	if _, err := ps.GetPackageDetails(context.Background(), pkg.ID); !errors.Is(err, models.ErrDetailNotFound) {
		t.Errorf("details survived soft delete: err = %v", err)
	}
}

func TestAddPackageDetailsIsOneToOne(t *testing.T) {
	ps, _ := newTestPackageService()
	pkg := createTestPackage(t, ps)
	admin := primitive.NewObjectID()

	if _, err := ps.AddPackageDetails(context.Background(), admin, &models.PackageDetail{PackageID: pkg.ID}); err != nil {
		t.Fatalf("first AddPackageDetails failed: %v", err)
	}
	_, err := ps.AddPackageDetails(context.Background(), admin, &models.PackageDetail{PackageID: pkg.ID})
	if !errors.Is(err, models.ErrDetailExists) {
		t.Fatalf("second add: err = %v, want ErrDetailExists", err)
	}

	// The update path still works after the conflict.
	updated, err := ps.UpdatePackageDetails(context.Background(), pkg.ID, UpdatePackageDetailInput{
		Inclusions: []string{"Hotel"},
	})
	if err != nil {
		t.Fatalf("UpdatePackageDetails failed: %v", err)
	}
	if len(updated.Inclusions) != 1 {
		t.Errorf("inclusions = %v", updated.Inclusions)
	}
}

func TestAddPackageDetailsRequiresPackage(t *testing.T) {
	ps, _ := newTestPackageService()

	_, err := ps.AddPackageDetails(context.Background(), primitive.NewObjectID(), &models.PackageDetail{
		PackageID: primitive.NewObjectID(),
	})
	if !errors.Is(err, models.ErrPackageNotFound) {
		t.Errorf("err = %v, want ErrPackageNotFound", err)
	}
}

func TestUpdatePackageDetailsPartial(t *testing.T) {
	ps, _ := newTestPackageService()
	pkg := createTestPackage(t, ps)

	if _, err := ps.AddPackageDetails(context.Background(), primitive.NewObjectID(), &models.PackageDetail{
		PackageID:  pkg.ID,
		Inclusions: []string{"Hotel"},
		Pricing:    models.DetailPricing{AdultPrice: 20000, ChildPrice: 10000},
	}); err != nil {
		t.Fatalf("AddPackageDetails failed: %v", err)
	}

	updated, err := ps.UpdatePackageDetails(context.Background(), pkg.ID, UpdatePackageDetailInput{
		BestTimeToVisit: strptr("October to March"),
	})
	if err != nil {
		t.Fatalf("UpdatePackageDetails failed: %v", err)
	}
	if updated.BestTimeToVisit != "October to March" {
		t.Errorf("bestTimeToVisit = %q", updated.BestTimeToVisit)
	}
	if updated.Pricing.AdultPrice != 20000 || len(updated.Inclusions) != 1 {
		t.Error("partial update clobbered unrelated fields")
	}
}

func TestDeletePackageDetails(t *testing.T) {
	ps, _ := newTestPackageService()
	pkg := createTestPackage(t, ps)

	if err := ps.DeletePackageDetails(context.Background(), pkg.ID); !errors.Is(err, models.ErrDetailNotFound) {
		t.Errorf("deleting missing details: err = %v, want ErrDetailNotFound", err)
	}

	if _, err := ps.AddPackageDetails(context.Background(), primitive.NewObjectID(), &models.PackageDetail{PackageID: pkg.ID}); err != nil {
		t.Fatalf("AddPackageDetails failed: %v", err)
	}
	if err := ps.DeletePackageDetails(context.Background(), pkg.ID); err != nil {
		t.Fatalf("DeletePackageDetails failed: %v", err)
	}
	if _, err := ps.GetPackageDetails(context.Background(), pkg.ID); !errors.Is(err, models.ErrDetailNotFound) {
		t.Errorf("details still present after delete: err = %v", err)
	}
}
