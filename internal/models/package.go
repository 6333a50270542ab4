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

const (
	PackagesColName       = "packages"
	PackageDetailsColName = "package_details"
)

// PackageStatus is the persisted 1/0 visibility flag. Soft-deleted packages
// keep their document but disappear from public reads.
type PackageStatus int

const (
	PackageActive   PackageStatus = 1
	PackageInactive PackageStatus = 0
)

type Package struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title" validate:"required"`
	Description string             `bson:"description" json:"description" validate:"required"`
	Locations   []string           `bson:"locations" json:"locations" validate:"required,min=1"`
	Price       float64            `bson:"price" json:"price" validate:"required,gt=0"`
	Duration    string             `bson:"duration" json:"duration" validate:"required"`
	ImageURL    string             `bson:"imageUrl" json:"imageUrl"`
	CreatedBy   primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	Status      PackageStatus      `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type ItineraryDay struct {
	Day           int      `bson:"day" json:"day" validate:"required,min=1"`
	Title         string   `bson:"title" json:"title"`
	Description   string   `bson:"description" json:"description"`
	Activities    []string `bson:"activities,omitempty" json:"activities,omitempty"`
	Meals         string   `bson:"meals,omitempty" json:"meals,omitempty"`
	Accommodation string   `bson:"accommodation,omitempty" json:"accommodation,omitempty"`
}

type GroupSize struct {
	Min int `bson:"min" json:"min"`
	Max int `bson:"max" json:"max"`
}

type DetailPricing struct {
	AdultPrice float64 `bson:"adultPrice" json:"adultPrice"`
	ChildPrice float64 `bson:"childPrice" json:"childPrice"`
}

type GalleryItem struct {
	URL     string `bson:"url" json:"url" validate:"required"`
	Caption string `bson:"caption,omitempty" json:"caption,omitempty"`
	Type    string `bson:"type,omitempty" json:"type,omitempty"`
}

type PackageReview struct {
	UserName string    `bson:"userName" json:"userName"`
	Rating   int       `bson:"rating" json:"rating" validate:"min=1,max=5"`
	Comment  string    `bson:"comment" json:"comment"`
	Date     time.Time `bson:"date" json:"date"`
}

// PackageDetail is the extended 1:1 companion of a Package. At most one
// detail document exists per package; creation fails once one is present.
type PackageDetail struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PackageID       primitive.ObjectID `bson:"packageId" json:"packageId"`
	Itinerary       []ItineraryDay     `bson:"itinerary,omitempty" json:"itinerary,omitempty"`
	Inclusions      []string           `bson:"inclusions,omitempty" json:"inclusions,omitempty"`
	Exclusions      []string           `bson:"exclusions,omitempty" json:"exclusions,omitempty"`
	Terms           []string           `bson:"terms,omitempty" json:"terms,omitempty"`
	BestTimeToVisit string             `bson:"bestTimeToVisit,omitempty" json:"bestTimeToVisit,omitempty"`
	GroupSize       GroupSize          `bson:"groupSize,omitempty" json:"groupSize,omitempty"`
	Pricing         DetailPricing      `bson:"pricing,omitempty" json:"pricing,omitempty"`
	Gallery         []GalleryItem      `bson:"gallery,omitempty" json:"gallery,omitempty"`
	Reviews         []PackageReview    `bson:"reviews,omitempty" json:"reviews,omitempty"`
	CreatedBy       primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type PackageRepo interface {
	CreatePackage(ctx context.Context, pkg *Package) (*Package, error)
	UpdatePackage(ctx context.Context, id primitive.ObjectID, fields bson.M) (*Package, error)
	GetPackageByID(ctx context.Context, id primitive.ObjectID, includeInactive bool) (*Package, error)
	ListPackages(ctx context.Context, activeOnly bool) ([]*Package, error)
	SoftDeletePackage(ctx context.Context, id primitive.ObjectID) error

	CreatePackageDetail(ctx context.Context, detail *PackageDetail) (*PackageDetail, error)
	UpdatePackageDetail(ctx context.Context, packageID primitive.ObjectID, fields bson.M) (*PackageDetail, error)
	GetPackageDetail(ctx context.Context, packageID primitive.ObjectID) (*PackageDetail, error)
	DeletePackageDetail(ctx context.Context, packageID primitive.ObjectID) error
}

func (mdb *MongodbRepo) CreatePackage(ctx context.Context, pkg *Package) (*Package, error) {
	col, err := mdb.GetCollection(ctx, PackagesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	if pkg.ID.IsZero() {
		pkg.ID = primitive.NewObjectID()
	}
	if _, err := col.InsertOne(ctx, pkg); err != nil {
		return nil, fmt.Errorf("error inserting package: %v", err)
	}
	return pkg, nil
}

func (mdb *MongodbRepo) UpdatePackage(ctx context.Context, id primitive.ObjectID, fields bson.M) (*Package, error) {
	col, err := mdb.GetCollection(ctx, PackagesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	fields["updatedAt"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Package
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("error updating package: %v", err)
	}
	return &updated, nil
}

func (mdb *MongodbRepo) GetPackageByID(ctx context.Context, id primitive.ObjectID, includeInactive bool) (*Package, error) {
	col, err := mdb.GetCollection(ctx, PackagesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{"_id": id}
	if !includeInactive {
		filter["status"] = PackageActive
	}
	var pkg Package
	if err := col.FindOne(ctx, filter).Decode(&pkg); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("error finding package: %v", err)
	}
	return &pkg, nil
}

func (mdb *MongodbRepo) ListPackages(ctx context.Context, activeOnly bool) ([]*Package, error) {
	col, err := mdb.GetCollection(ctx, PackagesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{}
	if activeOnly {
		filter["status"] = PackageActive
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding packages: %v", err)
	}
	defer cursor.Close(ctx)

	var packages []*Package
	if err := cursor.All(ctx, &packages); err != nil {
		return nil, fmt.Errorf("error decoding packages: %v", err)
	}
	return packages, nil
}

func (mdb *MongodbRepo) SoftDeletePackage(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, PackagesColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":    PackageInactive,
		"updatedAt": time.Now(),
	}})
	if err != nil {
		return fmt.Errorf("error soft-deleting package: %v", err)
	}
	if res.MatchedCount == 0 {
		return ErrPackageNotFound
	}
	return nil
}

func (mdb *MongodbRepo) CreatePackageDetail(ctx context.Context, detail *PackageDetail) (*PackageDetail, error) {
	col, err := mdb.GetCollection(ctx, PackageDetailsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	count, err := col.CountDocuments(ctx, bson.M{"packageId": detail.PackageID})
	if err != nil {
		return nil, fmt.Errorf("error checking existing detail: %v", err)
	}
	if count > 0 {
		return nil, ErrDetailExists
	}

	if detail.ID.IsZero() {
		detail.ID = primitive.NewObjectID()
	}
	if _, err := col.InsertOne(ctx, detail); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDetailExists
		}
		return nil, fmt.Errorf("error inserting package detail: %v", err)
	}
	return detail, nil
}

func (mdb *MongodbRepo) UpdatePackageDetail(ctx context.Context, packageID primitive.ObjectID, fields bson.M) (*PackageDetail, error) {
	col, err := mdb.GetCollection(ctx, PackageDetailsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	fields["updatedAt"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated PackageDetail
	err = col.FindOneAndUpdate(ctx, bson.M{"packageId": packageID}, bson.M{"$set": fields}, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrDetailNotFound
		}
		return nil, fmt.Errorf("error updating package detail: %v", err)
	}
	return &updated, nil
}

func (mdb *MongodbRepo) GetPackageDetail(ctx context.Context, packageID primitive.ObjectID) (*PackageDetail, error) {
	col, err := mdb.GetCollection(ctx, PackageDetailsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var detail PackageDetail
	if err := col.FindOne(ctx, bson.M{"packageId": packageID}).Decode(&detail); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrDetailNotFound
		}
		return nil, fmt.Errorf("error finding package detail: %v", err)
	}
	return &detail, nil
}

// DeletePackageDetail hard-deletes the detail document. Missing documents are
// not an error so the soft-delete cascade stays idempotent.
func (mdb *MongodbRepo) DeletePackageDetail(ctx context.Context, packageID primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, PackageDetailsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	if _, err := col.DeleteOne(ctx, bson.M{"packageId": packageID}); err != nil {
		return fmt.Errorf("error deleting package detail: %v", err)
	}
	return nil
}

// EnsurePackageIndexes enforces the 1:1 package/detail invariant at the
// storage layer.
func (mdb *MongodbRepo) EnsurePackageIndexes(ctx context.Context) error {
	col, err := mdb.GetCollection(ctx, PackageDetailsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	_, err = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "packageId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("packageId_unique"),
	})
	if err != nil {
		return fmt.Errorf("error creating package detail indexes: %v", err)
	}
	return nil
}
