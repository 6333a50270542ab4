package handlers

import (
	"net/http"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/gin-gonic/gin"

	"github.com/tripora/server/internal/helpers"
	"github.com/tripora/server/internal/models"
	"github.com/tripora/server/internal/services"
)

// GetPackages lists active packages for the public catalog.
func GetPackages(p *services.PackageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		packages, err := p.ListActivePackages(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(packages, "packages retrieved"))
	}
}

// ListPackages is the admin listing and includes soft-deleted packages.
func ListPackages(p *services.PackageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		packages, err := p.ListAllPackages(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(packages, "packages retrieved"))
	}
}

func GetPackageByID(p *services.PackageService, admin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		pkg, err := p.GetPackageByID(c.Request.Context(), id, admin)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(pkg, "package retrieved"))
	}
}

type createPackageRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Locations   []string `json:"locations" binding:"required,min=1"`
	Price       float64  `json:"price" binding:"required,gt=0"`
	Duration    string   `json:"duration" binding:"required"`
	ImageURL    string   `json:"imageUrl"`
}

func CreatePackage(p *services.PackageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		var req createPackageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		pkg, err := p.CreatePackage(c.Request.Context(), userID, &models.Package{
			Title:       req.Title,
			Description: req.Description,
			Locations:   req.Locations,
			Price:       req.Price,
			Duration:    req.Duration,
			ImageURL:    req.ImageURL,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(pkg, "package created successfully"))
	}
}

func UpdatePackage(p *services.PackageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}

		var req services.UpdatePackageInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		pkg, err := p.UpdatePackage(c.Request.Context(), id, req)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(pkg, "package updated successfully"))
	}
}

// DeletePackage retires the package from the public catalog. The record and
// its bookings survive; only its details document is removed.
func DeletePackage(p *services.PackageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		if err := p.SoftDeletePackage(c.Request.Context(), id); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "package deleted successfully"))
	}
}

type packageDetailRequest struct {
	Itinerary       []models.ItineraryDay  `json:"itinerary"`
	Inclusions      []string               `json:"inclusions"`
	Exclusions      []string               `json:"exclusions"`
	Terms           []string               `json:"terms"`
	BestTimeToVisit string                 `json:"bestTimeToVisit"`
	GroupSize       models.GroupSize       `json:"groupSize"`
	Pricing         models.DetailPricing   `json:"pricing"`
	Gallery         []models.GalleryItem   `json:"gallery"`
	Reviews         []models.PackageReview `json:"reviews"`
}

func AddPackageDetails(p *services.PackageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		packageID, ok := objectIDParam(c, "id")
		if !ok {
			return
		}

		var req packageDetailRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		detail, err := p.AddPackageDetails(c.Request.Context(), userID, &models.PackageDetail{
			PackageID:       packageID,
			Itinerary:       req.Itinerary,
			Inclusions:      req.Inclusions,
			Exclusions:      req.Exclusions,
			Terms:           req.Terms,
			BestTimeToVisit: req.BestTimeToVisit,
			GroupSize:       req.GroupSize,
			Pricing:         req.Pricing,
			Gallery:         req.Gallery,
			Reviews:         req.Reviews,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(detail, "package details added"))
	}
}

func UpdatePackageDetails(p *services.PackageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		packageID, ok := objectIDParam(c, "id")
		if !ok {
			return
		}

		var req services.UpdatePackageDetailInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		detail, err := p.UpdatePackageDetails(c.Request.Context(), packageID, req)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(detail, "package details updated"))
	}
}

func GetPackageDetails(p *services.PackageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		packageID, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		detail, err := p.GetPackageDetails(c.Request.Context(), packageID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(detail, "package details retrieved"))
	}
}

func DeletePackageDetails(p *services.PackageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		packageID, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		if err := p.DeletePackageDetails(c.Request.Context(), packageID); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "package details deleted"))
	}
}

type uploadImagesRequest struct {
	Images []string `json:"images" binding:"required,min=1"`
}

// UploadImages pushes base64 or remote image references to Cloudinary and
// returns the hosted URLs.
func UploadImages(cld *cloudinary.Cloudinary) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cld == nil {
			c.JSON(http.StatusServiceUnavailable, models.ErrorResponse("image uploads are not configured"))
			return
		}

		var req uploadImagesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		urls, err := helpers.UploadImages(c.Request.Context(), cld, req.Images, helpers.PackageFolder)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"urls": urls}, "images uploaded"))
	}
}
