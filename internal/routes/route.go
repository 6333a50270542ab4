package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/tripora/server/internal/container"
	"github.com/tripora/server/internal/handlers"
	"github.com/tripora/server/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(ct *container.Container) *gin.Engine {
	if ct.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{ct.Config.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(ct.Logger))
	r.Use(middleware.ErrorHandler(ct.Logger))
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "OK",
			"service": "tripora-api",
		})
	})

	api := r.Group("/api")
	requireAuth := middleware.AuthMiddleware(ct.SessionService, ct.Logger)
	requireAdmin := middleware.AdminOnly(ct.Repo)

	auth := api.Group("/auth")
	{
		auth.POST("/register", handlers.Register(ct.AuthService))
		auth.POST("/login", handlers.Login(ct.AuthService, ct.SessionService))
		auth.POST("/forgotPassword", handlers.ForgotPassword(ct.AuthService))
		auth.GET("/verifyResetToken/:token", handlers.VerifyResetToken(ct.AuthService))
		auth.POST("/resetPassword/:token", handlers.ResetPassword(ct.AuthService))

		auth.POST("/logout", requireAuth, handlers.Logout(ct.SessionService))
	}

	common := api.Group("/common")
	{
		common.POST("/getPackages", handlers.GetPackages(ct.PackageService))
		common.POST("/getPackageById/:id", handlers.GetPackageByID(ct.PackageService, false))
		common.POST("/getPackageDetails/:id", handlers.GetPackageDetails(ct.PackageService))
	}

	contact := api.Group("/contact")
	{
		contact.POST("/contact", handlers.SubmitContactForm(ct.ContactService))
		contact.GET("/contactInfo", handlers.ContactInfo(ct.ContactService))
	}

	booking := api.Group("/booking")
	booking.Use(requireAuth)
	{
		booking.POST("/create", handlers.CreateBooking(ct.BookingService))
		booking.POST("/myBookings", handlers.MyBookings(ct.BookingService))
		booking.POST("/getBooking/:id", handlers.GetBooking(ct.BookingService))
		booking.POST("/updatePayment/:id", handlers.UpdatePaymentStatus(ct.BookingService))
		booking.POST("/cancelBooking/:id", handlers.CancelBooking(ct.BookingService))

		bookingAdmin := booking.Group("/admin")
		bookingAdmin.Use(requireAdmin)
		{
			bookingAdmin.POST("/allBookings", handlers.AllBookings(ct.BookingService))
			bookingAdmin.POST("/stats", handlers.BookingStatistics(ct.BookingService))
		}
	}

	admin := api.Group("/admin")
	admin.Use(requireAuth, requireAdmin)
	{
		admin.POST("/listPackages", handlers.ListPackages(ct.PackageService))
		admin.POST("/getPackageById/:id", handlers.GetPackageByID(ct.PackageService, true))
		admin.POST("/createPackage", handlers.CreatePackage(ct.PackageService))
		admin.POST("/updatePackage/:id", handlers.UpdatePackage(ct.PackageService))
		admin.POST("/deletePackage/:id", handlers.DeletePackage(ct.PackageService))

		admin.POST("/addPackageDetails/:id", handlers.AddPackageDetails(ct.PackageService))
		admin.POST("/updatePackageDetails/:id", handlers.UpdatePackageDetails(ct.PackageService))
		admin.POST("/deletePackageDetails/:id", handlers.DeletePackageDetails(ct.PackageService))

		admin.POST("/uploadImages", handlers.UploadImages(ct.Cloudinary))
	}

	return r
}
