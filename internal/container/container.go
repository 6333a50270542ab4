package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tripora/server/internal/config"
	"github.com/tripora/server/internal/mailer"
	"github.com/tripora/server/internal/models"
	"github.com/tripora/server/internal/services"
)

// Container holds all application dependencies
type Container struct {
	Logger     *slog.Logger
	Config     *config.Config
	Cloudinary *cloudinary.Cloudinary

	MongoDBClient *mongo.Client
	Repo          *models.MongodbRepo

	SessionService *services.SessionService
	AuthService    *services.AuthService
	BookingService *services.BookingService
	PackageService *services.PackageService
	ContactService *services.ContactService
}

// NewContainer creates a new dependency injection container
func NewContainer(
	logger *slog.Logger,
	cfg *config.Config,
	cld *cloudinary.Cloudinary,
	mongoDBClient *mongo.Client,
) *Container {
	repo := models.MongodbNewRepo(mongoDBClient, cfg.MongoDBName)
	mail := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.EmailFrom)

	sessionService := services.NewSessionService(repo, repo, []byte(cfg.JWTSecret))
	authService := services.NewAuthService(repo, sessionService, mail, cfg.FrontendURL)
	bookingService := services.NewBookingService(repo, repo, repo)
	packageService := services.NewPackageService(repo)
	contactService := services.NewContactService(mail, cfg.ContactInbox)

	return &Container{
		Logger:         logger,
		Config:         cfg,
		Cloudinary:     cld,
		MongoDBClient:  mongoDBClient,
		Repo:           repo,
		SessionService: sessionService,
		AuthService:    authService,
		BookingService: bookingService,
		PackageService: packageService,
		ContactService: contactService,
	}
}
