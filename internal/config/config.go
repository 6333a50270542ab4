package config

import (
	"fmt"
	"os"
)

type Config struct {
	Port        string
	MongoDBURI  string
	MongoDBName string
	JWTSecret   string
	Environment string
	LogLevel    string
	FrontendURL string

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	EmailFrom    string
	ContactInbox string

	CloudinaryName   string
	CloudinaryKey    string
	CloudinarySecret string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:        getEnvWithDefault("PORT", "8080"),
		MongoDBURI:  os.Getenv("MONGODB_URI"),
		MongoDBName: getEnvWithDefault("MONGODB_NAME", "tripora"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
		FrontendURL: getEnvWithDefault("FRONTEND_URL", "http://localhost:3000"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvWithDefault("SMTP_PORT", "587"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASS"),
		EmailFrom:    os.Getenv("EMAIL_FROM"),
		ContactInbox: getEnvWithDefault("CONTACT_INBOX", "hello@tripora.example"),

		CloudinaryName:   os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinarySecret: os.Getenv("CLOUDINARY_API_SECRET"),
	}

	// Validate required fields
	if cfg.MongoDBURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
