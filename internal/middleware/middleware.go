package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tripora/server/internal/models"
	"github.com/tripora/server/internal/services"
)

// UserIDKey is where AuthMiddleware stores the authenticated user's ID.
const UserIDKey = "user_id"

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging middleware
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		clientIP := c.ClientIP()
		method := c.Request.Method
		statusCode := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		requestID, _ := c.Get("request_id")

		logger.Info("HTTP Request",
			"request_id", requestID,
			"method", method,
			"path", path,
			"status", statusCode,
			"latency", latency,
			"client_ip", clientIP,
		)
	}
}

// ErrorHandler provides centralized error handling
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			requestID, _ := c.Get("request_id")

			logger.Error("Request error",
				"request_id", requestID,
				"error", err.Error(),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)

			if !c.Writer.Written() {
				c.JSON(http.StatusInternalServerError, models.ErrorResponse("Server error"))
			}
		}
	}
}

// AuthMiddleware extracts the bearer token, validates it against the session
// registry and stashes the authenticated user ID in the request context. Any
// registry failure terminates the request with the specific reason.
func AuthMiddleware(sessions *services.SessionService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse(models.ErrMissingAuthHeader.Error()))
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse(models.ErrMissingToken.Error()))
			return
		}
		token := parts[1]

		userID, err := sessions.Validate(c.Request.Context(), token)
		if err != nil {
			logger.Debug("token rejected", "reason", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse(err.Error()))
			return
		}

		c.Set(UserIDKey, userID)
		c.Set("token", token)
		c.Next()
	}
}

// AdminOnly re-fetches the user on every request and requires the admin
// role. The role is never trusted from the token.
func AdminOnly(users models.UserRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), userID)
		if err != nil || !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse(models.ErrForbidden.Error()))
			return
		}
		c.Next()
	}
}

// UserID reads the authenticated user's ID set by AuthMiddleware.
func UserID(c *gin.Context) (primitive.ObjectID, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return primitive.NilObjectID, false
	}
	id, ok := v.(primitive.ObjectID)
	return id, ok
}
