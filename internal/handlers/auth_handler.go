package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tripora/server/internal/models"
	"github.com/tripora/server/internal/services"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates an account and immediately opens a session, so the
// client gets a usable token without a second round trip.
func Register(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		user, token, err := a.Register(c.Request.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(gin.H{
			"user":  user.Public(),
			"token": token,
		}, "registered successfully"))
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and returns a session token. Logging in again
// while a session is still live hands back the same token.
func Login(a *services.AuthService, s *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		user, err := a.VerifyCredentials(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			fail(c, err)
			return
		}

		token, existing, err := s.Login(c.Request.Context(), user)
		if err != nil {
			fail(c, err)
			return
		}

		message := "login successful"
		if existing {
			message = "already logged in"
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"user":  user.Public(),
			"token": token,
		}, message))
	}
}

// Logout retires the session behind the presented token.
func Logout(s *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetString("token")
		if err := s.Logout(c.Request.Context(), token); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "logged out successfully"))
	}
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword always answers the same way so callers cannot probe
// which emails are registered.
func ForgotPassword(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req forgotPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		if err := a.ForgotPassword(c.Request.Context(), req.Email); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "if the email exists, a reset link has been sent"))
	}
}

// VerifyResetToken checks a reset token before the client shows the
// new-password form, returning the masked account email.
func VerifyResetToken(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		maskedEmail, err := a.VerifyResetToken(c.Request.Context(), c.Param("token"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"email": maskedEmail}, "token is valid"))
	}
}

type resetPasswordRequest struct {
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

func ResetPassword(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req resetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		if err := a.ResetPassword(c.Request.Context(), c.Param("token"), req.Password, req.ConfirmPassword); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "password has been reset"))
	}
}
