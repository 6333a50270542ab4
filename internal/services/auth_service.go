package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tripora/server/internal/helpers"
	"github.com/tripora/server/internal/mailer"
	"github.com/tripora/server/internal/models"
)

const resetTokenTTL = time.Hour

type AuthService struct {
	users       models.UserRepo
	sessions    *SessionService
	mail        mailer.Mailer
	frontendURL string
	now         func() time.Time
}

func NewAuthService(users models.UserRepo, sessions *SessionService, mail mailer.Mailer, frontendURL string) *AuthService {
	return &AuthService{
		users:       users,
		sessions:    sessions,
		mail:        mail,
		frontendURL: frontendURL,
		now:         time.Now,
	}
}

// Register stores a salted hash, never the raw password. New accounts always
// get the user role; admins are promoted out of band.
func (as *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := models.Validate.Var(email, "required,email"); err != nil {
		return nil, "", fmt.Errorf("%w: invalid email format", models.ErrValidation)
	}
	if !helpers.IsPasswordStrong(password) {
		return nil, "", fmt.Errorf("%w: password is not strong enough", models.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	nowTime := as.now()
	user := &models.User{
		Name:      name,
		Email:     email,
		Password:  string(hash),
		Role:      models.RoleUser,
		CreatedAt: nowTime,
		UpdatedAt: nowTime,
	}
	created, err := as.users.CreateUser(ctx, user)
	if err != nil {
		return nil, "", err
	}

	token, _, err := as.sessions.Login(ctx, created)
	if err != nil {
		return nil, "", err
	}
	return created, token, nil
}

func (as *AuthService) VerifyCredentials(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := as.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}
	return user, nil
}

// ForgotPassword issues a single-use, time-boxed reset token and mails the
// raw value. An unknown email is not an error so the endpoint never reveals
// whether an account exists. If the mail cannot be delivered the stored token
// is reverted, leaving the account unchanged.
func (as *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := as.users.GetUserByEmail(ctx, email)
	if err != nil {
		if err == models.ErrUserNotFound {
			return nil
		}
		return err
	}

	raw, hashed, err := helpers.GenerateResetToken()
	if err != nil {
		return err
	}
	if err := as.users.SetResetToken(ctx, user.ID, hashed, as.now().Add(resetTokenTTL)); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", as.frontendURL, raw)
	body := fmt.Sprintf(
		"Hello %s,\n\n"+
			"We received a request to reset the password for your account. "+
			"If you didn't make this request you can ignore this email.\n\n"+
			"Reset your password here (the link expires in 1 hour):\n%s\n",
		user.Name, resetURL)

	if err := as.mail.Send([]string{user.Email}, "Password Reset Request", body); err != nil {
		if cerr := as.users.ClearResetToken(ctx, user.ID); cerr != nil {
			return fmt.Errorf("failed to revert reset token after mail failure: %w", cerr)
		}
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}

// VerifyResetToken checks a presented token without consuming it and returns
// the masked account email for the reset form.
func (as *AuthService) VerifyResetToken(ctx context.Context, rawToken string) (string, error) {
	if rawToken == "" {
		return "", models.ErrResetTokenInvalid
	}
	user, err := as.users.FindByResetToken(ctx, helpers.HashResetToken(rawToken), as.now())
	if err != nil {
		return "", err
	}
	return helpers.MaskEmail(user.Email), nil
}

// ResetPassword consumes the token: the password hash is replaced and the
// token invalidated in the same write.
func (as *AuthService) ResetPassword(ctx context.Context, rawToken, password, confirmPassword string) error {
	if rawToken == "" || password == "" || confirmPassword == "" {
		return fmt.Errorf("%w: token, password and confirm password are required", models.ErrValidation)
	}
	if password != confirmPassword {
		return fmt.Errorf("%w: passwords do not match", models.ErrValidation)
	}
	if !helpers.IsPasswordStrong(password) {
		return fmt.Errorf("%w: password is not strong enough", models.ErrValidation)
	}

	user, err := as.users.FindByResetToken(ctx, helpers.HashResetToken(rawToken), as.now())
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return as.users.UpdatePassword(ctx, user.ID, string(hash))
}
