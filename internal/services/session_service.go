package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tripora/server/internal/helpers"
	"github.com/tripora/server/internal/models"
)

// SessionService enforces the single-active-session-per-user rule. The
// sessions collection is the source of truth for liveness; the user's
// currentSessionToken only backs the supersession cross-check in Validate.
type SessionService struct {
	sessions models.SessionRepo
	users    models.UserRepo
	secret   []byte
	now      func() time.Time
}

func NewSessionService(sessions models.SessionRepo, users models.UserRepo, secret []byte) *SessionService {
	return &SessionService{
		sessions: sessions,
		users:    users,
		secret:   secret,
		now:      time.Now,
	}
}

// Login returns the user's session token. Re-login while an active session
// holds a still-valid token is idempotent and returns that token unchanged.
// When the active record's token has gone stale (expired or unreadable), the
// record is retired and a fresh token is minted in its place.
func (ss *SessionService) Login(ctx context.Context, user *models.User) (string, bool, error) {
	existing, err := ss.sessions.GetActiveByUser(ctx, user.ID)
	if err != nil {
		return "", false, fmt.Errorf("failed to look up active session: %w", err)
	}
	if existing != nil {
		if _, err := helpers.ParseToken(existing.Token, ss.secret); err == nil {
			return existing.Token, true, nil
		}
		if _, err := ss.sessions.DeactivateByToken(ctx, existing.Token); err != nil {
			return "", false, fmt.Errorf("failed to retire stale session: %w", err)
		}
	}

	token, err := helpers.GenerateToken(user.ID.Hex(), ss.secret, ss.now())
	if err != nil {
		return "", false, fmt.Errorf("failed to sign session token: %w", err)
	}

	session := &models.Session{
		UserID:    user.ID,
		Token:     token,
		LoginTime: ss.now(),
		Status:    models.SessionActive,
	}
	if _, err := ss.sessions.CreateSession(ctx, session); err != nil {
		return "", false, fmt.Errorf("failed to persist session: %w", err)
	}
	if err := ss.users.SetCurrentSessionToken(ctx, user.ID, token); err != nil {
		return "", false, fmt.Errorf("failed to record current session token: %w", err)
	}
	return token, false, nil
}

// Validate checks the token structurally, then against the session registry,
// then against the user's current-token pointer. Expiry and supersession
// both retire the matching session record as a side effect.
func (ss *SessionService) Validate(ctx context.Context, token string) (primitive.ObjectID, error) {
	claims, err := helpers.ParseToken(token, ss.secret)
	if err != nil {
		if err == models.ErrTokenExpired {
			if _, derr := ss.sessions.DeactivateByToken(ctx, token); derr != nil {
				return primitive.NilObjectID, fmt.Errorf("failed to retire expired session: %w", derr)
			}
		}
		return primitive.NilObjectID, err
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, models.ErrInvalidToken
	}

	session, err := ss.sessions.GetActiveByToken(ctx, token)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to look up session: %w", err)
	}
	if session == nil {
		return primitive.NilObjectID, models.ErrSessionInvalid
	}

	user, err := ss.users.GetUserByID(ctx, userID)
	if err != nil {
		return primitive.NilObjectID, models.ErrSessionInvalid
	}
	if user.CurrentSessionToken != "" && user.CurrentSessionToken != token {
		if _, derr := ss.sessions.DeactivateByToken(ctx, token); derr != nil {
			return primitive.NilObjectID, fmt.Errorf("failed to retire superseded session: %w", derr)
		}
		return primitive.NilObjectID, models.ErrSessionSuperseded
	}
	return userID, nil
}

func (ss *SessionService) Logout(ctx context.Context, token string) error {
	ok, err := ss.sessions.DeactivateByToken(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to deactivate session: %w", err)
	}
	if !ok {
		return models.ErrAlreadyLoggedOut
	}
	return nil
}
