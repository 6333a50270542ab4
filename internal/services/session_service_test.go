package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tripora/server/internal/helpers"
	"github.com/tripora/server/internal/models"
)

var testSecret = []byte("test-secret")

func newTestSessionService(users *fakeUserRepo, sessions *fakeSessionRepo) *SessionService {
	return NewSessionService(sessions, users, testSecret)
}

func seedUser(t *testing.T, users *fakeUserRepo) *models.User {
	t.Helper()
	return users.add(&models.User{
		Name:  "Asha Verma",
		Email: "asha@example.com",
		Role:  models.RoleUser,
	})
}

func TestLoginCreatesActiveSession(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	ss := newTestSessionService(users, sessions)
	user := seedUser(t, users)

	token, existing, err := ss.Login(context.Background(), user)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if existing {
		t.Fatal("first login reported an existing session")
	}
	if token == "" {
		t.Fatal("expected a token")
	}

	stored, err := users.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if stored.CurrentSessionToken != token {
		t.Errorf("currentSessionToken = %q, want %q", stored.CurrentSessionToken, token)
	}
	if n := sessions.activeCount(); n != 1 {
		t.Errorf("active sessions = %d, want 1", n)
	}
}

func TestLoginIsIdempotentWhileSessionLive(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	ss := newTestSessionService(users, sessions)
	user := seedUser(t, users)

	first, _, err := ss.Login(context.Background(), user)
	if err != nil {
		t.Fatalf("first login failed: %v", err)
	}
	second, existing, err := ss.Login(context.Background(), user)
	if err != nil {
		t.Fatalf("second login failed: %v", err)
	}
	if !existing {
		t.Error("second login should report the existing session")
	}
	if second != first {
		t.Errorf("second login minted a new token: %q != %q", second, first)
	}
	if n := sessions.activeCount(); n != 1 {
		t.Errorf("active sessions = %d, want 1", n)
	}
}

func TestLoginRetiresStaleSession(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	ss := newTestSessionService(users, sessions)
	user := seedUser(t, users)

	// First login happens far enough in the past that its token has expired.
	ss.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }
	stale, _, err := ss.Login(context.Background(), user)
	if err != nil {
		t.Fatalf("stale login failed: %v", err)
	}

	ss.now = time.Now
	fresh, existing, err := ss.Login(context.Background(), user)
	if err != nil {
		t.Fatalf("fresh login failed: %v", err)
	}
	if existing {
		t.Error("login with an expired session should mint a new token")
	}
	if fresh == stale {
		t.Error("expected a fresh token to replace the expired one")
	}
	if n := sessions.activeCount(); n != 1 {
		t.Errorf("active sessions = %d, want 1", n)
	}
}

func TestValidateReturnsUserID(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	ss := newTestSessionService(users, sessions)
	user := seedUser(t, users)

	token, _, err := ss.Login(context.Background(), user)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	got, err := ss.Validate(context.Background(), token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if got != user.ID {
		t.Errorf("Validate returned %s, want %s", got.Hex(), user.ID.Hex())
	}
}

func TestValidateRejectsGarbageToken(t *testing.T) {
	ss := newTestSessionService(newFakeUserRepo(), newFakeSessionRepo())

	if _, err := ss.Validate(context.Background(), "not-a-jwt"); !errors.Is(err, models.ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestValidateExpiredTokenRetiresSession(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	ss := newTestSessionService(users, sessions)
	user := seedUser(t, users)

	ss.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }
	token, _, err := ss.Login(context.Background(), user)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	ss.now = time.Now

	if _, err := ss.Validate(context.Background(), token); !errors.Is(err, models.ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
	if n := sessions.activeCount(); n != 0 {
		t.Errorf("active sessions = %d, want 0 after expiry", n)
	}
}

func TestValidateUnknownTokenIsSessionInvalid(t *testing.T) {
	users := newFakeUserRepo()
	ss := newTestSessionService(users, newFakeSessionRepo())
	user := seedUser(t, users)

	// Structurally valid token with no backing session record.
	token, err := helpers.GenerateToken(user.ID.Hex(), testSecret, time.Now())
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := ss.Validate(context.Background(), token); !errors.Is(err, models.ErrSessionInvalid) {
		t.Errorf("err = %v, want ErrSessionInvalid", err)
	}
}

func TestValidateSupersededSessionIsRetired(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	ss := newTestSessionService(users, sessions)
	user := seedUser(t, users)

	token, _, err := ss.Login(context.Background(), user)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// A newer login elsewhere moved the current-token pointer on.
	if err := users.SetCurrentSessionToken(context.Background(), user.ID, "newer-token"); err != nil {
		t.Fatalf("SetCurrentSessionToken failed: %v", err)
	}

	if _, err := ss.Validate(context.Background(), token); !errors.Is(err, models.ErrSessionSuperseded) {
		t.Fatalf("err = %v, want ErrSessionSuperseded", err)
	}
	if n := sessions.activeCount(); n != 0 {
		t.Errorf("active sessions = %d, want 0 after supersession", n)
	}
}

func TestLogout(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	ss := newTestSessionService(users, sessions)
	user := seedUser(t, users)

	token, _, err := ss.Login(context.Background(), user)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := ss.Logout(context.Background(), token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if err := ss.Logout(context.Background(), token); !errors.Is(err, models.ErrAlreadyLoggedOut) {
		t.Errorf("second logout: err = %v, want ErrAlreadyLoggedOut", err)
	}
	if _, err := ss.Validate(context.Background(), token); !errors.Is(err, models.ErrSessionInvalid) {
		t.Errorf("validate after logout: err = %v, want ErrSessionInvalid", err)
	}
}

func TestLogoutUnknownToken(t *testing.T) {
	ss := newTestSessionService(newFakeUserRepo(), newFakeSessionRepo())

	if err := ss.Logout(context.Background(), "never-issued"); !errors.Is(err, models.ErrAlreadyLoggedOut) {
		t.Errorf("err = %v, want ErrAlreadyLoggedOut", err)
	}
}
