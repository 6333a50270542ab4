package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tripora/server/internal/models"
)

// SessionClaims is the payload minted at login: identity and expiry only.
// Role is deliberately not embedded; admin checks re-fetch the user.
type SessionClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

const TokenTTL = time.Hour

func GenerateToken(userID string, secret []byte, now time.Time) (string, error) {
	claims := SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken verifies signature and expiry. Expired-but-otherwise-valid
// tokens are reported as models.ErrTokenExpired so the session registry can
// retire the matching record; anything else is models.ErrInvalidToken.
func ParseToken(tokenStr string, secret []byte) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, models.ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, models.ErrTokenExpired
		}
		return nil, models.ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, models.ErrInvalidToken
	}
	return claims, nil
}
