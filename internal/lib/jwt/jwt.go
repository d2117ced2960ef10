// Package jwt mints and checks the signed session tokens handed out at
// login. Tokens are stateless: validity is signature + expiry + absence
// from the revocation ledger, which lives elsewhere.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"asha_gallery/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

type Claims struct {
	UserID   uuid.UUID   `json:"uid"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

func NewToken(admin models.Admin, secret string, duration time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID:   admin.ID,
		Username: admin.Username,
		Role:     admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(secret))
}

// Verify checks signature and expiry. Expired tokens are reported
// separately from otherwise broken ones so clients can tell the
// difference; both surface as 401 upstream.
func Verify(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// DecodeUnsafe extracts claims without checking the signature. It exists
// only so the revocation ledger can read an expiry off a token that may
// already be invalid; never use it for authentication.
func DecodeUnsafe(tokenString string) *Claims {
	claims := &Claims{}

	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil
	}

	return claims
}
