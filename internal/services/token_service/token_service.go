package services

import (
	"context"
	"fmt"
	"time"

	"asha_gallery/internal/domain/models"
	jwtlib "asha_gallery/internal/lib/jwt"
	"asha_gallery/internal/repository"
)

var (
	ErrInvalidToken = jwtlib.ErrTokenInvalid
	ErrTokenExpired = jwtlib.ErrTokenExpired
)

// RevocationFallbackTTL bounds ledger entries for tokens whose claims
// cannot be decoded. The entry must outlive any plausible token expiry.
const RevocationFallbackTTL = 24 * time.Hour

type TokenService struct {
	repo     repository.TokenRepository
	secret   string
	tokenTTL time.Duration
}

func NewTokenService(repo repository.TokenRepository, secret string, tokenTTL time.Duration) *TokenService {
	return &TokenService{
		repo:     repo,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

func (s *TokenService) Issue(admin models.Admin) (string, error) {
	const op = "token_service.Issue"

	token, err := jwtlib.NewToken(admin, s.secret, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

func (s *TokenService) Verify(token string) (*jwtlib.Claims, error) {
	return jwtlib.Verify(token, s.secret)
}

// Revoke records the token in the ledger until its own expiry, so the
// entry becomes purgeable exactly when the token would die naturally.
// Tokens that are already past expiry are not recorded: verification
// rejects them regardless. Revoking twice is a no-op.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	const op = "token_service.Revoke"

	ttl := RevocationFallbackTTL
	if claims := jwtlib.DecodeUnsafe(token); claims != nil && claims.ExpiresAt != nil {
		until := time.Until(claims.ExpiresAt.Time)
		if until <= 0 {
			return nil
		}
		ttl = until
	}

	if err := s.repo.Revoke(ctx, token, ttl); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *TokenService) IsRevoked(ctx context.Context, token string) (bool, error) {
	const op = "token_service.IsRevoked"

	revoked, err := s.repo.IsRevoked(ctx, token)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return revoked, nil
}
