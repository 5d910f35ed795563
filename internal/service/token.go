package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ureca-react-blog/Backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the session token payload. The JSON form is what /profile returns.
type Claims struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Revoker stores revoked token ids. A nil Revoker disables revocation.
type Revoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret   []byte
	lifetime time.Duration
	revoker  Revoker
}

// NewTokenIssuer creates an issuer. revoker may be nil.
func NewTokenIssuer(secret string, lifetime time.Duration, revoker Revoker) *TokenIssuer {
	return &TokenIssuer{
		secret:   []byte(secret),
		lifetime: lifetime,
		revoker:  revoker,
	}
}

// Issue signs a token for the given user.
func (t *TokenIssuer) Issue(userID, username string) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.lifetime)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Verify checks signature, algorithm and expiry, then the revocation list.
// Every rejection is an unauthorized AppError.
func (t *TokenIssuer) Verify(ctx context.Context, raw string) (*Claims, error) {
	if raw == "" {
		return nil, models.NewUnauthorizedError("missing token")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, &models.AppError{Code: models.CodeUnauthorized, Message: "invalid token", Err: err}
	}

	if t.revoker != nil {
		revoked, err := t.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			// Fail open.
			slog.WarnContext(ctx, "token revocation check failed", slog.String("error", err.Error()))
		} else if revoked {
			return nil, models.NewUnauthorizedError("token revoked")
		}
	}

	return claims, nil
}

// Revoke denies the token until its own expiry. It is a no-op without a Revoker.
func (t *TokenIssuer) Revoke(ctx context.Context, claims *Claims) error {
	if t.revoker == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	if err := t.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// RevocationEnabled reports whether Revoke has any effect.
func (t *TokenIssuer) RevocationEnabled() bool {
	return t.revoker != nil
}
