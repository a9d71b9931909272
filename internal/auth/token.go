package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrRevokedToken = errors.New("token revoked")
)

// Claims is the JWT payload. ID (jti) identifies the token for revocation.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// ExpiresIn is the remaining lifetime at now, never negative.
func (c *Claims) ExpiresIn(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	if d := c.ExpiresAt.Time.Sub(now); d > 0 {
		return d
	}
	return 0
}

type TokenManager struct {
	secret      []byte
	ttl         time.Duration
	revocations RevocationStore
	now         func() time.Time
}

func NewTokenManager(secret []byte, ttl time.Duration, revocations RevocationStore) *TokenManager {
	return &TokenManager{
		secret:      secret,
		ttl:         ttl,
		revocations: revocations,
		now:         time.Now,
	}
}

// Issue signs an HS256 token for userID.
func (m *TokenManager) Issue(userID int64) (string, *Claims, error) {
	now := m.now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, claims, nil
}

// Parse verifies signature, expiry and revocation.
func (m *TokenManager) Parse(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID <= 0 || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	revoked, err := m.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, ErrRevokedToken
	}
	return claims, nil
}

// Revoke blocks the token until it would have expired anyway.
func (m *TokenManager) Revoke(ctx context.Context, claims *Claims) error {
	ttl := claims.ExpiresIn(m.now())
	if ttl == 0 {
		return nil
	}
	return m.revocations.Revoke(ctx, claims.ID, ttl)
}
