package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Josepmarimon/bau-assist-sub002/internal/config"
	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Common auth errors.
var (
	ErrTokenExpired      = errors.New("token expired")
	ErrUnknownPermission = errors.New("unknown permission")
)

// Claims extends JWT standard claims with the permissions granted to the token.
type Claims struct {
	jwt.RegisteredClaims
	Permissions []string `json:"permissions"`
}

// Has reports whether the claims grant permission p.
func (c *Claims) Has(p model.Permission) bool {
	for _, have := range c.Permissions {
		if have == string(p) {
			return true
		}
	}
	return false
}

// IssuedToken is a freshly signed API token.
type IssuedToken struct {
	Token     string    `json:"token"`
	ID        string    `json:"jti"`
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthService issues, verifies and revokes API tokens.
type AuthService struct {
	cfg *config.Config
	rdb *redis.Client
	now func() time.Time
}

// NewAuthService creates a new AuthService. rdb may be nil when revocation is not needed.
func NewAuthService(cfg *config.Config, rdb *redis.Client) *AuthService {
	return &AuthService{cfg: cfg, rdb: rdb, now: time.Now}
}

// IssueToken signs a token for subject carrying the given permissions. A zero ttl uses
// the configured expiry.
func (s *AuthService) IssueToken(subject string, permissions []string, ttl time.Duration) (*IssuedToken, error) {
	for _, p := range permissions {
		if !model.ValidPermission(p) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPermission, p)
		}
	}
	if ttl <= 0 {
		ttl = s.cfg.JWTExpiry
	}

	jti := uuid.New().String()
	now := s.now()
	expires := now.Add(ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.cfg.JWTIssuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Permissions: permissions,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &IssuedToken{Token: signed, ID: jti, Subject: subject, ExpiresAt: expires}, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithIssuer(s.cfg.JWTIssuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// CheckRevoked fails with ErrTokenRevoked when the token id was revoked.
func (s *AuthService) CheckRevoked(ctx context.Context, jti string) error {
	if s.rdb == nil {
		return nil
	}
	n, err := s.rdb.Exists(ctx, config.CacheKey.RevokedTokenKey(jti)).Result()
	if err != nil {
		return fmt.Errorf("check revocation: %w", err)
	}
	if n > 0 {
		return ErrTokenRevoked
	}
	return nil
}

// Revoke marks a token id as revoked until ttl elapses, which should cover the token's
// remaining lifetime. A zero ttl uses the configured expiry.
func (s *AuthService) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if s.rdb == nil {
		return errors.New("revocation store not configured")
	}
	if ttl <= 0 {
		ttl = s.cfg.JWTExpiry
	}
	return s.rdb.Set(ctx, config.CacheKey.RevokedTokenKey(jti), s.now().UTC().Format(time.RFC3339), ttl).Err()
}

// RevokeToken revokes a signed token for its remaining lifetime.
func (s *AuthService) RevokeToken(ctx context.Context, tokenStr string) (string, error) {
	claims, err := s.ValidateToken(tokenStr)
	if err != nil {
		return "", err
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return claims.ID, nil
	}
	return claims.ID, s.Revoke(ctx, claims.ID, ttl)
}
