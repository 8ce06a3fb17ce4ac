package service

import (
	"context"
	"testing"
	"time"

	"github.com/Josepmarimon/bau-assist-sub002/internal/config"
	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth() *AuthService {
	return NewAuthService(&config.Config{
		JWTSecret: "test-secret",
		JWTIssuer: "bau-assist",
		JWTExpiry: 24 * time.Hour,
	}, nil)
}

func TestIssueAndValidateToken(t *testing.T) {
	s := newTestAuth()

	tok, err := s.IssueToken("coordinacio", []string{"schedule:read", "schedule:write"}, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.ID)

	claims, err := s.ValidateToken(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "coordinacio", claims.Subject)
	assert.Equal(t, tok.ID, claims.ID)
	assert.True(t, claims.Has(model.PermissionScheduleWrite))
	assert.False(t, claims.Has(model.PermissionImportsRun))

	assert.NoError(t, s.CheckRevoked(context.Background(), claims.ID))
}

func TestIssueTokenRejectsUnknownPermission(t *testing.T) {
	_, err := newTestAuth().IssueToken("x", []string{"exams:grade"}, 0)
	assert.ErrorIs(t, err, ErrUnknownPermission)
}

func TestValidateTokenExpired(t *testing.T) {
	s := newTestAuth()
	issued := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return issued }

	tok, err := s.IssueToken("x", nil, time.Hour)
	require.NoError(t, err)

	s.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = s.ValidateToken(tok.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateTokenWrongIssuer(t *testing.T) {
	other := NewAuthService(&config.Config{JWTSecret: "test-secret", JWTIssuer: "someone-else", JWTExpiry: time.Hour}, nil)
	tok, err := other.IssueToken("x", nil, 0)
	require.NoError(t, err)

	_, err = newTestAuth().ValidateToken(tok.Token)
	assert.Error(t, err)
}
