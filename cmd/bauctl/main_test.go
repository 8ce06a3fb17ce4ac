package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/Josepmarimon/bau-assist-sub002/internal/config"
	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetArgs(args)
	root.SetErr(&bytes.Buffer{})
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTokenIssue(t *testing.T) {
	t.Setenv("JWT_SECRET", "bauctl-test-secret")
	t.Setenv("LOG_FORMAT", "json")

	out, err := runCLI(t, "token", "issue", "secretaria", "-p", "catalog:read,schedule:write", "--ttl", "1h")
	require.NoError(t, err)

	var issued service.IssuedToken
	require.NoError(t, json.Unmarshal([]byte(out), &issued))
	assert.Equal(t, "secretaria", issued.Subject)

	claims, err := service.NewAuthService(config.Load(), nil).ValidateToken(issued.Token)
	require.NoError(t, err)
	assert.True(t, claims.Has(model.PermissionCatalogRead))
	assert.True(t, claims.Has(model.PermissionScheduleWrite))
	assert.False(t, claims.Has(model.PermissionImportsRun))
}

func TestTokenIssueAll(t *testing.T) {
	t.Setenv("JWT_SECRET", "bauctl-test-secret")

	out, err := runCLI(t, "token", "issue", "admin", "--all")
	require.NoError(t, err)

	var issued service.IssuedToken
	require.NoError(t, json.Unmarshal([]byte(out), &issued))
	claims, err := service.NewAuthService(config.Load(), nil).ValidateToken(issued.Token)
	require.NoError(t, err)
	assert.Len(t, claims.Permissions, len(model.AllPermissions))
}

func TestTokenIssueRejectsUnknownPermission(t *testing.T) {
	_, err := runCLI(t, "token", "issue", "secretaria", "-p", "exams:write")
	assert.ErrorIs(t, err, service.ErrUnknownPermission)

	_, err = runCLI(t, "token", "issue", "secretaria")
	assert.Error(t, err)
}

func TestImportRejectsUnknownKind(t *testing.T) {
	_, err := runCLI(t, "import", "rooms", "aules.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown import kind")
}

func TestSemesterFlag(t *testing.T) {
	id, err := semesterFlag("")
	require.NoError(t, err)
	assert.Nil(t, id)

	id, err = semesterFlag("3f0c5d4e-8a1b-4c2d-9e3f-0a1b2c3d4e5f")
	require.NoError(t, err)
	assert.Equal(t, "3f0c5d4e-8a1b-4c2d-9e3f-0a1b2c3d4e5f", id.String())

	_, err = semesterFlag("primer")
	assert.Error(t, err)
}

func TestTokenRevokeJTINeedsTTL(t *testing.T) {
	_, err := runCLI(t, "token", "revoke", "--jti", "4b1f7c9e")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--ttl")

	_, err = runCLI(t, "token", "revoke", "--jti", "4b1f7c9e", "--ttl", "-1h")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--ttl")

	_, err = runCLI(t, "token", "revoke")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "either a token or --jti")
}
