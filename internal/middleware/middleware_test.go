package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Josepmarimon/bau-assist-sub002/internal/config"
	"github.com/Josepmarimon/bau-assist-sub002/internal/metrics"
	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/service"
	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testAuth() *service.AuthService {
	return service.NewAuthService(&config.Config{
		JWTSecret: "test-secret",
		JWTIssuer: "bau-assist-test",
		JWTExpiry: time.Hour,
	}, nil)
}

func protectedRouter(auth *service.AuthService) *gin.Engine {
	r := gin.New()
	g := r.Group("/", RequireJWT(auth))
	g.GET("/read", RequirePermission(model.PermissionScheduleRead), func(c *gin.Context) {
		c.String(http.StatusOK, Actor(c))
	})
	g.GET("/write", RequirePermission(model.PermissionScheduleWrite), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequireJWT(t *testing.T) {
	auth := testAuth()
	r := protectedRouter(auth)

	tok, err := auth.IssueToken("secretaria", []string{string(model.PermissionScheduleRead)}, 0)
	require.NoError(t, err)

	t.Run("missing token", func(t *testing.T) {
		rec := do(r, http.MethodGet, "/read", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "TOKEN_REQUIRED")
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := do(r, http.MethodGet, "/read", "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "TOKEN_INVALID")
	})

	t.Run("granted", func(t *testing.T) {
		rec := do(r, http.MethodGet, "/read", tok.Token)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "secretaria", rec.Body.String())
	})

	t.Run("query token", func(t *testing.T) {
		rec := do(r, http.MethodGet, "/read?token="+tok.Token, "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing permission", func(t *testing.T) {
		rec := do(r, http.MethodGet, "/write", tok.Token)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "PERMISSION_DENIED")
	})

	t.Run("other secret", func(t *testing.T) {
		other := service.NewAuthService(&config.Config{JWTSecret: "x", JWTIssuer: "bau-assist-test", JWTExpiry: time.Hour}, nil)
		forged, err := other.IssueToken("mallory", []string{string(model.PermissionScheduleWrite)}, 0)
		require.NoError(t, err)
		rec := do(r, http.MethodGet, "/write", forged.Token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, 2, time.Minute)
	now := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/", "").Code)

	rec := do(r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))

	// Half the interval refills one of the two tokens.
	now = now.Add(30 * time.Second)
	rec = do(r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestBrotli(t *testing.T) {
	body := strings.Repeat("aula P.1.3 ", 400)

	r := gin.New()
	r.Use(Brotli())
	r.GET("/big", func(c *gin.Context) { c.String(http.StatusOK, body) })
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/pdf", func(c *gin.Context) { c.Data(http.StatusOK, "application/pdf", []byte(body)) })

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Accept-Encoding", "gzip, br")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := get("/big")
	require.Equal(t, "br", rec.Header().Get("Content-Encoding"))
	plain, err := io.ReadAll(brotli.NewReader(bytes.NewReader(rec.Body.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, body, string(plain))

	rec = get("/small")
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "ok", rec.Body.String())

	rec = get("/pdf")
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Equal(t, body, rec.Body.String())
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	m := metrics.New()
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/classrooms/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	do(r, http.MethodGet, "/classrooms/a", "")
	do(r, http.MethodGet, "/classrooms/b", "")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/classrooms/:id", "200")))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	rec := do(r, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}
