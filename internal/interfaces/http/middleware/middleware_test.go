package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookhatch-api/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthEngine(jwt *utils.JWTManager) *gin.Engine {
	r := gin.New()
	r.Use(Auth(AuthConfig{Enabled: true, SkipPaths: DefaultSkipPaths}, jwt))
	whoami := func(c *gin.Context) {
		c.String(http.StatusOK, "user=%s", UserID(c))
	}
	r.GET("/v1/books/:slug", whoami)
	r.GET("/v1/stories", whoami)
	r.GET("/v1/admin", RequireAdmin(), whoami)
	return r
}

func serve(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	jwt := utils.NewJWTManager("secret", "bookhatch")
	r := newAuthEngine(jwt)

	pair, err := jwt.GenerateTokenPair("u-1", "Ada", "member", time.Minute, time.Hour)
	require.NoError(t, err)

	t.Run("public path anonymous", func(t *testing.T) {
		w := serve(r, "/v1/books/dune", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user=", w.Body.String())
	})

	t.Run("public path with token injects user", func(t *testing.T) {
		w := serve(r, "/v1/books/dune", pair.AccessToken)
		assert.Equal(t, "user=u-1", w.Body.String())
	})

	t.Run("public path with bad token stays anonymous", func(t *testing.T) {
		w := serve(r, "/v1/books/dune", "garbage")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user=", w.Body.String())
	})

	t.Run("protected path", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(r, "/v1/stories", "").Code)
		assert.Equal(t, http.StatusUnauthorized, serve(r, "/v1/stories", pair.RefreshToken).Code)
		assert.Equal(t, "user=u-1", serve(r, "/v1/stories", pair.AccessToken).Body.String())
	})

	t.Run("admin only", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, serve(r, "/v1/admin", pair.AccessToken).Code)

		admin, err := jwt.GenerateToken("u-2", "Root", "admin", utils.TokenTypeAccess, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, serve(r, "/v1/admin", admin).Code)
	})
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextKeyRequestID))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Body.String())
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 65))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/", func(c *gin.Context) {
		panic("boom")
	})

	w := serve(r, "/", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}

type countingLimiter struct {
	allow int
	keys  []string
	err   error
}

func (l *countingLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	l.keys = append(l.keys, key)
	if l.err != nil {
		return false, l.err
	}
	l.allow--
	return l.allow >= 0, nil
}

func TestRateLimit(t *testing.T) {
	keyFn := func(scope, subject string) string { return scope + ":" + subject }

	t.Run("blocks after limit", func(t *testing.T) {
		limiter := &countingLimiter{allow: 1}
		r := gin.New()
		r.Use(RateLimit(RateLimitConfig{Enabled: true, Scope: "assist", Limit: 1, Window: time.Minute}, limiter, keyFn))
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		assert.Equal(t, http.StatusOK, serve(r, "/", "").Code)
		assert.Equal(t, http.StatusTooManyRequests, serve(r, "/", "").Code)
		require.NotEmpty(t, limiter.keys)
		assert.True(t, strings.HasPrefix(limiter.keys[0], "assist:ip:"))
	})

	t.Run("fails open", func(t *testing.T) {
		limiter := &countingLimiter{err: errors.New("redis down")}
		r := gin.New()
		r.Use(RateLimit(RateLimitConfig{Enabled: true, Limit: 1}, limiter, keyFn))
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		assert.Equal(t, http.StatusOK, serve(r, "/", "").Code)
	})

	t.Run("disabled", func(t *testing.T) {
		limiter := &countingLimiter{}
		r := gin.New()
		r.Use(RateLimit(RateLimitConfig{Enabled: false, Limit: 1}, limiter, keyFn))
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		assert.Equal(t, http.StatusOK, serve(r, "/", "").Code)
		assert.Empty(t, limiter.keys)
	})
}
