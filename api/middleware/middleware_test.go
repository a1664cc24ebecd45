package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anoixa/photo-share/database/models"
	"github.com/anoixa/photo-share/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newJWT(t *testing.T) *auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService(testSecret, time.Hour)
	require.NoError(t, err)
	return svc
}

func authRouter(jwtService *auth.JWTService, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{CombinedAuth(jwtService)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": CurrentUserID(c), "username": c.GetString(ContextUsernameKey)})
	})
	r.GET("/me", handlers...)
	return r
}

func TestCombinedAuth(t *testing.T) {
	jwtService := newJWT(t)
	token, _, err := jwtService.GenerateAccessToken("alice", 7, []string{models.RoleUser})
	require.NoError(t, err)

	router := authRouter(jwtService)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"malformed header", "Bearer", http.StatusBadRequest},
		{"unsupported scheme", "ApiKey abc", http.StatusUnauthorized},
		{"bad token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.JSONEq(t, `{"user_id":7,"username":"alice"}`, w.Body.String())
}

func TestRequireRole(t *testing.T) {
	jwtService := newJWT(t)
	router := authRouter(jwtService, RequireRole(models.RoleAdmin))

	userToken, _, err := jwtService.GenerateAccessToken("bob", 1, []string{models.RoleUser})
	require.NoError(t, err)
	adminToken, _, err := jwtService.GenerateAccessToken("root", 2, []string{models.RoleUser, models.RoleAdmin})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIPRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewIPRateLimiter(1, 2, time.Minute)
	defer limiter.StopCleanup()

	r := gin.New()
	r.Use(limiter.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Real-IP", "10.0.0.1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	assert.NotPanics(t, limiter.StopCleanup)
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}

func limiterRouter(handler gin.HandlerFunc, release <-chan struct{}, started chan<- struct{}) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/slow", handler, func(c *gin.Context) {
		started <- struct{}{}
		<-release
		c.Status(http.StatusOK)
	})
	return r
}

func TestConcurrencyLimiter_RejectsWhenFull(t *testing.T) {
	limiter := NewConcurrencyLimiter("global", 1)
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	r := limiterRouter(limiter.Middleware(), release, started)

	first := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/slow", nil))
		close(done)
	}()
	<-started
	assert.Equal(t, int64(1), limiter.Stats().InFlight)

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusServiceUnavailable, second.Code)

	close(release)
	<-done
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, LimiterStats{Limit: 1, InFlight: 0, Rejected: 1}, limiter.Stats())
}

func TestConcurrencyLimiter_QueueWaitsThenTimesOut(t *testing.T) {
	limiter := NewConcurrencyLimiter("upload", 1)
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	r := limiterRouter(limiter.Queue(50*time.Millisecond), release, started)

	first := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/slow", nil))
		close(done)
	}()
	<-started

	timedOut := httptest.NewRecorder()
	r.ServeHTTP(timedOut, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusServiceUnavailable, timedOut.Code)

	close(release)
	<-done

	after := httptest.NewRecorder()
	r.ServeHTTP(after, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusOK, after.Code)
	assert.Equal(t, int64(1), limiter.Stats().Rejected)
}

func TestNewConcurrencyLimiter_DefaultLimit(t *testing.T) {
	limiter := NewConcurrencyLimiter("global", 0)
	assert.Equal(t, "global", limiter.Name())
	assert.Equal(t, int64(100), limiter.Stats().Limit)
}
