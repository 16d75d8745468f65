package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iliyamo/filmorate/internal/config"
	"github.com/iliyamo/filmorate/internal/metrics"
	"github.com/iliyamo/filmorate/internal/utils"
)

const testSecret = "test-secret"

func okHandler(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func token(t *testing.T, userID uint64) string {
	t.Helper()
	at, err := utils.NewAccessToken(testSecret, userID, 5)
	if err != nil {
		t.Fatalf("NewAccessToken error = %v", err)
	}
	return at.Token
}

func TestJWTAuthAndRequireSelf(t *testing.T) {
	e := echo.New()
	e.PUT("/users/:id/friends/:friendId", okHandler, JWTAuth(testSecret), RequireSelf("id"))

	tests := []struct {
		name   string
		path   string
		auth   string
		status int
	}{
		{name: "no header", path: "/users/1/friends/2", status: http.StatusUnauthorized},
		{name: "not bearer", path: "/users/1/friends/2", auth: "Basic abc", status: http.StatusUnauthorized},
		{name: "garbage token", path: "/users/1/friends/2", auth: "Bearer nope", status: http.StatusUnauthorized},
		{name: "other user", path: "/users/1/friends/2", auth: "Bearer " + token(t, 2), status: http.StatusForbidden},
		{name: "bad id", path: "/users/x/friends/2", auth: "Bearer " + token(t, 1), status: http.StatusForbidden},
		{name: "self", path: "/users/1/friends/2", auth: "Bearer " + token(t, 1), status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	e := echo.New()
	e.GET("/", okHandler, JWTAuth("other-secret"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, 1))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	var seen string
	e.GET("/", func(c echo.Context) error {
		seen = RequestIDFromContext(c)
		return c.NoContent(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	got := rec.Header().Get(echo.HeaderXRequestID)
	if got == "" || got != seen {
		t.Errorf("generated id: header %q, context %q", got, seen)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRequestID, "upstream-1")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if got := rec.Header().Get(echo.HeaderXRequestID); got != "upstream-1" {
		t.Errorf("X-Request-ID = %q, want upstream value", got)
	}
}

func TestLocalTokenBucket(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Hour,
		KeyStrategy:    "ip",
		Prefix:         "test",
	}
	e := echo.New()
	e.Use(NewRateLimiter(cfg, nil))
	e.GET("/", okHandler)

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := do("10.0.0.1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
	}
	rec := do("10.0.0.1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", rec.Code)
	}
	if ra, _ := strconv.Atoi(rec.Header().Get("Retry-After")); ra <= 0 {
		t.Errorf("Retry-After = %q, want positive seconds", rec.Header().Get("Retry-After"))
	}
	if rec := do("10.0.0.2"); rec.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", rec.Code)
	}
}

func TestNewRateLimiter_Disabled(t *testing.T) {
	e := echo.New()
	e.Use(NewRateLimiter(config.RateLimitConfig{Enabled: false, Capacity: 1}, nil))
	e.GET("/", okHandler)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/films", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/films")

	tests := []struct {
		strategy string
		want     string
	}{
		{"ip", "rl:ip:192.0.2.7"},
		{"user", "rl:user:anon"},
		{"route", "rl:route:GET /v1/films"},
		{"", "rl:ip:192.0.2.7:user:anon:route:GET /v1/films"},
	}
	for _, tt := range tests {
		got := buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: tt.strategy}, c)
		if got != tt.want {
			t.Errorf("strategy %q: key = %q, want %q", tt.strategy, got, tt.want)
		}
	}

	c.Set(ContextKeyUserID, uint64(42))
	if got := buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}, c); got != "rl:user:42" {
		t.Errorf("authenticated key = %q, want %q", got, "rl:user:42")
	}
}

func TestAsInt64(t *testing.T) {
	tests := []struct {
		in   interface{}
		want int64
	}{
		{int64(3), 3},
		{int(4), 4},
		{float64(5), 5},
		{"6", 6},
		{"x", 0},
		{nil, 0},
	}
	for _, tt := range tests {
		if got := asInt64(tt.in); got != tt.want {
			t.Errorf("asInt64(%#v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestMetricsAndLogger_RecordRouteAndStatus(t *testing.T) {
	e := echo.New()
	e.Use(RequestLogger(), Metrics())
	e.GET("/films/:id", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "missing")
	})

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/films/:id", "404")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/films/7", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("requests counter delta = %v, want 1", got)
	}
}
