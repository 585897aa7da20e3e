package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskhive/models"
	"taskhive/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.Logger = zap.NewNop()
}

type fakeAuth map[string]models.Actor

func (f fakeAuth) Authenticate(_ context.Context, token string) (models.Actor, error) {
	if a, ok := f[token]; ok {
		return a, nil
	}
	return models.Actor{}, utils.Unauthorized("invalid token")
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) {
		actor, _ := ActorFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": actor.ID, "role": actor.Role})
	})
	r.GET("/", handlers...)
	return r
}

func TestRequireAuth(t *testing.T) {
	auth := fakeAuth{"good": {ID: "u1", Role: models.RoleCustomer}}
	r := newRouter(RequireAuth(auth))

	tests := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"header token", "Bearer good", "", http.StatusOK},
		{"query token", "", "?token=good", http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", "", http.StatusUnauthorized},
		{"invalid", "Bearer bad", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	auth := fakeAuth{
		"cust":  {ID: "c1", Role: models.RoleCustomer},
		"admin": {ID: "a1", Role: models.RoleAdmin},
	}
	r := newRouter(RequireAuth(auth), RequireRole(models.RoleAdmin))

	for token, want := range map[string]int{"cust": http.StatusForbidden, "admin": http.StatusOK} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != want {
			t.Errorf("%s: status = %d, want %d", token, w.Code, want)
		}
	}
}

func TestRateLimit(t *testing.T) {
	r := newRouter(RateLimitMiddleware(2))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}

	// A different client has its own budget.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "198.51.100.2")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("second client status = %d", w.Code)
	}
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	r := newRouter(RequestLogger(zap.NewNop()))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated request id")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		realIP string
		remote string
		want   string
	}{
		{"first forwarded hop", "203.0.113.7, 10.0.0.1", "", "10.0.0.2:5555", "203.0.113.7"},
		{"skips garbage hop", "unknown, 198.51.100.4", "", "10.0.0.2:5555", "198.51.100.4"},
		{"real ip header", "", "198.51.100.9", "10.0.0.2:5555", "198.51.100.9"},
		{"socket peer", "", "", "192.0.2.1:4000", "192.0.2.1"},
		{"ipv6 peer", "", "", "[2001:db8::1]:4000", "2001:db8::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.RemoteAddr = tt.remote
			if tt.xff != "" {
				c.Request.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				c.Request.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := ClientIP(c); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
