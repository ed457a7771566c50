package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"supplydesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type stubAuthenticator struct {
	token string
	err   error
}

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*service.AdminClaims, error) {
	if s.err != nil {
		return nil, s.err
	}
	if token != s.token {
		return nil, service.ErrInvalidToken
	}
	return &service.AdminClaims{
		Role:             service.AdminRole,
		RegisteredClaims: jwt.RegisteredClaims{Subject: service.AdminSubject, ID: "sid"},
	}, nil
}

func newRouter(auth Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/private", RequireAdmin(auth), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ActorKey))
	})
	return r
}

func TestRequireAdmin(t *testing.T) {
	r := newRouter(stubAuthenticator{token: "good"})

	tests := []struct {
		name   string
		setup  func(*http.Request)
		status int
	}{
		{"missing", func(*http.Request) {}, http.StatusUnauthorized},
		{"cookie", func(req *http.Request) { req.AddCookie(&http.Cookie{Name: AdminCookie, Value: "good"}) }, http.StatusOK},
		{"bearer", func(req *http.Request) { req.Header.Set("Authorization", "Bearer good") }, http.StatusOK},
		{"bad bearer", func(req *http.Request) { req.Header.Set("Authorization", "Bearer bad") }, http.StatusUnauthorized},
		{"wrong scheme", func(req *http.Request) { req.Header.Set("Authorization", "Basic good") }, http.StatusUnauthorized},
		{"client-set flag cookie", func(req *http.Request) { req.AddCookie(&http.Cookie{Name: "admin-auth", Value: "true"}) }, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d (%s)", tt.status, w.Code, w.Body.String())
			}
			if tt.status == http.StatusOK && w.Body.String() != service.AdminSubject {
				t.Errorf("expected actor in context, got %q", w.Body.String())
			}
			if tt.status == http.StatusUnauthorized && !strings.Contains(w.Body.String(), `"error"`) {
				t.Errorf("expected error body, got %s", w.Body.String())
			}
		})
	}
}

func TestRequireAdminSessionAndStoreErrors(t *testing.T) {
	for _, tt := range []struct {
		err    error
		status int
	}{
		{service.ErrSessionNotFound, http.StatusUnauthorized},
		{errors.New("redis down"), http.StatusInternalServerError},
	} {
		r := newRouter(stubAuthenticator{err: tt.err})
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer anything")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != tt.status {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.status, w.Code)
		}
	}
}

func TestSessionCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	SetSessionCookie(c, "tok", time.Now().Add(time.Hour))

	cookie := w.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, AdminCookie+"=tok") || !strings.Contains(cookie, "HttpOnly") {
		t.Errorf("unexpected cookie %q", cookie)
	}

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	ClearSessionCookie(c)
	if cookie := w.Header().Get("Set-Cookie"); !strings.Contains(cookie, "Max-Age=0") {
		t.Errorf("expected expired cookie, got %q", cookie)
	}
}
