package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/middleware"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/utils"
	"golang.org/x/time/rate"
)

// echoOrigin writes the origin found in the request context.
var echoOrigin = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	origin, ok := utils.GetOriginFromContext(r.Context())
	if !ok {
		http.Error(w, "origin not in context", http.StatusInternalServerError)
		return
	}
	w.Write([]byte(origin))
})

// TestOriginMiddleware_IssuesCookie verifies that a request without a cookie
// gets a fresh origin that is both set as cookie and put into the context.
func TestOriginMiddleware_IssuesCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	middleware.OriginMiddleware(echoOrigin).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != middleware.OriginCookie {
		t.Fatalf("expected %s cookie, got %v", middleware.OriginCookie, cookies)
	}
	if cookies[0].Value != rec.Body.String() {
		t.Errorf("cookie %q and context origin %q differ", cookies[0].Value, rec.Body.String())
	}
}

// TestOriginMiddleware_ReusesCookie verifies that a valid cookie is kept.
func TestOriginMiddleware_ReusesCookie(t *testing.T) {
	const origin = "6f1c1f3e-8b8e-4f52-9c1e-6a3f0f5d2b10"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.OriginCookie, Value: origin})
	rec := httptest.NewRecorder()
	middleware.OriginMiddleware(echoOrigin).ServeHTTP(rec, req)

	if rec.Body.String() != origin {
		t.Errorf("expected origin %q, got %q", origin, rec.Body.String())
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("did not expect a new cookie")
	}
}

// TestOriginMiddleware_ReplacesMalformedCookie verifies that a cookie that is
// not a UUID is never used as a storage partition.
func TestOriginMiddleware_ReplacesMalformedCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.OriginCookie, Value: "../../etc"})
	rec := httptest.NewRecorder()
	middleware.OriginMiddleware(echoOrigin).ServeHTTP(rec, req)

	if rec.Body.String() == "../../etc" {
		t.Fatal("malformed origin accepted")
	}
	if len(rec.Result().Cookies()) != 1 {
		t.Error("expected a replacement cookie")
	}
}

func TestCORSMiddleware(t *testing.T) {
	mw := middleware.CORSMiddleware([]string{"http://localhost:5173"})
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name, method, origin string
		wantCode             int
		wantAllow            string
	}{
		{"allowed origin", http.MethodGet, "http://localhost:5173", http.StatusOK, "http://localhost:5173"},
		{"unknown origin", http.MethodGet, "https://evil.example", http.StatusOK, ""},
		{"preflight", http.MethodOptions, "http://localhost:5173", http.StatusNoContent, "http://localhost:5173"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/session", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			mw(ok).ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantAllow)
			}
		})
	}
}

// TestRateLimit verifies that each client address has its own bucket.
func TestRateLimit(t *testing.T) {
	mw := middleware.RateLimit(rate.Limit(0.001), 2)
	handler := middleware.OriginMiddleware(mw(echoOrigin))

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/session/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := call("198.51.100.7:40000"); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, code)
		}
	}
	if code := call("198.51.100.7:40001"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst from the same host, got %d", code)
	}
	if code := call("203.0.113.9:40000"); code != http.StatusOK {
		t.Fatalf("other client should not be limited, got %d", code)
	}
}

// TestRateLimit_IgnoresOriginCookie verifies that dropping the origin cookie
// does not hand out a fresh bucket.
func TestRateLimit_IgnoresOriginCookie(t *testing.T) {
	mw := middleware.RateLimit(rate.Limit(0.001), 1)
	handler := middleware.OriginMiddleware(mw(echoOrigin))

	limited := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/session/login", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	if limited != 19 {
		t.Fatalf("expected 19 of 20 cookieless requests limited, got %d", limited)
	}
}
