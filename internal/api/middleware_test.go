package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSecurityHeaders(t *testing.T) {
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	handler := SecurityHeaders(nextHandler)

	req := httptest.NewRequest("GET", "http://example.com/foo", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	resp := w.Result()
	expectedHeaders := map[string]string{
		"X-Content-Type-Options":    "nosniff",
		"X-Frame-Options":           "DENY",
		"X-XSS-Protection":          "1; mode=block",
		"Referrer-Policy":           "strict-origin-when-cross-origin",
		"Strict-Transport-Security": "max-age=63072000; includeSubDomains",
	}
	for key, expected := range expectedHeaders {
		if got := resp.Header.Get(key); got != expected {
			t.Errorf("Header %q = %q, want %q", key, got, expected)
		}
	}
}

func TestRequestID_StampsHeaderAndContext(t *testing.T) {
	var gotID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = GetRequestID(r.Context())
	})
	handler := RequestID(next)

	req := httptest.NewRequest("GET", "http://example.com/foo", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	headerID := w.Result().Header.Get("X-Request-ID")
	if headerID == "" {
		t.Fatal("expected a non-empty X-Request-ID header")
	}
	if gotID != headerID {
		t.Errorf("request-id in context = %q, want it to match header %q", gotID, headerID)
	}
}

func TestRecoverer_ConvertsPanicToInternalError(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	handler := Recoverer(panicking)

	req := httptest.NewRequest("GET", "http://example.com/foo", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestRealIP_PrefersValidXForwardedFor(t *testing.T) {
	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.RemoteAddr
	})
	handler := RealIP(next)

	req := httptest.NewRequest("GET", "http://example.com/foo", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	req.RemoteAddr = "10.0.0.1:12345"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != "203.0.113.7" {
		t.Errorf("RemoteAddr = %q, want the first valid X-Forwarded-For entry", got)
	}
}

func TestRealIP_IgnoresMalformedForwardedHeader(t *testing.T) {
	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.RemoteAddr
	})
	handler := RealIP(next)

	req := httptest.NewRequest("GET", "http://example.com/foo", nil)
	req.Header.Set("X-Forwarded-For", "not-an-ip")
	req.RemoteAddr = "198.51.100.2:9999"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != "198.51.100.2" {
		t.Errorf("RemoteAddr = %q, want fallback to RemoteAddr's host", got)
	}
}
