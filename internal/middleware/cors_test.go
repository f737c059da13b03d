package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	const origin = "http://localhost:5173"
	next, called := okHandler()
	handler := CORS(origin + "/")(next)

	t.Run("allowed origin gets credentials", func(t *testing.T) {
		*called = false
		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		req.Header.Set("Origin", origin)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Header().Get("Access-Control-Allow-Origin") != origin {
			t.Errorf("Allow-Origin = %q", rr.Header().Get("Access-Control-Allow-Origin"))
		}
		if rr.Header().Get("Access-Control-Allow-Credentials") != "true" {
			t.Error("expected Allow-Credentials")
		}
		if !*called {
			t.Error("next handler should run")
		}
	})

	t.Run("other origin gets no headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		req.Header.Set("Origin", "https://evil.example")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Error("unexpected Allow-Origin for foreign origin")
		}
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		*called = false
		req := httptest.NewRequest(http.MethodOptions, "/api/admin/posts", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rr.Code)
		}
		if rr.Header().Get("Access-Control-Allow-Methods") == "" {
			t.Error("expected Allow-Methods on preflight")
		}
		if *called {
			t.Error("preflight should not reach next handler")
		}
	})
}
