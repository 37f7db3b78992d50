package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"journal/internal/auth"
	"journal/internal/domain"
	"journal/internal/httputil"
)

type stubVerifier struct{}

func (stubVerifier) VerifyToken(token string) (*auth.Claims, error) {
	if token != "good" {
		return nil, domain.ErrUnauthorized
	}
	c := &auth.Claims{Role: "authenticated"}
	c.Subject = "user-1"
	return c, nil
}

func (stubVerifier) Close() error { return nil }

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// echoUser writes the resolved user id.
var echoUser = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	io.WriteString(w, httputil.GetUserID(r))
})

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name       string
		opts       AuthOptions
		header     string
		protected  bool
		wantStatus int
		wantBody   string
	}{
		{"valid token", AuthOptions{}, "Bearer good", true, http.StatusOK, "user-1"},
		{"invalid token", AuthOptions{}, "Bearer bad", false, http.StatusUnauthorized, ""},
		{"malformed header", AuthOptions{}, "Token good", false, http.StatusUnauthorized, ""},
		{"anonymous public route", AuthOptions{}, "", false, http.StatusOK, ""},
		{"anonymous protected route", AuthOptions{}, "", true, http.StatusUnauthorized, ""},
		{"disabled", AuthOptions{Disabled: true, DevUserID: "local"}, "", true, http.StatusOK, "local"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h http.Handler = echoUser
			if tt.protected {
				h = RequireUser(h)
			}
			h = Authenticate(stubVerifier{}, tt.opts, discard())(h)

			req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && rec.Body.String() != tt.wantBody {
				t.Errorf("user = %q, want %q", rec.Body.String(), tt.wantBody)
			}
			if tt.wantStatus == http.StatusUnauthorized && !strings.Contains(rec.Header().Get("Content-Type"), "problem+json") {
				t.Errorf("content type = %q, want problem+json", rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
	if !strings.Contains(buf.String(), "status=418") {
		t.Errorf("log = %q, want status=418", buf.String())
	}
}
