package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vrapolinario/AIforITOps/pkg/logger"
)

func TestSessionAssignsCookieToNewVisitors(t *testing.T) {
	t.Parallel()

	var seen string
	handler := Session(logger.New(logger.Options{ServiceName: "test"}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionIDFromContext(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))

	if seen == "" {
		t.Fatal("expected a session id in the request context")
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != sessionCookieName {
		t.Fatalf("expected %s cookie, got %v", sessionCookieName, cookies)
	}
	if cookies[0].Value != seen {
		t.Fatal("cookie value must match the context session id")
	}
}

func TestSessionReusesExistingCookie(t *testing.T) {
	t.Parallel()

	var seen string
	handler := Session(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionIDFromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/cart", nil)
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "existing-session"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if seen != "existing-session" {
		t.Fatalf("expected existing session id, got %q", seen)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Fatal("existing session must not be reissued")
	}
}
