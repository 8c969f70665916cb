package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/authkit/auth-api/internal/core/domain"
)

type stubVerifier struct {
	id  int64
	err error
	got string
}

func (s *stubVerifier) Verify(token string) (int64, error) {
	s.got = token
	return s.id, s.err
}

func runAuth(t *testing.T, verifier *stubVerifier, header string) (bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	called := false
	h := Auth(verifier)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	err := h(c)
	return called, err
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	verifier := &stubVerifier{id: 42}

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer good-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(verifier)(func(c echo.Context) error {
		called = true
		ctxID, ok := UserIDFromContext(c.Request().Context())
		if !ok || ctxID != 42 {
			t.Fatalf("user id not set on request context: %v %v", ctxID, ok)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if verifier.got != "good-token" {
		t.Fatalf("verifier got %q", verifier.got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserIDFromContext_Absent(t *testing.T) {
	if id, ok := UserIDFromContext(context.Background()); ok || id != 0 {
		t.Fatalf("expected no id, got %d %v", id, ok)
	}
	if id, ok := UserIDFromContext(WithUserID(context.Background(), 5)); !ok || id != 5 {
		t.Fatalf("expected 5, got %d %v", id, ok)
	}
}

func TestAuthMiddleware_SchemeIsCaseInsensitive(t *testing.T) {
	verifier := &stubVerifier{id: 7}
	called, err := runAuth(t, verifier, "bearer abc")
	if err != nil || !called {
		t.Fatalf("expected pass-through, got err=%v called=%v", err, called)
	}
	if verifier.got != "abc" {
		t.Fatalf("verifier got %q", verifier.got)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	cases := map[string]string{
		"no header":     "",
		"basic scheme":  "Basic dXNlcjpwYXNz",
		"bare token":    "abc.def.ghi",
		"empty bearer":  "Bearer ",
		"only a scheme": "Bearer",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			verifier := &stubVerifier{id: 1}
			called, err := runAuth(t, verifier, header)
			if !errors.Is(err, domain.ErrMissingToken) {
				t.Fatalf("expected ErrMissingToken, got %v", err)
			}
			if called {
				t.Fatalf("next must not be called")
			}
			if verifier.got != "" {
				t.Fatalf("verifier must not be called")
			}
		})
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	called, err := runAuth(t, &stubVerifier{err: domain.ErrTokenExpired}, "Bearer old")
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if called {
		t.Fatalf("next must not be called")
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	called, err := runAuth(t, &stubVerifier{err: errors.New("signature mismatch")}, "Bearer forged")
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
	if called {
		t.Fatalf("next must not be called")
	}
}
