package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func serve(h http.Handler, path string, cookie *http.Cookie) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestAuthMiddleware_NoPassword(t *testing.T) {
	h := AuthMiddleware("", NewTokens(), ok)
	if code := serve(h, "/api/view", nil); code != http.StatusOK {
		t.Errorf("Expected open access, got %d", code)
	}
}

func TestAuthMiddleware_RequiresToken(t *testing.T) {
	tokens := NewTokens()
	h := AuthMiddleware("secret", tokens, ok)

	if code := serve(h, "/api/view", nil); code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without cookie, got %d", code)
	}
	if code := serve(h, "/api/view", &http.Cookie{Name: CookieName, Value: "forged"}); code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for unknown token, got %d", code)
	}
	if code := serve(h, "/auth/login", nil); code != http.StatusOK {
		t.Errorf("Login must stay reachable, got %d", code)
	}

	token, err := tokens.Issue()
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	cookie := &http.Cookie{Name: CookieName, Value: token}
	if code := serve(h, "/api/view", cookie); code != http.StatusOK {
		t.Errorf("Expected 200 with token, got %d", code)
	}

	tokens.Revoke(token)
	if code := serve(h, "/api/view", cookie); code != http.StatusUnauthorized {
		t.Errorf("Expected 401 after revoke, got %d", code)
	}
}
