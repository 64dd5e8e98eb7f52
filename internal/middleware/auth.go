package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	// CookieName carries the login token.
	CookieName = "contactsheet_auth"
	// TokenLifetime is how long a login stays valid.
	TokenLifetime = 30 * 24 * time.Hour
)

// Tokens keeps the login tokens issued by /auth/login.
type Tokens struct {
	issued *cache.Cache
}

func NewTokens() *Tokens {
	return &Tokens{issued: cache.New(TokenLifetime, time.Hour)}
}

// Issue creates and remembers a random token.
func (t *Tokens) Issue() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	token := hex.EncodeToString(buf)
	t.issued.SetDefault(token, struct{}{})
	return token, nil
}

// Valid reports whether token was issued and has not expired or been revoked.
func (t *Tokens) Valid(token string) bool {
	if token == "" {
		return false
	}
	_, ok := t.issued.Get(token)
	return ok
}

func (t *Tokens) Revoke(token string) {
	t.issued.Delete(token)
}

// AuthMiddleware requires a valid login cookie when password is set. The
// login endpoint stays reachable; everything else answers 401 without it.
// An empty password disables the check.
func AuthMiddleware(password string, tokens *Tokens, next http.Handler) http.Handler {
	if password == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(CookieName)
		if err != nil || !tokens.Valid(cookie.Value) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
