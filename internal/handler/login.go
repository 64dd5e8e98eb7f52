package handler

import (
	"crypto/subtle"
	"net/http"

	"contactsheet/internal/config"
	"contactsheet/internal/logger"
	"contactsheet/internal/middleware"
)

// LoginHandler handles POST /auth/login by validating password and issuing an auth cookie.
func LoginHandler(config *config.Config, tokens *middleware.Tokens, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		password := r.FormValue("password")
		if config.Password == "" || subtle.ConstantTimeCompare([]byte(password), []byte(config.Password)) != 1 {
			logger.Warning("Rejected login from %s", r.RemoteAddr)
			http.Error(w, "Invalid password", http.StatusUnauthorized)
			return
		}

		token, err := tokens.Issue()
		if err != nil {
			logger.Error("Error issuing token: %v", err)
			http.Error(w, "Login failed", http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     middleware.CookieName,
			Value:    token,
			Path:     "/",
			MaxAge:   int(middleware.TokenLifetime.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		w.WriteHeader(http.StatusNoContent)
	}
}

// LogoutHandler revokes the auth cookie.
func LogoutHandler(tokens *middleware.Tokens) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(middleware.CookieName); err == nil {
			tokens.Revoke(cookie.Value)
		}

		http.SetCookie(w, &http.Cookie{
			Name:   middleware.CookieName,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
		w.WriteHeader(http.StatusNoContent)
	}
}
