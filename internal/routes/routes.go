package routes

import (
	"net/http"

	"contactsheet/internal/config"
	"contactsheet/internal/handler"
	"contactsheet/internal/logger"
	"contactsheet/internal/middleware"
	"contactsheet/internal/service/session"
	"contactsheet/internal/service/websocket"
)

// SetupRoutes registers the view, websocket, log and auth endpoints and wraps
// the mux with the authentication middleware.
func SetupRoutes(cfg *config.Config, logger *logger.Logger, store *session.Store,
	hub *websocket.HubService, tokens *middleware.Tokens) http.Handler {
	mux := http.NewServeMux()

	// View endpoints
	mux.HandleFunc("/api/view", handler.ViewHandler(store, hub, cfg, logger))
	for _, part := range []string{"sheet", "image", "mask"} {
		mux.HandleFunc("/api/view/"+part, handler.ViewPNGHandler(part, store, hub, cfg, logger))
	}

	// Refresh events
	mux.HandleFunc("/ws", handler.RefreshWebsocketHandler(hub, logger))

	// Log endpoints
	for level, filename := range handler.LogFiles {
		mux.HandleFunc("/logs/"+level, handler.ShowLogsHandler(logger, filename))
		mux.HandleFunc("/logs/"+level+"/clear", handler.ClearLogsHandler(logger, filename))
	}

	// Auth endpoints
	mux.HandleFunc("/auth/login", handler.LoginHandler(cfg, tokens, logger))
	mux.HandleFunc("/auth/logout", handler.LogoutHandler(tokens))

	return middleware.AuthMiddleware(cfg.Password, tokens, mux)
}
