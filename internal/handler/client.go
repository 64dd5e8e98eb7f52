package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"contactsheet/internal/logger"
	ws "contactsheet/internal/service/websocket"
)

// Upgrader upgrades HTTP connections to WebSocket; CheckOrigin allows all origins.
var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RefreshWebsocketHandler handles viewer connections on /ws and registers them
// in the hub to receive refresh events. Incoming frames are ignored.
func RefreshWebsocketHandler(hub *ws.HubService, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}

		hub.Register(connection)
		defer hub.Unregister(connection)

		for {
			_, _, err := connection.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Info("Viewer disconnected normally")
				} else {
					logger.Warning("Viewer disconnected with error: %v", err)
				}
				break
			}
		}
	}
}
