package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"contactsheet/internal/logger"
)

// writeWait bounds each write to a viewer.
const writeWait = 10 * time.Second

// RefreshEvent tells viewers that a session rescanned its folder.
type RefreshEvent struct {
	Session string    `json:"session"`
	Folder  string    `json:"folder"`
	Files   []string  `json:"files"`
	Time    time.Time `json:"time"`
}

// HubService fans out text frames to every connected viewer.
type HubService struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	quit       chan struct{}
	writeWait  time.Duration
	mutex      sync.RWMutex
	logger     *logger.Logger
}

func NewHubService(logger *logger.Logger) *HubService {
	return &HubService{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		quit:       make(chan struct{}),
		writeWait:  writeWait,
		logger:     logger,
	}
}

// Run processes registrations and broadcasts until Stop is called.
func (h *HubService) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Viewer connected. Total: %d", count)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Viewer disconnected. Total: %d", count)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				client.SetWriteDeadline(time.Now().Add(h.writeWait))
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					h.logger.Error("Error sending message: %v", err)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mutex.Unlock()

		case <-h.quit:
			h.mutex.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return
		}
	}
}

// Stop ends Run and closes every connection.
func (h *HubService) Stop() {
	close(h.quit)
}

func (h *HubService) Register(client *websocket.Conn) {
	select {
	case h.register <- client:
	case <-h.quit:
		client.Close()
	}
}

func (h *HubService) Unregister(client *websocket.Conn) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// Broadcast queues message for every viewer. A full queue drops the message.
func (h *HubService) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warning("Broadcast queue full, dropping message")
	}
}

// BroadcastRefresh announces a rescan.
func (h *HubService) BroadcastRefresh(event RefreshEvent) error {
	message, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode refresh event: %w", err)
	}
	h.Broadcast(message)
	return nil
}

func (h *HubService) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
