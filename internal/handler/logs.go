package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"contactsheet/internal/logger"
)

// LogFiles lists the level files served under /logs/{level}.
var LogFiles = map[string]string{
	"info":    "info.log",
	"warning": "warning.log",
	"error":   "error.log",
}

// ShowLogsHandler serves one level file as text/plain.
func ShowLogsHandler(logger *logger.Logger, filename string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serveLogFile(w, r, logger.LogDirectory(), filename)
	}
}

// serveLogFile sets headers and serves a log file if it exists.
func serveLogFile(w http.ResponseWriter, r *http.Request, logDir, filename string) {
	if logDir == "" {
		http.Error(w, "File logging disabled", http.StatusNotFound)
		return
	}
	filePath := filepath.Join(logDir, filename)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Log file not found: " + filename))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")

	http.ServeFile(w, r, filePath)
}

// ClearLogsHandler truncates one level file.
func ClearLogsHandler(logger *logger.Logger, filename string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodDelete {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := logger.CleanLogs(filename); err != nil {
			http.Error(w, "Failed to clear log", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
