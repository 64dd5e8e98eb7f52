package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"contactsheet/internal/config"
	"contactsheet/internal/logger"
	"contactsheet/internal/model"
	"contactsheet/internal/service/session"
	"contactsheet/internal/service/sheet"
	"contactsheet/internal/service/websocket"
	"contactsheet/internal/tensor"
)

const defaultSessionID = "default"

// ErrOutsideRoot is returned for a requested folder that does not resolve
// inside the configured root directory.
var ErrOutsideRoot = errors.New("folder outside root directory")

// viewRequest holds the parsed query of a view endpoint.
type viewRequest struct {
	session       string
	folder        string
	trigger       any
	selected      int
	thumbnailSize int
	rows          int
}

// ViewResponse is the JSON body of GET /api/view.
type ViewResponse struct {
	Filename   string               `json:"filename"`
	Files      []model.ImageFileRef `json:"files"`
	Refreshed  bool                 `json:"refreshed"`
	SheetShape []int                `json:"sheetShape"`
	ImageShape []int                `json:"imageShape"`
	MaskShape  []int                `json:"maskShape"`
	Sheet      string               `json:"sheet"`
	Image      string               `json:"image"`
	Mask       string               `json:"mask"`
}

// parseViewRequest reads session, folder, trigger, selected, size and rows,
// falling back to the configured defaults.
func parseViewRequest(r *http.Request, cfg *config.Config) (viewRequest, error) {
	q := r.URL.Query()
	req := viewRequest{
		session:       q.Get("session"),
		folder:        q.Get("folder"),
		selected:      1,
		thumbnailSize: cfg.ThumbnailSize,
		rows:          cfg.Rows,
	}
	if req.session == "" {
		req.session = defaultSessionID
	}
	if req.folder == "" {
		req.folder = cfg.DefaultFolder
	} else if !filepath.IsAbs(req.folder) {
		req.folder = filepath.Join(cfg.Root(), req.folder)
	}
	folder, err := resolveFolder(cfg.Root(), req.folder)
	if err != nil {
		return req, err
	}
	req.folder = folder
	if q.Has("trigger") {
		req.trigger = q.Get("trigger")
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"selected", &req.selected},
		{"size", &req.thumbnailSize},
		{"rows", &req.rows},
	}
	for _, p := range ints {
		value := q.Get(p.key)
		if value == "" {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return req, fmt.Errorf("invalid %s: %q", p.key, value)
		}
		*p.dst = n
	}
	return req, nil
}

// resolveFolder makes folder absolute and checks that it stays inside root
// once symlinks are followed.
func resolveFolder(root, folder string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("invalid root directory: %w", err)
	}
	absFolder, err := filepath.Abs(folder)
	if err != nil {
		return "", fmt.Errorf("invalid folder: %w", err)
	}

	realRoot := evalSymlinks(absRoot)
	realFolder := evalSymlinks(absFolder)
	rel, err := filepath.Rel(realRoot, realFolder)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, folder)
	}
	return absFolder, nil
}

// evalSymlinks resolves path, leaving paths that do not exist as they are.
func evalSymlinks(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return filepath.Clean(path)
}

// loadView runs the request against its session, building only parts, and
// announces rescans.
func loadView(w http.ResponseWriter, r *http.Request, parts session.Part, store *session.Store, hub *websocket.HubService,
	cfg *config.Config, logger *logger.Logger) (session.View, bool) {
	req, err := parseViewRequest(r, cfg)
	if errors.Is(err, ErrOutsideRoot) {
		logger.Warning("Rejected folder from %s: %v", r.RemoteAddr, err)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return session.View{}, false
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return session.View{}, false
	}

	var view session.View
	store.Do(req.session, func(s *session.Session) {
		view = s.GetParts(req.folder, req.trigger, req.selected, req.thumbnailSize, req.rows, parts)
	})

	if view.Refreshed {
		logger.Info("Session %s rescanned %s: %d files", req.session, req.folder, len(view.Files))
		if hub != nil {
			event := websocket.RefreshEvent{
				Session: req.session,
				Folder:  req.folder,
				Files:   model.Names(view.Files),
				Time:    time.Now(),
			}
			if err := hub.BroadcastRefresh(event); err != nil {
				logger.Error("Error broadcasting refresh: %v", err)
			}
		}
	}
	return view, true
}

// ViewHandler handles GET /api/view, returning the sheet, image and mask as
// base64 PNGs together with the file list.
func ViewHandler(store *session.Store, hub *websocket.HubService, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		view, ok := loadView(w, r, session.PartAll, store, hub, cfg, logger)
		if !ok {
			return
		}

		response := ViewResponse{
			Filename:   view.Filename,
			Files:      view.Files,
			Refreshed:  view.Refreshed,
			SheetShape: view.Sheet.Batch().Shape(),
			ImageShape: view.Image.Batch().Shape(),
			MaskShape:  view.Mask.Batch().Shape(),
		}
		if response.Files == nil {
			response.Files = []model.ImageFileRef{}
		}

		encoded := []struct {
			img *tensor.Image
			dst *string
		}{
			{view.Sheet, &response.Sheet},
			{view.Image, &response.Image},
			{view.Mask, &response.Mask},
		}
		for _, e := range encoded {
			data, err := sheet.EncodePNG(e.img)
			if err != nil {
				logger.Error("Error encoding view: %v", err)
				http.Error(w, "Failed to encode image", http.StatusInternalServerError)
				return
			}
			*e.dst = base64.StdEncoding.EncodeToString(data)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			logger.Error("Error writing view response: %v", err)
		}
	}
}

// ViewPNGHandler handles GET /api/view/{sheet,image,mask}, serving one output
// as a PNG. Only the requested output is built; /api/view returns all three
// in one call. The filename is reported in the X-Filename header for image
// and mask.
func ViewPNGHandler(part string, store *session.Store, hub *websocket.HubService, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		parts := session.PartSelection
		switch part {
		case "sheet":
			parts = session.PartSheet
		case "image", "mask":
		default:
			http.NotFound(w, r)
			return
		}

		view, ok := loadView(w, r, parts, store, hub, cfg, logger)
		if !ok {
			return
		}

		img := view.Sheet
		switch part {
		case "image":
			img = view.Image
		case "mask":
			img = view.Mask
		}

		data, err := sheet.EncodePNG(img)
		if err != nil {
			logger.Error("Error encoding %s: %v", part, err)
			http.Error(w, "Failed to encode image", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		if view.Filename != "" {
			w.Header().Set("X-Filename", view.Filename)
		}
		w.Write(data)
	}
}
