package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/proctex/internal/bake"
)

// BakeHandler serves pre-rendered frames from a bake database.
type BakeHandler struct {
	reader       *bake.Reader
	logger       *slog.Logger
	cacheControl string
}

// BakeConfig configures the bake handler.
type BakeConfig struct {
	BakePath     string
	CacheControl string
}

// NewBakeHandler opens the bake database and returns a handler for it.
func NewBakeHandler(cfg BakeConfig, logger *slog.Logger) (*BakeHandler, error) {
	reader, err := bake.OpenReader(cfg.BakePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open bake database: %w", err)
	}

	return &BakeHandler{
		reader:       reader,
		logger:       logger,
		cacheControl: cfg.CacheControl,
	}, nil
}

// Handler returns the HTTP handler function.
func (h *BakeHandler) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/meta.json") {
			h.serveMetadata(w)
			return
		}
		h.serveFrame(w, r)
	}
}

// serveFrame serves a single frame from the bake database.
func (h *BakeHandler) serveFrame(w http.ResponseWriter, r *http.Request) {
	index, ok := parseFramePath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Cache-Control", h.cacheControl)
	w.Header().Set("Content-Type", "image/png")

	data, err := h.reader.ReadFrame(index)
	if err != nil {
		if errors.Is(err, bake.ErrFrameNotFound) {
			http.Error(w, "Frame not found", http.StatusNotFound)
			return
		}
		h.log().Error("Failed to read frame", "index", index, "error", err)
		http.Error(w, "Failed to read frame", http.StatusInternalServerError)
		return
	}

	if _, err := w.Write(data); err != nil {
		h.log().Error("Failed to write response", "error", err)
	}
}

func (h *BakeHandler) serveMetadata(w http.ResponseWriter) {
	meta, err := h.reader.Metadata()
	if err != nil {
		h.log().Error("Failed to read bake metadata", "error", err)
		http.Error(w, "Failed to read metadata", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", h.cacheControl)
	if err := json.NewEncoder(w).Encode(meta); err != nil {
		h.log().Error("Failed to encode bake metadata", "error", err)
	}
}

// Close closes the bake reader.
func (h *BakeHandler) Close() error {
	return h.reader.Close()
}

func (h *BakeHandler) log() *slog.Logger {
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}

// parseFramePath parses a frame path like /bake/12.png.
// Returns the frame index and a success flag.
func parseFramePath(requestPath string) (int, bool) {
	if !strings.HasPrefix(requestPath, "/bake/") {
		return 0, false
	}

	base := path.Base(requestPath)
	if !strings.HasSuffix(base, ".png") {
		return 0, false
	}

	name := strings.TrimSuffix(base, ".png")
	index, err := strconv.Atoi(name)
	if err != nil || index < 0 {
		return 0, false
	}

	return index, true
}
