package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/MeKo-Tech/proctex/graph"
	"github.com/MeKo-Tech/proctex/params"
	"github.com/MeKo-Tech/proctex/render"
	"github.com/MeKo-Tech/proctex/texture"
)

const maxPreviewSize = 2048

type PreviewConfig struct {
	CacheControl         string
	Size                 int
	MaxConcurrentRenders int
	RenderTimeout        time.Duration
	DisableCache         bool
}

// Preview renders registered textures on demand and caches the encoded
// PNGs in memory, keyed by the full request query.
type Preview struct {
	logger *slog.Logger
	sem    chan struct{}
	locks  sync.Map
	cache  sync.Map // request key -> []byte PNG
	cfg    PreviewConfig

	// Status tracking for renders
	activeRenders  atomic.Int32
	totalRendered  atomic.Int64
	totalFailed    atomic.Int64
	currentRenders sync.Map // map[string]time.Time - request key -> start time

	// Requests waiting for the render semaphore
	queuedRenders atomic.Int32
	queuedKeys    sync.Map // map[string]time.Time - request key -> queue time
}

// PreviewStatus represents the current status of the preview server.
type PreviewStatus struct {
	Render RenderStatus `json:"render"`
	Cache  CacheStatus  `json:"cache"`
}

// RenderStatus contains current render operation status.
type RenderStatus struct {
	ActiveRenders   int      `json:"active_renders"`
	TotalRendered   int64    `json:"total_rendered"`
	TotalFailed     int64    `json:"total_failed"`
	CurrentTextures []string `json:"current_textures"`
	MaxConcurrent   int      `json:"max_concurrent"`
	QueuedRenders   int      `json:"queued_renders"`
	QueuedTextures  []string `json:"queued_textures"`
}

// CacheStatus contains in-memory PNG cache status.
type CacheStatus struct {
	Entries  int  `json:"entries"`
	Disabled bool `json:"disabled"`
}

// TextureInfo describes one registered composer for the listing endpoint.
type TextureInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
	Animated    bool   `json:"animated"`
}

func NewPreview(cfg PreviewConfig, logger *slog.Logger) (*Preview, error) {
	if cfg.Size <= 0 {
		cfg.Size = 256
	}
	if cfg.Size > maxPreviewSize {
		return nil, fmt.Errorf("preview size %d exceeds maximum %d", cfg.Size, maxPreviewSize)
	}
	if cfg.MaxConcurrentRenders <= 0 {
		cfg.MaxConcurrentRenders = 2
	}
	if cfg.RenderTimeout <= 0 {
		cfg.RenderTimeout = 30 * time.Second
	}
	if cfg.CacheControl == "" {
		cfg.CacheControl = "no-store"
	}

	return &Preview{
		cfg:    cfg,
		logger: logger,
		sem:    make(chan struct{}, cfg.MaxConcurrentRenders),
	}, nil
}

// Status returns the current status of the preview server.
func (p *Preview) Status() PreviewStatus {
	var current []string
	p.currentRenders.Range(func(key, _ any) bool {
		current = append(current, key.(string))
		return true
	})

	var queued []string
	p.queuedKeys.Range(func(key, _ any) bool {
		queued = append(queued, key.(string))
		return true
	})

	entries := 0
	p.cache.Range(func(_, _ any) bool {
		entries++
		return true
	})

	return PreviewStatus{
		Render: RenderStatus{
			ActiveRenders:   int(p.activeRenders.Load()),
			TotalRendered:   p.totalRendered.Load(),
			TotalFailed:     p.totalFailed.Load(),
			CurrentTextures: current,
			MaxConcurrent:   p.cfg.MaxConcurrentRenders,
			QueuedRenders:   int(p.queuedRenders.Load()),
			QueuedTextures:  queued,
		},
		Cache: CacheStatus{
			Entries:  entries,
			Disabled: p.cfg.DisableCache,
		},
	}
}

// StatusHandler returns an HTTP handler for the status endpoint (JSON).
func (p *Preview) StatusHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Cache-Control", "no-store")

		if err := json.NewEncoder(w).Encode(p.Status()); err != nil {
			p.log().Error("failed to encode status", "error", err)
			http.Error(w, "failed to encode status", http.StatusInternalServerError)
			return
		}
	})
}

// StatusStreamHandler returns an SSE handler for real-time status streaming.
// Server-Sent Events push updates to the client, avoiding browser connection
// limits that block polling while previews are loading.
func (p *Preview) StatusStreamHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "SSE not supported", http.StatusInternalServerError)
			return
		}

		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()

		p.sendStatusEvent(w, flusher)

		for {
			select {
			case <-r.Context().Done():
				return
			case <-ticker.C:
				p.sendStatusEvent(w, flusher)
			}
		}
	})
}

func (p *Preview) sendStatusEvent(w http.ResponseWriter, flusher http.Flusher) {
	data, err := json.Marshal(p.Status())
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}

// ListHandler returns an HTTP handler listing registered textures (JSON).
func (p *Preview) ListHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Cache-Control", "no-store")

		infos := make([]TextureInfo, 0)
		for _, name := range texture.Names() {
			def, ok := texture.Lookup(name)
			if !ok {
				continue
			}
			info := TextureInfo{Name: name}
			if b, err := params.Bind(def.Defaults, nil); err == nil {
				info.DisplayName = b.Meta("$name")
			}
			if tex, err := def.Build(nil); err == nil {
				info.Animated = tex.Time != nil
			}
			infos = append(infos, info)
		}

		if err := json.NewEncoder(w).Encode(infos); err != nil {
			p.log().Error("failed to encode texture list", "error", err)
			http.Error(w, "failed to encode texture list", http.StatusInternalServerError)
			return
		}
	})
}

// Handler returns the HTTP handler serving rendered texture previews.
func (p *Preview) Handler() http.Handler {
	return http.HandlerFunc(p.serveTexture)
}

func (p *Preview) serveTexture(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	name, ok := parseTexturePath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	def, ok := texture.Lookup(name)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown texture: %s", name), http.StatusNotFound)
		return
	}

	opts, overrides, err := parseRenderQuery(r.URL.Query(), p.cfg.Size)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	key := name + "?" + r.URL.Query().Encode()
	w.Header().Set("Cache-Control", p.cfg.CacheControl)
	w.Header().Set("Content-Type", "image/png")

	if !p.cfg.DisableCache {
		if data, ok := p.cache.Load(key); ok {
			_, _ = w.Write(data.([]byte))
			return
		}
	}

	mu := p.getLock(key)
	mu.Lock()
	defer mu.Unlock()

	if !p.cfg.DisableCache {
		if data, ok := p.cache.Load(key); ok {
			_, _ = w.Write(data.([]byte))
			return
		}
	}

	// Track request as queued (waiting for semaphore)
	p.queuedRenders.Add(1)
	p.queuedKeys.Store(key, time.Now())

	select {
	case p.sem <- struct{}{}:
		p.queuedRenders.Add(-1)
		p.queuedKeys.Delete(key)
		defer func() { <-p.sem }()
	case <-r.Context().Done():
		p.queuedRenders.Add(-1)
		p.queuedKeys.Delete(key)
		http.Error(w, "request cancelled", http.StatusRequestTimeout)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), p.cfg.RenderTimeout)
	defer cancel()

	start := time.Now()
	p.activeRenders.Add(1)
	p.currentRenders.Store(key, time.Now())

	data, err := p.renderPNG(ctx, def, overrides, opts)

	p.activeRenders.Add(-1)
	p.currentRenders.Delete(key)

	if err != nil {
		p.totalFailed.Add(1)
		p.log().Error("failed to render texture", "texture", name, "error", err)
		status := http.StatusInternalServerError
		var gerr *graph.GraphError
		if errors.As(err, &gerr) || errors.Is(err, graph.ErrUnsupportedParameterType) {
			status = http.StatusBadRequest
		}
		http.Error(w, fmt.Sprintf("failed to render texture %s: %v", name, err), status)
		return
	}
	p.totalRendered.Add(1)
	p.log().Info("texture rendered on-demand", "texture", name, "bytes", len(data), "ms", time.Since(start).Milliseconds())

	if !p.cfg.DisableCache {
		p.cache.Store(key, data)
	}
	_, _ = w.Write(data)
}

// renderPNG builds the texture with the request overrides and renders it
// to an encoded PNG. Graph construction panics are recovered into errors
// here so a bad parameter cannot take the request goroutine down.
func (p *Preview) renderPNG(ctx context.Context, def texture.Definition, overrides params.Table, opts render.Options) ([]byte, error) {
	var (
		tex      *texture.Graph
		buildErr error
	)
	if err := graph.Guard(func() { tex, buildErr = def.Build(overrides) }); err != nil {
		return nil, err
	}
	if buildErr != nil {
		return nil, buildErr
	}

	img, err := render.Image(ctx, tex, opts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *Preview) getLock(key string) *sync.Mutex {
	if v, ok := p.locks.Load(key); ok {
		return v.(*sync.Mutex)
	}
	mu := &sync.Mutex{}
	actual, _ := p.locks.LoadOrStore(key, mu)
	return actual.(*sync.Mutex)
}

func (p *Preview) log() *slog.Logger {
	if p.logger != nil {
		return p.logger
	}
	return slog.Default()
}

// parseTexturePath parses a preview path like /texture/fire.png.
func parseTexturePath(requestPath string) (string, bool) {
	if !strings.HasPrefix(requestPath, "/texture/") {
		return "", false
	}
	base := path.Base(requestPath)
	if !strings.HasSuffix(base, ".png") {
		return "", false
	}
	name := strings.TrimSuffix(base, ".png")
	if name == "" {
		return "", false
	}
	return name, true
}

// parseRenderQuery splits a request query into render options and texture
// parameter overrides. Reserved keys configure the render; every other key
// is parsed as a parameter value (float, or #rrggbb color).
func parseRenderQuery(q url.Values, defaultSize int) (render.Options, params.Table, error) {
	opts := render.Options{Size: defaultSize}
	overrides := params.Table{}

	for key, vals := range q {
		if len(vals) == 0 || vals[0] == "" {
			continue
		}
		val := vals[0]

		switch key {
		case "size":
			n, err := strconv.Atoi(val)
			if err != nil || n <= 0 || n > maxPreviewSize {
				return opts, nil, fmt.Errorf("invalid size %q (must be 1..%d)", val, maxPreviewSize)
			}
			opts.Size = n
		case "time":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return opts, nil, fmt.Errorf("invalid time %q", val)
			}
			opts.Time = f
		case "mapping":
			m := render.Mapping(val)
			if m != render.MappingPlane && m != render.MappingSphere {
				return opts, nil, fmt.Errorf("invalid mapping %q (plane or sphere)", val)
			}
			opts.Mapping = m
		case "span":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 {
				return opts, nil, fmt.Errorf("invalid span %q", val)
			}
			opts.Span = f
		case "supersample":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 || n > 4 {
				return opts, nil, fmt.Errorf("invalid supersample %q (must be 1..4)", val)
			}
			opts.Supersample = n
		case "bloom":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < 0 {
				return opts, nil, fmt.Errorf("invalid bloom %q", val)
			}
			opts.Bloom = f
		default:
			v, err := parseParamValue(val)
			if err != nil {
				return opts, nil, fmt.Errorf("invalid value for parameter %q: %v", key, err)
			}
			overrides[key] = v
		}
	}

	return opts, overrides, nil
}

func parseParamValue(raw string) (any, error) {
	if strings.HasPrefix(raw, "#") {
		c, err := colorful.Hex(raw)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return f, nil
}
