package server

import (
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestParseTexturePath(t *testing.T) {
	t.Run("texture", func(t *testing.T) {
		name, ok := parseTexturePath("/texture/fire.png")
		if !ok {
			t.Fatalf("expected ok")
		}
		if name != "fire" {
			t.Fatalf("unexpected name: %s", name)
		}
	})

	t.Run("reject non-png", func(t *testing.T) {
		if _, ok := parseTexturePath("/texture/fire.jpg"); ok {
			t.Fatalf("expected not ok")
		}
	})

	t.Run("reject other prefix", func(t *testing.T) {
		if _, ok := parseTexturePath("/frames/fire.png"); ok {
			t.Fatalf("expected not ok")
		}
	})

	t.Run("reject bare prefix", func(t *testing.T) {
		if _, ok := parseTexturePath("/texture/.png"); ok {
			t.Fatalf("expected not ok")
		}
	})
}

func TestParseRenderQuery(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		opts, overrides, err := parseRenderQuery(url.Values{}, 256)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if opts.Size != 256 {
			t.Fatalf("expected default size 256, got %d", opts.Size)
		}
		if len(overrides) != 0 {
			t.Fatalf("expected no overrides, got %v", overrides)
		}
	})

	t.Run("render options", func(t *testing.T) {
		q := url.Values{}
		q.Set("size", "128")
		q.Set("time", "2.5")
		q.Set("mapping", "sphere")
		q.Set("span", "1.5")
		q.Set("supersample", "2")
		q.Set("bloom", "1.2")

		opts, overrides, err := parseRenderQuery(q, 256)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if opts.Size != 128 || opts.Time != 2.5 || opts.Span != 1.5 {
			t.Fatalf("unexpected options: %+v", opts)
		}
		if string(opts.Mapping) != "sphere" {
			t.Fatalf("unexpected mapping: %s", opts.Mapping)
		}
		if opts.Supersample != 2 || opts.Bloom != 1.2 {
			t.Fatalf("unexpected options: %+v", opts)
		}
		if len(overrides) != 0 {
			t.Fatalf("expected no overrides, got %v", overrides)
		}
	})

	t.Run("parameter overrides", func(t *testing.T) {
		q := url.Values{}
		q.Set("scale", "2.5")
		q.Set("coreColor", "#ff8040")

		_, overrides, err := parseRenderQuery(q, 256)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := overrides["scale"]; got != 2.5 {
			t.Fatalf("expected scale 2.5, got %v", got)
		}
		if _, ok := overrides["coreColor"]; !ok {
			t.Fatalf("expected coreColor override")
		}
	})

	t.Run("reject oversized", func(t *testing.T) {
		q := url.Values{}
		q.Set("size", "99999")
		if _, _, err := parseRenderQuery(q, 256); err == nil {
			t.Fatalf("expected error for oversized request")
		}
	})

	t.Run("reject bad mapping", func(t *testing.T) {
		q := url.Values{}
		q.Set("mapping", "torus")
		if _, _, err := parseRenderQuery(q, 256); err == nil {
			t.Fatalf("expected error for bad mapping")
		}
	})

	t.Run("reject garbage parameter", func(t *testing.T) {
		q := url.Values{}
		q.Set("scale", "huge")
		if _, _, err := parseRenderQuery(q, 256); err == nil {
			t.Fatalf("expected error for non-numeric parameter")
		}
	})
}

func newTestPreview(t *testing.T) *Preview {
	t.Helper()
	p, err := NewPreview(PreviewConfig{Size: 16, MaxConcurrentRenders: 2, RenderTimeout: 30 * time.Second}, nil)
	if err != nil {
		t.Fatalf("Failed to create preview: %v", err)
	}
	return p
}

func TestPreview_ServeTexture(t *testing.T) {
	p := newTestPreview(t)

	req := httptest.NewRequest(http.MethodGet, "/texture/marble.png", nil)
	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("Expected image/png, got %q", ct)
	}

	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("Response is not a valid PNG: %v", err)
	}
	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 16 {
		t.Fatalf("Expected 16x16 image, got %v", img.Bounds())
	}
}

func TestPreview_ServeTextureWithOverrides(t *testing.T) {
	p := newTestPreview(t)

	req := httptest.NewRequest(http.MethodGet, "/texture/fire.png?size=8&time=0.5&scale=2&coreColor=%23ff8040", nil)
	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("Response is not a valid PNG: %v", err)
	}
	if img.Bounds().Dx() != 8 {
		t.Fatalf("Expected 8px image, got %v", img.Bounds())
	}
}

func TestPreview_UnknownTexture(t *testing.T) {
	p := newTestPreview(t)

	req := httptest.NewRequest(http.MethodGet, "/texture/lava.png", nil)
	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
}

func TestPreview_BadParameterValue(t *testing.T) {
	p := newTestPreview(t)

	req := httptest.NewRequest(http.MethodGet, "/texture/fire.png?scale=spicy", nil)
	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
}

func TestPreview_BadColorValue(t *testing.T) {
	p := newTestPreview(t)

	req := httptest.NewRequest(http.MethodGet, "/texture/fire.png?size=8", nil)
	q := req.URL.Query()
	q.Set("coreColor", "#zzzzzz")
	req.URL.RawQuery = q.Encode()

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPreview_CacheServesSecondRequest(t *testing.T) {
	p := newTestPreview(t)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/texture/marble.png?size=8", nil)
		rec := httptest.NewRecorder()
		p.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("Request %d: expected 200, got %d", i, rec.Code)
		}
	}

	if got := p.totalRendered.Load(); got != 1 {
		t.Fatalf("Expected exactly 1 render with cache enabled, got %d", got)
	}

	status := p.Status()
	if status.Cache.Entries != 1 {
		t.Fatalf("Expected 1 cache entry, got %d", status.Cache.Entries)
	}
}

func TestPreview_ListHandler(t *testing.T) {
	p := newTestPreview(t)

	req := httptest.NewRequest(http.MethodGet, "/textures", nil)
	rec := httptest.NewRecorder()
	p.ListHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var infos []TextureInfo
	if err := json.NewDecoder(rec.Body).Decode(&infos); err != nil {
		t.Fatalf("Failed to decode listing: %v", err)
	}
	if len(infos) == 0 {
		t.Fatal("Expected at least one texture in listing")
	}

	byName := make(map[string]TextureInfo)
	for _, info := range infos {
		byName[info.Name] = info
	}
	fire, ok := byName["fire"]
	if !ok {
		t.Fatal("Expected fire in listing")
	}
	if !fire.Animated {
		t.Error("Expected fire to be animated")
	}
	if fire.DisplayName != "Fire" {
		t.Errorf("Expected display name Fire, got %q", fire.DisplayName)
	}
	if marble, ok := byName["marble"]; !ok || marble.Animated {
		t.Errorf("Expected marble to be listed as static, got %+v", marble)
	}
}

func TestPreview_StatusHandler(t *testing.T) {
	p := newTestPreview(t)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	p.StatusHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var status PreviewStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode status: %v", err)
	}
	if status.Render.MaxConcurrent != 2 {
		t.Errorf("Expected max concurrent 2, got %d", status.Render.MaxConcurrent)
	}
}
