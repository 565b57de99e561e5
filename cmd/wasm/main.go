//go:build js && wasm
// +build js,wasm

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"strings"
	"syscall/js"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/MeKo-Tech/proctex/graph"
	"github.com/MeKo-Tech/proctex/params"
	"github.com/MeKo-Tech/proctex/render"
	"github.com/MeKo-Tech/proctex/texture"
)

// RenderRequest represents a render request from JS
type RenderRequest struct {
	Texture string         `json:"texture"`
	Size    int            `json:"size"`
	Time    float64        `json:"time"`
	Mapping string         `json:"mapping"`
	Params  map[string]any `json:"params"`
}

// renderTexture is called from JavaScript to render a texture preview.
// Graph evaluation is pure Go, so frames render directly in the browser;
// the result is a PNG returned as a Uint8Array.
func renderTexture(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return map[string]interface{}{"error": "missing arguments"}
	}

	reqStr := args[0].String()
	var req RenderRequest
	if err := json.Unmarshal([]byte(reqStr), &req); err != nil {
		return map[string]interface{}{"error": fmt.Sprintf("failed to parse request: %v", err)}
	}

	def, ok := texture.Lookup(req.Texture)
	if !ok {
		return map[string]interface{}{"error": fmt.Sprintf("unknown texture: %s", req.Texture)}
	}

	overrides, err := normalizeParams(req.Params)
	if err != nil {
		return map[string]interface{}{"error": err.Error()}
	}
	// Guard recovers graph construction panics so a bad parameter comes
	// back to JS as an error value instead of killing the wasm runtime.
	var (
		tex      *texture.Graph
		buildErr error
	)
	if err := graph.Guard(func() { tex, buildErr = def.Build(overrides) }); err != nil {
		buildErr = err
	}
	if buildErr != nil {
		return map[string]interface{}{"error": fmt.Sprintf("failed to build texture: %v", buildErr)}
	}

	mapping := render.MappingPlane
	if req.Mapping == string(render.MappingSphere) {
		mapping = render.MappingSphere
	}

	// wasm has no worker threads, so keep the row pool serial.
	img, err := render.Image(context.Background(), tex, render.Options{
		Size:    req.Size,
		Time:    req.Time,
		Mapping: mapping,
		Workers: 1,
	})
	if err != nil {
		return map[string]interface{}{"error": fmt.Sprintf("render failed: %v", err)}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return map[string]interface{}{"error": fmt.Sprintf("failed to encode PNG: %v", err)}
	}

	dst := js.Global().Get("Uint8Array").New(buf.Len())
	js.CopyBytesToJS(dst, buf.Bytes())
	return dst
}

// listTextures returns the registered texture names as a JS array.
func listTextures(this js.Value, args []js.Value) interface{} {
	names := texture.Names()
	out := make([]interface{}, len(names))
	for i, name := range names {
		out[i] = name
	}
	return out
}

// normalizeParams converts JSON-decoded override values into the forms
// the parameter binder accepts. JSON arrays arrive as []any and hex
// color strings need parsing.
func normalizeParams(raw map[string]any) (params.Table, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	overrides := params.Table{}
	for key, v := range raw {
		switch val := v.(type) {
		case string:
			if !strings.HasPrefix(val, "#") {
				return nil, fmt.Errorf("parameter %s: expected number, array or #rrggbb color", key)
			}
			c, err := colorful.Hex(val)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: %v", key, err)
			}
			overrides[key] = c
		case []any:
			vec := make([]float64, 0, len(val))
			for _, elem := range val {
				f, ok := elem.(float64)
				if !ok {
					return nil, fmt.Errorf("parameter %s: array values must be numbers", key)
				}
				vec = append(vec, f)
			}
			overrides[key] = vec
		default:
			overrides[key] = v
		}
	}
	return overrides, nil
}

func main() {
	c := make(chan struct{})

	js.Global().Set("proctexRender", js.FuncOf(renderTexture))
	js.Global().Set("proctexTextures", js.FuncOf(listTextures))

	fmt.Println("proctex WASM module loaded")
	<-c
}
