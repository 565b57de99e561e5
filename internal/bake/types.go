// Package bake stores pre-rendered animation frames in a SQLite
// database so the preview server and exporters can serve them without
// re-evaluating the texture graph.
package bake

import (
	"fmt"
	"strconv"
)

// Metadata describes a baked frame sequence.
type Metadata struct {
	Texture     string  `json:"texture"`          // registry name of the composed texture
	Params      string  `json:"params,omitempty"` // JSON-encoded parameter overrides
	Description string  `json:"description,omitempty"`
	Version     string  `json:"version,omitempty"`
	Mapping     string  `json:"mapping,omitempty"` // plane or sphere
	Frames      int     `json:"frames"`
	FPS         int     `json:"fps"`
	Size        int     `json:"size"` // square frame edge in pixels
	Span        float64 `json:"span,omitempty"`
}

// ToMap converts Metadata to a map for database insertion.
func (m Metadata) ToMap() map[string]string {
	result := make(map[string]string)

	if m.Texture != "" {
		result["texture"] = m.Texture
	}
	if m.Params != "" {
		result["params"] = m.Params
	}
	if m.Description != "" {
		result["description"] = m.Description
	}
	if m.Version != "" {
		result["version"] = m.Version
	}
	if m.Mapping != "" {
		result["mapping"] = m.Mapping
	}
	if m.Frames > 0 {
		result["frames"] = strconv.Itoa(m.Frames)
	}
	if m.FPS > 0 {
		result["fps"] = strconv.Itoa(m.FPS)
	}
	if m.Size > 0 {
		result["size"] = strconv.Itoa(m.Size)
	}
	if m.Span > 0 {
		result["span"] = fmt.Sprintf("%g", m.Span)
	}

	return result
}
