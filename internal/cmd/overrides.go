package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/MeKo-Tech/proctex/graph"
	"github.com/MeKo-Tech/proctex/params"
	"github.com/MeKo-Tech/proctex/render"
	"github.com/MeKo-Tech/proctex/texture"
)

// parseOverrides turns --set key=value pairs into a parameter table.
// Values may be a float ("scale=2.5"), an #rrggbb color
// ("coreColor=#ff8040"), or a comma triple ("flameColor=1,0.4,0").
func parseOverrides(pairs []string) (params.Table, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	overrides := params.Table{}
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" || raw == "" {
			return nil, fmt.Errorf("invalid override %q: expected key=value", pair)
		}
		val, err := parseOverrideValue(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid override %q: %w", pair, err)
		}
		overrides[key] = val
	}
	return overrides, nil
}

func parseOverrideValue(raw string) (any, error) {
	if strings.HasPrefix(raw, "#") {
		c, err := colorful.Hex(raw)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	if strings.Contains(raw, ",") {
		parts := strings.Split(raw, ",")
		if len(parts) != 3 {
			return nil, fmt.Errorf("expected 3 comma-separated values, got %d", len(parts))
		}
		var vec [3]float64
		for i, part := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number at position %d: %w", i, err)
			}
			vec[i] = f
		}
		return vec, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// applySeed folds the --seed shorthand into the override table. An
// explicit --set seed=N wins, and seed 0 is every composer's default so
// it needs no entry.
func applySeed(overrides params.Table, seed float64) params.Table {
	if seed == 0 {
		return overrides
	}
	if overrides == nil {
		overrides = params.Table{}
	}
	if _, exists := overrides["seed"]; !exists {
		overrides["seed"] = seed
	}
	return overrides
}

type tweenSpec struct {
	key      string
	from, to float64
}

// parseTweens turns --tween key=from:to pairs into specs. Only scalar
// parameters can be tweened.
func parseTweens(pairs []string) ([]tweenSpec, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	specs := make([]tweenSpec, 0, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid tween %q: expected key=from:to", pair)
		}
		fromStr, toStr, ok := strings.Cut(raw, ":")
		if !ok {
			return nil, fmt.Errorf("invalid tween %q: expected key=from:to", pair)
		}
		from, err := strconv.ParseFloat(strings.TrimSpace(fromStr), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid tween %q: %w", pair, err)
		}
		to, err := strconv.ParseFloat(strings.TrimSpace(toStr), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid tween %q: %w", pair, err)
		}
		specs = append(specs, tweenSpec{key: key, from: from, to: to})
	}
	return specs, nil
}

// buildTexture looks up a registered composer and builds it with overrides.
// Graph construction panics are recovered into errors so a bad parameter
// surfaces as a normal CLI error.
func buildTexture(name string, overrides params.Table) (*texture.Graph, error) {
	def, ok := texture.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown texture %q (run 'proctex list')", name)
	}

	var (
		tex      *texture.Graph
		buildErr error
	)
	if err := graph.Guard(func() { tex, buildErr = def.Build(overrides) }); err != nil {
		return nil, fmt.Errorf("failed to build texture %s: %w", name, err)
	}
	if buildErr != nil {
		return nil, fmt.Errorf("failed to build texture %s: %w", name, buildErr)
	}
	return tex, nil
}

func parseMapping(s string) (render.Mapping, error) {
	switch render.Mapping(s) {
	case render.MappingPlane:
		return render.MappingPlane, nil
	case render.MappingSphere:
		return render.MappingSphere, nil
	default:
		return "", fmt.Errorf("invalid mapping %q: must be 'plane' or 'sphere'", s)
	}
}
