package render

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// Golden renders pin the full pipeline: mapping, worker rows, post
// filters and PNG round-trip. Regenerate with:
//
//	UPDATE_GOLDEN=1 go test ./render -run TestRenderGolden
var goldenCases = []struct {
	name string
	tex  string
	opts Options
}{
	{"bricks_plane", "bricks", Options{Size: 64, Workers: 1}},
	{"fire_plane", "fire", Options{Size: 64, Time: 0.5, Workers: 1}},
	{"fireclouds_radial", "fireCloudsRadial", Options{Size: 64, Time: 0.5, Workers: 1}},
	{"fireclouds_upward", "fireCloudsUpward", Options{Size: 64, Time: 0.5, Workers: 1}},
	{"marble_plane", "marble", Options{Size: 64, Workers: 1}},
	{"nebula_plane", "nebula", Options{Size: 64, Time: 2, Workers: 1}},
	{"paper_plane", "paper", Options{Size: 64, Workers: 1}},
	{"particle_bloom", "particleCloud", Options{Size: 64, Time: 0.8, Bloom: 1.5, Workers: 1}},
	{"polkadots_plane", "polkaDots", Options{Size: 64, Workers: 1}},
	{"rust_plane", "rust", Options{Size: 64, Workers: 1}},
	{"voronoi_plane", "voronoi", Options{Size: 64, Time: 1, Workers: 1}},
	{"water_sphere", "water", Options{Size: 64, Mapping: MappingSphere, Time: 1.25, Workers: 1}},
	{"wood_plane", "wood", Options{Size: 64, Workers: 1}},
}

func TestRenderGolden(t *testing.T) {
	update := os.Getenv("UPDATE_GOLDEN") == "1"
	goldenDir := filepath.Join("testdata", "golden")
	debugDir := filepath.Join("testdata", "output")
	if err := os.MkdirAll(goldenDir, 0o755); err != nil {
		t.Fatalf("creating golden dir: %v", err)
	}
	if err := os.MkdirAll(debugDir, 0o755); err != nil {
		t.Fatalf("creating debug dir: %v", err)
	}

	for _, tc := range goldenCases {
		t.Run(tc.name, func(t *testing.T) {
			img, err := Image(context.Background(), buildTexture(t, tc.tex), tc.opts)
			if err != nil {
				t.Fatalf("rendering %s: %v", tc.tex, err)
			}

			debugPath := filepath.Join(debugDir, tc.name+".png")
			writePNG(t, debugPath, img)

			goldenPath := filepath.Join(goldenDir, tc.name+".png")
			if update {
				writePNG(t, goldenPath, img)
				t.Logf("updated golden %s", goldenPath)
				return
			}
			if !fileExists(goldenPath) {
				t.Skipf("missing golden %s; run: UPDATE_GOLDEN=1 go test ./render -run TestRenderGolden", goldenPath)
			}
			want := readPNG(t, goldenPath)
			if !imagesEqual(want, img) {
				t.Errorf("%s differs from golden; debug image at %s", tc.name, debugPath)
			}
		})
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encoding %s: %v", path, err)
	}
}

func readPNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding %s: %v", path, err)
	}
	return img
}

func imagesEqual(a, b image.Image) bool {
	if a.Bounds() != b.Bounds() {
		return false
	}
	bounds := a.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			ar, ag, ab, aa := a.At(x, y).RGBA()
			br, bg, bb, ba := b.At(x, y).RGBA()
			if ar != br || ag != bg || ab != bb || aa != ba {
				return false
			}
		}
	}
	return true
}
