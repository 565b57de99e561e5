package cmd

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/proctex/render"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a texture to a PNG image",
	Long:  `Render a registered texture to a PNG image at a fixed time.`,
	RunE:  runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringP("texture", "t", "", "Texture name (see 'proctex list')")
	renderCmd.Flags().Int("size", 512, "Output size in pixels (square)")
	renderCmd.Flags().String("mapping", "plane", "Sample mapping: plane or sphere")
	renderCmd.Flags().Float64("span", 1.0, "Half-extent of the sampled plane in object space")
	renderCmd.Flags().Float64("time", 0, "Time uniform value for animated textures")
	renderCmd.Flags().Float64("seed", 0, "Noise seed (shorthand for --set seed=N)")
	renderCmd.Flags().Int("supersample", 2, "Samples per axis before downscaling (1 disables)")
	renderCmd.Flags().Float64("bloom", 0, "Gaussian bloom sigma in pixels (0 disables)")
	renderCmd.Flags().IntP("workers", "w", 0, "Number of parallel row workers (default: number of CPUs)")
	renderCmd.Flags().StringP("output", "o", "", "Output file path (default: <output-dir>/<texture>.png)")
	renderCmd.Flags().StringArray("set", nil, "Parameter override key=value (repeatable)")

	if err := renderCmd.MarkFlagRequired("texture"); err != nil {
		panic(fmt.Sprintf("failed to mark flag required: %v", err))
	}

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"render.texture", "texture"},
		{"render.size", "size"},
		{"render.mapping", "mapping"},
		{"render.span", "span"},
		{"render.time", "time"},
		{"render.seed", "seed"},
		{"render.supersample", "supersample"},
		{"render.bloom", "bloom"},
		{"render.workers", "workers"},
		{"render.output", "output"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, renderCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	name := viper.GetString("render.texture")
	size := viper.GetInt("render.size")
	mappingStr := viper.GetString("render.mapping")
	span := viper.GetFloat64("render.span")
	timeVal := viper.GetFloat64("render.time")
	supersample := viper.GetInt("render.supersample")
	bloom := viper.GetFloat64("render.bloom")
	workers := viper.GetInt("render.workers")
	output := viper.GetString("render.output")
	setPairs, _ := cmd.Flags().GetStringArray("set")

	mapping, err := parseMapping(mappingStr)
	if err != nil {
		return err
	}
	overrides, err := parseOverrides(setPairs)
	if err != nil {
		return err
	}
	overrides = applySeed(overrides, viper.GetFloat64("render.seed"))
	tex, err := buildTexture(name, overrides)
	if err != nil {
		return err
	}

	if output == "" {
		output = filepath.Join(viper.GetString("output-dir"), name+".png")
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	logger.Info("Rendering texture",
		"texture", name,
		"size", size,
		"mapping", string(mapping),
		"time", timeVal,
		"supersample", supersample,
		"bloom", bloom,
		"output", output,
	)

	img, err := render.Image(context.Background(), tex, render.Options{
		Size:        size,
		Mapping:     mapping,
		Span:        span,
		Time:        timeVal,
		Supersample: supersample,
		Bloom:       bloom,
		Workers:     workers,
	})
	if err != nil {
		return fmt.Errorf("failed to render: %w", err)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}

	logger.Info("Texture rendered", "output", output)
	return nil
}
