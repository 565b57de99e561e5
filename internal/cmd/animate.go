package cmd

import (
	"context"
	"fmt"
	"image/gif"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tanema/gween/ease"

	"github.com/MeKo-Tech/proctex/anim"
	"github.com/MeKo-Tech/proctex/graph"
	"github.com/MeKo-Tech/proctex/params"
	"github.com/MeKo-Tech/proctex/render"
)

var animateCmd = &cobra.Command{
	Use:   "animate",
	Short: "Render a texture animation to a GIF",
	Long:  `Render a registered texture over a frame sequence and write an animated GIF.`,
	RunE:  runAnimate,
}

func init() {
	rootCmd.AddCommand(animateCmd)

	animateCmd.Flags().StringP("texture", "t", "", "Texture name (see 'proctex list')")
	animateCmd.Flags().Int("frames", 60, "Number of frames to render")
	animateCmd.Flags().Int("fps", 30, "Frames per second")
	animateCmd.Flags().Int("size", 256, "Output size in pixels (square)")
	animateCmd.Flags().String("mapping", "plane", "Sample mapping: plane or sphere")
	animateCmd.Flags().Float64("span", 1.0, "Half-extent of the sampled plane in object space")
	animateCmd.Flags().Float64("bloom", 0, "Gaussian bloom sigma in pixels (0 disables)")
	animateCmd.Flags().IntP("workers", "w", 0, "Number of parallel row workers (default: number of CPUs)")
	animateCmd.Flags().StringP("output", "o", "", "Output file path (default: <output-dir>/<texture>.gif)")
	animateCmd.Flags().StringArray("set", nil, "Parameter override key=value (repeatable)")
	animateCmd.Flags().Float64("seed", 0, "Noise seed (shorthand for --set seed=N)")
	animateCmd.Flags().StringArray("tween", nil, "Animate a parameter over the clip, key=from:to (repeatable)")

	if err := animateCmd.MarkFlagRequired("texture"); err != nil {
		panic(fmt.Sprintf("failed to mark flag required: %v", err))
	}

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"animate.texture", "texture"},
		{"animate.frames", "frames"},
		{"animate.fps", "fps"},
		{"animate.size", "size"},
		{"animate.mapping", "mapping"},
		{"animate.span", "span"},
		{"animate.bloom", "bloom"},
		{"animate.workers", "workers"},
		{"animate.output", "output"},
		{"animate.seed", "seed"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, animateCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runAnimate(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	name := viper.GetString("animate.texture")
	frames := viper.GetInt("animate.frames")
	fps := viper.GetInt("animate.fps")
	size := viper.GetInt("animate.size")
	mappingStr := viper.GetString("animate.mapping")
	span := viper.GetFloat64("animate.span")
	bloom := viper.GetFloat64("animate.bloom")
	workers := viper.GetInt("animate.workers")
	output := viper.GetString("animate.output")
	setPairs, _ := cmd.Flags().GetStringArray("set")
	tweenPairs, _ := cmd.Flags().GetStringArray("tween")

	if frames <= 0 || fps <= 0 {
		return fmt.Errorf("frames and fps must be positive (got frames=%d fps=%d)", frames, fps)
	}

	mapping, err := parseMapping(mappingStr)
	if err != nil {
		return err
	}
	overrides, err := parseOverrides(setPairs)
	if err != nil {
		return err
	}
	overrides = applySeed(overrides, viper.GetFloat64("animate.seed"))
	tweens, err := parseTweens(tweenPairs)
	if err != nil {
		return err
	}

	// Tweened parameters are bound as uniform handles so the driver can
	// write fresh values between frames.
	uniforms := make([]*graph.Uniform, len(tweens))
	if len(tweens) > 0 && overrides == nil {
		overrides = params.Table{}
	}
	for i, tw := range tweens {
		u := graph.UniformFloat(tw.key, float32(tw.from))
		uniforms[i] = u
		overrides[tw.key] = u.Node()
	}

	tex, err := buildTexture(name, overrides)
	if err != nil {
		return err
	}
	if tex.Time == nil && len(tweens) == 0 {
		logger.Warn("Texture is static, all frames will be identical", "texture", name)
	}

	if output == "" {
		output = filepath.Join(viper.GetString("output-dir"), name+".gif")
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	logger.Info("Rendering animation",
		"texture", name,
		"frames", frames,
		"fps", fps,
		"size", size,
		"mapping", string(mapping),
		"output", output,
	)

	driver := anim.NewDriver()
	driver.Bind(tex)

	duration := float32(frames) / float32(fps)
	for i, tw := range tweens {
		driver.Add(anim.Tween(uniforms[i], float32(tw.from), float32(tw.to), duration, ease.Linear))
	}

	g, err := render.GIF(context.Background(), tex, driver, frames, fps, render.Options{
		Size:    size,
		Mapping: mapping,
		Span:    span,
		Bloom:   bloom,
		Workers: workers,
	})
	if err != nil {
		return fmt.Errorf("failed to render animation: %w", err)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := gif.EncodeAll(f, g); err != nil {
		return fmt.Errorf("failed to encode GIF: %w", err)
	}

	logger.Info("Animation rendered", "output", output, "frames", frames)
	return nil
}
