package cmd

import (
	"bytes"
	"fmt"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/proctex/internal/bake"
	"github.com/MeKo-Tech/proctex/render"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a baked frame database to an animated GIF",
	Long:  `Read pre-rendered frames from a bake database and assemble them into a GIF.`,
	RunE:  runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringP("input", "i", "", "Input bake database path (required)")
	convertCmd.Flags().StringP("output", "o", "", "Output GIF path (default: input path with .gif extension)")
	convertCmd.Flags().Int("fps", 0, "Playback speed override (default: the baked fps)")

	if err := convertCmd.MarkFlagRequired("input"); err != nil {
		panic(fmt.Sprintf("failed to mark flag required: %v", err))
	}

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"convert.input", "input"},
		{"convert.output", "output"},
		{"convert.fps", "fps"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, convertCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	input := viper.GetString("convert.input")
	output := viper.GetString("convert.output")
	fps := viper.GetInt("convert.fps")

	if _, err := os.Stat(input); os.IsNotExist(err) {
		return fmt.Errorf("input database does not exist: %s", input)
	}
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".gif"
	}

	reader, err := bake.OpenReader(input)
	if err != nil {
		return fmt.Errorf("failed to open bake database: %w", err)
	}
	defer reader.Close()

	meta, err := reader.Metadata()
	if err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}
	count, err := reader.FrameCount()
	if err != nil {
		return fmt.Errorf("failed to count frames: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("no frames found in %s", input)
	}

	if fps <= 0 {
		fps = meta.FPS
	}
	if fps <= 0 {
		fps = 30
	}
	delay := 100 / fps
	if delay < 1 {
		delay = 1
	}

	logger.Info("Converting baked frames to GIF",
		"input", input,
		"output", output,
		"texture", meta.Texture,
		"frames", count,
		"fps", fps,
	)

	out := &gif.GIF{LoopCount: 0}
	for i := 0; i < count; i++ {
		data, err := reader.ReadFrame(i)
		if err != nil {
			return fmt.Errorf("failed to read frame %d: %w", i, err)
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("failed to decode frame %d: %w", i, err)
		}
		out.Image = append(out.Image, render.Quantize(img))
		out.Delay = append(out.Delay, delay)

		if (i+1)%50 == 0 {
			logger.Info("Progress", "converted", i+1, "total", count)
		}
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := gif.EncodeAll(f, out); err != nil {
		return fmt.Errorf("failed to encode GIF: %w", err)
	}

	logger.Info("Conversion complete", "output", output, "frames", count)
	return nil
}
