package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/proctex/graph"
	"github.com/MeKo-Tech/proctex/internal/bake"
	"github.com/MeKo-Tech/proctex/internal/worker"
	"github.com/MeKo-Tech/proctex/params"
	"github.com/MeKo-Tech/proctex/render"
	"github.com/MeKo-Tech/proctex/texture"
)

var bakeCmd = &cobra.Command{
	Use:   "bake",
	Short: "Pre-render animation frames into a frame database",
	Long: `Render a texture's animation frames in parallel and store them in a
SQLite frame database the preview server can serve without re-rendering.`,
	RunE: runBake,
}

func init() {
	rootCmd.AddCommand(bakeCmd)

	bakeCmd.Flags().StringP("texture", "t", "", "Texture name (see 'proctex list')")
	bakeCmd.Flags().Int("frames", 60, "Number of frames to render")
	bakeCmd.Flags().Int("fps", 30, "Frames per second")
	bakeCmd.Flags().Int("size", 256, "Frame size in pixels (square)")
	bakeCmd.Flags().String("mapping", "plane", "Sample mapping: plane or sphere")
	bakeCmd.Flags().Float64("span", 1.0, "Half-extent of the sampled plane in object space")
	bakeCmd.Flags().Float64("seed", 0, "Noise seed (shorthand for --set seed=N)")
	bakeCmd.Flags().IntP("workers", "w", 0, "Number of parallel frame workers (default: number of CPUs)")
	bakeCmd.Flags().Bool("progress", true, "Show progress bar")
	bakeCmd.Flags().StringP("output", "o", "", "Output database path (default: <output-dir>/<texture>.bake)")
	bakeCmd.Flags().StringArray("set", nil, "Parameter override key=value (repeatable)")

	if err := bakeCmd.MarkFlagRequired("texture"); err != nil {
		panic(fmt.Sprintf("failed to mark flag required: %v", err))
	}

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"bake.texture", "texture"},
		{"bake.frames", "frames"},
		{"bake.fps", "fps"},
		{"bake.size", "size"},
		{"bake.mapping", "mapping"},
		{"bake.span", "span"},
		{"bake.seed", "seed"},
		{"bake.workers", "workers"},
		{"bake.progress", "progress"},
		{"bake.output", "output"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, bakeCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runBake(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	name := viper.GetString("bake.texture")
	frames := viper.GetInt("bake.frames")
	fps := viper.GetInt("bake.fps")
	size := viper.GetInt("bake.size")
	mappingStr := viper.GetString("bake.mapping")
	span := viper.GetFloat64("bake.span")
	workers := viper.GetInt("bake.workers")
	showProgress := viper.GetBool("bake.progress")
	output := viper.GetString("bake.output")
	setPairs, _ := cmd.Flags().GetStringArray("set")

	if frames <= 0 || fps <= 0 {
		return fmt.Errorf("--frames and --fps must be positive")
	}
	mapping, err := parseMapping(mappingStr)
	if err != nil {
		return err
	}
	overrides, err := parseOverrides(setPairs)
	if err != nil {
		return err
	}
	overrides = applySeed(overrides, viper.GetFloat64("bake.seed"))

	def, ok := texture.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown texture %q (run 'proctex list')", name)
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if output == "" {
		output = filepath.Join(viper.GetString("output-dir"), name+".bake")
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	paramsJSON := ""
	if len(overrides) > 0 {
		data, err := json.Marshal(overrides)
		if err != nil {
			return fmt.Errorf("failed to encode parameters: %w", err)
		}
		paramsJSON = string(data)
	}

	writer, err := bake.NewWriter(output, bake.Metadata{
		Texture: name,
		Params:  paramsJSON,
		Mapping: string(mapping),
		Frames:  frames,
		FPS:     fps,
		Size:    size,
		Span:    span,
		Version: "1.0",
	})
	if err != nil {
		return fmt.Errorf("failed to create bake writer: %w", err)
	}
	defer writer.Close()

	logger.Info("Starting bake",
		"texture", name,
		"frames", frames,
		"fps", fps,
		"size", size,
		"workers", workers,
		"output", output,
	)

	// Setup context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Received interrupt signal, cancelling...")
		cancel()
	}()

	var gen worker.Generator = &frameSequence{
		def:       def,
		overrides: overrides,
		writer:    writer,
		frames:    frames,
		fps:       fps,
		opts: render.Options{
			Size:    size,
			Mapping: mapping,
			Span:    span,
			Workers: 1,
		},
	}
	tasks, err := gen.Generate(ctx)
	if err != nil {
		return err
	}

	progress := worker.NewProgress(len(tasks), "frames", showProgress)

	pool := worker.New(worker.Config{
		Workers:    workers,
		OnProgress: progress.Callback(),
	})

	results := pool.Run(ctx, tasks)
	progress.Done()

	var failedCount int
	for _, r := range results {
		if r.Err != nil {
			failedCount++
			logger.Error("Frame render failed", "task", r.Task.Describe(), "error", r.Err)
		}
	}

	logger.Info(progress.Summary())

	if failedCount > 0 {
		return fmt.Errorf("%d frames failed to render", failedCount)
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush frames: %w", err)
	}

	logger.Info("Bake complete", "output", output, "frames", frames)
	return nil
}

// frameSequence materializes one render task per animation frame. Rows
// render serially inside each task, so the parallelism budget stays with
// the frame pool.
type frameSequence struct {
	def       texture.Definition
	overrides params.Table
	writer    *bake.Writer
	opts      render.Options
	frames    int
	fps       int
}

func (s *frameSequence) Generate(ctx context.Context) ([]worker.Task, error) {
	// Build once up front so a bad override fails before any worker starts.
	if _, err := buildTexture(s.def.Name, s.overrides); err != nil {
		return nil, err
	}

	tasks := make([]worker.Task, 0, s.frames)
	for i := 0; i < s.frames; i++ {
		tasks = append(tasks, &frameTask{
			def:       s.def,
			overrides: s.overrides,
			writer:    s.writer,
			index:     i,
			time:      float64(i) / float64(s.fps),
			opts:      s.opts,
		})
	}
	return tasks, nil
}

// frameTask renders one animation frame and writes it to the bake
// database. Each task builds its own graph so concurrent frames never
// share uniform state.
type frameTask struct {
	def       texture.Definition
	overrides params.Table
	writer    *bake.Writer
	opts      render.Options
	index     int
	time      float64
}

func (t *frameTask) Execute(ctx context.Context) error {
	var (
		tex      *texture.Graph
		buildErr error
	)
	if err := graph.Guard(func() { tex, buildErr = t.def.Build(t.overrides) }); err != nil {
		return err
	}
	if buildErr != nil {
		return buildErr
	}

	opts := t.opts
	opts.Time = t.time
	img, err := render.Image(ctx, tex, opts)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	return t.writer.WriteFrame(t.index, buf.Bytes())
}

func (t *frameTask) Describe() string { return fmt.Sprintf("frame %d", t.index) }
