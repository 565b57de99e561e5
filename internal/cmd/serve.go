package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/proctex/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve texture previews over HTTP (rendering on-demand)",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Listen address (host:port)")
	serveCmd.Flags().Int("preview-size", 256, "Default preview size in pixels")
	serveCmd.Flags().Int("max-concurrent-renders", runtime.NumCPU(), "Max concurrent renders (default: number of CPUs)")
	serveCmd.Flags().Duration("render-timeout", 30*time.Second, "Timeout per preview render")
	serveCmd.Flags().String("cache-control", "no-store", "Cache-Control header for served previews")
	serveCmd.Flags().Bool("disable-cache", false, "Always re-render previews")
	serveCmd.Flags().String("bake-file", "", "Optional baked frame database to serve under /bake/")

	mustBind := func(key string, name string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag: %v", err))
		}
	}

	mustBind("serve.addr", "addr")
	mustBind("serve.preview_size", "preview-size")
	mustBind("serve.max_concurrent_renders", "max-concurrent-renders")
	mustBind("serve.render_timeout", "render-timeout")
	mustBind("serve.cache_control", "cache-control")
	mustBind("serve.disable_cache", "disable-cache")
	mustBind("serve.bake_file", "bake-file")
}

func runServe(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	addr := viper.GetString("serve.addr")
	previewSize := viper.GetInt("serve.preview_size")
	maxConc := viper.GetInt("serve.max_concurrent_renders")
	renderTimeout := viper.GetDuration("serve.render_timeout")
	cacheControl := viper.GetString("serve.cache_control")
	disableCache := viper.GetBool("serve.disable_cache")
	bakeFile := viper.GetString("serve.bake_file")

	preview, err := server.NewPreview(server.PreviewConfig{
		Size:                 previewSize,
		MaxConcurrentRenders: maxConc,
		RenderTimeout:        renderTimeout,
		CacheControl:         cacheControl,
		DisableCache:         disableCache,
	}, logger)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/textures", http.StatusFound)
	})

	mux.Handle("/textures", withCORS(preview.ListHandler()))
	mux.Handle("/texture/", withCORS(preview.Handler()))
	mux.Handle("/status", preview.StatusHandler())
	mux.Handle("/status/stream", preview.StatusStreamHandler())

	if bakeFile != "" {
		bh, err := server.NewBakeHandler(server.BakeConfig{
			BakePath:     bakeFile,
			CacheControl: cacheControl,
		}, logger)
		if err != nil {
			return err
		}
		defer bh.Close()
		mux.Handle("/bake/", withCORS(bh.Handler()))
	}

	logger.Info("preview server listening",
		"addr", addr,
		"preview_size", previewSize,
		"max_concurrent_renders", maxConc,
		"bake_file", bakeFile,
	)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("Shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
