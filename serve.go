package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"randpipe/api"
	"randpipe/board"
	"randpipe/config"
	"randpipe/preset"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	configPath string
	port       string
	presetFile string
	boardTTL   time.Duration
	debug      bool
}

func (o *serveOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.configPath, "config", "c", "", "YAML config file")
	f.StringVarP(&o.port, "port", "p", "", "listen port (overrides PORT)")
	f.StringVar(&o.presetFile, "presets", "", "preset store file (overrides PRESET_FILE)")
	f.DurationVar(&o.boardTTL, "board-ttl", 0, "delete boards idle for this long (0 keeps the configured value)")
	f.BoolVar(&o.debug, "debug", false, "debug logging")
}

// resolve layers flags over the file and environment.
func (o serveOptions) resolve() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if o.port != "" {
		cfg.Port = o.port
	}
	if o.presetFile != "" {
		cfg.PresetFile = o.presetFile
	}
	if o.boardTTL > 0 {
		cfg.BoardTTL = o.boardTTL
	}
	if o.debug {
		cfg.LogLevel = "debug"
	}
	return cfg, cfg.Validate()
}

func runServe(ctx context.Context, opts serveOptions) error {
	cfg, err := opts.resolve()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	pm, err := preset.NewManager(cfg.PresetFile)
	if err != nil {
		log.Error("failed to load presets", zap.String("path", cfg.PresetFile), zap.Error(err))
		return fmt.Errorf("load presets: %w", err)
	}
	boards := board.NewManager(log.Named("board"))
	router := api.RegisterRoutes(boards, pm, staticFiles, log.Named("http"))

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("randpipe listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return boards.Reap(gctx, cfg.BoardTTL, cfg.ReapEvery)
	})
	g.Go(func() error {
		if err := pm.Watch(gctx, log.Named("preset")); err != nil {
			// Live reload is optional; keep serving without it.
			log.Warn("preset watch disabled", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", zap.Error(err))
		return err
	}
	log.Info("randpipe stopped")
	return nil
}
