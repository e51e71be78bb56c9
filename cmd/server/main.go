package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirechat-relay/internal/app"
	"github.com/vovakirdan/wirechat-relay/internal/config"
	applog "github.com/vovakirdan/wirechat-relay/internal/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "wirechat-relay",
		Short:         "Room and direct message chat relay",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configPath)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Create demo users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load(configPath)
			if err != nil {
				return err
			}
			_, err = app.Seed(cmd.Context(), &cfg, logger)
			return err
		},
	})

	return root
}

func load(configPath string) (config.Config, *zerolog.Logger, error) {
	bootLogger := applog.New("info", "")
	cfg, resolved, err := config.Load(bootLogger, configPath)
	if err != nil {
		return cfg, nil, err
	}

	logger := applog.New(cfg.LogLevel, cfg.LogFile)
	logger.Info().Str("config", resolved).Msg("configuration loaded")
	return cfg, logger, nil
}

func serve(parent context.Context, configPath string) error {
	cfg, logger, err := load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(&cfg, logger)
	if err != nil {
		return err
	}

	logger.Info().Str("addr", cfg.Addr).Msg("starting wirechat relay")
	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("server exited with error: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}
