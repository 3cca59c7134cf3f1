package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/radio/config"
	"github.com/shashiranjanraj/radio/internal/kernel"
	"github.com/shashiranjanraj/radio/internal/server"
	"github.com/shashiranjanraj/radio/pkg/logger"
	"github.com/shashiranjanraj/radio/pkg/storage"
)

// radio serve: start the HTTP server.
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run", "start"},
	Short:   "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		detach, err := logger.AttachMongo(ctx, cfg.LogSink)
		if err != nil {
			return fmt.Errorf("log sink: %w", err)
		}
		defer detach()

		k, err := buildKernel(ctx, cfg)
		if err != nil {
			return err
		}
		return server.Start(ctx, cfg, k.Handler())
	},
}

// radio route:list: print the HTTP surface.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List the HTTP routes and the dispatcher's routing rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		k, err := buildKernel(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range k.Routes() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}

		fmt.Fprintln(w)
		fmt.Fprintln(w, "METHOD\tPATH\tACTION")
		fmt.Fprintln(w, "------\t----\t------")
		for _, rule := range k.Rules() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", rule.Method, rule.Path, rule.Action)
		}
		return w.Flush()
	},
}

func loadConfig() (config.Config, error) {
	if err := config.Load(); err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	cfg := config.Current()
	logger.L = logger.New(os.Stdout, cfg.AppEnv, cfg.LogLevel)
	return cfg, nil
}

func buildKernel(ctx context.Context, cfg config.Config) (*kernel.HTTPKernel, error) {
	disks, err := storage.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	logger.Debug("storage ready", "disks", disks.Names(), "default", cfg.Storage.Disk)
	return kernel.NewHTTPKernel(cfg, disks, nil), nil
}
