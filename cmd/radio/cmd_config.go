package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/radio/app/services"
	"github.com/shashiranjanraj/radio/config"
	"github.com/shashiranjanraj/radio/pkg/storage"
)

// radio config:show: print the effective configuration with secrets masked.
var configShowCmd = &cobra.Command{
	Use:   "config:show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		cfg.Storage.S3Secret = mask(cfg.Storage.S3Secret)
		cfg.LogSink.MongoURI = mask(cfg.LogSink.MongoURI)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	},
}

// radio pages:check: confirm the fixed pages exist on the default disk.
var pagesCheckCmd = &cobra.Command{
	Use:   "pages:check",
	Short: "Verify the home and controller pages exist on the configured disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		disks, err := storage.Connect(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("storage: %w", err)
		}
		if err := checkPages(cmd, cfg, services.NewFileService(disks.Default())); err != nil {
			return err
		}
		reportAudioDirs(cmd, cfg)
		return nil
	},
}

func checkPages(cmd *cobra.Command, cfg config.Config, files *services.FileService) error {
	var missing []string
	for _, page := range []string{cfg.Pages.HomeHTML, cfg.Pages.ControllerHTML} {
		ok, err := files.Exists(cmd.Context(), page)
		if err != nil {
			return fmt.Errorf("check %s: %w", page, err)
		}
		status := "ok"
		if !ok {
			status = "missing"
			missing = append(missing, page)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", status, page)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing pages on disk %q: %s", cfg.Storage.Disk, strings.Join(missing, ", "))
	}
	return nil
}

// reportAudioDirs prints whether the local audio library directories exist.
// They are informational and never fail the check.
func reportAudioDirs(cmd *cobra.Command, cfg config.Config) {
	for _, dir := range []string{cfg.Dir.Songs, cfg.Dir.FX} {
		status := "ok"
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			status = "absent"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s/\n", status, dir)
	}
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}
