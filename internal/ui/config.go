package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nvelasco/markbook/internal/config"
)

func (a *App) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the configuration",
		Long: `Show the active configuration.

If no config file exists, one is created with default values so it can
be edited by hand.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return showConfig()
		},
	}
}

func showConfig() error {
	configPath := config.DefaultConfigPath()
	fmt.Printf("Config file: %s\n\n", configPath)

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
		fmt.Println("No config file found. Creating with default values...")
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Printf("Created %s\n\n", configPath)
	}

	printConfig(cfg)
	return nil
}

func printConfig(cfg *config.Config) {
	fmt.Println(formatHeader("Storage"))
	fmt.Printf("  db_path: %s\n\n", cfg.Storage.DBPath)

	fmt.Println(formatHeader("UI"))
	fmt.Printf("  theme: %s\n\n", cfg.UI.Theme)

	fmt.Println(formatHeader("Autosave"))
	fmt.Printf("  grades_window_ms:     %d\n", cfg.Autosave.GradesWindowMS)
	fmt.Printf("  attendance_window_ms: %d\n\n", cfg.Autosave.AttendanceWindowMS)

	fmt.Println(formatHeader("Grading"))
	for _, b := range cfg.Grading.Bands {
		fmt.Printf("  %5.1f+  %s\n", b.Min, b.Letter)
	}
	fmt.Printf("  below   %s\n\n", cfg.Grading.Fail)

	fmt.Println(formatHeader("Sessions"))
	fmt.Printf("  labels: %s\n", strings.Join(cfg.Sessions.Labels, ", "))
}
