// Package cli wires the evaluation pipeline into cobra commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/precidx/precidx/precidx/catalog"
	"github.com/precidx/precidx/precidx/config"
	"github.com/precidx/precidx/precidx/schema"
)

// GlobalFlags holds flags shared across all commands.
type GlobalFlags struct {
	ConfigPath string
	SpecPath   string
	Folders    []string
	OutputDir  string
	Verbose    bool
}

var (
	globalFlags GlobalFlags
	cfg         *config.Config
	logger      zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "precidx",
	Short: "Offline evaluation of agent tool-use transcripts",
	Long: "precidx normalizes a free-form tool catalog, validates transcript tool calls\n" +
		"against it, and computes batch quality metrics with a CSV summary.",
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalFlags.ConfigPath, "config", "", "config file path (default: ./precidx.yaml)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.SpecPath, "spec", "", "tool catalog text file")
	rootCmd.PersistentFlags().StringSliceVar(&globalFlags.Folders, "data", nil, "transcript data folder (repeatable)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.OutputDir, "output", "", "directory for result files")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(csvCmd)
	rootCmd.AddCommand(renameCmd)
}

func setup(_ *cobra.Command, _ []string) error {
	level := zerolog.InfoLevel
	if globalFlags.Verbose {
		level = zerolog.DebugLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()

	loaded, err := config.LoadConfig(globalFlags.ConfigPath)
	if err != nil {
		return err
	}
	cfg = loaded

	// Flags override file and env configuration.
	if globalFlags.SpecPath != "" {
		cfg.Spec.Path = globalFlags.SpecPath
	}
	if len(globalFlags.Folders) > 0 {
		cfg.Data.Folders = globalFlags.Folders
	}
	if globalFlags.OutputDir != "" {
		cfg.Data.OutputDir = globalFlags.OutputDir
	}
	return nil
}

// Execute runs the root command and returns an error; exit code is set by RunE.
func Execute() error {
	return rootCmd.Execute()
}

func buildCatalog() (*catalog.Catalog, error) {
	data, err := os.ReadFile(cfg.Spec.Path)
	if err != nil {
		return nil, fmt.Errorf("read tool catalog %s: %w", cfg.Spec.Path, err)
	}
	return catalog.Build(string(data), catalog.BuildOptions{
		Parser: schema.Options{PreserveCombinatorCase: cfg.Policy.PreserveCombinatorCase},
		Logger: logger,
	})
}

func writeResult(name string, v any) (string, error) {
	if err := os.MkdirAll(cfg.Data.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", cfg.Data.OutputDir, err)
	}
	path := filepath.Join(cfg.Data.OutputDir, name)
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
