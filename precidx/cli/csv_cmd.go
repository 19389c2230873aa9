package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/precidx/precidx/precidx/metrics"
)

var csvCmd = &cobra.Command{
	Use:   "csv",
	Short: "Merge metric result files into a summary CSV",
	RunE:  runCSV,
}

func runCSV(_ *cobra.Command, _ []string) error {
	in := metrics.LoadSummaryInputs(cfg.Data.OutputDir, logger)
	rows := metrics.BuildSummary(in)

	path := filepath.Join(cfg.Data.OutputDir, metrics.SummaryCSVFile)
	if err := metrics.WriteSummaryCSV(path, rows); err != nil {
		return err
	}
	logger.Info().Str("path", path).Int("files", len(rows)).Msg("summary csv written")
	return nil
}
