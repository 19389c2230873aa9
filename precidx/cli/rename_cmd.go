package cli

import (
	"github.com/spf13/cobra"

	"github.com/precidx/precidx/precidx/transcript"
)

var renameApply bool

var renameCmd = &cobra.Command{
	Use:   "rename",
	Short: "Rename transcript files to the run_NNN.json sequence (dry-run by default)",
	RunE:  runRename,
}

func init() {
	renameCmd.Flags().BoolVar(&renameApply, "apply", false, "perform the renames instead of printing the plan")
}

func runRename(_ *cobra.Command, _ []string) error {
	for _, folder := range cfg.Data.Folders {
		result, err := transcript.RenameRunFiles(folder, !renameApply, logger)
		if err != nil {
			logger.Warn().Err(err).Str("folder", folder).Msg("rename pass failed")
			continue
		}
		logger.Info().
			Str("folder", folder).
			Int("planned", len(result.Planned)).
			Int("renamed", result.Renamed).
			Int("skipped", result.Skipped).
			Bool("dry_run", !renameApply).
			Msg("rename pass complete")
	}
	return nil
}
