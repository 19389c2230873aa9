package transcript

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// RenamePlan describes one pending file rename.
type RenamePlan struct {
	From string
	To   string
}

// RenameResult summarizes a renaming pass over one folder.
type RenameResult struct {
	Planned []RenamePlan
	Renamed int
	Skipped int
}

// RenameRunFiles renames the transcript files of a folder to the canonical
// run_001.json, run_002.json, ... sequence, numbering independently per
// folder. Metadata files are skipped, existing targets are never clobbered,
// and files already carrying their target name are left alone. With dryRun
// set, the plan is computed and logged but nothing is touched.
func RenameRunFiles(dir string, dryRun bool, log zerolog.Logger) (*RenameResult, error) {
	files, err := ListRunFiles(dir)
	if err != nil {
		return nil, err
	}

	result := &RenameResult{}
	for i, from := range files {
		to := filepath.Join(dir, fmt.Sprintf("run_%03d.json", i+1))

		if filepath.Base(from) == filepath.Base(to) {
			result.Skipped++
			continue
		}
		if _, err := os.Stat(to); err == nil {
			log.Warn().Str("from", from).Str("to", to).Msg("target exists, skipping rename")
			result.Skipped++
			continue
		}

		result.Planned = append(result.Planned, RenamePlan{From: from, To: to})
		if dryRun {
			log.Info().Str("from", from).Str("to", to).Msg("dry-run rename")
			continue
		}

		if err := os.Rename(from, to); err != nil {
			log.Warn().Err(err).Str("from", from).Str("to", to).Msg("rename failed")
			result.Skipped++
			continue
		}
		result.Renamed++
	}
	return result, nil
}
