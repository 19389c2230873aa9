// Package metrics computes per-transcript precision and consistency rates
// over the verdicts and call records the validation pipeline produces. All
// computations are arithmetic over already-decoded JSON; parsing hardship
// lives in the schema package, not here.
package metrics

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/precidx/precidx/precidx/transcript"
)

// forEachTranscript walks every transcript file in the given folders in
// order, with per-file error isolation: a file that fails to load is logged
// and skipped, and a missing folder skips that folder only.
func forEachTranscript(folders []string, log zerolog.Logger, fn func(file string, doc *transcript.Document)) {
	for _, folder := range folders {
		if _, err := os.Stat(folder); err != nil {
			log.Warn().Str("folder", folder).Msg("data folder missing, skipping")
			continue
		}
		files, err := transcript.ListRunFiles(folder)
		if err != nil {
			log.Warn().Err(err).Str("folder", folder).Msg("folder scan failed, skipping")
			continue
		}
		for _, file := range files {
			doc, err := transcript.Load(file)
			if err != nil {
				log.Warn().Err(err).Str("file", file).Msg("transcript load failed, skipping file")
				continue
			}
			fn(file, doc)
		}
	}
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
