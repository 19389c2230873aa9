package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// SkipFiles are per-folder metadata files that are never transcripts.
var SkipFiles = map[string]bool{
	"question_info.json": true,
	"batch_summary.json": true,
}

// ListRunFiles returns the transcript JSON files in a folder, sorted by name,
// with metadata files filtered out.
func ListRunFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("transcript: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("transcript: %s is not a directory", dir)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("transcript: glob %s: %w", dir, err)
	}

	var files []string
	for _, m := range matches {
		if SkipFiles[filepath.Base(m)] {
			continue
		}
		files = append(files, m)
	}
	sort.Strings(files)
	return files, nil
}
