package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/precidx/precidx/precidx/catalog"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Rewrite the tool catalog as normalized text and report schema warnings",
	RunE:  runNormalize,
}

// normalizeReport pairs each tool with the quality warnings its schemas
// raised during parsing.
type normalizeReport struct {
	Tools    int                 `json:"tools"`
	Warnings map[string][]string `json:"warnings"`
}

func runNormalize(_ *cobra.Command, _ []string) error {
	cat, err := buildCatalog()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Data.OutputDir, 0o755); err != nil {
		return err
	}
	outPath := filepath.Join(cfg.Data.OutputDir, "tool_spec_normalized.txt")
	if err := os.WriteFile(outPath, []byte(catalog.RenderNormalized(cat)), 0o644); err != nil {
		return err
	}
	logger.Info().Str("path", outPath).Int("tools", cat.Len()).Msg("normalized catalog written")

	report := normalizeReport{Tools: cat.Len(), Warnings: map[string][]string{}}
	for _, tool := range cat.Tools() {
		if len(tool.Warnings) > 0 {
			report.Warnings[tool.Name] = tool.Warnings
		}
	}
	path, err := writeResult("normalize_warnings.json", report)
	if err != nil {
		return err
	}
	logger.Info().Str("path", path).Int("tools_with_warnings", len(report.Warnings)).Msg("warnings report written")
	return nil
}
