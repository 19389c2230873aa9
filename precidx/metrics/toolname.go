package metrics

import (
	"github.com/rs/zerolog"

	"github.com/precidx/precidx/precidx/catalog"
	"github.com/precidx/precidx/precidx/transcript"
)

// InvalidTool records one call whose name is not declared in the catalog.
type InvalidTool struct {
	ToolName   string `json:"tool_name"`
	Step       string `json:"step"`
	Suggestion string `json:"suggestion,omitempty"`
}

// ToolNameFileResult is the per-transcript tool-name validity accounting.
type ToolNameFileResult struct {
	File           string        `json:"file"`
	AccTool        float64       `json:"Acc_tool"`
	TotalCalls     int           `json:"total_calls"`
	ValidCalls     int           `json:"valid_calls"`
	InvalidCalls   int           `json:"invalid_calls"`
	InvalidDetails []InvalidTool `json:"invalid_details"`
}

// ToolNameOverall aggregates tool-name validity across the batch.
type ToolNameOverall struct {
	AccTool      float64 `json:"Acc_tool"`
	TotalCalls   int     `json:"total_calls"`
	ValidCalls   int     `json:"valid_calls"`
	InvalidCalls int     `json:"invalid_calls"`
}

// ToolNameReport is the full tool-name accuracy result.
type ToolNameReport struct {
	PerFileResults []ToolNameFileResult `json:"per_file_results"`
	Overall        ToolNameOverall      `json:"overall"`
}

// ToolNameAccuracy computes the fraction of calls whose tool name is declared
// in the catalog.
func ToolNameAccuracy(folders []string, cat *catalog.Catalog, log zerolog.Logger) *ToolNameReport {
	report := &ToolNameReport{}

	forEachTranscript(folders, log, func(file string, doc *transcript.Document) {
		fr := ToolNameFileResult{File: file, InvalidDetails: []InvalidTool{}}

		for _, rec := range doc.Calls(0) {
			fr.TotalCalls++
			if cat.Has(rec.ToolName) {
				fr.ValidCalls++
				continue
			}
			fr.InvalidDetails = append(fr.InvalidDetails, InvalidTool{
				ToolName:   rec.ToolName,
				Step:       rec.Step,
				Suggestion: cat.Suggest(rec.ToolName),
			})
		}

		fr.InvalidCalls = fr.TotalCalls - fr.ValidCalls
		fr.AccTool = ratio(fr.ValidCalls, fr.TotalCalls)
		report.PerFileResults = append(report.PerFileResults, fr)
	})

	for _, fr := range report.PerFileResults {
		report.Overall.TotalCalls += fr.TotalCalls
		report.Overall.ValidCalls += fr.ValidCalls
	}
	report.Overall.InvalidCalls = report.Overall.TotalCalls - report.Overall.ValidCalls
	report.Overall.AccTool = ratio(report.Overall.ValidCalls, report.Overall.TotalCalls)
	return report
}
