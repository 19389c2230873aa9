package metrics

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/precidx/precidx/precidx/transcript"
)

// DuplicateDetail records one repeated call.
type DuplicateDetail struct {
	CallIndex        int            `json:"call_index"`
	Step             string         `json:"step"`
	ToolName         string         `json:"tool_name"`
	Args             map[string]any `json:"args"`
	IsExactDup       bool           `json:"is_exact_dup"`
	IsConsecutiveDup bool           `json:"is_consecutive_dup"`
}

// DuplicateStats holds the duplicate-rate metrics for one call sequence.
type DuplicateStats struct {
	TotalCalls          int               `json:"total_calls"`
	ExactDupCount       int               `json:"exact_dup_count"`
	ToolDupCount        int               `json:"tool_dup_count"`
	ConsecutiveDupCount int               `json:"consecutive_dup_count"`
	RateExactDup        float64           `json:"Rate_exact_dup"`
	RateToolDup         float64           `json:"Rate_tool_dup"`
	RateConsecutiveDup  float64           `json:"Rate_consecutive_dup"`
	AvgParamSimilarity  float64           `json:"Avg_param_similarity"`
	DuplicateDetails    []DuplicateDetail `json:"duplicate_details"`
}

// DuplicateFileResult is the per-transcript duplicate accounting.
type DuplicateFileResult struct {
	File string `json:"file"`
	DuplicateStats
}

// DuplicateReport is the full duplicate-rate result.
type DuplicateReport struct {
	PerFileResults []DuplicateFileResult `json:"per_file_results"`
	Overall        DuplicateStats        `json:"overall"`
}

// DuplicateRate computes exact, tool-level and consecutive duplicate rates
// plus the mean parameter similarity between calls of the same tool.
// excludeLastSteps drops trailing summary steps from each transcript. The
// seen-signature tracking is local to each file; nothing persists across
// calls.
func DuplicateRate(folders []string, excludeLastSteps int, log zerolog.Logger) *DuplicateReport {
	report := &DuplicateReport{}
	var allSims []float64

	forEachTranscript(folders, log, func(file string, doc *transcript.Document) {
		calls := doc.Calls(excludeLastSteps)
		stats, sims := duplicateStats(calls)
		allSims = append(allSims, sims...)
		report.PerFileResults = append(report.PerFileResults, DuplicateFileResult{
			File:           file,
			DuplicateStats: stats,
		})
	})

	for _, fr := range report.PerFileResults {
		report.Overall.TotalCalls += fr.TotalCalls
		report.Overall.ExactDupCount += fr.ExactDupCount
		report.Overall.ToolDupCount += fr.ToolDupCount
		report.Overall.ConsecutiveDupCount += fr.ConsecutiveDupCount
	}
	report.Overall.RateExactDup = ratio(report.Overall.ExactDupCount, report.Overall.TotalCalls)
	report.Overall.RateToolDup = ratio(report.Overall.ToolDupCount, report.Overall.TotalCalls)
	report.Overall.RateConsecutiveDup = ratio(report.Overall.ConsecutiveDupCount, report.Overall.TotalCalls)
	if len(allSims) > 0 {
		report.Overall.AvgParamSimilarity = stat.Mean(allSims, nil)
	}
	report.Overall.DuplicateDetails = []DuplicateDetail{}
	return report
}

func duplicateStats(calls []transcript.CallRecord) (DuplicateStats, []float64) {
	stats := DuplicateStats{
		TotalCalls:       len(calls),
		DuplicateDetails: []DuplicateDetail{},
	}
	if len(calls) == 0 {
		return stats, nil
	}

	seenSignatures := make(map[string]bool)
	seenTools := make(map[string]bool)
	toolCalls := make(map[string][]map[string]any)
	prevSignature := ""
	havePrev := false

	for _, call := range calls {
		signature := callSignature(call.ToolName, call.Args)

		isExactDup := seenSignatures[signature]
		if isExactDup {
			stats.ExactDupCount++
		}
		if seenTools[call.ToolName] {
			stats.ToolDupCount++
		}
		isConsecutiveDup := havePrev && signature == prevSignature
		if isConsecutiveDup {
			stats.ConsecutiveDupCount++
		}

		if isExactDup || isConsecutiveDup {
			stats.DuplicateDetails = append(stats.DuplicateDetails, DuplicateDetail{
				CallIndex:        call.CallIndex,
				Step:             call.Step,
				ToolName:         call.ToolName,
				Args:             call.Args,
				IsExactDup:       isExactDup,
				IsConsecutiveDup: isConsecutiveDup,
			})
		}

		seenSignatures[signature] = true
		seenTools[call.ToolName] = true
		prevSignature = signature
		havePrev = true
		toolCalls[call.ToolName] = append(toolCalls[call.ToolName], call.Args)
	}

	stats.RateExactDup = ratio(stats.ExactDupCount, stats.TotalCalls)
	stats.RateToolDup = ratio(stats.ToolDupCount, stats.TotalCalls)
	stats.RateConsecutiveDup = ratio(stats.ConsecutiveDupCount, stats.TotalCalls)

	var sims []float64
	for _, argsList := range toolCalls {
		for i := 0; i < len(argsList); i++ {
			for j := i + 1; j < len(argsList); j++ {
				sims = append(sims, paramSimilarity(argsList[i], argsList[j]))
			}
		}
	}
	if len(sims) > 0 {
		stats.AvgParamSimilarity = stat.Mean(sims, nil)
	}
	return stats, sims
}

// callSignature builds a canonical tool+args identity: keys sorted at every
// level, scalar values stringified, so two calls differing only in map order
// collide.
func callSignature(toolName string, args map[string]any) string {
	return toolName + "::" + canonicalArgs(args)
}

func canonicalArgs(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}
	data, err := json.Marshal(canonicalValue(args))
	if err != nil {
		return "{}"
	}
	return string(data)
}

func canonicalValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = canonicalValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = canonicalValue(inner)
		}
		return out
	case nil:
		return nil
	default:
		return fmt.Sprintf("%v", val)
	}
}

// paramSimilarity is the fraction of the union of parameter names on which
// two argument maps agree.
func paramSimilarity(a, b map[string]any) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	keys := make(map[string]bool)
	for k := range a {
		keys[k] = true
	}
	for k := range b {
		keys[k] = true
	}

	same := 0
	for k := range keys {
		av, aok := a[k]
		bv, bok := b[k]
		if aok && bok && fmt.Sprintf("%v", av) == fmt.Sprintf("%v", bv) {
			same++
		}
	}
	return float64(same) / float64(len(keys))
}

// sortedArgKeys returns the argument names in deterministic order.
func sortedArgKeys(args map[string]any) []string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
