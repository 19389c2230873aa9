package metrics

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/precidx/precidx/precidx/validate"
)

// Result file names written by the metric batches and read back by the
// summary export.
const (
	ToolNameResultFile    = "tool_name_accuracy_result.json"
	SchemaResultFile      = "schema_validation_accuracy_result.json"
	QueryParamResultFile  = "query_param_accuracy_result.json"
	ObsParamResultFile    = "obs_param_accuracy_result.json"
	DuplicateResultFile   = "duplicate_call_rate_result.json"
	ConsistencyResultFile = "state_consistency_result.json"
	SummaryCSVFile        = "metrics_summary.csv"
)

// SummaryRow is one CSV line: per-file metric values plus their mean.
type SummaryRow struct {
	FilePath             string
	ToolAcc              float64
	ActionValidRate      float64
	ObsValidRate         float64
	ObsParamAcc          float64
	NoDupRate            float64
	SameToolConsistency  float64
	CrossToolConsistency float64
	OverallAcc           float64
}

// SummaryInputs carries the per-metric reports feeding the CSV. Any report
// may be nil; its columns stay zero and drop out of each row's mean.
type SummaryInputs struct {
	ToolName    *ToolNameReport
	Schema      *validate.Report
	ObsParam    *ObsReport
	Duplicate   *DuplicateReport
	Consistency *ConsistencyReport
}

// LoadSummaryInputs reads previously written metric result files from dir.
// Missing or unreadable files are logged and skipped.
func LoadSummaryInputs(dir string, log zerolog.Logger) SummaryInputs {
	var in SummaryInputs
	loadResult(filepath.Join(dir, ToolNameResultFile), &in.ToolName, log)
	loadResult(filepath.Join(dir, SchemaResultFile), &in.Schema, log)
	loadResult(filepath.Join(dir, ObsParamResultFile), &in.ObsParam, log)
	loadResult(filepath.Join(dir, DuplicateResultFile), &in.Duplicate, log)
	loadResult(filepath.Join(dir, ConsistencyResultFile), &in.Consistency, log)
	return in
}

func loadResult[T any](path string, out **T, log zerolog.Logger) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("metric result unavailable")
		return
	}
	var report T
	if err := json.Unmarshal(data, &report); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("metric result unreadable")
		return
	}
	*out = &report
}

// BuildSummary merges the per-metric reports into per-file rows sorted by
// path. Each row's overall accuracy is the mean of the metrics that were
// actually present for that file.
func BuildSummary(in SummaryInputs) []SummaryRow {
	type cell struct {
		value float64
		set   bool
	}
	type fileCells struct {
		toolAcc, actionValid, obsValid, obsParam, noDup, sameTool, crossTool cell
	}

	byFile := make(map[string]*fileCells)
	get := func(file string) *fileCells {
		fc, ok := byFile[file]
		if !ok {
			fc = &fileCells{}
			byFile[file] = fc
		}
		return fc
	}

	if in.ToolName != nil {
		for _, fr := range in.ToolName.PerFileResults {
			get(fr.File).toolAcc = cell{fr.AccTool, true}
		}
	}
	if in.Schema != nil {
		for _, fr := range in.Schema.PerFileResults {
			fc := get(fr.File)
			fc.actionValid = cell{ratio(fr.ActionValidCalls, fr.TotalCalls), true}
			fc.obsValid = cell{ratio(fr.ObservationValidCalls, fr.TotalCalls), true}
		}
	}
	if in.ObsParam != nil {
		for _, fr := range in.ObsParam.PerFileResults {
			get(fr.File).obsParam = cell{fr.AccParamObs, true}
		}
	}
	if in.Duplicate != nil {
		for _, fr := range in.Duplicate.PerFileResults {
			get(fr.File).noDup = cell{1 - fr.RateToolDup, true}
		}
	}
	if in.Consistency != nil {
		for _, fr := range in.Consistency.PerFileResults {
			fc := get(fr.File)
			fc.sameTool = cell{fr.SameToolConsistency, true}
			fc.crossTool = cell{fr.CrossToolConsistency, true}
		}
	}

	files := make([]string, 0, len(byFile))
	for file := range byFile {
		files = append(files, file)
	}
	sort.Strings(files)

	rows := make([]SummaryRow, 0, len(files))
	for _, file := range files {
		fc := byFile[file]
		var present []float64
		for _, c := range []cell{fc.toolAcc, fc.actionValid, fc.obsValid, fc.obsParam, fc.noDup, fc.sameTool, fc.crossTool} {
			if c.set {
				present = append(present, c.value)
			}
		}
		overall := 0.0
		if len(present) > 0 {
			overall = stat.Mean(present, nil)
		}
		rows = append(rows, SummaryRow{
			FilePath:             file,
			ToolAcc:              fc.toolAcc.value,
			ActionValidRate:      fc.actionValid.value,
			ObsValidRate:         fc.obsValid.value,
			ObsParamAcc:          fc.obsParam.value,
			NoDupRate:            fc.noDup.value,
			SameToolConsistency:  fc.sameTool.value,
			CrossToolConsistency: fc.crossTool.value,
			OverallAcc:           overall,
		})
	}
	return rows
}

// AverageRow computes the column-wise mean of the given rows, labeled
// AVERAGE. It leads the CSV body so the headline numbers read first.
func AverageRow(rows []SummaryRow) SummaryRow {
	avg := SummaryRow{FilePath: "AVERAGE"}
	if len(rows) == 0 {
		return avg
	}
	cols := make([][]float64, 8)
	for _, row := range rows {
		for i, v := range row.values() {
			cols[i] = append(cols[i], v)
		}
	}
	avg.ToolAcc = stat.Mean(cols[0], nil)
	avg.ActionValidRate = stat.Mean(cols[1], nil)
	avg.ObsValidRate = stat.Mean(cols[2], nil)
	avg.ObsParamAcc = stat.Mean(cols[3], nil)
	avg.NoDupRate = stat.Mean(cols[4], nil)
	avg.SameToolConsistency = stat.Mean(cols[5], nil)
	avg.CrossToolConsistency = stat.Mean(cols[6], nil)
	avg.OverallAcc = stat.Mean(cols[7], nil)
	return avg
}

func (r SummaryRow) values() []float64 {
	return []float64{
		r.ToolAcc, r.ActionValidRate, r.ObsValidRate, r.ObsParamAcc,
		r.NoDupRate, r.SameToolConsistency, r.CrossToolConsistency, r.OverallAcc,
	}
}

func (r SummaryRow) record() []string {
	out := []string{r.FilePath}
	for _, v := range r.values() {
		out = append(out, strconv.FormatFloat(v, 'f', 4, 64))
	}
	return out
}

var summaryHeader = []string{
	"File Path", "Tool Accuracy", "Action Valid Rate", "Obs Valid Rate",
	"Obs Param Accuracy", "No Duplicate Rate", "Same Tool Consistency",
	"Cross Tool Consistency", "Overall Accuracy",
}

// WriteSummaryCSV writes the header, the AVERAGE row, then the per-file rows.
func WriteSummaryCSV(path string, rows []SummaryRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("metrics: create summary csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(summaryHeader); err != nil {
		return fmt.Errorf("metrics: write summary csv: %w", err)
	}
	if err := w.Write(AverageRow(rows).record()); err != nil {
		return fmt.Errorf("metrics: write summary csv: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row.record()); err != nil {
			return fmt.Errorf("metrics: write summary csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("metrics: flush summary csv: %w", err)
	}
	return nil
}
