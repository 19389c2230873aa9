package metrics

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/precidx/precidx/precidx/ports"
	"github.com/precidx/precidx/precidx/transcript"
)

// defaultQueryParams are the argument names whose values are expected to
// come from the user query rather than from prior observations.
var defaultQueryParams = []string{
	"device_name", "device_id", "host_name", "hostname",
	"interface_name", "interface_id", "port_name",
	"ip_address", "ip", "source_ip", "dest_ip", "target_ip", "destination_ip",
	"bgp_neighbor", "neighbor_ip", "peer_ip",
	"vlan_id", "vlan",
}

// constantWhitelist holds values that are tool defaults, never provenance
// violations.
var constantWhitelist = map[string]bool{
	"0": true, "1": true, "10": true, "100": true, "1000": true,
	"true": true, "false": true,
	"": true, "null": true, "none": true,
}

// ProvenanceConfig controls parameter provenance checking.
type ProvenanceConfig struct {
	// SubstringMinLen is the minimum length both sides of a substring match
	// must have before containment counts as a match. 0 disables substring
	// matching; only exact matches remain.
	SubstringMinLen int
	// QueryParams overrides the default set of query-sourced argument names.
	QueryParams []string
	// Entities maps a data folder name to the entity values present in its
	// queries.
	Entities map[string][]string
}

// DefaultProvenanceConfig returns the configuration matching the standard
// evaluation setup.
func DefaultProvenanceConfig() ProvenanceConfig {
	return ProvenanceConfig{SubstringMinLen: 3}
}

func (c ProvenanceConfig) queryParamSet() map[string]bool {
	names := c.QueryParams
	if len(names) == 0 {
		names = defaultQueryParams
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = true
	}
	return set
}

// Provenance checks where action argument values come from: the user query
// or a prior observation. An optional judge refines failed lexical matches;
// without one, matching is purely lexical.
type Provenance struct {
	cfg   ProvenanceConfig
	judge ports.Judge
	cache ports.VerdictCache
	log   zerolog.Logger
}

// ProvenanceOption configures a Provenance checker.
type ProvenanceOption func(*Provenance)

// WithJudge attaches a verdict refiner consulted when lexical matching fails.
func WithJudge(j ports.Judge, cache ports.VerdictCache) ProvenanceOption {
	return func(p *Provenance) {
		p.judge = j
		p.cache = cache
	}
}

// WithProvenanceLogger sets the logger used for per-file warnings.
func WithProvenanceLogger(log zerolog.Logger) ProvenanceOption {
	return func(p *Provenance) { p.log = log }
}

// NewProvenance builds a provenance checker.
func NewProvenance(cfg ProvenanceConfig, opts ...ProvenanceOption) *Provenance {
	p := &Provenance{cfg: cfg, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// QueryMismatch records a query-sourced argument whose value is not a known
// query entity.
type QueryMismatch struct {
	ParamName  string   `json:"param_name"`
	ParamValue string   `json:"param_value"`
	Entities   []string `json:"query_entities"`
	ErrorType  string   `json:"error_type"`
	Step       string   `json:"step"`
	ToolName   string   `json:"tool_name"`
}

// QueryStepDetail records which argument names were checked for one call, so
// the observation metric can exclude them.
type QueryStepDetail struct {
	Step          string   `json:"step"`
	CoaIndex      int      `json:"coa_index"`
	ToolName      string   `json:"tool_name"`
	CheckedParams []string `json:"checked_params"`
	CorrectParams []string `json:"correct_params"`
}

// QueryFileResult is the per-transcript query provenance accounting.
type QueryFileResult struct {
	File               string            `json:"file"`
	Query              string            `json:"query"`
	Entities           []string          `json:"entities"`
	AccParamQuery      float64           `json:"Acc_param_query"`
	TotalQueryParams   int               `json:"total_query_params"`
	CorrectQueryParams int               `json:"correct_query_params"`
	MismatchDetails    []QueryMismatch   `json:"mismatch_details"`
	PerStepDetails     []QueryStepDetail `json:"per_step_details"`
}

// QueryOverall aggregates query provenance across all transcripts.
type QueryOverall struct {
	AccParamQuery      float64 `json:"Acc_param_query"`
	TotalQueryParams   int     `json:"total_query_params"`
	CorrectQueryParams int     `json:"correct_query_params"`
}

// QueryReport is the full query provenance result.
type QueryReport struct {
	PerFileResults []QueryFileResult `json:"per_file_results"`
	Overall        QueryOverall      `json:"overall"`
}

// QueryParamAccuracy checks query-sourced arguments against the configured
// entity lists. Entities are keyed by the base name of each data folder; a
// folder with no configured entities contributes no checks.
func (p *Provenance) QueryParamAccuracy(ctx context.Context, folders []string, excludeLastSteps int) *QueryReport {
	report := &QueryReport{}
	queryParams := p.cfg.queryParamSet()

	forEachTranscript(folders, p.log, func(file string, doc *transcript.Document) {
		entities := p.entitiesFor(file)
		fr := QueryFileResult{
			File:            file,
			Query:           doc.Query,
			Entities:        entities,
			MismatchDetails: []QueryMismatch{},
			PerStepDetails:  []QueryStepDetail{},
		}

		entitySet := make(map[string]bool, len(entities))
		for _, e := range entities {
			entitySet[e] = true
		}

		for _, call := range doc.Calls(excludeLastSteps) {
			detail := QueryStepDetail{
				Step:          call.Step,
				CoaIndex:      call.CoaIndex,
				ToolName:      call.ToolName,
				CheckedParams: []string{},
				CorrectParams: []string{},
			}
			if len(entities) > 0 {
				for _, name := range sortedArgKeys(call.Args) {
					if !queryParams[strings.ToLower(name)] {
						continue
					}
					value := scalarString(call.Args[name])
					fr.TotalQueryParams++
					detail.CheckedParams = append(detail.CheckedParams, name)
					if p.matchesEntity(ctx, value, entities, entitySet) {
						fr.CorrectQueryParams++
						detail.CorrectParams = append(detail.CorrectParams, name)
						continue
					}
					fr.MismatchDetails = append(fr.MismatchDetails, QueryMismatch{
						ParamName:  name,
						ParamValue: value,
						Entities:   entities,
						ErrorType:  "not_in_query",
						Step:       call.Step,
						ToolName:   call.ToolName,
					})
				}
			}
			fr.PerStepDetails = append(fr.PerStepDetails, detail)
		}

		fr.AccParamQuery = ratio(fr.CorrectQueryParams, fr.TotalQueryParams)
		report.PerFileResults = append(report.PerFileResults, fr)
	})

	for _, fr := range report.PerFileResults {
		report.Overall.TotalQueryParams += fr.TotalQueryParams
		report.Overall.CorrectQueryParams += fr.CorrectQueryParams
	}
	report.Overall.AccParamQuery = ratio(report.Overall.CorrectQueryParams, report.Overall.TotalQueryParams)
	return report
}

// ObsError records an argument value with no historical observation source.
type ObsError struct {
	ParamName  string `json:"param_name"`
	ParamValue string `json:"param_value"`
	ErrorType  string `json:"error_type"`
	ToolName   string `json:"tool_name"`
	Step       string `json:"step"`
}

// ObsFileResult is the per-transcript observation provenance accounting.
type ObsFileResult struct {
	File               string     `json:"file"`
	AccParamObs        float64    `json:"Acc_param_obs"`
	TotalObsParams     int        `json:"total_obs_params"`
	CorrectObsParams   int        `json:"correct_obs_params"`
	IncorrectObsParams int        `json:"incorrect_obs_params"`
	ErrorDetails       []ObsError `json:"error_details"`
}

// ObsErrorBreakdown counts observation provenance errors by type.
type ObsErrorBreakdown struct {
	Hallucination   int `json:"hallucination"`
	FutureReference int `json:"future_reference"`
	NoHistory       int `json:"no_history"`
}

// ObsOverall aggregates observation provenance across all transcripts.
type ObsOverall struct {
	AccParamObs        float64           `json:"Acc_param_obs"`
	TotalObsParams     int               `json:"total_obs_params"`
	CorrectObsParams   int               `json:"correct_obs_params"`
	IncorrectObsParams int               `json:"incorrect_obs_params"`
	ErrorBreakdown     ObsErrorBreakdown `json:"error_breakdown"`
}

// ObsReport is the full observation provenance result.
type ObsReport struct {
	PerFileResults []ObsFileResult `json:"per_file_results"`
	Overall        ObsOverall      `json:"overall"`
}

// ObsParamAccuracy checks whether non-constant arguments not already covered
// by the query metric reference values appearing in a prior observation. A
// failed reference is classified as no_history when the call is in the first
// step, future_reference when the value only appears later, and
// hallucination otherwise.
func (p *Provenance) ObsParamAccuracy(ctx context.Context, folders []string, excludeLastSteps int, queryReport *QueryReport) *ObsReport {
	report := &ObsReport{}

	checkedByFile := make(map[string]map[checkedKey][]string)
	if queryReport != nil {
		for _, fr := range queryReport.PerFileResults {
			m := make(map[checkedKey][]string)
			for _, d := range fr.PerStepDetails {
				m[checkedKey{d.Step, d.CoaIndex, d.ToolName}] = d.CheckedParams
			}
			checkedByFile[fr.File] = m
		}
	}

	forEachTranscript(folders, p.log, func(file string, doc *transcript.Document) {
		fr := ObsFileResult{File: file, ErrorDetails: []ObsError{}}
		checked := checkedByFile[file]
		calls := doc.Calls(excludeLastSteps)

		for _, call := range calls {
			history := observationValues(calls, func(c transcript.CallRecord) bool {
				return c.StepIndex < call.StepIndex
			})
			future := observationValues(calls, func(c transcript.CallRecord) bool {
				return c.StepIndex > call.StepIndex
			})
			queryChecked := map[string]bool{}
			for _, name := range checked[checkedKey{call.Step, call.CoaIndex, call.ToolName}] {
				queryChecked[name] = true
			}

			for _, name := range sortedArgKeys(call.Args) {
				value := scalarString(call.Args[name])
				if value == "" || isConstantValue(value) || queryChecked[name] {
					continue
				}
				fr.TotalObsParams++

				if p.matchesHistory(ctx, value, history) {
					fr.CorrectObsParams++
					continue
				}
				errorType := "hallucination"
				switch {
				case call.StepIndex == 0:
					errorType = "no_history"
				case p.valueInSet(value, future):
					errorType = "future_reference"
				}
				fr.ErrorDetails = append(fr.ErrorDetails, ObsError{
					ParamName:  name,
					ParamValue: value,
					ErrorType:  errorType,
					ToolName:   call.ToolName,
					Step:       call.Step,
				})
			}
		}

		fr.IncorrectObsParams = fr.TotalObsParams - fr.CorrectObsParams
		fr.AccParamObs = ratio(fr.CorrectObsParams, fr.TotalObsParams)
		report.PerFileResults = append(report.PerFileResults, fr)
	})

	for _, fr := range report.PerFileResults {
		report.Overall.TotalObsParams += fr.TotalObsParams
		report.Overall.CorrectObsParams += fr.CorrectObsParams
		for _, detail := range fr.ErrorDetails {
			switch detail.ErrorType {
			case "hallucination":
				report.Overall.ErrorBreakdown.Hallucination++
			case "future_reference":
				report.Overall.ErrorBreakdown.FutureReference++
			case "no_history":
				report.Overall.ErrorBreakdown.NoHistory++
			}
		}
	}
	report.Overall.IncorrectObsParams = report.Overall.TotalObsParams - report.Overall.CorrectObsParams
	report.Overall.AccParamObs = ratio(report.Overall.CorrectObsParams, report.Overall.TotalObsParams)
	return report
}

type checkedKey struct {
	step     string
	coaIndex int
	toolName string
}

func (p *Provenance) entitiesFor(file string) []string {
	if len(p.cfg.Entities) == 0 {
		return nil
	}
	// Entities are configured per data folder, keyed by its base name.
	parts := strings.Split(file, "/")
	if len(parts) < 2 {
		return nil
	}
	return p.cfg.Entities[parts[len(parts)-2]]
}

func (p *Provenance) matchesEntity(ctx context.Context, value string, entities []string, entitySet map[string]bool) bool {
	if entitySet[value] {
		return true
	}
	for _, e := range entities {
		if strings.Contains(e, value) || strings.Contains(value, e) {
			return true
		}
	}
	return p.askJudge(ctx, value, strings.Join(entities, "\n"))
}

func (p *Provenance) matchesHistory(ctx context.Context, value string, history map[string]bool) bool {
	if p.valueInSet(value, history) {
		return true
	}
	if p.judge == nil {
		return false
	}
	evidence := make([]string, 0, len(history))
	for v := range history {
		evidence = append(evidence, v)
	}
	sort.Strings(evidence)
	return p.askJudge(ctx, value, strings.Join(evidence, "\n"))
}

// valueInSet matches exactly, then by containment when both sides meet the
// configured minimum length.
func (p *Provenance) valueInSet(value string, set map[string]bool) bool {
	if set[value] {
		return true
	}
	minLen := p.cfg.SubstringMinLen
	if minLen <= 0 || len(value) < minLen {
		return false
	}
	for candidate := range set {
		if len(candidate) < minLen {
			continue
		}
		if strings.Contains(candidate, value) || strings.Contains(value, candidate) {
			return true
		}
	}
	return false
}

func (p *Provenance) askJudge(ctx context.Context, value, evidence string) bool {
	if p.judge == nil {
		return false
	}
	key := value + "\x00" + evidence
	if p.cache != nil {
		if verdict, ok := p.cache.Get(ctx, key); ok {
			return verdict
		}
	}
	verdict, err := p.judge.Judge(ctx, value, evidence)
	if err != nil {
		p.log.Warn().Err(err).Str("value", value).Msg("judge call failed")
		return false
	}
	if p.cache != nil {
		p.cache.Set(ctx, key, verdict)
	}
	return verdict
}

// observationValues collects every scalar inside the observations of calls
// matched by keep, stringified for comparison.
func observationValues(calls []transcript.CallRecord, keep func(transcript.CallRecord) bool) map[string]bool {
	values := make(map[string]bool)
	for _, call := range calls {
		if keep(call) {
			collectScalars(call.Observation, values)
		}
	}
	return values
}

func collectScalars(v any, out map[string]bool) {
	switch val := v.(type) {
	case nil:
	case map[string]any:
		for _, inner := range val {
			collectScalars(inner, out)
		}
	case []any:
		for _, inner := range val {
			collectScalars(inner, out)
		}
	default:
		s := scalarString(val)
		if s != "" && strings.ToLower(s) != "null" && strings.ToLower(s) != "none" {
			out[s] = true
		}
	}
}

// scalarString renders a scalar for set membership tests; integral floats
// print without a decimal point so JSON re-decodes compare equal.
func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case bool:
		return strconv.FormatBool(val)
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", val))
	}
}

func isConstantValue(value string) bool {
	lower := strings.ToLower(strings.TrimSpace(value))
	if constantWhitelist[lower] {
		return true
	}
	if _, err := strconv.ParseFloat(lower, 64); err == nil {
		return true
	}
	return false
}
