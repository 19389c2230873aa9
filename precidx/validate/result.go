package validate

// FileResult is the per-transcript accounting of schema validity. Field names
// follow the report format consumed by the CSV aggregator.
type FileResult struct {
	File                  string    `json:"file"`
	AccSchema             float64   `json:"Acc_schema"`
	TotalCalls            int       `json:"total_calls"`
	ValidCalls            int       `json:"valid_calls"`
	InvalidCalls          int       `json:"invalid_calls"`
	ActionValidCalls      int       `json:"action_valid_calls"`
	ObservationValidCalls int       `json:"observation_valid_calls"`
	CallsDetails          []Verdict `json:"calls_details"`
}

// Overall aggregates validity across the whole batch.
type Overall struct {
	AccSchema             float64 `json:"Acc_schema"`
	TotalCalls            int     `json:"total_calls"`
	ValidCalls            int     `json:"valid_calls"`
	InvalidCalls          int     `json:"invalid_calls"`
	ActionValidCalls      int     `json:"action_valid_calls"`
	ObservationValidCalls int     `json:"observation_valid_calls"`
}

// Report is the full validation result for a batch of data folders.
type Report struct {
	PerFileResults []FileResult `json:"per_file_results"`
	Overall        Overall      `json:"overall"`
}

func (r *Report) finalize() {
	for _, fr := range r.PerFileResults {
		r.Overall.TotalCalls += fr.TotalCalls
		r.Overall.ValidCalls += fr.ValidCalls
		r.Overall.ActionValidCalls += fr.ActionValidCalls
		r.Overall.ObservationValidCalls += fr.ObservationValidCalls
	}
	r.Overall.InvalidCalls = r.Overall.TotalCalls - r.Overall.ValidCalls
	if r.Overall.TotalCalls > 0 {
		r.Overall.AccSchema = float64(r.Overall.ValidCalls) / float64(r.Overall.TotalCalls)
	}
}
