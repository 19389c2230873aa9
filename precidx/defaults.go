// Package precidx holds application-wide constants shared by the config
// layer and the CLI.
package precidx

const (
	DefaultAppName = "precidx"

	// DefaultSpecPath is where the tool catalog text is looked up when the
	// config does not name one.
	DefaultSpecPath = "tool_spec.txt"

	// DefaultOutputDir receives metric result files and the summary CSV.
	DefaultOutputDir = "results"

	// DefaultStorePath is the embedded database recording past runs.
	DefaultStorePath = "results/precidx.db"

	// DefaultWorkers bounds concurrent transcript validation.
	DefaultWorkers = 4

	// DefaultSubstringMinLen is the minimum length for substring provenance
	// matches.
	DefaultSubstringMinLen = 3
)
