package cli

import (
	"github.com/spf13/cobra"

	"github.com/precidx/precidx/precidx/adapters"
	"github.com/precidx/precidx/precidx/metrics"
	"github.com/precidx/precidx/precidx/store"
	"github.com/precidx/precidx/precidx/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate transcript tool calls against the catalog schemas",
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cat, err := buildCatalog()
	if err != nil {
		return err
	}

	runner := validate.NewRunner(validate.New(cat),
		validate.WithWorkers(cfg.Policy.Workers),
		validate.WithLogger(logger),
		validate.WithTracer(adapters.NewZerologTracer(logger)),
	)
	report, err := runner.Run(cmd.Context(), cfg.Data.Folders)
	if err != nil {
		return err
	}

	path, err := writeResult(metrics.SchemaResultFile, report)
	if err != nil {
		return err
	}
	logger.Info().
		Str("path", path).
		Int("total_calls", report.Overall.TotalCalls).
		Float64("acc_schema", report.Overall.AccSchema).
		Msg("schema validation written")

	if cfg.Store.Enabled {
		st, err := store.Open(cfg.Store.Path, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		runID, err := st.SaveRun(cmd.Context(), "validate", cfg.Data.Folders, report)
		if err != nil {
			return err
		}
		if err := st.SaveVerdicts(cmd.Context(), runID, report); err != nil {
			return err
		}
		logger.Info().Str("run_id", runID).Msg("run recorded in store")
	}
	return nil
}
