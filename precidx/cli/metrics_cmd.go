package cli

import (
	"github.com/spf13/cobra"

	"github.com/precidx/precidx/precidx/metrics"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Compute batch quality metrics over transcript folders",
	RunE:  runMetrics,
}

func runMetrics(cmd *cobra.Command, _ []string) error {
	cat, err := buildCatalog()
	if err != nil {
		return err
	}

	exclude := cfg.Policy.ExcludeLastSteps

	toolName := metrics.ToolNameAccuracy(cfg.Data.Folders, cat, logger)
	if path, err := writeResult(metrics.ToolNameResultFile, toolName); err != nil {
		return err
	} else {
		logger.Info().Str("path", path).Float64("acc_tool", toolName.Overall.AccTool).Msg("tool name accuracy written")
	}

	duplicate := metrics.DuplicateRate(cfg.Data.Folders, exclude, logger)
	if path, err := writeResult(metrics.DuplicateResultFile, duplicate); err != nil {
		return err
	} else {
		logger.Info().Str("path", path).Float64("rate_tool_dup", duplicate.Overall.RateToolDup).Msg("duplicate rates written")
	}

	consistency := metrics.StateConsistency(cfg.Data.Folders, exclude, logger)
	if path, err := writeResult(metrics.ConsistencyResultFile, consistency); err != nil {
		return err
	} else {
		logger.Info().Str("path", path).Float64("same_tool", consistency.Overall.SameToolConsistency).Msg("state consistency written")
	}

	entities, err := cfg.Provenance.LoadEntities()
	if err != nil {
		return err
	}
	prov := metrics.NewProvenance(metrics.ProvenanceConfig{
		SubstringMinLen: cfg.Provenance.SubstringMinLen,
		QueryParams:     cfg.Provenance.QueryParams,
		Entities:        entities,
	}, metrics.WithProvenanceLogger(logger))

	queryReport := prov.QueryParamAccuracy(cmd.Context(), cfg.Data.Folders, exclude)
	if path, err := writeResult(metrics.QueryParamResultFile, queryReport); err != nil {
		return err
	} else {
		logger.Info().Str("path", path).Float64("acc_param_query", queryReport.Overall.AccParamQuery).Msg("query provenance written")
	}

	obsReport := prov.ObsParamAccuracy(cmd.Context(), cfg.Data.Folders, exclude, queryReport)
	if path, err := writeResult(metrics.ObsParamResultFile, obsReport); err != nil {
		return err
	} else {
		logger.Info().Str("path", path).Float64("acc_param_obs", obsReport.Overall.AccParamObs).Msg("observation provenance written")
	}

	return nil
}
