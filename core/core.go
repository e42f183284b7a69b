// Package core has the analysis pipeline: schema validation, risk scoring,
// cost derivation, monthly aggregation and fleet metrics.
package core

import (
	"context"
	"time"

	"github.com/maintinsight/maintinsight/internal/contract"
	"github.com/maintinsight/maintinsight/internal/ingest"
	"github.com/maintinsight/maintinsight/internal/outwriter"
	"github.com/maintinsight/maintinsight/schema"
)

// ExecutorFunc defines the function signature for executing the analysis commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, provider contract.ModelProvider, mgr contract.CacheManager) error

var (
	_ ExecutorFunc = ExecuteAnalyze
	_ ExecutorFunc = ExecuteRecords
	_ ExecutorFunc = ExecuteTrends
	_ ExecutorFunc = ExecuteSummary
	_ ExecutorFunc = ExecuteModelInspect
)

// ExecuteAnalyze runs the full pipeline and prints the fleet summary and monthly trends,
// plus the scored records when requested.
// It serves as the main entry point for the 'analyze' command.
func ExecuteAnalyze(ctx context.Context, cfg *contract.Config, provider contract.ModelProvider, mgr contract.CacheManager) error {
	start := time.Now()
	result, err := runAnalysis(ctx, cfg, provider, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintAnalysis(result, cfg, time.Since(start))
}

// ExecuteRecords runs the pipeline and prints only the scored records table.
func ExecuteRecords(ctx context.Context, cfg *contract.Config, provider contract.ModelProvider, mgr contract.CacheManager) error {
	start := time.Now()
	result, err := runAnalysis(ctx, cfg, provider, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintRecords(result.Scored, cfg, time.Since(start))
}

// ExecuteTrends runs the pipeline and prints only the monthly trend tables.
func ExecuteTrends(ctx context.Context, cfg *contract.Config, provider contract.ModelProvider, mgr contract.CacheManager) error {
	start := time.Now()
	result, err := runAnalysis(ctx, cfg, provider, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintTrends(result.Trends, cfg, time.Since(start))
}

// ExecuteSummary runs the pipeline and prints only the fleet summary.
func ExecuteSummary(ctx context.Context, cfg *contract.Config, provider contract.ModelProvider, mgr contract.CacheManager) error {
	start := time.Now()
	result, err := runAnalysis(ctx, cfg, provider, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintSummary(result.Summary, cfg, time.Since(start))
}

// ExecuteModelInspect loads the model and prints its description.
func ExecuteModelInspect(_ context.Context, cfg *contract.Config, provider contract.ModelProvider, _ contract.CacheManager) error {
	mdl, err := provider.Model()
	if err != nil {
		return err
	}
	return outwriter.PrintModelInfo(mdl.Info(), cfg)
}

// runAnalysis reads the configured input and runs GetAnalysisResults on it.
func runAnalysis(ctx context.Context, cfg *contract.Config, provider contract.ModelProvider, mgr contract.CacheManager) (*schema.AnalysisResult, error) {
	data, err := ingest.ReadSource(cfg.InputPath)
	if err != nil {
		return nil, err
	}

	if showHeader(ctx, cfg) {
		mdl, err := provider.Model()
		if err != nil {
			return nil, err
		}
		outwriter.LogAnalysisHeader(cfg, mdl.Info())
	}

	return GetAnalysisResults(ctx, cfg, provider, mgr, data, sourceName(cfg.InputPath))
}

// showHeader keeps machine-readable stdout free of banner lines.
func showHeader(ctx context.Context, cfg *contract.Config) bool {
	if shouldSuppressHeader(ctx) {
		return false
	}
	return cfg.Output == schema.TextOut || cfg.Output == "" || cfg.OutputFile != ""
}

func sourceName(path string) string {
	if path == ingest.StdinPath {
		return "stdin"
	}
	return path
}
