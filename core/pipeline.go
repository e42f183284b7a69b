package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/maintinsight/maintinsight/internal/contract"
	"github.com/maintinsight/maintinsight/internal/ingest"
	"github.com/maintinsight/maintinsight/schema"
)

// maxLoggedDateWarnings caps the per-record date warnings written to stderr.
const maxLoggedDateWarnings = 5

// RequiredColumns returns the base record columns followed by the classifier features,
// without duplicates.
func RequiredColumns(clf contract.Classifier) []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, c := range append(append([]string{}, schema.BaseColumns...), clf.Features()...) {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		cols = append(cols, c)
	}
	return cols
}

// AnalyzeBatch runs validation, scoring and cost derivation for one batch, then
// computes the monthly trends and the fleet summary from the scored set.
func AnalyzeBatch(batch *schema.Batch, clf contract.Classifier, costs CostModel) (*schema.AnalysisResult, error) {
	scored, err := scoreAndPrice(batch, clf, costs)
	if err != nil {
		return nil, err
	}
	return buildResult(scored, false), nil
}

// scoreAndPrice is the validation, scoring and cost stage shared by cached and uncached paths.
func scoreAndPrice(batch *schema.Batch, clf contract.Classifier, costs CostModel) (*schema.ScoredBatch, error) {
	if err := ValidateSchema(batch, RequiredColumns(clf)); err != nil {
		return nil, err
	}
	records, err := ScoreBatch(batch, clf)
	if err != nil {
		return nil, err
	}
	costs.Apply(records)
	return &schema.ScoredBatch{
		Source:  batch.Source,
		Columns: batch.Columns,
		Records: records,
	}, nil
}

// buildResult derives the aggregate views from a scored batch.
func buildResult(scored *schema.ScoredBatch, cached bool) *schema.AnalysisResult {
	return &schema.AnalysisResult{
		BatchID: uuid.NewString(),
		Scored:  scored,
		Trends:  AggregateMonthly(scored.Records),
		Summary: ComputeFleetSummary(scored.Records),
		Cached:  cached,
	}
}

// GetAnalysisResults parses raw CSV bytes and runs the full pipeline with the shared model.
// Scored batches are served from the result store when one is configured, and runs are
// recorded in the analysis store when tracking is enabled. Store failures only warn.
func GetAnalysisResults(ctx context.Context, cfg *contract.Config, provider contract.ModelProvider, mgr contract.CacheManager, data []byte, source string) (*schema.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mdl, err := provider.Model()
	if err != nil {
		return nil, err
	}

	batch, err := ingest.ParseBatch(data, source)
	if err != nil {
		return nil, err
	}

	costs := NewCostModel(cfg.HighRiskCost, cfg.LowRiskCost)
	startTime := time.Now()

	var resultStore contract.CacheStore
	if mgr != nil && !shouldSkipCache(ctx) {
		resultStore = mgr.GetResultStore()
	}

	var result *schema.AnalysisResult
	key := generateCacheKey(data, mdl.Fingerprint(), costs)
	if resultStore != nil {
		if hit := checkCacheHit(resultStore, key); hit != nil {
			result = buildResult(hit, true)
		}
	}
	if result == nil {
		scored, err := scoreAndPrice(batch, mdl, costs)
		if err != nil {
			return nil, err
		}
		if resultStore != nil {
			storeResult(resultStore, key, scored)
		}
		result = buildResult(scored, false)
	}

	logDateWarnings(result.Trends)

	if mgr != nil {
		trackAnalysis(mgr.GetAnalysisStore(), cfg, result, startTime)
	}
	return result, nil
}

// trackAnalysis records the run, its scored records and its monthly buckets.
func trackAnalysis(store contract.AnalysisStore, cfg *contract.Config, result *schema.AnalysisResult, startTime time.Time) {
	if store == nil {
		return
	}
	params := cfg.CostParams()
	params["cached"] = result.Cached

	analysisID, err := store.BeginAnalysis(result.BatchID, result.Scored.Source, startTime, params)
	if err != nil {
		contract.LogWarn("Analysis tracking initialization failed", err)
		return
	}
	if err := store.RecordScoredRecords(analysisID, result.Scored.Records); err != nil {
		contract.LogWarn(fmt.Sprintf("Analysis tracking failed for scored records of batch %s", result.BatchID), err)
	}
	if err := store.RecordMonthlyBuckets(analysisID, result.Trends.Buckets); err != nil {
		contract.LogWarn(fmt.Sprintf("Analysis tracking failed for monthly buckets of batch %s", result.BatchID), err)
	}
	summary := schema.RunSummary{
		TotalRecords:  result.Summary.TotalRecords,
		TotalUnits:    result.Summary.TotalUnits,
		HighRiskUnits: result.Summary.HighRiskUnits,
		TotalCost:     result.Summary.TotalCost,
	}
	if err := store.EndAnalysis(analysisID, time.Now(), summary); err != nil {
		contract.LogWarn("Failed to finalize analysis tracking", err)
	}
}

// logDateWarnings reports records left out of the monthly trends.
func logDateWarnings(trends schema.MonthlyTrends) {
	warnings := DateWarnings(trends)
	for i, w := range warnings {
		if i == maxLoggedDateWarnings {
			contract.LogWarn(fmt.Sprintf("%d more records skipped from monthly trends", len(warnings)-i), errors.New("unparseable record_date"))
			return
		}
		contract.LogWarn("Skipping record from monthly trends", w)
	}
}
