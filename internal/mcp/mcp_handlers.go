package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/maintinsight/maintinsight/core"
	"github.com/maintinsight/maintinsight/internal/contract"
	"github.com/maintinsight/maintinsight/internal/ingest"
	"github.com/maintinsight/maintinsight/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg  *contract.Config
	provider contract.ModelProvider
	mgr      contract.CacheManager
}

// trendsResponse is the get_monthly_trends payload.
type trendsResponse struct {
	ComplianceThreshold float64               `json:"compliance_threshold"`
	FailureProbability  []schema.MonthlyValue `json:"failure_probability"`
	EstimatedCost       []schema.MonthlyValue `json:"estimated_cost"`
	Compliance          []schema.MonthlyValue `json:"compliance"`
	BelowTarget         []string              `json:"below_target_months"`
	Skipped             []schema.SkippedDate  `json:"skipped_dates,omitempty"`
}

func (h *toolHandler) handleAnalyze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, result, errResult := h.analyze(ctx, request)
	if errResult != nil {
		return errResult, nil
	}
	report := schema.NewAnalysisReport(result, cfg.ComplianceThreshold, request.GetBool("include_records", false))
	return jsonResult(report)
}

func (h *toolHandler) handleMonthlyTrends(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, result, errResult := h.analyze(ctx, request)
	if errResult != nil {
		return errResult, nil
	}

	resp := trendsResponse{
		ComplianceThreshold: cfg.ComplianceThreshold,
		FailureProbability:  result.Trends.FailureProbability(),
		EstimatedCost:       result.Trends.EstimatedCost(),
		Compliance:          result.Trends.Compliance(),
		BelowTarget:         []string{},
		Skipped:             result.Trends.Skipped,
	}
	for _, b := range result.Trends.Buckets {
		if b.AvgWeeklyScore < cfg.ComplianceThreshold {
			resp.BelowTarget = append(resp.BelowTarget, b.YearMonth)
		}
	}
	return jsonResult(resp)
}

func (h *toolHandler) handleFleetSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, result, errResult := h.analyze(ctx, request)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(result.Summary)
}

func (h *toolHandler) handleDescribeModel(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mdl, err := h.provider.Model()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("model unavailable: %v", err)), nil
	}
	return jsonResult(mdl.Info())
}

// analyze applies the request overrides to a copy of the base config and runs the pipeline.
// Failures are returned as tool error results, never as protocol errors.
func (h *toolHandler) analyze(ctx context.Context, request mcp.CallToolRequest) (*contract.Config, *schema.AnalysisResult, *mcp.CallToolResult) {
	cfg := h.baseCfg.Clone()
	if err := applyOverrides(cfg, request); err != nil {
		return nil, nil, mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err))
	}

	data, source, err := readInput(request)
	if err != nil {
		return nil, nil, mcp.NewToolResultError(fmt.Sprintf("invalid input: %v", err))
	}

	result, err := core.GetAnalysisResults(core.WithSuppressHeader(ctx), cfg, h.provider, h.mgr, data, source)
	if err != nil {
		return nil, nil, mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err))
	}
	return cfg, result, nil
}

// applyOverrides copies numeric tool arguments onto cfg.
func applyOverrides(cfg *contract.Config, request mcp.CallToolRequest) error {
	args := request.GetArguments()
	costs := []struct {
		key string
		dst *float64
	}{
		{"high_risk_cost", &cfg.HighRiskCost},
		{"low_risk_cost", &cfg.LowRiskCost},
	}
	for _, c := range costs {
		if _, ok := args[c.key]; !ok {
			continue
		}
		v := request.GetFloat(c.key, *c.dst)
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%s must be a finite, non-negative number (received %v)", c.key, v)
		}
		*c.dst = v
	}
	if _, ok := args["compliance_threshold"]; ok {
		cfg.ComplianceThreshold = request.GetFloat("compliance_threshold", cfg.ComplianceThreshold)
	}
	return nil
}

// readInput returns the CSV bytes from csv_content or csv_path.
func readInput(request mcp.CallToolRequest) ([]byte, string, error) {
	if content := request.GetString("csv_content", ""); content != "" {
		return []byte(content), "csv_content", nil
	}
	path := request.GetString("csv_path", "")
	if path == "" {
		return nil, "", errors.New("one of csv_content or csv_path is required")
	}
	if path == ingest.StdinPath {
		return nil, "", errors.New("stdin is reserved for the MCP transport")
	}
	data, err := ingest.ReadSource(path)
	if err != nil {
		return nil, "", err
	}
	return data, path, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
