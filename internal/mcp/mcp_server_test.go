package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/maintinsight/maintinsight/internal/contract"
	mcp_internal "github.com/maintinsight/maintinsight/internal/mcp"
	"github.com/maintinsight/maintinsight/internal/model"
	"github.com/maintinsight/maintinsight/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModelYAML = `
name: mcp-test
kind: forest
features: [weekly_score, monthly_score]
classes: [0, 1]
trees:
  - nodes:
      - {feature: 0, threshold: 37, left: 1, right: 2}
      - {leaf: true, value: [1, 9]}
      - {leaf: true, value: [8, 2]}
`

const fleetCSV = `unit_id,record_date,weekly_score,monthly_score
M-001,2024-01-08,28,110
M-002,2024-01-09,62,240
M-001,2024-02-05,33,105
M-003,bad-date,70,260
`

func newTestServer(t *testing.T) *server.MCPServer {
	t.Helper()
	m, err := model.Parse([]byte(testModelYAML), "mcp-test.yaml")
	require.NoError(t, err)

	baseCfg := &contract.Config{
		HighRiskCost:        contract.DefaultHighRiskCost,
		LowRiskCost:         contract.DefaultLowRiskCost,
		ComplianceThreshold: contract.DefaultComplianceThreshold,
		Output:              schema.JSONOut,
	}

	// No cache manager: every call scores from scratch
	var mgr contract.CacheManager
	return mcp_internal.NewMCPServer(baseCfg, model.NewStaticHandle(m), mgr)
}

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	return res
}

func resultText(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	s := newTestServer(t)

	t.Run("analyze without input", func(t *testing.T) {
		res := callTool(t, s, "analyze_maintenance_csv", map[string]any{})
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, resultText(res), "one of csv_content or csv_path is required")
	})

	t.Run("negative cost", func(t *testing.T) {
		res := callTool(t, s, "get_fleet_summary", map[string]any{
			"csv_content":    fleetCSV,
			"high_risk_cost": -10.0,
		})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "high_risk_cost must be a finite, non-negative number")
	})

	t.Run("stdin path", func(t *testing.T) {
		res := callTool(t, s, "get_monthly_trends", map[string]any{"csv_path": "-"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "stdin is reserved")
	})

	t.Run("missing file", func(t *testing.T) {
		res := callTool(t, s, "get_fleet_summary", map[string]any{
			"csv_path": filepath.Join(t.TempDir(), "missing.csv"),
		})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "invalid input")
	})

	t.Run("missing feature column", func(t *testing.T) {
		res := callTool(t, s, "analyze_maintenance_csv", map[string]any{
			"csv_content": "unit_id,record_date,weekly_score\nA,2024-01-01,20\n",
		})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "monthly_score")
	})

	t.Run("every missing column listed", func(t *testing.T) {
		res := callTool(t, s, "analyze_maintenance_csv", map[string]any{
			"csv_content": "unit_id,record_date\nA,2024-01-01\n",
		})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "weekly_score")
		assert.Contains(t, resultText(res), "monthly_score")
	})
}

func TestMCPServerHandlers_Analyze(t *testing.T) {
	s := newTestServer(t)

	t.Run("summary and trends only", func(t *testing.T) {
		res := callTool(t, s, "analyze_maintenance_csv", map[string]any{"csv_content": fleetCSV})
		require.False(t, res.IsError, resultText(res))

		var report schema.AnalysisReport
		require.NoError(t, json.Unmarshal([]byte(resultText(res)), &report))
		assert.Equal(t, 4, report.Summary.TotalRecords)
		assert.Equal(t, 3, report.Summary.TotalUnits)
		assert.Equal(t, 1, report.Summary.HighRiskUnits)
		assert.Len(t, report.Trends, 2)
		assert.Len(t, report.Skipped, 1)
		assert.Empty(t, report.Records)
		assert.Equal(t, "csv_content", report.Source)
	})

	t.Run("with records from a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fleet.csv")
		require.NoError(t, os.WriteFile(path, []byte(fleetCSV), 0o644))

		res := callTool(t, s, "analyze_maintenance_csv", map[string]any{
			"csv_path":        path,
			"include_records": true,
		})
		require.False(t, res.IsError, resultText(res))

		var report schema.AnalysisReport
		require.NoError(t, json.Unmarshal([]byte(resultText(res)), &report))
		assert.Equal(t, path, report.Source)
		require.Len(t, report.Records, 4)
		assert.Equal(t, schema.HighRiskLabel, report.Records[0].RiskLevel)
	})

	t.Run("cost overrides", func(t *testing.T) {
		res := callTool(t, s, "get_fleet_summary", map[string]any{
			"csv_content":    fleetCSV,
			"high_risk_cost": 1000.0,
			"low_risk_cost":  0.0,
		})
		require.False(t, res.IsError, resultText(res))

		var summary schema.FleetSummary
		require.NoError(t, json.Unmarshal([]byte(resultText(res)), &summary))
		// Two high risk records at 1000, two low risk records at 0
		assert.InDelta(t, 2000.0, summary.TotalCost, 1e-9)
	})
}

func TestMCPServerHandlers_MonthlyTrends(t *testing.T) {
	s := newTestServer(t)

	res := callTool(t, s, "get_monthly_trends", map[string]any{
		"csv_content":          fleetCSV,
		"compliance_threshold": 40.0,
	})
	require.False(t, res.IsError, resultText(res))

	var payload struct {
		ComplianceThreshold float64               `json:"compliance_threshold"`
		FailureProbability  []schema.MonthlyValue `json:"failure_probability"`
		EstimatedCost       []schema.MonthlyValue `json:"estimated_cost"`
		Compliance          []schema.MonthlyValue `json:"compliance"`
		BelowTarget         []string              `json:"below_target_months"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &payload))

	assert.InDelta(t, 40.0, payload.ComplianceThreshold, 1e-9)
	require.Len(t, payload.FailureProbability, 2)
	assert.Equal(t, "2024-01", payload.FailureProbability[0].YearMonth)
	assert.InDelta(t, 55.0, payload.FailureProbability[0].Value, 1e-9)
	assert.InDelta(t, 90.0, payload.FailureProbability[1].Value, 1e-9)
	assert.InDelta(t, 1700.0, payload.EstimatedCost[0].Value, 1e-9)
	assert.InDelta(t, 45.0, payload.Compliance[0].Value, 1e-9)
	assert.Equal(t, []string{"2024-02"}, payload.BelowTarget)
}

func TestMCPServerHandlers_DescribeModel(t *testing.T) {
	s := newTestServer(t)

	res := callTool(t, s, "describe_model", map[string]any{})
	require.False(t, res.IsError, resultText(res))

	var info schema.ModelInfo
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &info))
	assert.Equal(t, "mcp-test", info.Name)
	assert.Equal(t, []string{"weekly_score", "monthly_score"}, info.Features)
	assert.Equal(t, 1, info.Trees)
	assert.NotEmpty(t, info.Fingerprint)
}
