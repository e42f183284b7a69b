// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/maintinsight/maintinsight/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is reported to MCP clients during initialization.
const Version = "1.0.0"

// csvInputOptions are shared by every tool that analyzes a batch.
func csvInputOptions(extra ...mcp.ToolOption) []mcp.ToolOption {
	opts := []mcp.ToolOption{
		mcp.WithString("csv_path", mcp.Description("Path to a maintenance CSV file readable by the server.")),
		mcp.WithString("csv_content", mcp.Description("Raw maintenance CSV content. Takes precedence over csv_path.")),
		mcp.WithNumber("high_risk_cost", mcp.Description("Repair cost attached to high risk records. Defaults to the server configuration.")),
		mcp.WithNumber("low_risk_cost", mcp.Description("Repair cost attached to low risk records. Defaults to the server configuration.")),
		mcp.WithNumber("compliance_threshold", mcp.Description("Weekly score below which a month is flagged as below target.")),
	}
	return append(opts, extra...)
}

// NewMCPServer initializes and configures the maintinsight MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, provider contract.ModelProvider, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Maintinsight Predictive Maintenance Server",
		Version,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg:  baseCfg,
		provider: provider,
		mgr:      mgr,
	}

	// --- 1. Tool: analyze_maintenance_csv ---
	s.AddTool(mcp.NewTool("analyze_maintenance_csv",
		csvInputOptions(
			mcp.WithDescription("Score a batch of maintenance records for failure risk and return the fleet summary, monthly trends and optionally every scored record."),
			mcp.WithBoolean("include_records", mcp.Description("Include every scored record in the response. Defaults to false.")),
		)...,
	), h.handleAnalyze)

	// --- 2. Tool: get_monthly_trends ---
	s.AddTool(mcp.NewTool("get_monthly_trends",
		csvInputOptions(
			mcp.WithDescription("Return the monthly failure probability, estimated repair cost and compliance tables for a batch."),
		)...,
	), h.handleMonthlyTrends)

	// --- 3. Tool: get_fleet_summary ---
	s.AddTool(mcp.NewTool("get_fleet_summary",
		csvInputOptions(
			mcp.WithDescription("Return whole-fleet statistics for a batch: units, high risk units and share, average compliance and total estimated cost."),
		)...,
	), h.handleFleetSummary)

	// --- 4. Tool: describe_model ---
	s.AddTool(mcp.NewTool("describe_model",
		mcp.WithDescription("Describe the loaded risk classifier: its kind, features, classes and fingerprint."),
	), h.handleDescribeModel)

	return s
}

// StartMCPServer starts the maintinsight MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, provider contract.ModelProvider, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, provider, mgr)
	return server.ServeStdio(s)
}
