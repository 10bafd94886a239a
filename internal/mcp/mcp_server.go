// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/sedwarp/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the sedwarp MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config) *server.MCPServer {
	s := server.NewMCPServer(
		"Sedwarp Alignment Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{baseCfg: baseCfg}

	// --- 1. Tool: simple_distance ---
	s.AddTool(mcp.NewTool("simple_distance",
		append([]mcp.ToolOption{
			mcp.WithDescription("Compute the DTW distance between a whole data record and the reference stack."),
			mcp.WithString("data_file", mcp.Description("Path to the depth-indexed data record."), mcp.Required()),
			mcp.WithNumber("end", mcp.Description("Drop reference rows with time above this value.")),
		}, sequenceOptions()...)...,
	), h.handleSimpleDistance)

	// --- 2. Tool: find_min_distance ---
	s.AddTool(mcp.NewTool("find_min_distance",
		append([]mcp.ToolOption{
			mcp.WithDescription("Sweep candidate truncation times of the reference and return the best distance, the tied best times and the distance table."),
			mcp.WithString("data_file", mcp.Description("Path to the depth-indexed data record."), mcp.Required()),
			mcp.WithNumber("start", mcp.Description("First candidate time (inclusive).")),
			mcp.WithNumber("end", mcp.Description("Candidate times stay strictly below this value.")),
			mcp.WithNumber("step", mcp.Description("Spacing between candidate times.")),
			mcp.WithNumber("workers", mcp.Description("Number of concurrent workers for the sweep.")),
			mcp.WithNumber("limit", mcp.Description("Return only the closest N table entries.")),
		}, sequenceOptions()...)...,
	), h.handleFindMinDistance)

	// --- 3. Tool: project_path ---
	s.AddTool(mcp.NewTool("project_path",
		mcp.WithDescription("Map a saved warping path onto reference time using the raw data values."),
		mcp.WithString("data_file", mcp.Description("Path to the depth-indexed data record."), mcp.Required()),
		mcp.WithString("path_file", mcp.Description("Path to a warping path dump."), mcp.Required()),
		mcp.WithString("reference", mcp.Description("Path to the reference stack.")),
		mcp.WithString("reference_axis", mcp.Description("Reference time column.")),
		mcp.WithString("reference_value", mcp.Description("Reference value column.")),
		mcp.WithString("data_axis", mcp.Description("Data depth column.")),
		mcp.WithString("data_value", mcp.Description("Data value column.")),
	), h.handleProjectPath)

	return s
}

// sequenceOptions are the input and conditioning arguments shared by the distance tools.
func sequenceOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("reference", mcp.Description("Path to the reference stack.")),
		mcp.WithString("reference_axis", mcp.Description("Reference time column.")),
		mcp.WithString("reference_value", mcp.Description("Reference value column.")),
		mcp.WithString("data_axis", mcp.Description("Data depth column.")),
		mcp.WithString("data_value", mcp.Description("Data value column.")),
		mcp.WithBoolean("normalize", mcp.Description("Z-score both sequences before aligning.")),
		mcp.WithBoolean("smooth_data", mcp.Description("Apply Savitzky-Golay smoothing to the data record.")),
		mcp.WithBoolean("smooth_target", mcp.Description("Apply Savitzky-Golay smoothing to the reference.")),
		mcp.WithNumber("window_size", mcp.Description("Smoothing window length (odd).")),
		mcp.WithNumber("polynomial", mcp.Description("Smoothing polynomial order.")),
	}
}

// StartMCPServer starts the sedwarp MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config) error {
	s := NewMCPServer(baseCfg)
	return server.ServeStdio(s)
}
