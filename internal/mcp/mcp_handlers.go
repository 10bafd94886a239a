package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/sedwarp/core"
	"github.com/huangsam/sedwarp/core/algo"
	"github.com/huangsam/sedwarp/core/warp"
	"github.com/huangsam/sedwarp/internal/contract"
	"github.com/huangsam/sedwarp/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
}

// minDistanceResult is the payload of find_min_distance.
type minDistanceResult struct {
	DataFile     string                 `json:"data_file"`
	Reference    string                 `json:"reference"`
	BestDistance float64                `json:"best_distance"`
	BestTimes    []float64              `json:"best_times"`
	TargetTime   float64                `json:"target_time"`
	Evaluated    int                    `json:"candidates_evaluated"`
	Table        []schema.DistanceEntry `json:"table"`
}

// applyInputs copies file and column arguments onto cfg.
func applyInputs(cfg *contract.Config, request mcp.CallToolRequest) {
	cfg.DataFile = request.GetString("data_file", "")
	if r := request.GetString("reference", ""); r != "" {
		cfg.Reference = r
		cfg.ReferenceName = contract.BaseName(r)
	}
	if c := request.GetString("reference_axis", ""); c != "" {
		cfg.ReferenceAxis = c
	}
	if c := request.GetString("reference_value", ""); c != "" {
		cfg.ReferenceValue = c
	}
	if c := request.GetString("data_axis", ""); c != "" {
		cfg.DataAxis = c
	}
	if c := request.GetString("data_value", ""); c != "" {
		cfg.DataValue = c
	}
}

// applyOptions copies conditioning and search arguments onto cfg.
func applyOptions(cfg *contract.Config, request mcp.CallToolRequest) {
	cfg.Options.Normalize = request.GetBool("normalize", cfg.Options.Normalize)
	cfg.Options.SmoothData = request.GetBool("smooth_data", cfg.Options.SmoothData)
	cfg.Options.SmoothTarget = request.GetBool("smooth_target", cfg.Options.SmoothTarget)
	cfg.Options.WindowSize = request.GetInt("window_size", cfg.Options.WindowSize)
	cfg.Options.Polynomial = request.GetInt("polynomial", cfg.Options.Polynomial)

	cfg.Search.Start = request.GetFloat("start", cfg.Search.Start)
	cfg.Search.End = request.GetFloat("end", cfg.Search.End)
	cfg.Search.Step = request.GetFloat("step", cfg.Search.Step)
	cfg.Search.Workers = request.GetInt("workers", cfg.Search.Workers)
}

// toolError reports a failed computation with its error kind.
func toolError(action string, err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("%s failed (%s): %v", action, warp.KindName(err), err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleSimpleDistance(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	applyInputs(cfg, request)
	applyOptions(cfg, request)
	if cfg.DataFile == "" {
		return mcp.NewToolResultError("data_file is required"), nil
	}

	report, err := core.SimpleDistance(cfg)
	if err != nil {
		return toolError("distance", err), nil
	}
	return jsonResult(report)
}

func (h *toolHandler) handleFindMinDistance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	applyInputs(cfg, request)
	applyOptions(cfg, request)
	if cfg.DataFile == "" {
		return mcp.NewToolResultError("data_file is required"), nil
	}

	result, err := core.AlignFile(ctx, cfg)
	if err != nil {
		return toolError("search", err), nil
	}

	table := result.Candidates
	if l := request.GetInt("limit", 0); l > 0 {
		table = algo.RankCandidates(table, l)
	}

	return jsonResult(minDistanceResult{
		DataFile:     result.DataFile,
		Reference:    result.Reference,
		BestDistance: result.BestDistance,
		BestTimes:    result.BestTimes,
		TargetTime:   result.TargetTime,
		Evaluated:    len(result.Candidates),
		Table:        table,
	})
}

func (h *toolHandler) handleProjectPath(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	applyInputs(cfg, request)
	cfg.PathFile = request.GetString("path_file", "")
	if cfg.DataFile == "" || cfg.PathFile == "" {
		return mcp.NewToolResultError("data_file and path_file are required"), nil
	}

	series, err := core.ProjectPath(cfg)
	if err != nil {
		return toolError("projection", err), nil
	}
	return jsonResult(series)
}
