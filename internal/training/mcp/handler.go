package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/strengthlab/liftstats/internal/training"
	"github.com/strengthlab/liftstats/internal/training/sets"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Handler handles MCP tool requests and responses: parses input, calls the service, formats MCP result.
type Handler struct {
	service contextService
}

// NewHandler builds a handler with the given service.
func NewHandler(service contextService) *Handler {
	return &Handler{
		service: service,
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error()), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}, nil, nil
}

// GetLiftstatsContextTool returns the MCP tool handler for get_liftstats_context.
func (h *Handler) GetLiftstatsContextTool() func(context.Context, *mcp.CallToolRequest, any) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ any) (*mcp.CallToolResult, any, error) {
		text, err := h.service.GetSchema(ctx)
		if err != nil {
			return errorResult("Error fetching schema: " + err.Error()), nil, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, nil, nil
	}
}

// SetsTimeRangeInput is the input for get_sets_for_time_range.
type SetsTimeRangeInput struct {
	FromDate string `json:"from_date" jsonschema:"Start date (YYYY-MM-DD)"`
	ToDate   string `json:"to_date" jsonschema:"End date (YYYY-MM-DD)"`
	Lift     string `json:"lift,omitempty" jsonschema:"Filter by lift (squat, bench, deadlift, ohp, other)"`
}

// GetSetsForTimeRangeTool returns the MCP tool handler for get_sets_for_time_range.
func (h *Handler) GetSetsForTimeRangeTool() func(context.Context, *mcp.CallToolRequest, SetsTimeRangeInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in SetsTimeRangeInput) (*mcp.CallToolResult, any, error) {
		from, err := time.Parse("2006-01-02", in.FromDate)
		if err != nil {
			return errorResult("Invalid from_date: use YYYY-MM-DD"), nil, nil
		}
		to, err := time.Parse("2006-01-02", in.ToDate)
		if err != nil {
			return errorResult("Invalid to_date: use YYYY-MM-DD"), nil, nil
		}
		to = time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 999999999, to.Location())

		var lift training.Lift
		if in.Lift != "" {
			lift, err = training.ParseLift(in.Lift)
			if err != nil {
				return errorResult("Invalid lift: use squat, bench, deadlift, ohp or other"), nil, nil
			}
		}

		list, err := h.service.ListSets(ctx, sets.SetParams{
			Lift: lift,
			From: &from,
			To:   &to,
		})
		if err != nil {
			return errorResult("Error listing sets: " + err.Error()), nil, nil
		}
		return jsonResult(list)
	}
}

// DetectPRsInput is the input for detect_prs.
type DetectPRsInput struct {
	Lift string `json:"lift,omitempty" jsonschema:"Filter by lift (squat, bench, deadlift, ohp)"`
}

// DetectPRsTool returns the MCP tool handler for detect_prs.
func (h *Handler) DetectPRsTool() func(context.Context, *mcp.CallToolRequest, DetectPRsInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in DetectPRsInput) (*mcp.CallToolResult, any, error) {
		var lift training.Lift
		if in.Lift != "" {
			var err error
			lift, err = training.ParseLift(in.Lift)
			if err != nil {
				return errorResult("Invalid lift: use squat, bench, deadlift, ohp or other"), nil, nil
			}
		}

		report, err := h.service.DetectPRs(ctx, lift)
		if err != nil {
			return errorResult("Error detecting PRs: " + err.Error()), nil, nil
		}
		return jsonResult(report)
	}
}

// GetSymmetryTool returns the MCP tool handler for get_symmetry.
func (h *Handler) GetSymmetryTool() func(context.Context, *mcp.CallToolRequest, any) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ any) (*mcp.CallToolResult, any, error) {
		report, err := h.service.GetSymmetry(ctx)
		if err != nil {
			return errorResult("Error getting symmetry report: " + err.Error()), nil, nil
		}
		return jsonResult(report)
	}
}

// NextWorkoutInput is the input for get_next_workout.
type NextWorkoutInput struct {
	ProgramID  int  `json:"program_id" jsonschema:"ID of the training program"`
	WithPlates bool `json:"with_plates,omitempty" jsonschema:"Include plate loading for every set"`
}

// GetNextWorkoutTool returns the MCP tool handler for get_next_workout.
func (h *Handler) GetNextWorkoutTool() func(context.Context, *mcp.CallToolRequest, NextWorkoutInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in NextWorkoutInput) (*mcp.CallToolResult, any, error) {
		if in.ProgramID < 1 {
			return errorResult("Invalid program_id"), nil, nil
		}
		nextWorkout, err := h.service.GetNextWorkout(ctx, in.ProgramID, in.WithPlates)
		if err != nil {
			return errorResult("Error generating next workout: " + err.Error()), nil, nil
		}
		return jsonResult(nextWorkout)
	}
}

// SolvePlatesInput is the input for solve_plates.
type SolvePlatesInput struct {
	TargetWeight float64 `json:"target_weight" jsonschema:"Target barbell weight including the bar"`
}

// SolvePlatesTool returns the MCP tool handler for solve_plates.
func (h *Handler) SolvePlatesTool() func(context.Context, *mcp.CallToolRequest, SolvePlatesInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in SolvePlatesInput) (*mcp.CallToolResult, any, error) {
		if in.TargetWeight <= 0 {
			return errorResult("Invalid target_weight"), nil, nil
		}
		return jsonResult(h.service.SolvePlates(in.TargetWeight))
	}
}
