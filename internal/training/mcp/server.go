package mcp

import (
	"github.com/strengthlab/liftstats/internal/training/history"
	"github.com/strengthlab/liftstats/internal/training/program"
	"github.com/strengthlab/liftstats/internal/training/sets"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds an MCP server with liftstats tools: schema, logged sets,
// PR detection, symmetry report, next workout, plate solving.
// Used by the main backend when mounting MCP at /mcp (internal/server).
func NewServer(pool *pgxpool.Pool, setsRepo *sets.Repo, programs *program.Service) *mcp.Server {
	analyzer := history.NewAnalyzer(setsRepo)
	svc := NewContextService(NewPoolSchemaRepo(pool), setsRepo, analyzer, programs)
	h := NewHandler(svc)
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "liftstats-context",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_liftstats_context",
		Description: "Returns the DB schema for liftstats-related tables (logged_set, program): table names, columns, types, nullable, default. Use when developing the liftstats app and you need the actual backend schema.",
	}, h.GetLiftstatsContextTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_sets_for_time_range",
		Description: "Returns logged sets done within the given date range. Args: from_date, to_date (YYYY-MM-DD); optional: lift (squat, bench, deadlift, ohp, other). Use when you need to see what was logged in a period.",
	}, h.GetSetsForTimeRangeTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "detect_prs",
		Description: "Scans the whole logged set history and flags personal records (best single-set volume and best estimated one-rep max per lift). Optional: lift. Use when asked about PRs or all-time bests.",
	}, h.DetectPRsTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_symmetry",
		Description: "Returns the muscle balance report: best estimated one-rep maxes per main lift, strength ratios between lifts vs their ideals, detected imbalances with suggestions, and an overall balance score (0-100).",
	}, h.GetSymmetryTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_next_workout",
		Description: "Returns the prescribed sets (lift, weight, reps, AMRAP flags) for a training program's current state. Args: program_id; optional: with_plates (include plate loading per set). Use when asked what to lift next.",
	}, h.GetNextWorkoutTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "solve_plates",
		Description: "Returns the plate loading (per side) for a target barbell weight against the configured plate inventory. Arg: target_weight (includes the bar). Use when asked how to load the bar.",
	}, h.SolvePlatesTool())

	return s
}
