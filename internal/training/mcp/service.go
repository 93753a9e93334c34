package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/strengthlab/liftstats/internal/training"
	"github.com/strengthlab/liftstats/internal/training/history"
	"github.com/strengthlab/liftstats/internal/training/plates"
	"github.com/strengthlab/liftstats/internal/training/program"
	"github.com/strengthlab/liftstats/internal/training/sets"
)

// SetsRepo provides the logged set history (for dependency injection and testing).
type SetsRepo interface {
	ListAll(ctx context.Context, params sets.SetParams) ([]training.LoggedSet, error)
}

// historyAnalyzer provides PR detection and symmetry analysis (for dependency injection and testing).
type historyAnalyzer interface {
	PRs(ctx context.Context, params sets.SetParams) (*history.PRReport, error)
	SymmetryReport(ctx context.Context, onlyProd, excludeTestingData bool) (*history.SymmetryReport, error)
}

// programsService provides workout generation and plate solving (for dependency injection and testing).
type programsService interface {
	NextWorkout(ctx context.Context, id int, withLoading bool) (*program.NextWorkoutResponse, error)
	SolvePlates(targetWeight float64) plates.Result
}

// contextService provides liftstats context data (schema, sets, workouts, analysis).
// Used by Handler for testability.
type contextService interface {
	GetSchema(ctx context.Context) (string, error)
	ListSets(ctx context.Context, params sets.SetParams) ([]training.LoggedSet, error)
	DetectPRs(ctx context.Context, lift training.Lift) (*history.PRReport, error)
	GetSymmetry(ctx context.Context) (*history.SymmetryReport, error)
	GetNextWorkout(ctx context.Context, programID int, withPlates bool) (*program.NextWorkoutResponse, error)
	SolvePlates(targetWeight float64) plates.Result
}

// ContextService holds dependencies and implements the liftstats context business logic.
type ContextService struct {
	schema   SchemaRepo
	sets     SetsRepo
	analyzer historyAnalyzer
	programs programsService
}

// NewContextService builds a ContextService with the given dependencies.
func NewContextService(
	schemaRepo SchemaRepo,
	setsRepo SetsRepo,
	analyzer historyAnalyzer,
	programs programsService,
) *ContextService {
	return &ContextService{
		schema:   schemaRepo,
		sets:     setsRepo,
		analyzer: analyzer,
		programs: programs,
	}
}

// GetSchema returns the DB schema (table names, columns, types) for
// liftstats-related tables: logged_set, program.
func (s *ContextService) GetSchema(ctx context.Context) (string, error) {
	cols, err := s.schema.GetLiftstatsColumns(ctx)
	if err != nil {
		return "", err
	}
	return formatLiftstatsSchema(cols), nil
}

func formatLiftstatsSchema(cols []SchemaColumn) string {
	if len(cols) == 0 {
		return "# Liftstats DB Schema\n\nNo liftstats tables found in the database.\n"
	}

	byTable := make(map[string][]SchemaColumn)
	for _, c := range cols {
		byTable[c.TableName] = append(byTable[c.TableName], c)
	}

	tableOrder := make([]string, 0, len(byTable))
	for t := range byTable {
		tableOrder = append(tableOrder, t)
	}
	sort.Strings(tableOrder)

	var b strings.Builder
	b.WriteString("# Liftstats DB Schema\n\n")
	b.WriteString("Tables: logged_set, program (schema: public).\n\n")

	for _, tableName := range tableOrder {
		tableCols := byTable[tableName]
		b.WriteString("## ")
		b.WriteString(tableName)
		b.WriteString("\n\n| Column | Type | Nullable | Default |\n|--------|------|----------|--------|\n")
		for _, c := range tableCols {
			def := "—"
			if c.ColumnDef != nil && *c.ColumnDef != "" {
				def = *c.ColumnDef
			}
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", c.ColumnName, c.DataType, c.IsNullable, def))
		}
		b.WriteString("\n")
	}

	return strings.TrimSuffix(b.String(), "\n\n") + "\n"
}

// ListSets returns logged sets for the given params (time range, lift filter).
func (s *ContextService) ListSets(ctx context.Context, params sets.SetParams) ([]training.LoggedSet, error) {
	return s.sets.ListAll(ctx, params)
}

// DetectPRs returns the PR report over the whole history, optionally for one lift.
func (s *ContextService) DetectPRs(ctx context.Context, lift training.Lift) (*history.PRReport, error) {
	return s.analyzer.PRs(ctx, sets.SetParams{Lift: lift})
}

// GetSymmetry returns the muscle balance report over the whole history.
func (s *ContextService) GetSymmetry(ctx context.Context) (*history.SymmetryReport, error) {
	return s.analyzer.SymmetryReport(ctx, false, false)
}

// GetNextWorkout returns the prescribed sets for the program's current state.
func (s *ContextService) GetNextWorkout(ctx context.Context, programID int, withPlates bool) (*program.NextWorkoutResponse, error) {
	return s.programs.NextWorkout(ctx, programID, withPlates)
}

// SolvePlates returns the plate loading for the target weight against the configured rack.
func (s *ContextService) SolvePlates(targetWeight float64) plates.Result {
	return s.programs.SolvePlates(targetWeight)
}
