package program

import (
	"context"
	"fmt"
	"strconv"

	"github.com/strengthlab/liftstats/internal/telemetry/metrics"
	"github.com/strengthlab/liftstats/internal/telemetry/tracing"
	"github.com/strengthlab/liftstats/internal/training"
	"github.com/strengthlab/liftstats/internal/training/plates"

	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=program_test

type programsRepo interface {
	Add(ctx context.Context, p Program) (*Program, error)
	Get(ctx context.Context, id int) (*Program, error)
	List(ctx context.Context) ([]Program, error)
	Delete(ctx context.Context, id int) error
	Advance(ctx context.Context, id int, advance func(Program) (Program, error)) (*Program, error)
}

// Service glues the pure engine to persistence: it loads program
// state, runs the engine and stores the result.
type Service struct {
	repo      programsRepo
	engine    *Engine
	inventory plates.Inventory
	metrics   *metrics.Manager
}

func NewService(
	repo programsRepo,
	engine *Engine,
	inventory plates.Inventory,
	metricsManager *metrics.Manager,
) *Service {
	return &Service{
		repo:      repo,
		engine:    engine,
		inventory: inventory,
		metrics:   metricsManager,
	}
}

func (s *Service) Create(ctx context.Context, p Program) (_ *Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.program.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("type", string(p.Type)))

	if err := p.Validate(); err != nil {
		return nil, err
	}

	added, err := s.repo.Add(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("add program: %w", err)
	}
	return added, nil
}

func (s *Service) Get(ctx context.Context, id int) (_ *Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.program.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) (_ []Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.program.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.repo.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.program.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	return s.repo.Delete(ctx, id)
}

// PrescribedSetLoading pairs a prescribed set with the plate loading
// that reaches its weight, when requested.
type PrescribedSetLoading struct {
	training.PrescribedSet
	Loading *plates.Result `json:"loading,omitempty"`
}

type NextWorkoutResponse struct {
	Program Program                `json:"program"`
	Sets    []PrescribedSetLoading `json:"sets"`
}

// NextWorkout generates the prescribed sets for the program's current
// state. With withLoading it also solves the plate loading for every
// set against the configured inventory.
func (s *Service) NextWorkout(ctx context.Context, id int, withLoading bool) (_ *NextWorkoutResponse, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.program.next-workout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))
	span.SetAttributes(attribute.Bool("with_loading", withLoading))

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	workout, err := s.engine.GenerateWorkout(*p)
	if err != nil {
		return nil, err
	}

	s.metrics.CounterWorkoutsGenerated.Inc()

	response := &NextWorkoutResponse{
		Program: *p,
		Sets:    make([]PrescribedSetLoading, 0, len(workout)),
	}
	for _, set := range workout {
		setLoading := PrescribedSetLoading{PrescribedSet: set}
		if withLoading {
			result := plates.Solve(set.Weight, s.inventory)
			s.metrics.CounterPlateSolves.WithLabelValues(strconv.FormatBool(result.Exact)).Inc()
			setLoading.Loading = &result
		}
		response.Sets = append(response.Sets, setLoading)
	}

	return response, nil
}

// CompleteSession advances the program state after a finished session
// or week. The repo serializes concurrent advances of the same
// program, the engine itself stays pure.
func (s *Service) CompleteSession(ctx context.Context, id int) (_ *Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.program.complete-session")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	advanced, err := s.repo.Advance(ctx, id, s.engine.Advance)
	if err != nil {
		return nil, err
	}

	s.metrics.CounterProgramsAdvanced.Inc()
	return advanced, nil
}

// SolvePlates exposes the plate solver against the configured
// inventory for ad hoc targets.
func (s *Service) SolvePlates(targetWeight float64) plates.Result {
	result := plates.Solve(targetWeight, s.inventory)
	s.metrics.CounterPlateSolves.WithLabelValues(strconv.FormatBool(result.Exact)).Inc()
	return result
}
