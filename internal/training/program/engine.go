package program

import (
	"fmt"
	"math"

	"github.com/strengthlab/liftstats/internal/training"
)

// Increments configures how much the tracked weights grow on
// progression, split by lift category. These come from config, not
// hard-coded in the engine.
type Increments struct {
	Upper float64
	Lower float64
}

const (
	DefaultUpperIncrement = 5
	DefaultLowerIncrement = 10
	DefaultRoundingStep   = 5
)

func (inc Increments) forLift(lift training.Lift) float64 {
	if lift.Category() == training.CategoryLower {
		return inc.Lower
	}
	return inc.Upper
}

// percentage cycle main set schemes, indexed by week-1
var (
	weekPercentages = [4][3]float64{
		{65, 75, 85},
		{70, 80, 90},
		{75, 85, 95},
		{40, 50, 60}, // deload
	}
	weekReps = [4][3]int{
		{5, 5, 5},
		{3, 3, 3},
		{5, 3, 1},
		{5, 5, 5},
	}
)

const (
	accessorySets       = 5
	accessoryReps       = 10
	accessoryPercentage = 50.0
	deloadWeek          = 4
)

// linear progression session templates
type lpSlot struct {
	lift training.Lift
	sets int
	reps int
}

var lpTemplates = map[WorkoutLetter][]lpSlot{
	WorkoutA: {
		{training.LiftSquat, 3, 5},
		{training.LiftBench, 3, 5},
		{training.LiftDeadlift, 1, 5},
	},
	WorkoutB: {
		{training.LiftSquat, 3, 5},
		{training.LiftOverheadPress, 3, 5},
		{training.LiftDeadlift, 1, 5},
	},
}

// Engine is pure and stateless: identical inputs always produce
// identical outputs, nothing is retained between calls.
type Engine struct {
	increments   Increments
	roundingStep float64
}

func NewEngine(increments Increments, roundingStep float64) *Engine {
	if increments.Upper <= 0 {
		increments.Upper = DefaultUpperIncrement
	}
	if increments.Lower <= 0 {
		increments.Lower = DefaultLowerIncrement
	}
	if roundingStep <= 0 {
		roundingStep = DefaultRoundingStep
	}
	return &Engine{
		increments:   increments,
		roundingStep: roundingStep,
	}
}

// Round rounds half-up to the engine's step, the smallest jump the
// available plates allow.
func (e *Engine) Round(weight float64) float64 {
	return math.Floor(weight/e.roundingStep+0.5) * e.roundingStep
}

// GenerateWorkout produces the prescribed sets for the program's
// current state, main lifts in stable order.
func (e *Engine) GenerateWorkout(p Program) ([]training.PrescribedSet, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	switch p.Type {
	case TypePercentageCycle:
		return e.percentageCycleWorkout(p), nil
	case TypeLinearProgression:
		return e.linearProgressionWorkout(p)
	default:
		return nil, fmt.Errorf("%w: unknown program type %q", training.ErrInvalidProgramState, p.Type)
	}
}

func (e *Engine) percentageCycleWorkout(p Program) []training.PrescribedSet {
	percentages := weekPercentages[p.Week-1]
	reps := weekReps[p.Week-1]

	var workout []training.PrescribedSet
	for _, lift := range training.MainLifts() {
		tm, ok := p.TrainingMaxes[lift]
		if !ok {
			continue
		}

		for i := 0; i < len(percentages); i++ {
			pct := percentages[i]
			workout = append(workout, training.PrescribedSet{
				Lift:         lift,
				SetNumber:    i + 1,
				Weight:       e.Round(tm * pct / 100),
				Reps:         reps[i],
				PercentOfMax: &pct,
				// the last main set is max effort, except on deload
				AMRAP: i == len(percentages)-1 && p.Week != deloadWeek,
			})
		}

		accessoryPct := accessoryPercentage
		accessoryWeight := e.Round(tm * accessoryPercentage / 100)
		for i := 0; i < accessorySets; i++ {
			workout = append(workout, training.PrescribedSet{
				Lift:         lift,
				SetNumber:    len(percentages) + i + 1,
				Weight:       accessoryWeight,
				Reps:         accessoryReps,
				PercentOfMax: &accessoryPct,
			})
		}
	}

	return workout
}

func (e *Engine) linearProgressionWorkout(p Program) ([]training.PrescribedSet, error) {
	var workout []training.PrescribedSet
	for _, slot := range lpTemplates[p.Workout] {
		weight, ok := p.CurrentWeights[slot.lift]
		if !ok {
			return nil, fmt.Errorf("%w: no current weight for %s",
				training.ErrInvalidProgramState, slot.lift)
		}
		for i := 0; i < slot.sets; i++ {
			workout = append(workout, training.PrescribedSet{
				Lift:      slot.lift,
				SetNumber: i + 1,
				Weight:    e.Round(weight),
				Reps:      slot.reps,
			})
		}
	}
	return workout, nil
}

// Advance returns the program state after completing the current
// session or week. It never mutates its input: persistence and
// serialization of concurrent advances belong to the caller.
func (e *Engine) Advance(p Program) (Program, error) {
	if err := p.Validate(); err != nil {
		return Program{}, err
	}

	next := p
	switch p.Type {
	case TypePercentageCycle:
		next.TrainingMaxes = copyLiftMap(p.TrainingMaxes)
		next.Week++
		if next.Week > 4 {
			next.Week = 1
			next.Cycle++
			for lift := range next.TrainingMaxes {
				next.TrainingMaxes[lift] += e.increments.forLift(lift)
			}
		}
	case TypeLinearProgression:
		next.CurrentWeights = copyLiftMap(p.CurrentWeights)
		for _, slot := range lpTemplates[p.Workout] {
			if _, ok := next.CurrentWeights[slot.lift]; !ok {
				return Program{}, fmt.Errorf("%w: no current weight for %s",
					training.ErrInvalidProgramState, slot.lift)
			}
			next.CurrentWeights[slot.lift] += e.increments.forLift(slot.lift)
		}
		next.SessionNumber++
		if next.Workout == WorkoutA {
			next.Workout = WorkoutB
		} else {
			next.Workout = WorkoutA
		}
	default:
		return Program{}, fmt.Errorf("%w: unknown program type %q", training.ErrInvalidProgramState, p.Type)
	}

	return next, nil
}
