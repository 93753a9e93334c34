// Package program holds the periodization state machine: generating
// the next prescribed workout from persisted program state and
// advancing that state when a session or week is completed.
package program

import (
	"fmt"
	"time"

	"github.com/strengthlab/liftstats/internal/training"
)

type Type string

const (
	TypePercentageCycle   Type = "percentage_cycle"
	TypeLinearProgression Type = "linear_progression"
)

type WorkoutLetter string

const (
	WorkoutA WorkoutLetter = "A"
	WorkoutB WorkoutLetter = "B"
)

// Program is a tagged union over the two program types. Which state
// fields apply depends on Type; callers never branch on the type
// themselves, the engine does the dispatch.
type Program struct {
	ID   int  `json:"id"`
	Type Type `json:"type"`

	// percentage cycle state
	Week          int                        `json:"week,omitempty"`
	Cycle         int                        `json:"cycle,omitempty"`
	TrainingMaxes map[training.Lift]float64  `json:"trainingMaxes,omitempty"`

	// linear progression state
	SessionNumber  int                       `json:"sessionNumber,omitempty"`
	Workout        WorkoutLetter             `json:"workout,omitempty"`
	CurrentWeights map[training.Lift]float64 `json:"currentWeights,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p Program) Validate() error {
	switch p.Type {
	case TypePercentageCycle:
		if p.Week < 1 || p.Week > 4 {
			return fmt.Errorf("%w: week must be in [1,4], got %d", training.ErrInvalidProgramState, p.Week)
		}
		if p.Cycle < 1 {
			return fmt.Errorf("%w: cycle must be at least 1, got %d", training.ErrInvalidProgramState, p.Cycle)
		}
		if len(p.TrainingMaxes) == 0 {
			return fmt.Errorf("%w: no training maxes set", training.ErrInvalidProgramState)
		}
		for lift, tm := range p.TrainingMaxes {
			if tm <= 0 {
				return fmt.Errorf("%w: training max for %s must be positive, got %f",
					training.ErrInvalidProgramState, lift, tm)
			}
		}
	case TypeLinearProgression:
		if p.SessionNumber < 1 {
			return fmt.Errorf("%w: session number must be at least 1, got %d",
				training.ErrInvalidProgramState, p.SessionNumber)
		}
		if p.Workout != WorkoutA && p.Workout != WorkoutB {
			return fmt.Errorf("%w: workout letter must be A or B, got %q",
				training.ErrInvalidProgramState, p.Workout)
		}
		if len(p.CurrentWeights) == 0 {
			return fmt.Errorf("%w: no current weights set", training.ErrInvalidProgramState)
		}
		for lift, weight := range p.CurrentWeights {
			if weight <= 0 {
				return fmt.Errorf("%w: current weight for %s must be positive, got %f",
					training.ErrInvalidProgramState, lift, weight)
			}
		}
	default:
		return fmt.Errorf("%w: unknown program type %q", training.ErrInvalidProgramState, p.Type)
	}
	return nil
}

func copyLiftMap(m map[training.Lift]float64) map[training.Lift]float64 {
	if m == nil {
		return nil
	}
	cp := make(map[training.Lift]float64, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
