package training

import "fmt"

// Lift is one of the tracked barbell movements. The four main lifts
// participate in programs, standards and symmetry analysis; everything
// else is logged as LiftOther.
type Lift string

const (
	LiftSquat         Lift = "squat"
	LiftBench         Lift = "bench"
	LiftDeadlift      Lift = "deadlift"
	LiftOverheadPress Lift = "ohp"
	LiftOther         Lift = "other"
)

// Category splits the main lifts by the progression increment they get.
type Category string

const (
	CategoryUpper Category = "upper"
	CategoryLower Category = "lower"
)

func (l Lift) Category() Category {
	switch l {
	case LiftSquat, LiftDeadlift:
		return CategoryLower
	default:
		return CategoryUpper
	}
}

func (l Lift) IsMain() bool {
	switch l {
	case LiftSquat, LiftBench, LiftDeadlift, LiftOverheadPress:
		return true
	}
	return false
}

func ParseLift(s string) (Lift, error) {
	switch Lift(s) {
	case LiftSquat, LiftBench, LiftDeadlift, LiftOverheadPress, LiftOther:
		return Lift(s), nil
	case "":
		return "", fmt.Errorf("%w: empty lift", ErrInvalidInput)
	default:
		return "", fmt.Errorf("%w: unknown lift %q", ErrInvalidInput, s)
	}
}

// MainLifts in stable order, used wherever deterministic iteration over
// a lift map is needed.
func MainLifts() []Lift {
	return []Lift{LiftSquat, LiftBench, LiftDeadlift, LiftOverheadPress}
}
