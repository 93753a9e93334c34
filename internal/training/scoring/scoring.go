// Package scoring holds the pure numeric functions: estimated one rep
// max, Wilks relative strength score and strength standard lookup.
package scoring

import (
	"fmt"

	"github.com/strengthlab/liftstats/internal/training"
)

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

func ParseSex(s string) (Sex, error) {
	switch Sex(s) {
	case SexMale, SexFemale:
		return Sex(s), nil
	default:
		return "", fmt.Errorf("%w: unknown sex %q", training.ErrInvalidInput, s)
	}
}

// Estimate1RM estimates the one rep max from a submaximal set. Brzycki
// tracks low rep sets better, Epley high rep sets, so the two are
// blended linearly over the 8-10 rep range to avoid a jump at the
// formula boundary.
func Estimate1RM(weight float64, reps int) (float64, error) {
	if reps <= 0 {
		return 0, fmt.Errorf("%w: reps must be positive, got %d", training.ErrInvalidInput, reps)
	}
	if weight < 0 {
		return 0, fmt.Errorf("%w: weight must not be negative, got %f", training.ErrInvalidInput, weight)
	}
	if weight == 0 {
		return 0, nil
	}

	switch {
	case reps < 8:
		return brzycki(weight, reps), nil
	case reps > 10:
		return epley(weight, reps), nil
	default:
		t := float64(reps-8) / 2
		return (1-t)*brzycki(weight, reps) + t*epley(weight, reps), nil
	}
}

func brzycki(weight float64, reps int) float64 {
	return weight / (1.0278 - 0.0278*float64(reps))
}

func epley(weight float64, reps int) float64 {
	return weight * (1 + float64(reps)/30)
}

// wilks polynomial coefficients, bodyweight in kilograms
var (
	wilksMale   = [6]float64{-216.0475144, 16.2606339, -0.002388645, -0.00113732, 7.01863e-06, -1.291e-08}
	wilksFemale = [6]float64{594.31747775582, -27.23842536447, 0.82112226871, -0.00930733913, 4.731582e-05, -9.054e-08}
)

// WilksScore normalizes a lifted total by bodyweight: total x 500 over
// the fifth degree sex-specific polynomial of bodyweight. Total and
// bodyweight must use the same unit the coefficients expect (kg).
func WilksScore(total, bodyweight float64, sex Sex) (float64, error) {
	if bodyweight <= 0 {
		return 0, fmt.Errorf("%w: bodyweight must be positive, got %f", training.ErrInvalidInput, bodyweight)
	}
	if total < 0 {
		return 0, fmt.Errorf("%w: total must not be negative, got %f", training.ErrInvalidInput, total)
	}

	var coeffs [6]float64
	switch sex {
	case SexMale:
		coeffs = wilksMale
	case SexFemale:
		coeffs = wilksFemale
	default:
		return 0, fmt.Errorf("%w: unknown sex %q", training.ErrInvalidInput, sex)
	}

	poly := 0.0
	x := 1.0
	for _, c := range coeffs {
		poly += c * x
		x *= bodyweight
	}

	return total * 500 / poly, nil
}
