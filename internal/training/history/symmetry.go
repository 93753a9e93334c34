package history

import (
	"fmt"
	"math"

	"github.com/strengthlab/liftstats/internal/training"
)

const deviationTolerance = 0.05

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// severity weights for the overall score penalty
var severityWeights = map[Severity]float64{
	SeverityLow:    50,
	SeverityMedium: 100,
	SeverityHigh:   150,
}

type LiftTotals struct {
	Squat         float64 `json:"squat"`
	Bench         float64 `json:"bench"`
	Deadlift      float64 `json:"deadlift"`
	OverheadPress float64 `json:"ohp"`
}

type RatioStatus struct {
	Name      string  `json:"name"`
	Actual    float64 `json:"actual"`
	Ideal     float64 `json:"ideal"`
	Deviation float64 `json:"deviation"`
}

type Imbalance struct {
	Ratio      string   `json:"ratio"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion"`
}

type SymmetryReport struct {
	Totals       LiftTotals    `json:"totals"`
	Ratios       []RatioStatus `json:"ratios"`
	Imbalances   []Imbalance   `json:"imbalances"`
	OverallScore float64       `json:"overallScore"`
}

type ratioSpec struct {
	name          string
	ideal         float64
	numerator     func(LiftTotals) float64
	denominator   func(LiftTotals) float64
	lowSuggestion string
	highSuggestion string
}

// population derived ideal ratios between the main lifts, checked in a
// fixed order so reports are deterministic
var ratioSpecs = []ratioSpec{
	{
		name:          "squat/deadlift",
		ideal:         0.85,
		numerator:     func(t LiftTotals) float64 { return t.Squat },
		denominator:   func(t LiftTotals) float64 { return t.Deadlift },
		lowSuggestion: "squat lags behind deadlift: add quad focused accessory work like front squats or leg press",
		highSuggestion: "deadlift lags behind squat: add posterior chain work like romanian deadlifts or good mornings",
	},
	{
		name:          "bench/squat",
		ideal:         0.70,
		numerator:     func(t LiftTotals) float64 { return t.Bench },
		denominator:   func(t LiftTotals) float64 { return t.Squat },
		lowSuggestion: "bench lags behind squat: add horizontal pressing volume like close grip bench or dips",
		highSuggestion: "squat lags behind bench: add lower body volume like pause squats or lunges",
	},
	{
		name:          "ohp/bench",
		ideal:         0.625,
		numerator:     func(t LiftTotals) float64 { return t.OverheadPress },
		denominator:   func(t LiftTotals) float64 { return t.Bench },
		lowSuggestion: "overhead press lags behind bench: add overhead work like push press or seated press",
		highSuggestion: "bench lags behind overhead press: add bench volume like spoto press or wide grip bench",
	},
	{
		name:          "deadlift/squat",
		ideal:         1.20,
		numerator:     func(t LiftTotals) float64 { return t.Deadlift },
		denominator:   func(t LiftTotals) float64 { return t.Squat },
		lowSuggestion: "deadlift lags behind squat: add posterior chain work like deficit pulls or back extensions",
		highSuggestion: "squat lags behind deadlift: add quad focused accessory work like front squats or leg press",
	},
}

// Symmetry compares the four main lift totals against population
// derived ideal ratios and scores the overall balance.
func Symmetry(totals LiftTotals) (*SymmetryReport, error) {
	if totals.Squat <= 0 || totals.Bench <= 0 || totals.Deadlift <= 0 || totals.OverheadPress <= 0 {
		return nil, fmt.Errorf("%w: all four lift totals must be positive", training.ErrInvalidInput)
	}

	report := &SymmetryReport{
		Totals:     totals,
		Ratios:     make([]RatioStatus, 0, len(ratioSpecs)),
		Imbalances: []Imbalance{},
	}

	score := 100.0
	for _, spec := range ratioSpecs {
		actual := spec.numerator(totals) / spec.denominator(totals)
		deviation := math.Abs(actual - spec.ideal)

		report.Ratios = append(report.Ratios, RatioStatus{
			Name:      spec.name,
			Actual:    actual,
			Ideal:     spec.ideal,
			Deviation: deviation,
		})

		if deviation <= deviationTolerance {
			continue
		}

		var severity Severity
		switch {
		case deviation < 0.10:
			severity = SeverityLow
		case deviation < 0.20:
			severity = SeverityMedium
		default:
			severity = SeverityHigh
		}

		suggestion := spec.lowSuggestion
		direction := "below"
		if actual > spec.ideal {
			suggestion = spec.highSuggestion
			direction = "above"
		}

		report.Imbalances = append(report.Imbalances, Imbalance{
			Ratio:    spec.name,
			Severity: severity,
			Message: fmt.Sprintf("%s ratio is %.3f, %s the ideal %.3f",
				spec.name, actual, direction, spec.ideal),
			Suggestion: suggestion,
		})

		score -= severityWeights[severity] * (deviation / spec.ideal)
	}

	if score < 0 {
		score = 0
	}
	report.OverallScore = score

	return report, nil
}
