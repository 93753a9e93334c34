package history

import (
	"context"
	"fmt"

	"github.com/strengthlab/liftstats/internal/telemetry/tracing"
	"github.com/strengthlab/liftstats/internal/training"
	"github.com/strengthlab/liftstats/internal/training/scoring"
	"github.com/strengthlab/liftstats/internal/training/sets"

	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=history_mocks_test.go -package=history_test

type setsRepo interface {
	ListAll(ctx context.Context, params sets.SetParams) ([]training.LoggedSet, error)
}

// Analyzer derives performance metrics from the logged set history.
// All the math lives in pure functions, the analyzer only feeds them
// from the repo.
type Analyzer struct {
	repo setsRepo
}

func NewAnalyzer(repo setsRepo) *Analyzer {
	return &Analyzer{
		repo: repo,
	}
}

func (a *Analyzer) PRs(ctx context.Context, params sets.SetParams) (_ *PRReport, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.history.prs")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("lift", string(params.Lift)))

	loggedSets, err := a.repo.ListAll(ctx, params)
	if err != nil {
		return nil, err
	}

	report := DetectPRs(loggedSets)
	span.SetAttributes(attribute.Int("records", len(report.Records)))
	return report, nil
}

// BestEstimates returns the best estimated 1RM per main lift over the
// whole matching history.
func (a *Analyzer) BestEstimates(
	ctx context.Context,
	onlyProd, excludeTestingData bool,
) (_ LiftTotals, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.history.best-estimates")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	loggedSets, err := a.repo.ListAll(ctx, sets.SetParams{
		OnlyProd:           onlyProd,
		ExcludeTestingData: excludeTestingData,
	})
	if err != nil {
		return LiftTotals{}, err
	}

	best := make(map[training.Lift]float64)
	for _, set := range loggedSets {
		if set.Warmup || set.Reps <= 0 || !set.Lift.IsMain() {
			continue
		}
		estimated, err := scoring.Estimate1RM(set.Weight, set.Reps)
		if err != nil {
			continue
		}
		if estimated > best[set.Lift] {
			best[set.Lift] = estimated
		}
	}

	return LiftTotals{
		Squat:         best[training.LiftSquat],
		Bench:         best[training.LiftBench],
		Deadlift:      best[training.LiftDeadlift],
		OverheadPress: best[training.LiftOverheadPress],
	}, nil
}

func (a *Analyzer) SymmetryReport(
	ctx context.Context,
	onlyProd, excludeTestingData bool,
) (_ *SymmetryReport, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.history.symmetry")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	totals, err := a.BestEstimates(ctx, onlyProd, excludeTestingData)
	if err != nil {
		return nil, err
	}

	return Symmetry(totals)
}

type LiftStandard struct {
	Lift           training.Lift           `json:"lift"`
	Estimated1RM   float64                 `json:"estimated1RM"`
	Classification *scoring.Classification `json:"classification"`
}

// Standards classifies every main lift with a logged history against
// the strength standards tables.
func (a *Analyzer) Standards(
	ctx context.Context,
	bodyweight float64,
	sex scoring.Sex,
	onlyProd, excludeTestingData bool,
) (_ []LiftStandard, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.history.standards")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	totals, err := a.BestEstimates(ctx, onlyProd, excludeTestingData)
	if err != nil {
		return nil, err
	}

	perLift := map[training.Lift]float64{
		training.LiftSquat:         totals.Squat,
		training.LiftBench:         totals.Bench,
		training.LiftDeadlift:      totals.Deadlift,
		training.LiftOverheadPress: totals.OverheadPress,
	}

	standards := make([]LiftStandard, 0, len(perLift))
	for _, lift := range training.MainLifts() {
		estimated := perLift[lift]
		if estimated <= 0 {
			continue
		}
		classification, err := scoring.Classify(estimated, bodyweight, sex, lift)
		if err != nil {
			return nil, fmt.Errorf("classify %s: %w", lift, err)
		}
		standards = append(standards, LiftStandard{
			Lift:           lift,
			Estimated1RM:   estimated,
			Classification: classification,
		})
	}

	return standards, nil
}

type WilksResponse struct {
	Total  float64    `json:"total"`
	Score  float64    `json:"score"`
	Totals LiftTotals `json:"totals"`
}

// Wilks scores the powerlifting total (squat + bench + deadlift best
// estimates) against bodyweight.
func (a *Analyzer) Wilks(
	ctx context.Context,
	bodyweight float64,
	sex scoring.Sex,
	onlyProd, excludeTestingData bool,
) (_ *WilksResponse, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.history.wilks")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	totals, err := a.BestEstimates(ctx, onlyProd, excludeTestingData)
	if err != nil {
		return nil, err
	}

	total := totals.Squat + totals.Bench + totals.Deadlift
	score, err := scoring.WilksScore(total, bodyweight, sex)
	if err != nil {
		return nil, err
	}

	return &WilksResponse{
		Total:  total,
		Score:  score,
		Totals: totals,
	}, nil
}
