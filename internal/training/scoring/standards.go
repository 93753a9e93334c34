package scoring

import (
	"fmt"

	"github.com/strengthlab/liftstats/internal/training"
)

type StandardLevel string

const (
	StandardUntrained    StandardLevel = "untrained"
	StandardBeginner     StandardLevel = "beginner"
	StandardNovice       StandardLevel = "novice"
	StandardIntermediate StandardLevel = "intermediate"
	StandardAdvanced     StandardLevel = "advanced"
	StandardElite        StandardLevel = "elite"
)

var standardLevels = []StandardLevel{
	StandardUntrained,
	StandardBeginner,
	StandardNovice,
	StandardIntermediate,
	StandardAdvanced,
	StandardElite,
}

// male bodyweight-ratio thresholds per level, index matches standardLevels
var maleThresholds = map[training.Lift][6]float64{
	training.LiftSquat:         {0, 0.75, 1.00, 1.25, 1.60, 2.00},
	training.LiftBench:         {0, 0.50, 0.75, 1.00, 1.35, 1.75},
	training.LiftDeadlift:      {0, 0.90, 1.20, 1.50, 2.00, 2.50},
	training.LiftOverheadPress: {0, 0.35, 0.50, 0.65, 0.85, 1.10},
}

// female thresholds run roughly 72% of the male tables
const femaleRatioFactor = 0.72

// approximate population percentile at each level threshold
var levelPercentiles = [6]float64{5, 20, 40, 65, 85, 97}

type Classification struct {
	Standard   StandardLevel  `json:"standard"`
	Percentile float64        `json:"percentile"`
	NextLevel  *StandardLevel `json:"nextLevel,omitempty"`
	// NextLevelWeight is the estimated 1RM needed to reach NextLevel,
	// zero when already elite.
	NextLevelWeight float64 `json:"nextLevelWeight,omitempty"`
}

// Classify places an estimated 1RM on the strength standards scale for
// the given lift, bodyweight and sex. Percentile is interpolated
// linearly between the level thresholds.
func Classify(estimated1RM, bodyweight float64, sex Sex, lift training.Lift) (*Classification, error) {
	if bodyweight <= 0 {
		return nil, fmt.Errorf("%w: bodyweight must be positive, got %f", training.ErrInvalidInput, bodyweight)
	}
	if estimated1RM < 0 {
		return nil, fmt.Errorf("%w: estimated 1RM must not be negative", training.ErrInvalidInput)
	}

	thresholds, ok := maleThresholds[lift]
	if !ok {
		return nil, fmt.Errorf("%w: no standards table for lift %q", training.ErrInvalidInput, lift)
	}
	switch sex {
	case SexMale:
	case SexFemale:
		for i := range thresholds {
			thresholds[i] *= femaleRatioFactor
		}
	default:
		return nil, fmt.Errorf("%w: unknown sex %q", training.ErrInvalidInput, sex)
	}

	ratio := estimated1RM / bodyweight

	level := 0
	for i := len(thresholds) - 1; i >= 0; i-- {
		if ratio >= thresholds[i] {
			level = i
			break
		}
	}

	c := &Classification{
		Standard:   standardLevels[level],
		Percentile: levelPercentiles[level],
	}

	if level < len(standardLevels)-1 {
		next := standardLevels[level+1]
		c.NextLevel = &next
		c.NextLevelWeight = thresholds[level+1] * bodyweight

		// interpolate percentile towards the next threshold
		span := thresholds[level+1] - thresholds[level]
		if span > 0 {
			progress := (ratio - thresholds[level]) / span
			c.Percentile += progress * (levelPercentiles[level+1] - levelPercentiles[level])
		}
	} else {
		// past the elite threshold the percentile keeps creeping up, capped at 99
		over := ratio/thresholds[level] - 1
		c.Percentile += over * (99 - levelPercentiles[level])
		if c.Percentile > 99 {
			c.Percentile = 99
		}
	}

	return c, nil
}
