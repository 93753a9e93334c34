package history

import (
	"time"

	"github.com/strengthlab/liftstats/internal/training"
	"github.com/strengthlab/liftstats/internal/training/scoring"
)

type PRKind string

const (
	VolumePR    PRKind = "volume"
	OneRepMaxPR PRKind = "one_rep_max"
)

// PersonalRecord is derived on demand, never persisted.
type PersonalRecord struct {
	Lift  training.Lift `json:"lift"`
	Kind  PRKind        `json:"kind"`
	Value float64       `json:"value"`
	Date  time.Time     `json:"date"`
	SetID int           `json:"setId"`
}

// SetPRFlags is a logged set annotated with the records it broke at
// the moment it was performed.
type SetPRFlags struct {
	Set         training.LoggedSet `json:"set"`
	VolumePR    bool               `json:"volumePR"`
	OneRepMaxPR bool               `json:"oneRepMaxPR"`
}

type PRReport struct {
	Sets    []SetPRFlags     `json:"sets"`
	Records []PersonalRecord `json:"records"`
}

type liftMaxima struct {
	volume    float64
	estimated float64
}

// DetectPRs walks the history in the given order (callers pass sets
// sorted chronologically, ties broken by id) and flags every set that
// strictly beats the running per-lift maximum volume or estimated 1RM.
// Maxima update right after each set, so later sets in the same
// workout can still PR. Warmup sets never count. Single pass, constant
// state per lift.
func DetectPRs(loggedSets []training.LoggedSet) *PRReport {
	report := &PRReport{
		Sets:    make([]SetPRFlags, 0, len(loggedSets)),
		Records: []PersonalRecord{},
	}

	maxima := make(map[training.Lift]*liftMaxima)
	for _, set := range loggedSets {
		flags := SetPRFlags{Set: set}

		if set.Warmup || set.Reps <= 0 {
			report.Sets = append(report.Sets, flags)
			continue
		}

		m, ok := maxima[set.Lift]
		if !ok {
			m = &liftMaxima{}
			maxima[set.Lift] = m
		}

		if volume := set.Volume(); volume > m.volume {
			flags.VolumePR = true
			m.volume = volume
			report.Records = append(report.Records, PersonalRecord{
				Lift:  set.Lift,
				Kind:  VolumePR,
				Value: volume,
				Date:  set.CreatedAt,
				SetID: set.ID,
			})
		}

		// reps and weight already validated above, error impossible
		estimated, err := scoring.Estimate1RM(set.Weight, set.Reps)
		if err == nil && estimated > m.estimated {
			flags.OneRepMaxPR = true
			m.estimated = estimated
			report.Records = append(report.Records, PersonalRecord{
				Lift:  set.Lift,
				Kind:  OneRepMaxPR,
				Value: estimated,
				Date:  set.CreatedAt,
				SetID: set.ID,
			})
		}

		report.Sets = append(report.Sets, flags)
	}

	return report
}
