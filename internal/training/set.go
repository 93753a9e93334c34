package training

import "time"

// LoggedSet is an append-only fact about a performed set. Never mutated
// once created; ordering is by CreatedAt, ties broken by ID.
type LoggedSet struct {
	ID        int               `json:"id"`
	Lift      Lift              `json:"lift"`
	Weight    float64           `json:"weight"`
	Reps      int               `json:"reps"`
	RPE       *float64          `json:"rpe,omitempty"`
	Warmup    bool              `json:"warmup"`
	CreatedAt time.Time         `json:"createdAt"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Volume is the weight x reps product used for volume PR detection.
func (s LoggedSet) Volume() float64 {
	return s.Weight * float64(s.Reps)
}

// PrescribedSet is one line of a generated workout.
type PrescribedSet struct {
	Lift         Lift     `json:"lift"`
	SetNumber    int      `json:"setNumber"`
	Weight       float64  `json:"weight"`
	Reps         int      `json:"reps"`
	PercentOfMax *float64 `json:"percentOfMax,omitempty"`
	AMRAP        bool     `json:"amrap"`
	Warmup       bool     `json:"warmup"`
}
