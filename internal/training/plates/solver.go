// Package plates solves the plate loading problem: which plates go on
// each side of the bar to reach a target weight, given a finite rack.
package plates

import "sort"

const epsilon = 1e-6

// Inventory describes the available equipment. Pairs maps a plate
// denomination to how many matched pairs of it the rack holds.
type Inventory struct {
	BarWeight float64         `json:"barWeight"`
	Pairs     map[float64]int `json:"pairs"`
}

// Result is a best effort loading. Plates lists one side of the bar in
// descending order; Exact reports whether the target was hit within a
// float tolerance.
type Result struct {
	Plates  []float64 `json:"plates"`
	PerSide float64   `json:"perSide"`
	Total   float64   `json:"total"`
	Exact   bool      `json:"exact"`
}

// Solve greedily loads the heaviest denominations first. It never
// fails: an unreachable target just comes back with Exact false, and a
// missing inventory degrades to a bar-only result.
func Solve(targetWeight float64, inv Inventory) Result {
	if targetWeight <= inv.BarWeight {
		return Result{
			Plates: []float64{},
			Total:  inv.BarWeight,
			Exact:  targetWeight == inv.BarWeight,
		}
	}

	// map iteration order is random, sort denominations for determinism
	denominations := make([]float64, 0, len(inv.Pairs))
	for w := range inv.Pairs {
		if w > 0 && inv.Pairs[w] > 0 {
			denominations = append(denominations, w)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(denominations)))

	perSideNeeded := (targetWeight - inv.BarWeight) / 2
	remaining := perSideNeeded

	plates := []float64{}
	for _, w := range denominations {
		if remaining < epsilon {
			break
		}
		count := int(remaining / w)
		if pairs := inv.Pairs[w]; count > pairs {
			count = pairs
		}
		for i := 0; i < count; i++ {
			plates = append(plates, w)
		}
		remaining -= float64(count) * w
	}

	perSide := perSideNeeded - remaining
	return Result{
		Plates:  plates,
		PerSide: perSide,
		Total:   inv.BarWeight + 2*perSide,
		Exact:   remaining < epsilon,
	}
}
