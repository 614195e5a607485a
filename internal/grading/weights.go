// Package grading holds the pure computations behind outcome tracking:
// percentage-weight validation and weight-normalized grade averaging.
package grading

// CompletionEpsilon absorbs floating-point accumulation when checking whether
// a weight distribution reaches 100%. Applied uniformly everywhere a
// completeness check happens.
const CompletionEpsilon = 1e-6

// WeightTarget is the percentage a weight distribution is expected to reach.
const WeightTarget = 100.0

// Weighted is anything carrying an optional percentage weight.
type Weighted struct {
	Weight *float64
}

// Breakdown summarises how far a weight distribution is from its target.
type Breakdown struct {
	Sum      float64 `json:"sum"`
	Complete bool    `json:"complete"`
	Gap      float64 `json:"gap"`
}

// Validate sums the weights of the given items and reports completeness.
// Missing weights count as zero. An empty input yields {0, false, 100}.
func Validate(items []Weighted) Breakdown {
	var sum float64
	for _, item := range items {
		if item.Weight != nil {
			sum += *item.Weight
		}
	}

	gap := WeightTarget - sum
	if gap < 0 {
		gap = 0
	}

	return Breakdown{
		Sum:      sum,
		Complete: sum >= WeightTarget-CompletionEpsilon,
		Gap:      gap,
	}
}

// WeightsOf adapts a slice of plain percentages into Weighted items.
func WeightsOf(weights []float64) []Weighted {
	items := make([]Weighted, 0, len(weights))
	for i := range weights {
		items = append(items, Weighted{Weight: &weights[i]})
	}
	return items
}
