package grading

// GradedItem pairs an optional percentage weight with an optional grade on
// the 0-5 scale. Either side may be absent: an activity without a recorded
// grade, or an outcome whose weight the instructor has not set yet.
type GradedItem struct {
	Weight *float64
	Grade  *float64
}

// WeightedAverage computes the weight-normalized mean of the graded items.
//
// Items missing either a grade or a weight are excluded. If nothing remains
// the result is nil, which is distinct from a grade of zero. Weights need not
// sum to 100 at evaluation time, so the divisor is the sum of the weights
// actually present, not the target. The result is never clamped.
func WeightedAverage(items []GradedItem) *float64 {
	var weightedSum, weightSum float64
	counted := false

	for _, item := range items {
		if item.Grade == nil || item.Weight == nil {
			continue
		}
		weightedSum += *item.Weight * *item.Grade
		weightSum += *item.Weight
		counted = true
	}

	if !counted || weightSum == 0 {
		return nil
	}

	average := weightedSum / weightSum
	return &average
}
