package pipeline

import (
	"gonum.org/v1/gonum/stat"

	"satpr/internal/algorithms/criteria"
)

// Summarize reduces the snapshot for the delta sweep. A class without a
// working-space optimum contributes 0 to the averages and clears
// InWorkingSpace.
func (s *ClassificationState) Summarize() Summary {
	shannon := make([]float64, len(s.Criteria))
	kullback := make([]float64, len(s.Criteria))
	inWorkingSpace := len(s.Criteria) > 0

	for i, c := range s.Criteria {
		radius, value, ok := c.Max(criteria.Shannon)
		if ok {
			shannon[i] = value
			ch := c.Characteristics[radius]
			if ch.D1 < 0.5 || ch.D2 < 0.5 {
				inWorkingSpace = false
			}
		} else {
			inWorkingSpace = false
		}

		if _, value, ok := c.Max(criteria.Kullback); ok {
			kullback[i] = value
		}
	}

	summary := Summary{
		Delta:          s.Delta,
		InWorkingSpace: inWorkingSpace,
	}
	if len(s.Criteria) > 0 {
		summary.AverageShannon = stat.Mean(shannon, nil)
		summary.AverageKullback = stat.Mean(kullback, nil)
	}
	return summary
}

// Average returns the summary average of the given criterion.
func (s Summary) Average(kind criteria.Kind) float64 {
	if kind == criteria.Kullback {
		return s.AverageKullback
	}
	return s.AverageShannon
}
