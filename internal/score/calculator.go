package score

import (
	"math"

	"github.com/remote-first-institute/aiwo/internal/models"
)

// Points sums the point values of the chosen answers. The answers slice must
// be index-paired with the questions slice.
func Points(questions []Question, answers []int) (int, error) {
	if len(answers) != len(questions) {
		return 0, models.ErrInvalidAnswerCount
	}
	total := 0
	for i, q := range questions {
		answer := answers[i]
		if answer < 0 || answer >= len(q.Points) {
			return 0, models.ErrInvalidAnswerIndex
		}
		total += q.Points[answer]
	}
	return total, nil
}

// Calculate maps an answer sequence to a normalized score in [0, 100].
//
// The score is ceil(100 * (points - min) / (max - min)) where min and max are
// the lowest and highest point totals achievable on the question list.
func Calculate(questions []Question, answers []int) (int, error) {
	points, err := Points(questions, answers)
	if err != nil {
		return 0, err
	}
	minPoints, maxPoints := bounds(questions)
	normalized := float64(points-minPoints) / float64(maxPoints-minPoints)
	return int(math.Ceil(normalized * 100)), nil
}

// bounds returns the minimum and maximum achievable point totals.
func bounds(questions []Question) (int, int) {
	var minTotal, maxTotal int
	for _, q := range questions {
		lo, hi := q.Points[0], q.Points[0]
		for _, p := range q.Points[1:] {
			if p < lo {
				lo = p
			}
			if p > hi {
				hi = p
			}
		}
		minTotal += lo
		maxTotal += hi
	}
	return minTotal, maxTotal
}
