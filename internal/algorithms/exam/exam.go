// Package exam assigns unknown binary realizations to a training class, or to
// no class, by testing them against every class's decision ball.
package exam

import (
	"fmt"
	"strings"

	"satpr/internal/models"
	"satpr/internal/processing/hamming"
)

// Outcome tags an exam result.
type Outcome int

const (
	Unknown Outcome = iota
	Found
)

func (o Outcome) String() string {
	if o == Found {
		return "found"
	}
	return "unknown"
}

// Evidence records how every class reacted to one realization.
type Evidence struct {
	// Distances[i] is the Hamming distance to reference vector i.
	Distances []int
	// Scores[i] is 1 - Distances[i]/radius[i]; a positive score means the
	// realization lies inside the decision ball of class i. Classes with a
	// zero radius score 0.
	Scores []float64
	// Contained lists the classes whose containment test fired.
	Contained []int
}

// Ambiguous reports whether more than one class claimed the realization.
func (e Evidence) Ambiguous() bool {
	return len(e.Contained) > 1
}

// Result is Found with a class index when exactly one class claims the
// realization, Unknown otherwise.
type Result struct {
	Outcome  Outcome
	Class    int
	Evidence Evidence
}

func (r Result) String() string {
	if r.Outcome == Found {
		return fmt.Sprintf("%d", r.Class)
	}
	if r.Evidence.Ambiguous() {
		parts := make([]string, len(r.Evidence.Contained))
		for i, c := range r.Evidence.Contained {
			parts[i] = fmt.Sprintf("%d", c)
		}
		return "Unknown (claimed by " + strings.Join(parts, ", ") + ")"
	}
	return "Unknown"
}

// Classify tests one realization against every reference vector and its
// containment radius. references and radii are indexed by class.
func Classify(unknown []byte, references []models.ReferenceVector, radii []int) Result {
	if len(references) != len(radii) {
		panic(fmt.Sprintf("exam: %d reference vectors but %d radii", len(references), len(radii)))
	}

	evidence := Evidence{
		Distances: make([]int, len(references)),
		Scores:    make([]float64, len(references)),
		Contained: make([]int, 0, 1),
	}

	for i, reference := range references {
		d := hamming.Distance(unknown, reference)
		evidence.Distances[i] = d

		if radii[i] <= 0 {
			continue
		}

		score := 1 - float64(d)/float64(radii[i])
		evidence.Scores[i] = score
		if score > 0 {
			evidence.Contained = append(evidence.Contained, i)
		}
	}

	if len(evidence.Contained) == 1 {
		return Result{Outcome: Found, Class: evidence.Contained[0], Evidence: evidence}
	}
	return Result{Outcome: Unknown, Class: -1, Evidence: evidence}
}

// Exam classifies every row, preserving order.
func Exam(rows [][]byte, references []models.ReferenceVector, radii []int) []Result {
	results := make([]Result, len(rows))
	for i, row := range rows {
		results[i] = Classify(row, references, radii)
	}
	return results
}

// Tally summarizes the results of one exam class.
type Tally struct {
	// Assigned[i] counts realizations found in class i.
	Assigned  []int
	Unknown   int
	Ambiguous int
	Total     int
}

// Summarize counts results per training class.
func Summarize(results []Result, classes int) Tally {
	t := Tally{Assigned: make([]int, classes), Total: len(results)}
	for _, r := range results {
		switch {
		case r.Outcome == Found:
			t.Assigned[r.Class]++
		case r.Evidence.Ambiguous():
			t.Unknown++
			t.Ambiguous++
		default:
			t.Unknown++
		}
	}
	return t
}

// Majority returns the training class holding strictly more than half of the
// realizations, or -1.
func (t Tally) Majority() int {
	for i, n := range t.Assigned {
		if n > t.Total/2 {
			return i
		}
	}
	return -1
}
