// Package criteria scores candidate containment radii of a class with the
// Kullback and Shannon information criteria and picks the optimal radius
// inside the working space.
package criteria

import (
	"fmt"
	"math"

	"satpr/internal/processing/hamming"
)

// Kind names one of the two information criteria.
type Kind int

const (
	Shannon Kind = iota
	Kullback
)

func (k Kind) String() string {
	switch k {
	case Shannon:
		return "shannon"
	case Kullback:
		return "kullback"
	default:
		return "unknown"
	}
}

// ParseKind maps a configuration name onto a Kind.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "", "shannon":
		return Shannon, nil
	case "kullback":
		return Kullback, nil
	default:
		return Shannon, fmt.Errorf("unknown criterion %q", name)
	}
}

// Mode selects which realizations count against a class.
type Mode int

const (
	// Pooled counts every other class's realizations, compared with a strict
	// less-than against the radius.
	Pooled Mode = iota
	// Closest counts only the closest class's realizations, compared with
	// less-or-equal and normalized by the class's own realization count.
	Closest
)

func (m Mode) String() string {
	switch m {
	case Pooled:
		return "pooled"
	case Closest:
		return "closest"
	default:
		return "unknown"
	}
}

// ParseMode maps a configuration name onto a Mode.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "", "pooled":
		return Pooled, nil
	case "closest":
		return Closest, nil
	default:
		return Pooled, fmt.Errorf("unknown criteria mode %q", name)
	}
}

// Characteristics are the containment rates of one radius.
type Characteristics struct {
	D1    float64 `json:"d1"`
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	D2    float64 `json:"d2"`
}

// Criteria holds the per-radius characteristics and criterion curves of one
// class. Index i of every slice corresponds to radius i.
type Criteria struct {
	Characteristics []Characteristics
	Kullback        []float64
	Shannon         []float64
	// WorkingSpace lists the radii, excluding 0, where both D1 and D2 are at
	// least one half.
	WorkingSpace []int
	// KullbackRadii and ShannonRadii list the working-space radii maximizing
	// each criterion. Ties keep every maximizing radius.
	KullbackRadii []int
	ShannonRadii  []int
}

// Compute scores radii 0..maxRadius-1 for a class given the distances of its
// own realizations to its centroid and the pooled distances of every other
// class's realizations to the same centroid. maxRadius is the class's
// geometric maximum radius; it is raised to cover the largest distance in
// either slice.
func Compute(self, others []int, realizations, maxRadius int) *Criteria {
	maxRadius = max(maxRadius, hamming.Max(self, others))

	selfCounts := countWithin(self, maxRadius, func(d, r int) bool { return d <= r })
	otherCounts := countWithin(others, maxRadius, func(d, r int) bool { return d < r })

	return build(characteristics(selfCounts, otherCounts, realizations, len(others)))
}

// ComputeClosest scores radii against a single closest class. Both counts use
// less-or-equal and both are normalized by realizations.
func ComputeClosest(self, closest []int, realizations, maxRadius int) *Criteria {
	maxRadius = max(maxRadius, hamming.Max(self, closest))

	selfCounts := countWithin(self, maxRadius, func(d, r int) bool { return d <= r })
	closestCounts := countWithin(closest, maxRadius, func(d, r int) bool { return d <= r })

	return build(characteristics(selfCounts, closestCounts, realizations, realizations))
}

func build(chars []Characteristics) *Criteria {
	c := &Criteria{
		Characteristics: chars,
		Kullback:        make([]float64, len(chars)),
		Shannon:         make([]float64, len(chars)),
		WorkingSpace:    make([]int, 0),
	}

	for r, ch := range chars {
		c.Kullback[r] = KullbackValue(ch)
		c.Shannon[r] = ShannonValue(ch)

		if r > 0 && inWorkingSpace(ch) {
			c.WorkingSpace = append(c.WorkingSpace, r)
		}
	}

	c.KullbackRadii = optimalRadii(c.Kullback, c.WorkingSpace)
	c.ShannonRadii = optimalRadii(c.Shannon, c.WorkingSpace)
	return c
}

// KullbackValue is undefined, and returned as a non-finite value, when
// alpha+beta is 0 or 2.
func KullbackValue(c Characteristics) float64 {
	errSum := c.Alpha + c.Beta
	return math.Log2((2-errSum)/errSum) * (1 - errSum)
}

// ShannonValue sums the four conditional entropy terms; a term that is not a
// finite number contributes nothing.
func ShannonValue(c Characteristics) float64 {
	sum := shannonTerm(c.Alpha, c.Alpha+c.D2) +
		shannonTerm(c.D1, c.D1+c.Beta) +
		shannonTerm(c.Beta, c.D1+c.Beta) +
		shannonTerm(c.D2, c.Alpha+c.D2)
	return 1 + 0.5*sum
}

func shannonTerm(x, y float64) float64 {
	p := x / y
	t := p * math.Log2(p)
	if !isFinite(t) {
		return 0
	}
	return t
}

// Values returns the curve of the given kind.
func (c *Criteria) Values(kind Kind) []float64 {
	if kind == Kullback {
		return c.Kullback
	}
	return c.Shannon
}

// OptimalRadii returns the maximizing radii of the given kind.
func (c *Criteria) OptimalRadii(kind Kind) []int {
	if kind == Kullback {
		return c.KullbackRadii
	}
	return c.ShannonRadii
}

// Max returns the first working-space radius maximizing the criterion of the
// given kind and its value. ok is false when no working-space radius has a
// finite value.
func (c *Criteria) Max(kind Kind) (radius int, value float64, ok bool) {
	radii := c.OptimalRadii(kind)
	if len(radii) == 0 {
		return 0, 0, false
	}
	return radii[0], c.Values(kind)[radii[0]], true
}

// MinRadius is the containment threshold used by the exam: the smallest
// Kullback-optimal radius. When every working-space Kullback value is
// non-finite the smallest Shannon-optimal radius is used instead. An empty
// working space yields 0.
func (c *Criteria) MinRadius() int {
	if len(c.WorkingSpace) == 0 {
		return 0
	}
	if len(c.KullbackRadii) > 0 {
		return minOf(c.KullbackRadii)
	}
	if len(c.ShannonRadii) > 0 {
		return minOf(c.ShannonRadii)
	}
	return 0
}

// InWorkingSpace reports whether radius belongs to the working space.
func (c *Criteria) InWorkingSpace(radius int) bool {
	for _, r := range c.WorkingSpace {
		if r == radius {
			return true
		}
	}
	return false
}

// MaxRadius is the exclusive upper bound of the scored radii.
func (c *Criteria) MaxRadius() int {
	return len(c.Characteristics)
}

func characteristics(selfCounts, otherCounts []int, selfTotal, otherTotal int) []Characteristics {
	chars := make([]Characteristics, len(selfCounts))
	for r := range selfCounts {
		d1 := ratio(selfCounts[r], selfTotal)
		beta := ratio(otherCounts[r], otherTotal)
		chars[r] = Characteristics{
			D1:    d1,
			Alpha: 1 - d1,
			Beta:  beta,
			D2:    1 - beta,
		}
	}
	return chars
}

func inWorkingSpace(c Characteristics) bool {
	return c.D1 >= 0.5 && c.D1 <= 1.0 && c.D2 >= 0.5 && c.D2 <= 1.0
}

func optimalRadii(values []float64, workingSpace []int) []int {
	best := math.Inf(-1)
	found := false
	for _, r := range workingSpace {
		v := values[r]
		if !isFinite(v) {
			continue
		}
		if !found || v > best {
			best = v
			found = true
		}
	}

	radii := make([]int, 0)
	if !found {
		return radii
	}
	for _, r := range workingSpace {
		if values[r] == best {
			radii = append(radii, r)
		}
	}
	return radii
}

func countWithin(distances []int, maxRadius int, within func(d, r int) bool) []int {
	counts := make([]int, maxRadius)
	for r := 0; r < maxRadius; r++ {
		for _, d := range distances {
			if within(d, r) {
				counts[r]++
			}
		}
	}
	return counts
}

func ratio(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total)
}

func minOf(values []int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
