// Package geometry derives the Hamming-space layout of the training classes:
// inter-centroid distances, realization-to-centroid distances, the closest
// class of every class and a 2-D embedding of each realization for display.
package geometry

import (
	"math"

	"satpr/internal/models"
	"satpr/internal/processing/hamming"
)

// NoClosest marks a class that has no other class to compare against.
const NoClosest = -1

// Tables holds every distance the criteria engine needs.
type Tables struct {
	// Centroids[i][j] is the distance between reference vectors i and j.
	Centroids [][]int
	// ToRealizations[i][j] holds the distance from every realization of class
	// j to reference vector i.
	ToRealizations [][][]int
}

// BuildTables measures all class pairs. matrices and references are indexed by
// class and must have equal length.
func BuildTables(matrices []*models.BinaryMatrix, references []models.ReferenceVector) *Tables {
	n := len(matrices)
	centroids := make([][]int, n)
	toRealizations := make([][][]int, n)

	for i := 0; i < n; i++ {
		centroids[i] = make([]int, n)
		toRealizations[i] = make([][]int, n)
		for j := 0; j < n; j++ {
			centroids[i][j] = hamming.Distance(references[i], references[j])
			toRealizations[i][j] = hamming.ToEach(matrices[j].Data, references[i])
		}
	}

	return &Tables{Centroids: centroids, ToRealizations: toRealizations}
}

// Closest returns the class whose reference vector is nearest to class i,
// excluding i itself. The first minimum wins; NoClosest is returned when i is
// the only class.
func (t *Tables) Closest(i int) int {
	closest := NoClosest
	for j := range t.Centroids {
		if j == i {
			continue
		}
		if closest == NoClosest || t.Centroids[i][j] < t.Centroids[i][closest] {
			closest = j
		}
	}
	return closest
}

// Others pools the distances from every other class's realizations to
// reference vector i, in class order.
func (t *Tables) Others(i int) []int {
	pooled := make([]int, 0)
	for j := range t.ToRealizations[i] {
		if j == i {
			continue
		}
		pooled = append(pooled, t.ToRealizations[i][j]...)
	}
	return pooled
}

// Point is a realization placed on the plane spanned by its own centroid at
// the origin and the closest centroid on the positive x axis.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ClassGeometry is the view of one class against its closest neighbour.
type ClassGeometry struct {
	Class            int
	Closest          int
	CentroidDistance int
	// Self holds distances from this class's realizations to its own centroid.
	Self []int
	// ClosestToCenter holds distances from the closest class's realizations
	// to this class's centroid.
	ClosestToCenter []int
	// SelfToClosest holds distances from this class's realizations to the
	// closest class's centroid.
	SelfToClosest []int
	// ClosestSelf holds distances from the closest class's realizations to
	// their own centroid.
	ClosestSelf []int
	// Others pools the distances of every other class's realizations to this
	// class's centroid.
	Others    []int
	MaxRadius int
	Points    []Point
}

// Describe assembles the geometry of class i.
func (t *Tables) Describe(i int) ClassGeometry {
	g := ClassGeometry{
		Class:   i,
		Closest: t.Closest(i),
		Self:    t.ToRealizations[i][i],
		Others:  t.Others(i),
	}

	if g.Closest != NoClosest {
		c := g.Closest
		g.CentroidDistance = t.Centroids[i][c]
		g.ClosestToCenter = t.ToRealizations[i][c]
		g.SelfToClosest = t.ToRealizations[c][i]
		g.ClosestSelf = t.ToRealizations[c][c]
		g.Points = Embed(g.Self, g.SelfToClosest, g.CentroidDistance)
	}

	g.MaxRadius = hamming.Max(g.Self, g.Others, g.ClosestToCenter, g.SelfToClosest, g.ClosestSelf)
	return g
}

// DescribeAll assembles the geometry of every class.
func (t *Tables) DescribeAll() []ClassGeometry {
	out := make([]ClassGeometry, len(t.Centroids))
	for i := range out {
		out[i] = t.Describe(i)
	}
	return out
}

// Embed places each realization by trilateration from its distance to its own
// centroid, its distance to the closest centroid and the distance between the
// two centroids. Realizations whose distances violate the triangle inequality
// have no real solution and are dropped. A zero centroid distance yields no
// points.
func Embed(toSelf, toClosest []int, centroidDistance int) []Point {
	if centroidDistance == 0 {
		return []Point{}
	}

	d := float64(centroidDistance)
	points := make([]Point, 0, len(toSelf))
	for k := range toSelf {
		if k >= len(toClosest) {
			break
		}

		rs := float64(toSelf[k])
		rc := float64(toClosest[k])

		x := (d*d - rc*rc + rs*rs) / (2 * d)
		y := math.Sqrt(rs*rs - x*x)

		if isFinite(x) && isFinite(y) {
			points = append(points, Point{X: x, Y: y})
		}
	}
	return points
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
