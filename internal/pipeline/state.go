package pipeline

import (
	"errors"
	"fmt"

	"satpr/internal/algorithms/criteria"
	"satpr/internal/algorithms/geometry"
	"satpr/internal/models"
	"satpr/internal/processing/binarize"
	"satpr/internal/processing/corridor"
)

var (
	ErrNoClasses = errors.New("no training classes loaded")
	ErrBaseClass = errors.New("base class index out of range")
)

// Options tune the recompute chain without changing its shape.
type Options struct {
	MeanMode     corridor.MeanMode
	CriteriaMode criteria.Mode
}

// DefaultOptions averages over realizations and pools every other class.
func DefaultOptions() Options {
	return Options{
		MeanMode:     corridor.MeanRealizations,
		CriteriaMode: criteria.Pooled,
	}
}

// ClassificationState is an immutable snapshot of one full recompute:
// corridor, binary matrices, reference vectors, distance tables, geometry,
// criteria and the containment radius of every training class. A changed
// input always produces a new snapshot.
type ClassificationState struct {
	Delta      byte
	BaseClass  int
	Options    Options
	Corridor   *corridor.Corridor
	Binary     []*models.BinaryMatrix
	References []models.ReferenceVector
	Tables     *geometry.Tables
	Geometry   []geometry.ClassGeometry
	Criteria   []*criteria.Criteria
	// Radii[i] is the containment radius of class i used by the exam.
	Radii []int
}

// Run recomputes the whole chain for the given training classes. Every class
// must share the shape of the first one; the loading boundary enforces this.
func Run(classes []*models.AttributeMatrix, delta byte, base int, opts Options) (*ClassificationState, error) {
	if len(classes) == 0 {
		return nil, ErrNoClasses
	}
	if base < 0 || base >= len(classes) {
		return nil, fmt.Errorf("base class %d of %d: %w", base, len(classes), ErrBaseClass)
	}

	c := corridor.Build(classes[base], delta, opts.MeanMode)
	return RunWithCorridor(classes, c, base, opts), nil
}

// RunWithCorridor recomputes everything downstream of an already built
// corridor. Callers sweeping the tolerance build the base corridor once and
// derive the others with Corridor.WithDelta.
func RunWithCorridor(classes []*models.AttributeMatrix, c *corridor.Corridor, base int, opts Options) *ClassificationState {
	matrices := binarize.All(classes, c)
	references := binarize.ReferenceVectors(matrices)
	tables := geometry.BuildTables(matrices, references)
	geometries := tables.DescribeAll()

	crit := make([]*criteria.Criteria, len(classes))
	radii := make([]int, len(classes))
	for i, g := range geometries {
		realizations := classes[i].Realizations

		switch opts.CriteriaMode {
		case criteria.Closest:
			crit[i] = criteria.ComputeClosest(g.Self, g.ClosestToCenter, realizations, g.MaxRadius)
		default:
			crit[i] = criteria.Compute(g.Self, g.Others, realizations, g.MaxRadius)
		}
		radii[i] = crit[i].MinRadius()
	}

	return &ClassificationState{
		Delta:      c.Delta,
		BaseClass:  base,
		Options:    opts,
		Corridor:   c,
		Binary:     matrices,
		References: references,
		Tables:     tables,
		Geometry:   geometries,
		Criteria:   crit,
		Radii:      radii,
	}
}

// Classes returns the number of training classes in the snapshot.
func (s *ClassificationState) Classes() int {
	return len(s.References)
}

// ClosestRadii returns the Kullback and Shannon optimal radii of the class
// closest to class i, or nil slices when i has no closest class.
func (s *ClassificationState) ClosestRadii(i int) (kullback, shannon []int) {
	closest := s.Geometry[i].Closest
	if closest == geometry.NoClosest {
		return nil, nil
	}
	return s.Criteria[closest].KullbackRadii, s.Criteria[closest].ShannonRadii
}

// Summary condenses the snapshot to the values the optimizer compares: the
// average over classes of each class's maximal Shannon and Kullback values in
// its working space, and whether every class has a working-space optimum.
type Summary struct {
	Delta           byte    `json:"delta"`
	AverageShannon  float64 `json:"average_shannon"`
	AverageKullback float64 `json:"average_kullback"`
	InWorkingSpace  bool    `json:"in_working_space"`
}
