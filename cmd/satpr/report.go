package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"satpr/internal/algorithms/criteria"
	"satpr/internal/algorithms/geometry"
	"satpr/internal/services"
)

type classReport struct {
	Index            int      `json:"index"`
	Name             string   `json:"name"`
	Closest          int      `json:"closest"`
	CentroidDistance int      `json:"centroid_distance"`
	Radius           int      `json:"radius"`
	WorkingSpace     []int    `json:"working_space"`
	KullbackRadii    []int    `json:"kullback_radii"`
	ShannonRadii     []int    `json:"shannon_radii"`
	MaxKullback      *float64 `json:"max_kullback,omitempty"`
	MaxShannon       *float64 `json:"max_shannon,omitempty"`

	ClosestKullbackRadii []int            `json:"closest_kullback_radii,omitempty"`
	ClosestShannonRadii  []int            `json:"closest_shannon_radii,omitempty"`
	Points               []geometry.Point `json:"points"`
}

type optimizationReport struct {
	Best      byte      `json:"best_delta"`
	Criterion string    `json:"criterion"`
	Qualified bool      `json:"qualified"`
	Shannon   []float64 `json:"shannon"`
	Kullback  []float64 `json:"kullback"`
}

type examReport struct {
	Name      string   `json:"name"`
	Assigned  []int    `json:"assigned"`
	Unknown   int      `json:"unknown"`
	Ambiguous int      `json:"ambiguous"`
	Total     int      `json:"total"`
	Majority  int      `json:"majority"`
	Results   []string `json:"results"`
}

type report struct {
	Stats        services.Stats      `json:"stats"`
	Delta        byte                `json:"delta"`
	BaseClass    int                 `json:"base_class"`
	Classes      []classReport       `json:"classes"`
	Optimization *optimizationReport `json:"optimization,omitempty"`
	Exams        []examReport        `json:"exams"`
}

func buildReport(service *services.ClassificationService) report {
	r := report{Stats: service.Stats()}

	state := service.Snapshot()
	if state == nil {
		return r
	}

	r.Delta = state.Delta
	r.BaseClass = state.BaseClass

	names := service.TrainingNames()
	for i, c := range state.Criteria {
		g := state.Geometry[i]
		cr := classReport{
			Index:            i,
			Closest:          g.Closest,
			CentroidDistance: g.CentroidDistance,
			Radius:           state.Radii[i],
			WorkingSpace:     c.WorkingSpace,
			KullbackRadii:    c.KullbackRadii,
			ShannonRadii:     c.ShannonRadii,
			Points:           g.Points,
		}
		cr.ClosestKullbackRadii, cr.ClosestShannonRadii = state.ClosestRadii(i)
		if i < len(names) {
			cr.Name = names[i]
		}
		if _, v, ok := c.Max(criteria.Kullback); ok {
			cr.MaxKullback = finite(v)
		}
		if _, v, ok := c.Max(criteria.Shannon); ok {
			cr.MaxShannon = finite(v)
		}
		r.Classes = append(r.Classes, cr)
	}

	if opt := service.Optimization(); opt != nil {
		r.Optimization = &optimizationReport{
			Best:      opt.Best,
			Criterion: opt.Kind.String(),
			Qualified: opt.Qualified,
			Shannon:   opt.Curve(criteria.Shannon),
			Kullback:  opt.Curve(criteria.Kullback),
		}
	}

	for _, er := range service.ExamReports() {
		results := make([]string, len(er.Results))
		for i, res := range er.Results {
			results[i] = res.String()
		}
		r.Exams = append(r.Exams, examReport{
			Name:      er.Name,
			Assigned:  er.Tally.Assigned,
			Unknown:   er.Tally.Unknown,
			Ambiguous: er.Tally.Ambiguous,
			Total:     er.Tally.Total,
			Majority:  er.Tally.Majority(),
			Results:   results,
		})
	}

	return r
}

func writeJSON(w io.Writer, r report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func writeText(w io.Writer, r report) {
	fmt.Fprintf(w, "Number of attributes:   %d\n", r.Stats.Attributes)
	fmt.Fprintf(w, "Number of realizations: %d\n", r.Stats.Realizations)
	fmt.Fprintf(w, "Number of classes:      %d\n", r.Stats.Classes)
	fmt.Fprintf(w, "Number of exam classes: %d\n", r.Stats.ExamClasses)
	fmt.Fprintf(w, "Delta: %d  Base class: %d\n\n", r.Delta, r.BaseClass)

	fmt.Fprintf(w, "%-5s %-16s %-8s %-6s %-6s %-16s %s\n",
		"CLASS", "NAME", "CLOSEST", "DIST", "RADIUS", "CLOSEST RADII", "WORKING SPACE")
	for _, c := range r.Classes {
		closest := "-"
		if c.Closest != geometry.NoClosest {
			closest = fmt.Sprintf("%d", c.Closest)
		}
		fmt.Fprintf(w, "%-5d %-16s %-8s %-6d %-6d %-16s %s\n",
			c.Index, c.Name, closest, c.CentroidDistance, c.Radius, closestRadii(c), ints(c.WorkingSpace))
	}

	if o := r.Optimization; o != nil {
		fmt.Fprintf(w, "\nOptimization (%s): best delta %d, qualified %t\n", o.Criterion, o.Best, o.Qualified)
	}

	for _, e := range r.Exams {
		fmt.Fprintf(w, "\nExam class %s: assigned %s, unknown %d (ambiguous %d) of %d\n",
			e.Name, ints(e.Assigned), e.Unknown, e.Ambiguous, e.Total)
		for i, res := range e.Results {
			fmt.Fprintf(w, "  Exam result for %d: %s\n", i, res)
		}
	}
}

// closestRadii prefers the closest class's Kullback optimum, falling back to
// its Shannon optimum.
func closestRadii(c classReport) string {
	if len(c.ClosestKullbackRadii) > 0 {
		return ints(c.ClosestKullbackRadii)
	}
	if len(c.ClosestShannonRadii) > 0 {
		return ints(c.ClosestShannonRadii)
	}
	return "-"
}

func ints(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
