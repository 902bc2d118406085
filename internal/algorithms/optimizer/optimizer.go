// Package optimizer sweeps the binarization tolerance over every byte value
// and picks the one that best separates the training classes.
package optimizer

import (
	"context"
	"errors"
	"math"
	"runtime"
	"sync"

	"satpr/internal/algorithms/criteria"
	"satpr/internal/models"
	"satpr/internal/pipeline"
	"satpr/internal/processing/corridor"
)

// Candidates is the number of tolerance values the sweep evaluates.
const Candidates = math.MaxUint8 + 1

var ErrNeedTwoClasses = errors.New("optimization requires at least two training classes")

// Result holds the per-delta summaries, indexed by delta, and the chosen
// delta. Best is 0 when no delta keeps every class inside its working space.
type Result struct {
	Best      byte
	Kind      criteria.Kind
	Qualified bool
	Summaries []pipeline.Summary
}

// Curve returns the per-delta averages of the given criterion for plotting.
func (r *Result) Curve(kind criteria.Kind) []float64 {
	curve := make([]float64, len(r.Summaries))
	for i, s := range r.Summaries {
		curve[i] = s.Average(kind)
	}
	return curve
}

// Optimizer runs the sweep on a bounded pool of workers. Every candidate owns
// its corridor, matrices and criteria; nothing is shared between workers
// except the read-only input classes.
type Optimizer struct {
	workers int
	opts    pipeline.Options
}

// New creates an optimizer with the given number of workers, or one per CPU
// when workers is not positive.
func New(workers int, opts pipeline.Options) *Optimizer {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Optimizer{workers: workers, opts: opts}
}

// Optimize evaluates every delta and selects the one with the highest average
// criterion of the given kind among deltas where every class has an optimum
// inside its working space. Ties keep the smallest delta. The sweep stops
// early with ctx.Err() when ctx is cancelled.
func (o *Optimizer) Optimize(ctx context.Context, classes []*models.AttributeMatrix, base int, kind criteria.Kind) (*Result, error) {
	if len(classes) < 2 {
		return nil, ErrNeedTwoClasses
	}
	if base < 0 || base >= len(classes) {
		return nil, pipeline.ErrBaseClass
	}

	baseCorridor := corridor.Build(classes[base], 0, o.opts.MeanMode)
	summaries := make([]pipeline.Summary, Candidates)

	workerPool := make(chan struct{}, o.workers)
	var wg sync.WaitGroup

sweep:
	for d := 0; d < Candidates; d++ {
		select {
		case workerPool <- struct{}{}:
		case <-ctx.Done():
			break sweep
		}

		wg.Add(1)
		go func(delta byte) {
			defer wg.Done()
			defer func() { <-workerPool }()

			if ctx.Err() != nil {
				return
			}

			state := pipeline.RunWithCorridor(classes, baseCorridor.WithDelta(delta), base, o.opts)
			summaries[delta] = state.Summarize()
		}(byte(d))
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	best, qualified := selectBest(summaries, kind)
	return &Result{
		Best:      best,
		Kind:      kind,
		Qualified: qualified,
		Summaries: summaries,
	}, nil
}

// Optimize runs a sweep with default options on all CPUs.
func Optimize(ctx context.Context, classes []*models.AttributeMatrix, base int, kind criteria.Kind) (*Result, error) {
	return New(0, pipeline.DefaultOptions()).Optimize(ctx, classes, base, kind)
}

func selectBest(summaries []pipeline.Summary, kind criteria.Kind) (byte, bool) {
	best := 0
	bestValue := math.Inf(-1)
	qualified := false

	for d, s := range summaries {
		if !s.InWorkingSpace {
			continue
		}
		v := s.Average(kind)
		if math.IsNaN(v) {
			continue
		}
		if !qualified || v > bestValue {
			best = d
			bestValue = v
			qualified = true
		}
	}

	return byte(best), qualified
}
