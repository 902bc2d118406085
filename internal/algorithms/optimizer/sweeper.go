package optimizer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"satpr/internal/algorithms/criteria"
	"satpr/internal/models"
)

var (
	// ErrSuperseded is returned to a sweep that was abandoned because a newer
	// one started.
	ErrSuperseded = errors.New("optimization superseded by a newer request")
	// ErrCancelled is returned to a sweep aborted through Cancel.
	ErrCancelled = errors.New("optimization cancelled")
)

// Logger is the subset of the structured logger the sweeper needs.
type Logger interface {
	Info(component, message string, fields map[string]interface{})
	Warning(component, message string, fields map[string]interface{})
}

// Sweeper serializes sweeps with a last-request-wins policy: submitting a new
// sweep cancels the one in flight.
type Sweeper struct {
	optimizer *Optimizer
	logger    Logger

	mu      sync.Mutex
	current uuid.UUID
	cancel  context.CancelFunc
}

// NewSweeper creates a sweeper running sweeps on optimizer.
func NewSweeper(optimizer *Optimizer, logger Logger) *Sweeper {
	return &Sweeper{optimizer: optimizer, logger: logger}
}

// Submit cancels any running sweep and runs a new one. The returned ID names
// the request in logs.
func (s *Sweeper) Submit(ctx context.Context, classes []*models.AttributeMatrix, base int, kind criteria.Kind) (uuid.UUID, *Result, error) {
	sweepCtx, cancel := context.WithCancel(ctx)
	id := uuid.New()

	s.mu.Lock()
	if s.cancel != nil {
		s.logger.Warning("Sweeper", "cancelling superseded sweep", map[string]interface{}{
			"request_id": s.current.String(),
			"superseded": id.String(),
		})
		s.cancel()
	}
	s.current = id
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.current == id {
			s.cancel = nil
		}
		s.mu.Unlock()
		cancel()
	}()

	s.logger.Info("Sweeper", "sweep started", map[string]interface{}{
		"request_id": id.String(),
		"classes":    len(classes),
		"base_class": base,
		"criterion":  kind.String(),
	})

	start := time.Now()
	result, err := s.optimizer.Optimize(sweepCtx, classes, base, kind)
	if err != nil {
		if ctx.Err() == nil && errors.Is(err, context.Canceled) {
			s.mu.Lock()
			superseded := s.current != id
			s.mu.Unlock()

			if superseded {
				return id, nil, fmt.Errorf("sweep %s: %w", id, ErrSuperseded)
			}
			s.logger.Info("Sweeper", "sweep cancelled", map[string]interface{}{
				"request_id": id.String(),
			})
			return id, nil, fmt.Errorf("sweep %s: %w", id, ErrCancelled)
		}
		return id, nil, err
	}

	s.logger.Info("Sweeper", "sweep completed", map[string]interface{}{
		"request_id": id.String(),
		"best_delta": result.Best,
		"qualified":  result.Qualified,
		"duration":   time.Since(start).String(),
	})
	return id, result, nil
}

// Cancel aborts the running sweep, if any. The aborted Submit returns
// ErrCancelled.
func (s *Sweeper) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
