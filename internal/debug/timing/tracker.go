package timing

import (
	"context"
	"sync"
	"time"
)

type timingKey struct{}

// Logger receives a debug line for every completed timing.
type Logger interface {
	Debug(component, message string, fields map[string]interface{})
}

type timingInfo struct {
	operation string
	start     time.Time
}

// Tracker records how long named operations take.
type Tracker struct {
	timings map[string][]time.Duration
	mu      sync.RWMutex
	logger  Logger
	enabled bool
}

// NewTracker creates an enabled tracker. logger may be nil.
func NewTracker(logger Logger) *Tracker {
	return &Tracker{
		timings: make(map[string][]time.Duration),
		logger:  logger,
		enabled: true,
	}
}

// StartTiming returns a context carrying the start of operation.
func (tt *Tracker) StartTiming(operation string) context.Context {
	if !tt.isEnabled() {
		return context.Background()
	}

	return context.WithValue(context.Background(), timingKey{}, timingInfo{
		operation: operation,
		start:     time.Now(),
	})
}

// EndTiming records the duration of the operation started in ctx.
func (tt *Tracker) EndTiming(ctx context.Context) {
	if !tt.isEnabled() {
		return
	}

	info, ok := ctx.Value(timingKey{}).(timingInfo)
	if !ok {
		return
	}

	duration := time.Since(info.start)

	tt.mu.Lock()
	tt.timings[info.operation] = append(tt.timings[info.operation], duration)
	tt.mu.Unlock()

	if tt.logger != nil {
		tt.logger.Debug("Timing", "operation completed", map[string]interface{}{
			"operation": info.operation,
			"duration":  duration.String(),
		})
	}
}

func (tt *Tracker) GetTimings(operation string) []time.Duration {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	timings := tt.timings[operation]
	if timings == nil {
		return nil
	}

	result := make([]time.Duration, len(timings))
	copy(result, timings)
	return result
}

func (tt *Tracker) GetAverageTime(operation string) time.Duration {
	timings := tt.GetTimings(operation)
	if len(timings) == 0 {
		return 0
	}

	var total time.Duration
	for _, duration := range timings {
		total += duration
	}

	return total / time.Duration(len(timings))
}

func (tt *Tracker) SetEnabled(enabled bool) {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	tt.enabled = enabled
}

func (tt *Tracker) Reset(operation string) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	if operation == "" {
		tt.timings = make(map[string][]time.Duration)
	} else {
		delete(tt.timings, operation)
	}
}

func (tt *Tracker) isEnabled() bool {
	tt.mu.RLock()
	defer tt.mu.RUnlock()
	return tt.enabled
}
