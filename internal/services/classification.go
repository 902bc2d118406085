package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"satpr/internal/algorithms/criteria"
	"satpr/internal/algorithms/optimizer"
	"satpr/internal/debug/timing"
	"satpr/internal/logger"
	"satpr/internal/models"
	"satpr/internal/pipeline"
)

// Settings are the user-visible parameters that drive a recompute.
type Settings struct {
	Delta     byte
	BaseClass int
	Criterion criteria.Kind
	Options   pipeline.Options
	Workers   int
}

// Stats describes what is loaded.
type Stats struct {
	Attributes   int
	Realizations int
	Classes      int
	ExamClasses  int
}

// ClassificationService owns the training and exam classes and republishes an
// immutable snapshot after every change. Every mutation blocks until the
// downstream chain is recomputed; readers never see a partial snapshot.
type ClassificationService struct {
	training *models.ClassSet
	exams    *models.ClassSet
	sweeper  *optimizer.Sweeper
	logger   logger.Logger
	timing   *timing.Tracker

	mu           sync.RWMutex
	settings     Settings
	generation   uint64
	state        *pipeline.ClassificationState
	reports      []pipeline.ExamReport
	optimization *optimizer.Result
}

// NewClassificationService creates a service with no classes loaded.
func NewClassificationService(settings Settings, log logger.Logger, tracker *timing.Tracker) *ClassificationService {
	return &ClassificationService{
		training: models.NewClassSet(),
		exams:    models.NewClassSet(),
		sweeper:  optimizer.NewSweeper(optimizer.New(settings.Workers, settings.Options), log),
		logger:   log,
		timing:   tracker,
		settings: settings,
	}
}

// AddTrainingClass loads a training class and recomputes. The first training
// class loaded becomes the default base class.
func (s *ClassificationService) AddTrainingClass(class *models.AttributeMatrix) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if attributes, _ := s.exams.Shape(); attributes != 0 && attributes != class.Attributes {
		err := &models.LoadError{
			Kind:           models.LoadSizeMismatch,
			Name:           class.Name,
			Width:          class.Attributes,
			Height:         class.Realizations,
			ExpectedWidth:  attributes,
			ExpectedHeight: class.Realizations,
		}
		s.logger.Warning("ClassificationService", "training class rejected", map[string]interface{}{
			"name":  class.Name,
			"error": err.Error(),
		})
		return -1, err
	}

	index, err := s.training.Add(class)
	if err != nil {
		s.logger.Warning("ClassificationService", "training class rejected", map[string]interface{}{
			"name":  class.Name,
			"error": err.Error(),
		})
		return -1, err
	}

	s.logger.Info("ClassificationService", "training class added", map[string]interface{}{
		"name":  class.Name,
		"index": index,
	})

	s.optimization = nil
	if err := s.recompute(); err != nil {
		return index, err
	}
	return index, nil
}

// AddExamClass loads an exam class and re-runs the exam.
func (s *ClassificationService) AddExamClass(class *models.AttributeMatrix) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if attributes, _ := s.training.Shape(); attributes != 0 && attributes != class.Attributes {
		err := &models.LoadError{
			Kind:           models.LoadSizeMismatch,
			Name:           class.Name,
			Width:          class.Attributes,
			Height:         class.Realizations,
			ExpectedWidth:  attributes,
			ExpectedHeight: class.Realizations,
		}
		s.logger.Warning("ClassificationService", "exam class rejected", map[string]interface{}{
			"name":  class.Name,
			"error": err.Error(),
		})
		return -1, err
	}

	index, err := s.exams.Add(class)
	if err != nil {
		s.logger.Warning("ClassificationService", "exam class rejected", map[string]interface{}{
			"name":  class.Name,
			"error": err.Error(),
		})
		return -1, err
	}

	s.logger.Info("ClassificationService", "exam class added", map[string]interface{}{
		"name":  class.Name,
		"index": index,
	})

	return index, s.exam()
}

// RemoveTrainingClass deletes a training class. The base class falls back to
// the first class.
func (s *ClassificationService) RemoveTrainingClass(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.training.Remove(index); err != nil {
		return err
	}

	s.settings.BaseClass = 0
	s.optimization = nil
	return s.recompute()
}

// RemoveExamClass deletes an exam class and re-runs the exam.
func (s *ClassificationService) RemoveExamClass(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.exams.Remove(index); err != nil {
		return err
	}
	return s.exam()
}

// SetDelta changes the tolerance and recomputes.
func (s *ClassificationService) SetDelta(delta byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.Delta = delta
	s.optimization = nil
	return s.recompute()
}

// SetBaseClass selects the class the corridor is built from and recomputes.
func (s *ClassificationService) SetBaseClass(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= s.training.Len() {
		return fmt.Errorf("base class %d of %d: %w", index, s.training.Len(), models.ErrClassIndex)
	}

	s.settings.BaseClass = index
	s.optimization = nil
	return s.recompute()
}

// SetCriterion selects the criterion the next optimization maximizes.
func (s *ClassificationService) SetCriterion(kind criteria.Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Criterion = kind
}

// Optimize sweeps every delta, applies the best one and recomputes. A sweep
// is abandoned with optimizer.ErrSuperseded when a newer sweep starts or the
// classes change while it runs.
func (s *ClassificationService) Optimize(ctx context.Context) (*optimizer.Result, error) {
	s.mu.RLock()
	classes := s.training.All()
	base := s.settings.BaseClass
	kind := s.settings.Criterion
	generation := s.generation
	s.mu.RUnlock()

	timingCtx := s.timing.StartTiming("optimize_delta")
	_, result, err := s.sweeper.Submit(ctx, classes, base, kind)
	s.timing.EndTiming(timingCtx)
	if err != nil {
		if !errors.Is(err, optimizer.ErrSuperseded) && !errors.Is(err, optimizer.ErrCancelled) {
			s.logger.Error("ClassificationService", err, map[string]interface{}{
				"operation": "optimize",
			})
		}
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != generation {
		return nil, fmt.Errorf("classes changed during sweep: %w", optimizer.ErrSuperseded)
	}

	s.settings.Delta = result.Best
	if err := s.recompute(); err != nil {
		return nil, err
	}
	s.optimization = result
	return result, nil
}

// CancelOptimization aborts a running sweep; its Optimize call returns
// optimizer.ErrCancelled.
func (s *ClassificationService) CancelOptimization() {
	s.sweeper.Cancel()
}

// Shutdown satisfies shutdown.Shutdownable.
func (s *ClassificationService) Shutdown() {
	s.CancelOptimization()
}

// Snapshot returns the latest recompute, or nil when no training class is
// loaded. The snapshot is immutable and safe to read concurrently.
func (s *ClassificationService) Snapshot() *pipeline.ClassificationState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// ExamReports returns the exam results of the latest snapshot.
func (s *ClassificationService) ExamReports() []pipeline.ExamReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]pipeline.ExamReport, len(s.reports))
	copy(out, s.reports)
	return out
}

// Optimization returns the last sweep result, cleared by any manual change of
// delta, base class or classes.
func (s *ClassificationService) Optimization() *optimizer.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.optimization
}

// Settings returns the current parameters.
func (s *ClassificationService) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Stats reports the shape and number of loaded classes.
func (s *ClassificationService) Stats() Stats {
	attributes, realizations := s.training.Shape()
	return Stats{
		Attributes:   attributes,
		Realizations: realizations,
		Classes:      s.training.Len(),
		ExamClasses:  s.exams.Len(),
	}
}

// TrainingNames returns the names of the training classes in index order.
func (s *ClassificationService) TrainingNames() []string {
	classes := s.training.All()
	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = c.Name
	}
	return names
}

// recompute must be called with mu held for writing.
func (s *ClassificationService) recompute() error {
	s.generation++

	classes := s.training.All()
	if len(classes) == 0 {
		s.state = nil
		s.reports = nil
		return nil
	}
	if s.settings.BaseClass >= len(classes) {
		s.settings.BaseClass = 0
	}

	ctx := s.timing.StartTiming("recompute")
	state, err := pipeline.Run(classes, s.settings.Delta, s.settings.BaseClass, s.settings.Options)
	s.timing.EndTiming(ctx)
	if err != nil {
		s.logger.Error("ClassificationService", err, map[string]interface{}{
			"operation": "recompute",
		})
		return err
	}

	s.state = state
	s.logger.Debug("ClassificationService", "recomputed", map[string]interface{}{
		"delta":      state.Delta,
		"base_class": state.BaseClass,
		"radii":      state.Radii,
	})

	return s.exam()
}

// exam must be called with mu held for writing.
func (s *ClassificationService) exam() error {
	if s.state == nil {
		s.reports = nil
		return nil
	}

	reports, err := s.state.Exam(s.exams.All())
	if err != nil {
		return err
	}
	s.reports = reports
	return nil
}
