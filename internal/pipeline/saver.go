package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"

	"satpr/internal/models"
)

// ReferenceStripHeight is the number of rows a reference vector is repeated
// over when written as an image.
const ReferenceStripHeight = 10

// StateSaver writes the binary matrices and reference vectors of a snapshot
// as grayscale images.
type StateSaver struct {
	logger        Logger
	timingTracker TimingTracker
}

// NewStateSaver creates a saver reporting through logger and timingTracker.
func NewStateSaver(logger Logger, timingTracker TimingTracker) *StateSaver {
	return &StateSaver{logger: logger, timingTracker: timingTracker}
}

// SaveState writes matrix_<i>.png and reference_<i>.png for every training
// class into dir.
func (s *StateSaver) SaveState(dir string, state *ClassificationState) error {
	ctx := s.timingTracker.StartTiming("save_state")
	defer s.timingTracker.EndTiming(ctx)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for i, matrix := range state.Binary {
		path := filepath.Join(dir, fmt.Sprintf("matrix_%d.png", i))
		if err := s.SaveBinaryMatrix(path, matrix); err != nil {
			return err
		}

		path = filepath.Join(dir, fmt.Sprintf("reference_%d.png", i))
		if err := s.SaveReferenceVector(path, state.References[i]); err != nil {
			return err
		}
	}

	s.logger.Info("StateSaver", "state saved", map[string]interface{}{
		"dir":     dir,
		"classes": len(state.Binary),
		"delta":   state.Delta,
	})
	return nil
}

// SaveBinaryMatrix writes matrix as a grayscale image with one row per
// realization.
func (s *StateSaver) SaveBinaryMatrix(path string, matrix *models.BinaryMatrix) error {
	return s.write(path, matrix.Data, matrix.Attributes, matrix.Realizations)
}

// SaveReferenceVector writes vector repeated over ReferenceStripHeight rows.
func (s *StateSaver) SaveReferenceVector(path string, vector models.ReferenceVector) error {
	return s.write(path, vector.Strip(ReferenceStripHeight), len(vector), ReferenceStripHeight)
}

func (s *StateSaver) write(path string, data []byte, width, height int) error {
	mat, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC1, data)
	if err != nil {
		return fmt.Errorf("failed to create image %s: %w", path, err)
	}
	defer mat.Close()

	if ok := gocv.IMWrite(path, mat); !ok {
		err := fmt.Errorf("failed to write image %s", path)
		s.logger.Error("StateSaver", err, map[string]interface{}{
			"width":  width,
			"height": height,
		})
		return err
	}

	s.logger.Debug("StateSaver", "image written", map[string]interface{}{
		"path":   path,
		"width":  width,
		"height": height,
	})
	return nil
}
