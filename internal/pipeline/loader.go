package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"

	"satpr/internal/models"
)

const maxDimension = 32768

// ClassLoader decodes grayscale images into attribute matrices: image columns
// become attributes and image rows become realizations.
type ClassLoader struct {
	logger        Logger
	timingTracker TimingTracker
}

// NewClassLoader creates a loader reporting through logger and timingTracker.
func NewClassLoader(logger Logger, timingTracker TimingTracker) *ClassLoader {
	return &ClassLoader{logger: logger, timingTracker: timingTracker}
}

// LoadFile reads the image at path as 8-bit grayscale.
func (l *ClassLoader) LoadFile(path string) (*models.AttributeMatrix, error) {
	ctx := l.timingTracker.StartTiming("load_class_file")
	defer l.timingTracker.EndTiming(ctx)

	l.logger.Debug("ClassLoader", "loading class", map[string]interface{}{
		"path":      path,
		"extension": strings.ToLower(filepath.Ext(path)),
	})

	mat := gocv.IMRead(path, gocv.IMReadGrayScale)
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("failed to decode image %s", path)
	}

	return l.fromMat(className(path), mat)
}

// LoadBytes decodes an encoded image held in memory.
func (l *ClassLoader) LoadBytes(name string, data []byte) (*models.AttributeMatrix, error) {
	ctx := l.timingTracker.StartTiming("load_class_bytes")
	defer l.timingTracker.EndTiming(ctx)

	mat, err := gocv.IMDecode(data, gocv.IMReadGrayScale)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", name, err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("failed to decode image %s", name)
	}

	return l.fromMat(name, mat)
}

func (l *ClassLoader) fromMat(name string, mat gocv.Mat) (*models.AttributeMatrix, error) {
	width, height := mat.Cols(), mat.Rows()
	if width > maxDimension || height > maxDimension {
		return nil, fmt.Errorf("image %s is %dx%d, exceeds maximum size %d", name, width, height, maxDimension)
	}
	if mat.Channels() != 1 {
		return nil, fmt.Errorf("image %s has %d channels after grayscale decode", name, mat.Channels())
	}

	matrix, err := models.NewAttributeMatrix(name, mat.ToBytes(), width, height)
	if err != nil {
		return nil, err
	}

	l.logger.Info("ClassLoader", "class loaded", map[string]interface{}{
		"name":         name,
		"attributes":   matrix.Attributes,
		"realizations": matrix.Realizations,
	})

	return matrix, nil
}

func className(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
