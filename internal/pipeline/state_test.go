package pipeline_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"satpr/internal/algorithms/criteria"
	"satpr/internal/algorithms/exam"
	"satpr/internal/algorithms/geometry"
	"satpr/internal/models"
	"satpr/internal/pipeline"
)

func filled(t *testing.T, name string, width, height int, value byte) *models.AttributeMatrix {
	t.Helper()
	raw := make([]byte, width*height)
	for i := range raw {
		raw[i] = value
	}
	m, err := models.NewAttributeMatrix(name, raw, width, height)
	require.NoError(t, err)
	return m
}

func separated(t *testing.T) []*models.AttributeMatrix {
	return []*models.AttributeMatrix{
		filled(t, "a", 4, 3, 10),
		filled(t, "b", 4, 3, 200),
	}
}

func TestRun_SeparatedClasses(t *testing.T) {
	state, err := pipeline.Run(separated(t), 5, 0, pipeline.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, byte(5), state.Delta)
	assert.Equal(t, []byte{5, 5, 5, 5}, state.Corridor.Lower)
	assert.Equal(t, []byte{15, 15, 15, 15}, state.Corridor.Upper)

	require.Len(t, state.Binary, 2)
	for _, bit := range state.Binary[0].Data {
		assert.Equal(t, models.BitTrue, bit)
	}
	for _, bit := range state.Binary[1].Data {
		assert.Equal(t, models.BitFalse, bit)
	}

	assert.Equal(t, models.ReferenceVector{255, 255, 255, 255}, state.References[0])
	assert.Equal(t, models.ReferenceVector{0, 0, 0, 0}, state.References[1])
	assert.Equal(t, 4, state.Tables.Centroids[0][1])
	assert.Equal(t, []int{1, 1}, state.Radii)
	assert.Equal(t, 2, state.Classes())

	found := state.ExamRows([][]byte{{255, 255, 255, 255}})
	assert.Equal(t, exam.Found, found[0].Outcome)
	assert.Equal(t, 0, found[0].Class)

	halfway := state.ExamRows([][]byte{{255, 255, 0, 0}})
	assert.Equal(t, exam.Unknown, halfway[0].Outcome)
}

func TestRun_SweepsUpToGeometricMaxRadius(t *testing.T) {
	near, err := models.NewAttributeMatrix("near", []byte{
		200, 200, 10, 10, 10, 10,
		10, 200, 200, 10, 10, 10,
		200, 10, 200, 10, 10, 10,
	}, 6, 3)
	require.NoError(t, err)
	classes := []*models.AttributeMatrix{filled(t, "base", 6, 3, 10), near}

	state, err := pipeline.Run(classes, 5, 0, pipeline.DefaultOptions())
	require.NoError(t, err)

	// Class 1 collapses onto 000111: every realization is 2 from class 0's
	// centroid but class 0's realizations are 3 from class 1's centroid.
	assert.Equal(t, models.ReferenceVector{0, 0, 0, 255, 255, 255}, state.References[1])
	assert.Equal(t, []int{2, 2, 2}, state.Geometry[0].Others)
	assert.Equal(t, []int{3, 3, 3}, state.Geometry[0].SelfToClosest)
	assert.Equal(t, 3, state.Geometry[0].MaxRadius)

	c := state.Criteria[0]
	assert.Equal(t, state.Geometry[0].MaxRadius, c.MaxRadius())
	assert.Equal(t, []int{1, 2}, c.ShannonRadii)
	assert.Equal(t, 1, state.Radii[0])
}

func TestRun_ClosestMode(t *testing.T) {
	opts := pipeline.DefaultOptions()
	opts.CriteriaMode = criteria.Closest

	state, err := pipeline.Run(separated(t), 5, 0, opts)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 1}, state.Radii)
	assert.Equal(t, criteria.Closest, state.Options.CriteriaMode)
}

func TestRun_SingleClassSingleRealization(t *testing.T) {
	classes := []*models.AttributeMatrix{filled(t, "lonely", 4, 1, 90)}

	var state *pipeline.ClassificationState
	require.NotPanics(t, func() {
		var err error
		state, err = pipeline.Run(classes, 5, 0, pipeline.DefaultOptions())
		require.NoError(t, err)
	})

	assert.Equal(t, geometry.NoClosest, state.Geometry[0].Closest)
	assert.Empty(t, state.Criteria[0].WorkingSpace)
	assert.Equal(t, []int{0}, state.Radii)

	kullback, shannon := state.ClosestRadii(0)
	assert.Nil(t, kullback)
	assert.Nil(t, shannon)

	results := state.ExamRows([][]byte{{0, 0, 0, 0}})
	assert.Equal(t, exam.Unknown, results[0].Outcome)

	summary := state.Summarize()
	assert.False(t, summary.InWorkingSpace)
}

func TestRun_Errors(t *testing.T) {
	_, err := pipeline.Run(nil, 5, 0, pipeline.DefaultOptions())
	assert.ErrorIs(t, err, pipeline.ErrNoClasses)

	_, err = pipeline.Run(separated(t), 5, 2, pipeline.DefaultOptions())
	assert.ErrorIs(t, err, pipeline.ErrBaseClass)

	_, err = pipeline.Run(separated(t), 5, -1, pipeline.DefaultOptions())
	assert.ErrorIs(t, err, pipeline.ErrBaseClass)
}

func TestSummarize(t *testing.T) {
	state, err := pipeline.Run(separated(t), 5, 0, pipeline.DefaultOptions())
	require.NoError(t, err)

	summary := state.Summarize()

	assert.Equal(t, byte(5), summary.Delta)
	assert.True(t, summary.InWorkingSpace)
	assert.InDelta(t, 1.0, summary.AverageShannon, 1e-12)
	assert.Equal(t, 0.0, summary.AverageKullback, "perfect separation has no finite Kullback value")
	assert.Equal(t, summary.AverageShannon, summary.Average(criteria.Shannon))
	assert.Equal(t, summary.AverageKullback, summary.Average(criteria.Kullback))
}

func TestClosestRadii(t *testing.T) {
	state, err := pipeline.Run(separated(t), 5, 0, pipeline.DefaultOptions())
	require.NoError(t, err)

	_, shannon := state.ClosestRadii(0)
	assert.Equal(t, state.Criteria[1].ShannonRadii, shannon)
}

func TestExam(t *testing.T) {
	state, err := pipeline.Run(separated(t), 5, 0, pipeline.DefaultOptions())
	require.NoError(t, err)

	unknown, err := models.NewAttributeMatrix("unknown", []byte{
		10, 10, 10, 10,
		200, 200, 200, 200,
		10, 10, 200, 200,
	}, 4, 3)
	require.NoError(t, err)

	reports, err := state.Exam([]*models.AttributeMatrix{unknown})
	require.NoError(t, err)
	require.Len(t, reports, 1)

	report := reports[0]
	assert.Equal(t, "unknown", report.Name)
	require.Len(t, report.Results, 3)
	assert.Equal(t, 0, report.Results[0].Class)
	assert.Equal(t, 1, report.Results[1].Class)
	assert.Equal(t, exam.Unknown, report.Results[2].Outcome)
	assert.Equal(t, []int{1, 1}, report.Tally.Assigned)
	assert.Equal(t, 1, report.Tally.Unknown)
}

func TestExam_AttributeMismatch(t *testing.T) {
	state, err := pipeline.Run(separated(t), 5, 0, pipeline.DefaultOptions())
	require.NoError(t, err)

	narrow := filled(t, "narrow", 3, 3, 10)
	_, err = state.Exam([]*models.AttributeMatrix{narrow})
	require.Error(t, err)

	var loadErr *models.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, models.LoadSizeMismatch, loadErr.Kind)
	assert.Equal(t, 4, loadErr.ExpectedWidth)
	assert.ErrorIs(t, err, models.ErrSizeMismatch)
}

func TestExamRows_BadLengthPanics(t *testing.T) {
	state, err := pipeline.Run(separated(t), 5, 0, pipeline.DefaultOptions())
	require.NoError(t, err)

	assert.Panics(t, func() { state.ExamRows([][]byte{{255, 255}}) })
}
