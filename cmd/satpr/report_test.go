package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"satpr/internal/algorithms/criteria"
	"satpr/internal/algorithms/geometry"
	"satpr/internal/debug/timing"
	"satpr/internal/logger"
	"satpr/internal/models"
	"satpr/internal/pipeline"
	"satpr/internal/services"
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

func reportService(t *testing.T) *services.ClassificationService {
	t.Helper()
	s := services.NewClassificationService(services.Settings{
		Delta:     5,
		Criterion: criteria.Shannon,
		Options:   pipeline.DefaultOptions(),
		Workers:   2,
	}, logger.Nop{}, timing.NewTracker(nil))

	_, err := s.AddTrainingClass(filled(t, "a", 4, 3, 10))
	require.NoError(t, err)
	_, err = s.AddTrainingClass(filled(t, "b", 4, 3, 200))
	require.NoError(t, err)

	unknown, err := models.NewAttributeMatrix("unknown", []byte{
		10, 10, 10, 10,
		10, 10, 200, 200,
	}, 4, 2)
	require.NoError(t, err)
	_, err = s.AddExamClass(unknown)
	require.NoError(t, err)
	return s
}

func TestBuildReport(t *testing.T) {
	r := buildReport(reportService(t))

	assert.Equal(t, byte(5), r.Delta)
	require.Len(t, r.Classes, 2)
	assert.Equal(t, "a", r.Classes[0].Name)
	assert.Equal(t, 1, r.Classes[0].Closest)
	assert.Equal(t, 4, r.Classes[0].CentroidDistance)
	assert.Equal(t, 1, r.Classes[0].Radius)
	assert.Nil(t, r.Classes[0].MaxKullback, "infinite values are omitted")
	require.NotNil(t, r.Classes[0].MaxShannon)
	assert.InDelta(t, 1.0, *r.Classes[0].MaxShannon, 1e-12)

	assert.Equal(t, []int{1, 2, 3}, r.Classes[0].ClosestShannonRadii)
	assert.Empty(t, r.Classes[0].ClosestKullbackRadii)
	assert.Equal(t, []geometry.Point{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 0, Y: 0}}, r.Classes[0].Points)

	require.Len(t, r.Exams, 1)
	assert.Equal(t, []string{"0", "Unknown"}, r.Exams[0].Results)
	assert.Nil(t, r.Optimization)
}

func TestBuildReport_Empty(t *testing.T) {
	s := services.NewClassificationService(services.Settings{Options: pipeline.DefaultOptions()},
		logger.Nop{}, timing.NewTracker(nil))

	r := buildReport(s)
	assert.Empty(t, r.Classes)
	assert.Empty(t, r.Exams)
}

func TestWriteJSON(t *testing.T) {
	s := reportService(t)
	_, err := s.Optimize(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, buildReport(s)))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "classes")
	assert.Contains(t, decoded, "optimization")

	classes := decoded["classes"].([]interface{})
	first := classes[0].(map[string]interface{})
	assert.Equal(t, []interface{}{1.0, 2.0, 3.0}, first["closest_shannon_radii"])
	assert.Len(t, first["points"], 3)
	point := first["points"].([]interface{})[0].(map[string]interface{})
	assert.Contains(t, point, "x")

	opt := decoded["optimization"].(map[string]interface{})
	assert.Equal(t, 0.0, opt["best_delta"])
	assert.Len(t, opt["shannon"], 256)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	writeText(&buf, buildReport(reportService(t)))

	out := buf.String()
	assert.Contains(t, out, "Number of attributes:   4")
	assert.Contains(t, out, "CLOSEST RADII")
	assert.Contains(t, out, "[1 2 3]")
	assert.Contains(t, out, "Exam class unknown")
	assert.Contains(t, out, "Exam result for 1: Unknown")
}

func TestListFlag(t *testing.T) {
	var l listFlag
	require.NoError(t, l.Set("a.png, b.png"))
	require.NoError(t, l.Set("c.png"))

	assert.Equal(t, listFlag{"a.png", "b.png", "c.png"}, l)
	assert.Equal(t, "a.png,b.png,c.png", l.String())
}

func TestRun_RequiresTraining(t *testing.T) {
	err := run([]string{"-log-level", "disabled"})
	assert.Error(t, err)

	err = run([]string{"-delta", "300", "-train", "a.png"})
	assert.Error(t, err)
}
