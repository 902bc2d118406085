package geometry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"satpr/internal/algorithms/geometry"
	"satpr/internal/models"
)

func uniform(attributes, realizations int, bit byte) *models.BinaryMatrix {
	data := make([]byte, attributes*realizations)
	for i := range data {
		data[i] = bit
	}
	return &models.BinaryMatrix{Attributes: attributes, Realizations: realizations, Data: data}
}

func TestBuildTables_TwoSeparatedClasses(t *testing.T) {
	matrices := []*models.BinaryMatrix{uniform(4, 3, 255), uniform(4, 3, 0)}
	refs := []models.ReferenceVector{{255, 255, 255, 255}, {0, 0, 0, 0}}

	tables := geometry.BuildTables(matrices, refs)

	assert.Equal(t, [][]int{{0, 4}, {4, 0}}, tables.Centroids)
	assert.Equal(t, []int{0, 0, 0}, tables.ToRealizations[0][0])
	assert.Equal(t, []int{4, 4, 4}, tables.ToRealizations[0][1])
	assert.Equal(t, 1, tables.Closest(0))
	assert.Equal(t, 0, tables.Closest(1))
	assert.Equal(t, []int{4, 4, 4}, tables.Others(0))
}

func TestClosest_FirstMinimumWins(t *testing.T) {
	matrices := []*models.BinaryMatrix{uniform(2, 1, 0), uniform(2, 1, 0), uniform(2, 1, 0)}
	refs := []models.ReferenceVector{{0, 0}, {255, 0}, {0, 255}}

	tables := geometry.BuildTables(matrices, refs)

	assert.Equal(t, 1, tables.Closest(0), "classes 1 and 2 tie at distance 1")
	assert.Equal(t, 0, tables.Closest(1))
}

func TestClosest_SingleClass(t *testing.T) {
	tables := geometry.BuildTables(
		[]*models.BinaryMatrix{uniform(2, 1, 255)},
		[]models.ReferenceVector{{255, 255}},
	)

	assert.Equal(t, geometry.NoClosest, tables.Closest(0))

	g := tables.Describe(0)
	assert.Equal(t, geometry.NoClosest, g.Closest)
	assert.Empty(t, g.Others)
	assert.Empty(t, g.Points)
	assert.Equal(t, 0, g.MaxRadius)
}

func TestDescribe(t *testing.T) {
	matrices := []*models.BinaryMatrix{uniform(4, 2, 255), uniform(4, 2, 0), uniform(4, 3, 0)}
	refs := []models.ReferenceVector{{255, 255, 255, 255}, {0, 0, 0, 0}, {255, 0, 0, 0}}

	tables := geometry.BuildTables(matrices, refs)
	g := tables.Describe(0)

	require.Equal(t, 2, g.Closest, "class 2 centroid is 3 away, class 1 is 4 away")
	assert.Equal(t, 3, g.CentroidDistance)
	assert.Equal(t, []int{0, 0}, g.Self)
	assert.Equal(t, []int{4, 4, 4}, g.ClosestToCenter)
	assert.Equal(t, []int{3, 3}, g.SelfToClosest)
	assert.Equal(t, []int{1, 1, 1}, g.ClosestSelf)
	assert.Equal(t, []int{4, 4, 4, 4, 4}, g.Others)
	assert.Equal(t, 4, g.MaxRadius)
	assert.Len(t, tables.DescribeAll(), 3)
}

func TestEmbed(t *testing.T) {
	points := geometry.Embed([]int{0, 2, 1}, []int{4, 2, 4}, 4)

	// The third realization (1 from its centroid, 4 from the other, centroids
	// 4 apart) has a real solution at x = 1/8.
	require.Len(t, points, 3)
	assert.Equal(t, geometry.Point{X: 0, Y: 0}, points[0])
	assert.Equal(t, geometry.Point{X: 2, Y: 0}, points[1])
	assert.InDelta(t, 0.125, points[2].X, 1e-12)
}

func TestEmbed_DropsImpossibleTriangles(t *testing.T) {
	points := geometry.Embed([]int{1}, []int{4}, 1)
	assert.Empty(t, points)
}

func TestEmbed_ZeroCentroidDistance(t *testing.T) {
	assert.Empty(t, geometry.Embed([]int{1, 2}, []int{1, 2}, 0))
}
