package shapeloader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `type,id,geography,attributes
circle,1,40.5:-83.5:500,
edge,2,10;40.0;-83.0:11;40.01;-83.0,way_type=residential:way_id=99
edge,3,12;40.0;-83.2:13;40.01;-83.2,way_type=pedestrian
grid,0_0,40.0:-84.0:41.0:-83.0,
`

func TestLoadParsesAllShapeTypes(t *testing.T) {
	res, err := Load(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	require.Len(t, res.Shapes, 2, "one circle and one grid cell; the pedestrian edge is blacklisted")
	require.Len(t, res.Edges, 1, "only the residential edge should load")
	require.Len(t, res.Errors, 1, "the pedestrian edge should be reported, not silently dropped")
}

func TestVertexDeduplication(t *testing.T) {
	csv := `type,id,geography,attributes
edge,1,10;40.0;-83.0:11;40.01;-83.0,way_type=residential
edge,2,10;40.0;-83.0:12;40.02;-83.0,way_type=residential
`
	res, err := Load(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, res.Edges, 2)
	assert.Same(t, res.Edges[0].V1, res.Edges[1].V1, "edges sharing vertex uid 10 should share the same *geo.Vertex")
}

func TestVertexReuseWithDifferentCoordinateErrors(t *testing.T) {
	csv := `type,id,geography,attributes
edge,1,10;40.0;-83.0:11;40.01;-83.0,way_type=residential
edge,2,10;41.0;-83.0:12;40.02;-83.0,way_type=residential
`
	res, err := Load(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, res.Edges, 1)
	require.Len(t, res.Errors, 1)
}

func TestLoadRejectsOutOfRangeCircle(t *testing.T) {
	csv := `type,id,geography,attributes
circle,1,95.0:-83.5:500,
`
	res, err := Load(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Empty(t, res.Shapes)
	require.Len(t, res.Errors, 1)
}

func TestDeriveAreasDerivesOneAreaPerLoadedEdge(t *testing.T) {
	res, err := Load(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	shapes := res.DeriveAreas(10)
	require.Len(t, shapes, 1)
	assert.Equal(t, res.Edges[0].UID, shapes[0].UID)
}
