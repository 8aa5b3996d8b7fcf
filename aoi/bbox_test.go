package aoi

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitSquare() orb.Polygon {
	return orb.Polygon{{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}}}
}

func TestBoundingBoxUnitSquare(t *testing.T) {
	box, err := BoundingBox([]orb.Polygon{unitSquare()})
	require.NoError(t, err)
	assert.Equal(t, orb.Point{0.5, 0.5}, box.Center)
	assert.Equal(t, orb.Point{1, 1}, box.Size)
	assert.Equal(t, orb.Point{0, 0}, box.Min)
	assert.Equal(t, orb.Point{1, 1}, box.Max)
}

func TestBoundingBoxSeveralPolygons(t *testing.T) {
	other := OffsetPolygon(unitSquare(), orb.Point{3, -2})
	box, err := BoundingBox([]orb.Polygon{unitSquare(), other})
	require.NoError(t, err)
	assert.Equal(t, orb.Point{0, -2}, box.Min)
	assert.Equal(t, orb.Point{4, 1}, box.Max)
	assert.Equal(t, orb.Point{4, 3}, box.Size)
	assert.Equal(t, orb.Point{2, -0.5}, box.Center)
}

func TestBoundingBoxEmpty(t *testing.T) {
	_, err := BoundingBox(nil)
	assert.True(t, errors.Is(err, ErrEmptyGeometry))

	_, err = BoundingBox([]orb.Polygon{unitSquare(), {}})
	assert.True(t, errors.Is(err, ErrEmptyGeometry))

	_, err = BoundingBox([]orb.Polygon{{orb.Ring{}}})
	assert.True(t, errors.Is(err, ErrEmptyGeometry))
}

func TestRectangleIsClosed(t *testing.T) {
	ring := Rectangle(orb.Point{1, 2}, orb.Point{3, 4})
	require.Len(t, ring, 5)
	assert.Equal(t, ring[0], ring[4])
	assert.Equal(t, orb.Point{1, 4}, ring[1])
	assert.Equal(t, orb.Point{3, 4}, ring[2])
	assert.Equal(t, orb.Point{3, 2}, ring[3])
	assert.Equal(t, orb.Point{2, 3}, cornerMean(ring))
}

func TestTable(t *testing.T) {
	projected := AOI{Ring: Rectangle(orb.Point{100, 200}, orb.Point{300, 600})}
	geographic := AOI{Ring: Rectangle(orb.Point{-58, -33}, orb.Point{-57, -32})}

	rows := Table(projected, geographic)
	require.Len(t, rows, 4)
	assert.Equal(t, TableRow{Axis: "easting", Min: 100, Max: 300, Center: 200, Size: 200}, rows[0])
	assert.Equal(t, TableRow{Axis: "northing", Min: 200, Max: 600, Center: 400, Size: 400}, rows[1])
	assert.Equal(t, "lon", rows[2].Axis)
	assert.InDelta(t, -57.5, rows[2].Center, 1e-12)
	assert.InDelta(t, 1, rows[3].Size, 1e-12)
}

func TestBuild(t *testing.T) {
	poly := orb.Polygon{Rectangle(orb.Point{400000, 6400000}, orb.Point{410000, 6420000})}
	projected, geographic, box, err := Build([]orb.Polygon{poly}, 32721)
	require.NoError(t, err)

	assert.Equal(t, orb.Point{405000, 6410000}, projected.Center)
	assert.Equal(t, orb.Point{10000, 20000}, box.Size)
	assert.Equal(t, 4326, geographic.EPSG)
	require.Len(t, geographic.Ring, 5)
	assert.Equal(t, geographic.Ring[0], geographic.Ring[4])

	// Zone 21S lies between -60 and -54 degrees of longitude.
	for _, p := range geographic.Ring {
		assert.Greater(t, p[0], -60.0)
		assert.Less(t, p[0], -54.0)
		assert.Less(t, p[1], 0.0)
	}
	assert.Less(t, geographic.Ring[0][0], geographic.Ring[2][0])
	assert.Less(t, geographic.Ring[0][1], geographic.Ring[2][1])
	assert.Equal(t, cornerMean(geographic.Ring), geographic.Center)
}

func TestBuildEmpty(t *testing.T) {
	_, _, _, err := Build(nil, 32721)
	assert.True(t, errors.Is(err, ErrEmptyGeometry))
}
