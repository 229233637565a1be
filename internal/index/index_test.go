package index

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/couchcryptid/climate-normals/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(id string, lat, lon any, extra map[string]any) map[string]any {
	r := map[string]any{"id": id, "lat": lat, "lon": lon}
	for k, v := range extra {
		r[k] = v
	}
	return r
}

func TestBuild_EmptyInputIsValid(t *testing.T) {
	ix, report := Build(nil)
	assert.Zero(t, report.Total)
	assert.Zero(t, ix.Len())

	_, err := ix.Nearest(domain.Geo{Lat: 45, Lon: -122})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBuild_AllRowsInvalidIsValid(t *testing.T) {
	ix, report := Build([]map[string]any{
		row("A", "91.0", "-120.0", nil),
		row("", "45.0", "-120.0", nil),
	})
	assert.Equal(t, 2, report.Skipped)
	assert.Zero(t, ix.Len())

	_, err := ix.Nearest(domain.Geo{Lat: 45, Lon: -122})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBuild_SkipCounting(t *testing.T) {
	ix, report := Build([]map[string]any{
		row("A", "45.0", "-122.0", nil),
		row("B", "91.0", "-122.0", nil), // out of range; exactly one skip
		row("C", "47.6", "-122.3", nil),
	})
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Loaded)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Reasons["lat/lon: out of range"])
	require.Len(t, report.Samples, 1)
	assert.Contains(t, report.Samples[0], "row 1")
	assert.Equal(t, 2, ix.Len())
}

func TestBuild_PlaceholderCoordinatesExcluded(t *testing.T) {
	_, report := Build([]map[string]any{
		row("A", 45.0, -122.0, map[string]any{"hdd65": 4500.0, "cdd65": 300.0}),
		row("B", 47.6, -122.3, map[string]any{"hdd65": 5000.0, "cdd65": 200.0}),
		row("C", 0.0, 0.0, map[string]any{"hdd65": 1000.0, "cdd65": 9000.0}),
	})
	assert.Equal(t, 2, report.Loaded)
	assert.Equal(t, 1, report.Reasons["lat/lon: placeholder (0,0)"])
}

func TestBuild_DuplicateIDLastWins(t *testing.T) {
	ix, report := Build([]map[string]any{
		row("A", "45.0", "-122.0", map[string]any{"hdd65": "1000"}),
		row("B", "10.0", "10.0", nil),
		row("A", "45.0", "-122.0", map[string]any{"hdd65": "4500"}),
	})
	assert.Equal(t, 2, report.Loaded)
	assert.Equal(t, 1, report.Replaced)

	res, err := ix.Nearest(domain.Geo{Lat: 45.0, Lon: -122.0})
	require.NoError(t, err)
	assert.Equal(t, "A", res.Station.ID)
	require.NotNil(t, res.Station.HDD65)
	assert.InDelta(t, 4500, *res.Station.HDD65, 1e-9)
}

func TestNearest_InvalidQuery(t *testing.T) {
	ix, _ := Build([]map[string]any{row("A", "45.0", "-122.0", nil)})

	for _, q := range []domain.Geo{
		{Lat: 90.1, Lon: 0},
		{Lat: -91, Lon: 0},
		{Lat: 0, Lon: 180.5},
		{Lat: 0, Lon: -181},
	} {
		_, err := ix.Nearest(q)
		assert.ErrorIs(t, err, domain.ErrInvalidQuery, "query %+v", q)
	}
}

// The three-record scenario: C is dropped as a placeholder, A wins for a
// Portland-area query at well under 100 km.
func TestNearest_PortlandScenario(t *testing.T) {
	ix, report := Build([]map[string]any{
		row("A", 45.0, -122.0, map[string]any{"hdd65": 4500.0, "cdd65": 300.0}),
		row("B", 47.6, -122.3, map[string]any{"hdd65": 5000.0, "cdd65": 200.0}),
		row("C", 0.0, 0.0, map[string]any{"hdd65": 1000.0, "cdd65": 9000.0}),
	})
	require.Equal(t, 2, report.Loaded)

	res, err := ix.Nearest(domain.Geo{Lat: 45.5, Lon: -122.1})
	require.NoError(t, err)
	assert.Equal(t, "A", res.Station.ID)
	assert.Less(t, res.DistanceKm, 100.0)
	require.NotNil(t, res.Station.HDD65)
	assert.InDelta(t, 4500, *res.Station.HDD65, 1e-9)
	require.NotNil(t, res.Station.CDD65)
	assert.InDelta(t, 300, *res.Station.CDD65, 1e-9)
}

func TestNearest_TieBreakLowestID(t *testing.T) {
	// Two stations mirrored in longitude around the query, same latitude:
	// exactly equidistant. The lowest ID must win regardless of input order.
	rowsForward := []map[string]any{
		row("ZULU", 10.0, 12.0, nil),
		row("ALFA", 10.0, 10.0, nil),
	}
	rowsReverse := []map[string]any{rowsForward[1], rowsForward[0]}

	for name, rows := range map[string][]map[string]any{"forward": rowsForward, "reverse": rowsReverse} {
		t.Run(name, func(t *testing.T) {
			ix, _ := Build(rows)
			res, err := ix.Nearest(domain.Geo{Lat: 10.0, Lon: 11.0})
			require.NoError(t, err)
			assert.Equal(t, "ALFA", res.Station.ID)
		})
	}
}

func TestNearest_TieEpsilonWindow(t *testing.T) {
	// BRAVO is about 110 m closer to the query than ALFA. Outside the default
	// epsilon that is a strict ordering; widening the window to 1 km makes the
	// two equidistant and the lexicographic tie-break take over.
	rows := []map[string]any{
		row("ALFA", 10.0, 12.001, nil),
		row("BRAVO", 10.0, 10.0, nil),
	}
	q := domain.Geo{Lat: 10.0, Lon: 11.0}

	ix, _ := Build(rows)
	res, err := ix.Nearest(q)
	require.NoError(t, err)
	assert.Equal(t, "BRAVO", res.Station.ID, "default epsilon keeps the strictly nearer station")

	for name, ordered := range map[string][]map[string]any{
		"forward": rows,
		"reverse": {rows[1], rows[0]},
	} {
		t.Run(name, func(t *testing.T) {
			ix, _ := Build(ordered, WithTieEpsilon(1.0))
			res, err := ix.Nearest(q)
			require.NoError(t, err)
			assert.Equal(t, "ALFA", res.Station.ID)
		})
	}
}

func randomRows(rng *rand.Rand, n int) []map[string]any {
	rows := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, row(
			fmt.Sprintf("S%05d", i),
			rng.Float64()*180-90,
			rng.Float64()*360-180,
			nil,
		))
	}
	return rows
}

func TestNearest_IsMinimal(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	rows := randomRows(rng, 60)
	ix, report := Build(rows)
	require.Equal(t, 60, report.Loaded)

	for i := 0; i < 100; i++ {
		q := domain.Geo{Lat: rng.Float64()*180 - 90, Lon: rng.Float64()*360 - 180}
		res, err := ix.Nearest(q)
		require.NoError(t, err)

		for j := range rows {
			d := domain.HaversineKm(q, domain.Geo{Lat: rows[j]["lat"].(float64), Lon: rows[j]["lon"].(float64)})
			assert.LessOrEqual(t, res.DistanceKm, d+1e-9,
				"query %+v: station %v is closer than reported nearest", q, rows[j]["id"])
		}
	}
}

// The grid is an acceleration structure, not an approximation: its answers
// must be identical to the linear scan, including near the poles and across
// the antimeridian.
func TestNearest_GridMatchesLinear(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	rows := randomRows(rng, 500)

	gridIx, _ := Build(rows, WithGridThreshold(1))
	linearIx, _ := Build(rows, WithGridThreshold(1<<30))
	require.NotNil(t, gridIx.grid)
	require.Nil(t, linearIx.grid)

	queries := []domain.Geo{
		{Lat: 90, Lon: 0},
		{Lat: -90, Lon: 45},
		{Lat: 89.5, Lon: -179.5},
		{Lat: 0.01, Lon: 179.99},
		{Lat: 0.01, Lon: -179.99},
		{Lat: 45.5, Lon: -122.1},
	}
	for i := 0; i < 300; i++ {
		queries = append(queries, domain.Geo{Lat: rng.Float64()*180 - 90, Lon: rng.Float64()*360 - 180})
	}

	for _, q := range queries {
		gridRes, err := gridIx.Nearest(q)
		require.NoError(t, err)
		linRes, err := linearIx.Nearest(q)
		require.NoError(t, err)

		assert.Equal(t, linRes.Station.ID, gridRes.Station.ID, "query %+v", q)
		assert.InDelta(t, linRes.DistanceKm, gridRes.DistanceKm, 1e-9, "query %+v", q)
	}
}

func TestNearest_GridWithClusteredStations(t *testing.T) {
	// All stations in one corner of the grid; distant queries force the ring
	// search to expand across many empty cells and still terminate correctly.
	rng := rand.New(rand.NewSource(31))
	rows := make([]map[string]any, 0, 50)
	for i := 0; i < 50; i++ {
		rows = append(rows, row(
			fmt.Sprintf("PNW%03d", i),
			44+rng.Float64()*4,
			-124+rng.Float64()*4,
			nil,
		))
	}

	gridIx, _ := Build(rows, WithGridThreshold(1))
	linearIx, _ := Build(rows, WithGridThreshold(1<<30))

	for _, q := range []domain.Geo{
		{Lat: -44, Lon: 58},
		{Lat: 46, Lon: -122},
		{Lat: -89, Lon: 179},
		{Lat: 46, Lon: 58}, // same latitude band, far in longitude
	} {
		gridRes, err := gridIx.Nearest(q)
		require.NoError(t, err)
		linRes, err := linearIx.Nearest(q)
		require.NoError(t, err)
		assert.Equal(t, linRes.Station.ID, gridRes.Station.ID, "query %+v", q)
		assert.InDelta(t, linRes.DistanceKm, gridRes.DistanceKm, 1e-9, "query %+v", q)
	}
}
