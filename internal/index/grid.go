package index

import (
	"math"

	"github.com/couchcryptid/climate-normals/internal/domain"
)

// cellGrid bins record positions into fixed lat/lon cells so Nearest can scan
// an expanding ring of cells instead of the whole collection. Longitude wraps;
// latitude clamps at the poles. The ring search only stops once no unscanned
// cell could hold a closer station, so grid answers always match a full scan.
// Near the poles the longitude bound collapses and the search degrades to one,
// trading speed for exactness.
type cellGrid struct {
	cellDeg float64
	nx, ny  int
	cells   map[cellKey][]int32
}

type cellKey struct{ x, y int32 }

func buildGrid(records []domain.StationRecord, cellDeg float64) *cellGrid {
	g := &cellGrid{
		cellDeg: cellDeg,
		nx:      int(math.Ceil(360 / cellDeg)),
		ny:      int(math.Ceil(180 / cellDeg)),
		cells:   make(map[cellKey][]int32),
	}
	for i := range records {
		x, y := g.cellOf(records[i].Coord)
		k := cellKey{x: int32(x), y: int32(y)}
		g.cells[k] = append(g.cells[k], int32(i))
	}
	return g
}

func (g *cellGrid) cellOf(p domain.Geo) (int, int) {
	x := int(math.Floor((p.Lon + 180) / g.cellDeg))
	if x < 0 {
		x = 0
	}
	if x >= g.nx {
		x = g.nx - 1
	}
	y := int(math.Floor((p.Lat + 90) / g.cellDeg))
	if y < 0 {
		y = 0
	}
	if y >= g.ny {
		y = g.ny - 1
	}
	return x, y
}

// nearest runs the expanding-ring search. Ring r holds the cells at Chebyshev
// cell distance r from the query cell. Once ring columns would wrap past the
// antimeridian the search switches to whole rows, whose latitude-only bound
// stays valid everywhere.
func (g *cellGrid) nearest(q domain.Geo, ix *Index) (int, float64) {
	cx, cy := g.cellOf(q)
	best, bestDist := -1, 0.0

	scanCell := func(x, y int) {
		if y < 0 || y >= g.ny {
			return
		}
		x = ((x % g.nx) + g.nx) % g.nx
		for _, i := range g.cells[cellKey{x: int32(x), y: int32(y)}] {
			d := domain.HaversineKm(q, ix.records[i].Coord)
			if ix.better(d, int(i), bestDist, best) {
				best, bestDist = int(i), d
			}
		}
	}
	scanRow := func(y int) {
		for x := 0; x < g.nx; x++ {
			scanCell(x, y)
		}
	}

	fullRows := false
	maxRing := g.nx + g.ny
	for r := 0; r <= maxRing; r++ {
		if best >= 0 && g.remainingLowerBoundKm(q, r, fullRows) > bestDist+ix.tieEps {
			break
		}
		switch {
		case r == 0:
			scanCell(cx, cy)
		case !fullRows && 2*r+1 >= g.nx:
			// Columns start wrapping at this ring. Rescan every row in reach
			// in full once; from here out rings grow by whole rows.
			fullRows = true
			for y := cy - r; y <= cy+r; y++ {
				scanRow(y)
			}
		case fullRows:
			scanRow(cy - r)
			scanRow(cy + r)
		default:
			for x := cx - r; x <= cx+r; x++ {
				scanCell(x, cy-r)
				scanCell(x, cy+r)
			}
			for y := cy - r + 1; y <= cy+r-1; y++ {
				scanCell(cx-r, y)
				scanCell(cx+r, y)
			}
		}
	}
	return best, bestDist
}

// remainingLowerBoundKm returns a distance no station in any cell outside the
// already-scanned rings (rings < r) can beat. An unscanned cell is at least r
// cell widths away in latitude, or at least r away in (wrapped) longitude at
// some latitude band |dy| = k < r. The latitude separation bounds the
// great-circle distance directly (d >= R*dLatRad); the longitude separation
// is bounded by d >= 2R*cos(phi)*sin(dLonRad/2) at the band's most poleward
// latitude phi, where it collapses toward the poles and the search widens.
func (g *cellGrid) remainingLowerBoundKm(q domain.Geo, r int, fullRows bool) float64 {
	if r <= 1 {
		return 0
	}
	latSep := func(k int) float64 {
		if k <= 1 {
			return 0
		}
		return domain.EarthRadiusKm * float64(k-1) * g.cellDeg * math.Pi / 180
	}
	latBound := latSep(r)
	if fullRows {
		// Only whole rows at |dy| >= r remain.
		return latBound
	}

	lonSepDeg := math.Min(float64(r-1)*g.cellDeg, 180)
	lonSepRad := lonSepDeg * math.Pi / 180
	bound := latBound
	for k := 0; k < r; k++ {
		phi := math.Min(math.Abs(q.Lat)+float64(k+1)*g.cellDeg, 90) * math.Pi / 180
		cosPhi := math.Max(math.Cos(phi), 0)
		lonBound := 2 * domain.EarthRadiusKm * cosPhi * math.Sin(lonSepRad/2)
		cell := math.Max(latSep(k), lonBound)
		if cell < bound {
			bound = cell
		}
		if bound == 0 {
			break
		}
	}
	return bound
}
