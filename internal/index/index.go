// Package index provides the immutable nearest-neighbor station index.
//
// An Index is built once from a batch of raw rows and is read-only afterward;
// concurrent queries against a built index need no locking. Small indices are
// answered with a linear scan; larger ones get a lat/lon grid (see grid.go)
// whose results are identical to the scan.
package index

import (
	"fmt"

	"github.com/couchcryptid/climate-normals/internal/domain"
)

const (
	// defaultTieEpsilonKm is the distance window within which two stations
	// count as equidistant and the ID tie-break applies.
	defaultTieEpsilonKm = 1e-6

	// defaultGridThreshold is the record count at which the grid is built.
	// Below it a full scan is cheap enough that the grid buys nothing.
	defaultGridThreshold = 256

	// defaultCellSizeDeg is the grid cell edge in degrees.
	defaultCellSizeDeg = 2.5

	maxSkipSamples = 5
)

// Option configures Build.
type Option func(*options)

type options struct {
	cellSizeDeg   float64
	gridThreshold int
	tieEpsilonKm  float64
}

// WithCellSize sets the grid cell edge in degrees.
func WithCellSize(deg float64) Option {
	return func(o *options) {
		if deg > 0 {
			o.cellSizeDeg = deg
		}
	}
}

// WithGridThreshold sets the record count at which the grid is built.
func WithGridThreshold(n int) Option {
	return func(o *options) { o.gridThreshold = n }
}

// WithTieEpsilon sets the equidistance window in kilometers.
func WithTieEpsilon(km float64) Option {
	return func(o *options) {
		if km >= 0 {
			o.tieEpsilonKm = km
		}
	}
}

// BuildReport summarizes a Build: how many rows came in, how many records the
// index holds, and why the rest were skipped. Skips are per-row and never
// abort a build; multi-decade station archives always carry some bad rows.
type BuildReport struct {
	Total    int            // raw rows seen
	Loaded   int            // records in the index
	Skipped  int            // rows rejected by validation
	Replaced int            // duplicate-ID rows that overwrote an earlier record
	Reasons  map[string]int // skip reason -> count
	Samples  []string       // first few skip descriptions, for logs
}

// Index is an immutable nearest-neighbor index over station records.
type Index struct {
	records []domain.StationRecord
	grid    *cellGrid // nil when below the grid threshold
	tieEps  float64
}

// Build validates raw rows into an index. Invalid rows are skipped and
// counted in the report; duplicate station IDs are last-wins. An index over
// zero records is valid; querying it yields domain.ErrNotFound.
func Build(rows []map[string]any, opts ...Option) (*Index, BuildReport) {
	o := options{
		cellSizeDeg:   defaultCellSizeDeg,
		gridThreshold: defaultGridThreshold,
		tieEpsilonKm:  defaultTieEpsilonKm,
	}
	for _, opt := range opts {
		opt(&o)
	}

	report := BuildReport{Total: len(rows), Reasons: make(map[string]int)}
	records := make([]domain.StationRecord, 0, len(rows))
	byID := make(map[string]int, len(rows))

	for i, row := range rows {
		rec, err := domain.ParseStationRow(row)
		if err != nil {
			report.Skipped++
			report.Reasons[err.Error()]++
			if len(report.Samples) < maxSkipSamples {
				report.Samples = append(report.Samples, fmt.Sprintf("row %d: %v", i, err))
			}
			continue
		}
		if pos, ok := byID[rec.ID]; ok {
			// Same station from a later feed generation: replace in place so
			// the backing order stays first-appearance order.
			records[pos] = rec
			report.Replaced++
			continue
		}
		byID[rec.ID] = len(records)
		records = append(records, rec)
	}
	report.Loaded = len(records)

	ix := &Index{records: records, tieEps: o.tieEpsilonKm}
	if len(records) >= o.gridThreshold {
		ix.grid = buildGrid(records, o.cellSizeDeg)
	}
	return ix, report
}

// Len returns the number of records in the index.
func (ix *Index) Len() int {
	return len(ix.records)
}

// Nearest returns the station closest to q by great-circle distance.
// Equidistant candidates (within the tie epsilon) resolve to the lowest
// station ID, independent of insertion order.
func (ix *Index) Nearest(q domain.Geo) (domain.NearestResult, error) {
	if !q.Valid() {
		return domain.NearestResult{}, fmt.Errorf("nearest (%.4f, %.4f): %w", q.Lat, q.Lon, domain.ErrInvalidQuery)
	}
	if len(ix.records) == 0 {
		return domain.NearestResult{}, domain.ErrNotFound
	}

	var best int
	var bestDist float64
	if ix.grid != nil {
		best, bestDist = ix.grid.nearest(q, ix)
	} else {
		best, bestDist = ix.nearestLinear(q)
	}

	return domain.NearestResult{Station: ix.records[best], DistanceKm: bestDist}, nil
}

func (ix *Index) nearestLinear(q domain.Geo) (int, float64) {
	best, bestDist := -1, 0.0
	for i := range ix.records {
		d := domain.HaversineKm(q, ix.records[i].Coord)
		if ix.better(d, i, bestDist, best) {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}

// better reports whether candidate cand should replace the current best.
// Within the tie epsilon, the lexicographically lowest station ID wins.
func (ix *Index) better(candDist float64, cand int, bestDist float64, best int) bool {
	if best < 0 {
		return true
	}
	if candDist < bestDist-ix.tieEps {
		return true
	}
	if candDist > bestDist+ix.tieEps {
		return false
	}
	return ix.records[cand].ID < ix.records[best].ID
}
