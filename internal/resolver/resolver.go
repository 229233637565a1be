// Package resolver turns query locations into degree-day lookups against the
// station index, applying the distance-sanity and missing-data policies.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/climate-normals/internal/domain"
	"github.com/couchcryptid/climate-normals/internal/index"
	"github.com/couchcryptid/climate-normals/internal/observability"
)

const defaultZIPCacheSize = 1000

// Resolver resolves coordinates (and, with a geocoder, ZIP codes) to the
// nearest station's degree-day normals. It is stateless over a built index
// apart from the bounded ZIP cache and safe for concurrent use.
type Resolver struct {
	index    *index.Index
	logger   *slog.Logger
	geocoder domain.ZIPGeocoder
	zipCache *lruCache
	metrics  *observability.Metrics
	farKm    float64
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithZIPGeocoder enables ZIP lookups through the given collaborator, with a
// bounded LRU cache over resolved ZIPs. A cacheSize <= 0 uses the default.
func WithZIPGeocoder(g domain.ZIPGeocoder, cacheSize int) Option {
	return func(r *Resolver) {
		if cacheSize <= 0 {
			cacheSize = defaultZIPCacheSize
		}
		r.geocoder = g
		r.zipCache = newLRUCache(cacheSize)
	}
}

// WithFarMatchRadius sets the plausibility radius in kilometers beyond which
// a match is flagged and logged (never failed). Zero disables the check.
func WithFarMatchRadius(km float64) Option {
	return func(r *Resolver) { r.farKm = km }
}

// WithMetrics attaches lookup metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// New creates a Resolver over a built index.
func New(ix *index.Index, logger *slog.Logger, opts ...Option) *Resolver {
	r := &Resolver{index: ix, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CheckReadiness reports whether the resolver can answer queries.
func (r *Resolver) CheckReadiness(_ context.Context) error {
	if r.index.Len() == 0 {
		return errors.New("station index is empty")
	}
	return nil
}

// Resolve finds the nearest station to the given coordinates and packages its
// degree-day normals. Absent HDD/CDD values propagate as nil, never zero.
// Failures are domain.ErrInvalidQuery and domain.ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context, loc domain.Geo) (domain.ResolvedClimate, error) {
	return r.resolve(ctx, loc, "")
}

// ResolveZIP resolves a postal code through the configured geocoder, then
// resolves its coordinates. Successful results are cached per ZIP.
func (r *Resolver) ResolveZIP(ctx context.Context, zip string) (domain.ResolvedClimate, error) {
	if r.geocoder == nil {
		return domain.ResolvedClimate{}, fmt.Errorf("no zip geocoder configured: %w", domain.ErrUnknownZIP)
	}

	if cached, ok := r.zipCache.get(zip); ok {
		r.countCache("hit")
		return cached, nil
	}
	r.countCache("miss")

	loc, err := r.geocoder.Geocode(ctx, zip)
	if err != nil {
		r.countLookup(zip, "unknown_zip")
		if errors.Is(err, domain.ErrUnknownZIP) {
			return domain.ResolvedClimate{}, err
		}
		return domain.ResolvedClimate{}, fmt.Errorf("geocode %q: %w: %v", zip, domain.ErrUnknownZIP, err)
	}

	resolved, err := r.resolve(ctx, loc, zip)
	if err != nil {
		return domain.ResolvedClimate{}, err
	}
	r.zipCache.put(zip, resolved)
	return resolved, nil
}

func (r *Resolver) resolve(_ context.Context, loc domain.Geo, zip string) (domain.ResolvedClimate, error) {
	start := time.Now()
	res, err := r.index.Nearest(loc)
	if err != nil {
		r.countLookup(zip, outcomeFor(err))
		return domain.ResolvedClimate{}, err
	}
	if r.metrics != nil {
		r.metrics.NearestDuration.Observe(time.Since(start).Seconds())
	}

	far := r.farKm > 0 && res.DistanceKm > r.farKm
	if far {
		r.logger.Warn("nearest station beyond plausibility radius",
			"zip", zip,
			"lat", loc.Lat,
			"lon", loc.Lon,
			"station", res.Station.ID,
			"dist_km", res.DistanceKm,
			"radius_km", r.farKm,
		)
		if r.metrics != nil {
			r.metrics.FarMatches.Inc()
		}
	}

	r.countLookup(zip, "ok")
	return domain.ResolvedClimate{
		ZIP:        zip,
		Lat:        loc.Lat,
		Lon:        loc.Lon,
		StationID:  res.Station.ID,
		Name:       res.Station.Name,
		DistKm:     res.DistanceKm,
		HDD65:      res.Station.HDD65,
		CDD65:      res.Station.CDD65,
		FarMatch:   far,
		ResolvedAt: domain.Now(),
	}, nil
}

func (r *Resolver) countLookup(zip, outcome string) {
	if r.metrics == nil {
		return
	}
	endpoint := "coord"
	if zip != "" {
		endpoint = "zip"
	}
	r.metrics.Lookups.WithLabelValues(endpoint, outcome).Inc()
}

func (r *Resolver) countCache(result string) {
	if r.metrics == nil {
		return
	}
	r.metrics.ZIPCache.WithLabelValues(result).Inc()
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		return "invalid"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
