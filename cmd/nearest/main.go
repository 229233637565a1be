// Command nearest is the batch lookup tool: it loads a station dataset, then
// resolves each argument (a ZIP code or a "lat,lon" pair) to the nearest
// station's degree-day normals and prints one JSON document.
//
// Usage:
//
//	go run ./cmd/nearest -stations data/master_climate_index.jsonl \
//	  -zipdb data/US.txt 97219 85001 "45.5,-122.1"
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/climate-normals/internal/adapter/stationfile"
	"github.com/couchcryptid/climate-normals/internal/adapter/zipcode"
	"github.com/couchcryptid/climate-normals/internal/domain"
	"github.com/couchcryptid/climate-normals/internal/index"
	"github.com/couchcryptid/climate-normals/internal/resolver"
)

type output struct {
	Records int   `json:"records"`
	Results []any `json:"results"`
}

type failedLookup struct {
	Query string `json:"query"`
	Error string `json:"error"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	stations := flag.String("stations", "", "path to station dataset (csv, jsonl, or json)")
	format := flag.String("format", "auto", "station file format: auto, csv, jsonl, json")
	zipdb := flag.String("zipdb", "", "path to geonames postal-code file, required for zip queries")
	farKm := flag.Float64("far-km", 500, "flag matches beyond this distance in km (0 disables)")
	verbose := flag.Bool("v", false, "log index build details to stderr")
	flag.Parse()

	if *stations == "" {
		flag.Usage()
		return errors.New("missing required flag: -stations")
	}
	queries := flag.Args()
	if len(queries) == 0 {
		return errors.New("no queries given (zip codes or lat,lon pairs)")
	}

	logOut := io.Writer(io.Discard)
	if *verbose {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(logOut, nil))

	rows, badLines, err := stationfile.Load(*stations, *format)
	if err != nil {
		return err
	}
	ix, report := index.Build(rows)
	logger.Info("station index built",
		"stations", report.Loaded, "skipped_rows", report.Skipped, "unreadable_lines", badLines)

	opts := []resolver.Option{resolver.WithFarMatchRadius(*farKm)}
	if *zipdb != "" {
		zdb, err := zipcode.Load(*zipdb)
		if err != nil {
			return err
		}
		opts = append(opts, resolver.WithZIPGeocoder(zdb, 0))
	}
	r := resolver.New(ix, logger, opts...)

	ctx := context.Background()
	out := output{Records: report.Loaded, Results: make([]any, 0, len(queries))}
	for _, q := range queries {
		res, err := resolveQuery(ctx, r, q)
		if err != nil {
			out.Results = append(out.Results, failedLookup{Query: q, Error: err.Error()})
			continue
		}
		out.Results = append(out.Results, res)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// resolveQuery treats arguments containing a comma as "lat,lon"; everything
// else is a ZIP code.
func resolveQuery(ctx context.Context, r *resolver.Resolver, q string) (domain.ResolvedClimate, error) {
	if !strings.Contains(q, ",") {
		return r.ResolveZIP(ctx, q)
	}

	parts := strings.SplitN(q, ",", 2)
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errLat != nil || errLon != nil {
		return domain.ResolvedClimate{}, fmt.Errorf("malformed coordinate pair %q", q)
	}
	return r.Resolve(ctx, domain.Geo{Lat: lat, Lon: lon})
}
