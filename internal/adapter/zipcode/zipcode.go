// Package zipcode implements domain.ZIPGeocoder over a local geonames.org
// postal-code table (the tab-separated US.txt / allCountries.txt layout).
// Keeping the table local keeps ZIP resolution off the network; swapping in a
// remote geocoding service is a caller decision behind the same interface.
package zipcode

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/climate-normals/internal/domain"
)

// Geonames postal files carry 12 tab-separated fields per line; postal code,
// latitude, and longitude are at these positions.
const (
	fieldPostal = 1
	fieldLat    = 9
	fieldLon    = 10
	minFields   = 11
)

// DB is an in-memory postal-code → coordinates table.
type DB struct {
	lookup map[string]domain.Geo
}

// Load reads a geonames-format postal-code file. Lines that are short,
// unparseable, or carry out-of-range coordinates are skipped.
func Load(path string) (*DB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open zip database: %w", err)
	}
	defer f.Close()

	db := &DB{lookup: make(map[string]domain.Geo)}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Split(sc.Text(), "\t")
		if len(fields) < minFields {
			continue
		}
		postal := strings.TrimSpace(fields[fieldPostal])
		if postal == "" {
			continue
		}
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(fields[fieldLat]), 64)
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(fields[fieldLon]), 64)
		if errLat != nil || errLon != nil {
			continue
		}
		loc := domain.Geo{Lat: lat, Lon: lon}
		if !loc.Valid() {
			continue
		}
		db.lookup[postal] = loc
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan zip database: %w", err)
	}
	return db, nil
}

// Len returns the number of postal codes in the table.
func (db *DB) Len() int {
	return len(db.lookup)
}

// Geocode resolves a postal code to its representative coordinates.
func (db *DB) Geocode(_ context.Context, zip string) (domain.Geo, error) {
	loc, ok := db.lookup[strings.TrimSpace(zip)]
	if !ok {
		return domain.Geo{}, fmt.Errorf("zip %q: %w", zip, domain.ErrUnknownZIP)
	}
	return loc, nil
}
