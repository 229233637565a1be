package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Ordered alias lists per semantic field. The first key present in a raw row
// wins; see the package doc for where each spelling comes from.
var (
	idAliases   = []string{"id", "station", "STATION", "station_id", "USAF"}
	nameAliases = []string{"name", "NAME", "station_name", "STATION NAME"}
	latAliases  = []string{"lat", "latitude", "LAT", "LATITUDE"}
	lonAliases  = []string{"lon", "lng", "longitude", "LON", "LONGITUDE"}
	hddAliases  = []string{"hdd65", "HDD65", "HTDD-BASE65", "ANN-HTDD-BASE65", "hdd"}
	cddAliases  = []string{"cdd65", "CDD65", "CLDD-BASE65", "ANN-CLDD-BASE65", "cdd"}
)

// RowError explains why a raw row was rejected at load time. Rejection is
// row-level and recoverable: the loader skips the row and keeps going.
type RowError struct {
	Field  string
	Reason string
}

func (e *RowError) Error() string {
	return e.Field + ": " + e.Reason
}

// ParseStationRow resolves field aliases on a raw source row and validates it
// into a StationRecord. The returned error is always a *RowError.
func ParseStationRow(row map[string]any) (StationRecord, error) {
	id := strings.TrimSpace(asString(lookupAlias(row, idAliases)))
	if id == "" {
		return StationRecord{}, &RowError{Field: "id", Reason: "missing"}
	}

	latRaw, ok := lookupAliasOK(row, latAliases)
	if !ok {
		return StationRecord{}, &RowError{Field: "lat", Reason: "missing"}
	}
	lat, ok := coerceFloat(latRaw)
	if !ok {
		return StationRecord{}, &RowError{Field: "lat", Reason: "not a number"}
	}

	lonRaw, ok := lookupAliasOK(row, lonAliases)
	if !ok {
		return StationRecord{}, &RowError{Field: "lon", Reason: "missing"}
	}
	lon, ok := coerceFloat(lonRaw)
	if !ok {
		return StationRecord{}, &RowError{Field: "lon", Reason: "not a number"}
	}

	coord := Geo{Lat: lat, Lon: lon}
	if !coord.Valid() {
		return StationRecord{}, &RowError{Field: "lat/lon", Reason: "out of range"}
	}
	if coord.IsPlaceholder() {
		return StationRecord{}, &RowError{Field: "lat/lon", Reason: "placeholder (0,0)"}
	}

	return StationRecord{
		ID:    id,
		Name:  strings.TrimSpace(asString(lookupAlias(row, nameAliases))),
		Coord: coord,
		HDD65: degreeDayField(row, hddAliases),
		CDD65: degreeDayField(row, cddAliases),
	}, nil
}

// degreeDayField extracts an optional degree-day value. Missing keys,
// sentinel tokens, unparseable values, negatives, and non-finite values all
// normalize to nil: absence, never zero. strconv.ParseFloat accepts "NaN"
// and "Inf" spellings, which would otherwise leak into JSON output.
func degreeDayField(row map[string]any, aliases []string) *float64 {
	raw, ok := lookupAliasOK(row, aliases)
	if !ok {
		return nil
	}
	v, ok := coerceFloat(raw)
	if !ok || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func lookupAlias(row map[string]any, aliases []string) any {
	v, _ := lookupAliasOK(row, aliases)
	return v
}

func lookupAliasOK(row map[string]any, aliases []string) (any, bool) {
	for _, key := range aliases {
		if v, ok := row[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// coerceFloat parses a raw value as float64. Sentinel "missing" tokens
// ("", "NA", "N/A", -9999, -9999.0) and unparseable values report !ok.
func coerceFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !isMissingNumber(t)
	case float32:
		return float64(t), !isMissingNumber(float64(t))
	case int:
		return float64(t), !isMissingNumber(float64(t))
	case int64:
		return float64(t), !isMissingNumber(float64(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return f, !isMissingNumber(f)
	case string:
		s := strings.TrimSpace(t)
		if isMissingToken(s) {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, !isMissingNumber(f)
	default:
		return 0, false
	}
}

func isMissingToken(s string) bool {
	switch strings.ToUpper(s) {
	case "", "NA", "N/A", "-9999", "-9999.0":
		return true
	}
	return false
}

func isMissingNumber(f float64) bool {
	return f == -9999
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}
