// Package domain models NOAA climate-normals station data.
//
// # Data Source
//
// Station records originate from the NOAA NCEI U.S. Climate Normals CSV
// archives (https://www.ncei.noaa.gov/products/land-based-station/us-climate-normals).
// An upstream collector flattens each station's annual normals into one row
// carrying the station identifier, display name, coordinates, and the annual
// heating and cooling degree-day totals at base 65°F.
//
// # Field Naming Conventions
//
// The feeds are not consistent about column names. The same semantic field
// appears under several spellings depending on which archive generation and
// which collector produced the file:
//
//	id:    station, STATION, id, station_id, USAF
//	name:  name, NAME, station_name, STATION NAME
//	lat:   lat, latitude, LAT, LATITUDE
//	lon:   lon, lng, longitude, LON, LONGITUDE
//	hdd65: hdd65, HDD65, HTDD-BASE65, ANN-HTDD-BASE65, hdd
//	cdd65: cdd65, CDD65, CLDD-BASE65, ANN-CLDD-BASE65, cdd
//
// Each semantic field has an ordered alias list; the first key present in a
// raw row wins. Alias resolution happens exactly once, at load time; query
// code only ever sees the fixed [StationRecord] shape.
//
// # Missing Values
//
// NOAA publishes several sentinel tokens for "no value": the empty string,
// "NA", "N/A", and -9999 (sometimes -9999.0). Degree-day fields carrying a
// sentinel are normalized to nil, never to zero: a zero-HDD climate (e.g.
// southern Florida) is a legitimate value and must stay distinguishable from
// an unmeasured one.
//
// Coordinates of exactly (0, 0) are a known placeholder in the archives for
// stations whose position was never digitized. Such rows are excluded at load
// time rather than indexed as an equatorial station.
//
// # Duplicate Stations
//
// The same station can appear in more than one feed generation. Loading is
// last-wins per station ID: the later row replaces the earlier record while
// keeping its position, so the backing order stays reproducible.
//
// # Units
//
// Degree days are always annual totals at base 65°F. The package does no base
// or unit conversion; that is the data provider's contract, asserted only by
// the *65* field-name convention. Distances are kilometers on a spherical
// earth of radius 6371.0 km.
package domain
