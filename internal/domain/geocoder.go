package domain

import "context"

// ZIPGeocoder resolves a postal code to representative coordinates.
// Implementations own their failure modes (unknown code, unavailable data);
// resolution errors surface to callers wrapped as ErrUnknownZIP.
type ZIPGeocoder interface {
	Geocode(ctx context.Context, zip string) (Geo, error)
}
