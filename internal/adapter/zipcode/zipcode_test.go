package zipcode

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-normals/internal/domain"
)

const sampleGeonames = "US\t97219\tPortland\tOregon\tOR\tMultnomah\t051\t\t\t45.4550\t-122.6819\t4\n" +
	"US\t85001\tPhoenix\tArizona\tAZ\tMaricopa\t013\t\t\t33.4484\t-112.0740\t4\n" +
	"US\t00000\tBadRow\tNowhere\tXX\t\t\t\t\tnot-a-lat\t-122.0\t4\n" +
	"US\t99999\tOffEarth\tNowhere\tXX\t\t\t\t\t95.0\t-122.0\t4\n" +
	"short\tline\n"

func loadSample(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "US.txt")
	require.NoError(t, os.WriteFile(path, []byte(sampleGeonames), 0o644))
	db, err := Load(path)
	require.NoError(t, err)
	return db
}

func TestLoad_SkipsBadLines(t *testing.T) {
	db := loadSample(t)
	assert.Equal(t, 2, db.Len(), "unparseable and out-of-range rows are skipped")
}

func TestGeocode(t *testing.T) {
	db := loadSample(t)

	loc, err := db.Geocode(context.Background(), "97219")
	require.NoError(t, err)
	assert.InDelta(t, 45.4550, loc.Lat, 1e-9)
	assert.InDelta(t, -122.6819, loc.Lon, 1e-9)

	loc, err = db.Geocode(context.Background(), " 85001 ")
	require.NoError(t, err)
	assert.InDelta(t, 33.4484, loc.Lat, 1e-9)
}

func TestGeocode_Unknown(t *testing.T) {
	db := loadSample(t)

	_, err := db.Geocode(context.Background(), "12345")
	assert.ErrorIs(t, err, domain.ErrUnknownZIP)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
