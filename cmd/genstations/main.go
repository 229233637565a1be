// Command genstations writes a deterministic synthetic station dataset for
// local runs and fixtures, in both the NOAA-style CSV layout and the
// master-index JSONL layout so every field alias path gets exercised. A small
// fraction of rows carry sentinel or invalid values on purpose, matching what
// real archive extracts look like.
//
// Usage:
//
//	go run ./cmd/genstations -count 2000 \
//	  -csv-out data/mock/stations.csv -jsonl-out data/mock/stations.jsonl
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

type station struct {
	id   string
	name string
	lat  float64
	lon  float64
	hdd  string // raw value as the feed would carry it, sentinels included
	cdd  string
}

func run() error {
	count := flag.Int("count", 1000, "number of station rows to generate")
	seed := flag.Int64("seed", 1, "random seed")
	csvOut := flag.String("csv-out", "", "output path for NOAA-style CSV")
	jsonlOut := flag.String("jsonl-out", "", "output path for master-index JSONL")
	flag.Parse()

	if *csvOut == "" && *jsonlOut == "" {
		flag.Usage()
		return fmt.Errorf("at least one of -csv-out, -jsonl-out is required")
	}

	stations := generate(rand.New(rand.NewSource(*seed)), *count)

	if *csvOut != "" {
		if err := writeCSV(*csvOut, stations); err != nil {
			return err
		}
		log.Printf("wrote %d rows to %s", len(stations), *csvOut)
	}
	if *jsonlOut != "" {
		if err := writeJSONL(*jsonlOut, stations); err != nil {
			return err
		}
		log.Printf("wrote %d rows to %s", len(stations), *jsonlOut)
	}
	return nil
}

func generate(rng *rand.Rand, count int) []station {
	out := make([]station, 0, count)
	for i := 0; i < count; i++ {
		lat := 24 + rng.Float64()*25   // CONUS-ish latitude band
		lon := -125 + rng.Float64()*58 // CONUS-ish longitude band

		// Degree days roughly track latitude, plus noise.
		hdd := (lat-24)*260 + rng.Float64()*600
		cdd := (49-lat)*180 + rng.Float64()*400

		s := station{
			id:   fmt.Sprintf("USW%08d", i),
			name: fmt.Sprintf("SYNTH STATION %d", i),
			lat:  lat,
			lon:  lon,
			hdd:  strconv.FormatFloat(hdd, 'f', 1, 64),
			cdd:  strconv.FormatFloat(cdd, 'f', 1, 64),
		}

		// Sprinkle in the defects real extracts have.
		switch {
		case i%13 == 5:
			s.hdd = "NA"
		case i%17 == 3:
			s.cdd = "-9999"
		case i%97 == 7:
			s.lat, s.lon = 0, 0 // never-digitized placeholder
		case i%101 == 11:
			s.lat = 91 // out of range
		}

		out = append(out, s)
	}
	return out
}

func writeCSV(path string, stations []station) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"STATION", "NAME", "LATITUDE", "LONGITUDE", "HTDD-BASE65", "CLDD-BASE65"}); err != nil {
		return err
	}
	for _, s := range stations {
		rec := []string{
			s.id,
			s.name,
			strconv.FormatFloat(s.lat, 'f', 4, 64),
			strconv.FormatFloat(s.lon, 'f', 4, 64),
			s.hdd,
			s.cdd,
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeJSONL(path string, stations []station) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, s := range stations {
		row := map[string]any{
			"station": s.id,
			"name":    s.name,
			"lat":     s.lat,
			"lon":     s.lon,
			"hdd65":   jsonValue(s.hdd),
			"cdd65":   jsonValue(s.cdd),
		}
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	return nil
}

// jsonValue keeps numeric values numeric and passes sentinels through as
// strings, the same mix the real collectors emit.
func jsonValue(raw string) any {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func create(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}
