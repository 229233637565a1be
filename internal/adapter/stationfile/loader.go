// Package stationfile reads station datasets into the raw-row form the index
// builder consumes. Three layouts are supported, matching what the collectors
// actually produce: CSV with a header row, JSONL (one object per line), and
// JSON (a top-level array, or an object keyed by station ID).
package stationfile

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// maxLineBytes bounds a single JSONL line. Master-index records with every
// normals column attached run a few KB; 1 MB is far past any real row.
const maxLineBytes = 1 << 20

// Load reads station rows from path. Format "auto" infers from the file
// extension: .csv, .jsonl/.ndjson, .json. The skipped count reports JSONL
// lines that were blank or not valid JSON.
func Load(path, format string) (rows []map[string]any, skipped int, err error) {
	if format == "" || format == "auto" {
		format, err = inferFormat(path)
		if err != nil {
			return nil, 0, err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open station file: %w", err)
	}
	defer f.Close()

	switch format {
	case "csv":
		rows, err = readCSV(f)
	case "jsonl":
		rows, skipped, err = readJSONL(f)
	case "json":
		rows, err = readJSON(f)
	default:
		return nil, 0, fmt.Errorf("unsupported station file format %q", format)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, skipped, nil
}

func inferFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv", nil
	case ".jsonl", ".ndjson":
		return "jsonl", nil
	case ".json":
		return "json", nil
	}
	return "", fmt.Errorf("cannot infer station file format from %q", path)
}

func readCSV(r io.Reader) ([]map[string]any, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // archive CSVs are occasionally ragged

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}

	var rows []map[string]any
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", len(rows)+2, err)
		}
		row := make(map[string]any, len(header))
		for i, key := range header {
			if i >= len(rec) {
				break
			}
			row[key] = rec[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readJSONL(r io.Reader) ([]map[string]any, int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	var rows []map[string]any
	skipped := 0
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var row map[string]any
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan jsonl: %w", err)
	}
	return rows, skipped, nil
}

func readJSON(r io.Reader) ([]map[string]any, error) {
	var doc any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	switch t := doc.(type) {
	case []any:
		rows := make([]map[string]any, 0, len(t))
		for i, el := range t {
			row, ok := el.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("json array element %d is not an object", i)
			}
			rows = append(rows, row)
		}
		return rows, nil
	case map[string]any:
		// Object keyed by station ID; iterate in sorted key order so the
		// resulting row order is reproducible.
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		rows := make([]map[string]any, 0, len(t))
		for _, k := range keys {
			row, ok := t[k].(map[string]any)
			if !ok {
				return nil, fmt.Errorf("json value for %q is not an object", k)
			}
			if _, hasID := row["id"]; !hasID {
				if _, hasStation := row["station"]; !hasStation {
					row["id"] = k
				}
			}
			rows = append(rows, row)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("json document is neither an array nor an object")
	}
}
