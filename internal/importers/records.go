package importers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
)

// Record is one normalized row of a reading-history file. Dates stay as
// strings; source files carry them in assorted formats and the catalog does
// not interpret them.
type Record struct {
	Title      string
	Author     string
	ISBN       string
	StartDate  string
	FinishDate string
	Rating     *int
	Tags       string
	Notes      string
}

// InferFormat guesses the file format from its extension.
func InferFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv", nil
	case ".json":
		return "json", nil
	}
	return "", fmt.Errorf("cannot infer format from %q, use an explicit --format", path)
}

// ReadCSV parses reading-history records from CSV. The first row is the
// header; column names are matched case-insensitively.
func ReadCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row: %w", err)
		}

		fields := map[string]any{}
		for i, name := range header {
			if i < len(row) {
				fields[name] = row[i]
			}
		}
		records = append(records, NormalizeRecord(fields))
	}
	return records, nil
}

// ReadJSON parses reading-history records from JSON. Accepts either a bare
// list of objects or the {"books": [...]} wrapper shape.
func ReadJSON(r io.Reader) ([]Record, error) {
	var raw any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}

	items, ok := raw.([]any)
	if !ok {
		obj, isObj := raw.(map[string]any)
		if !isObj {
			return nil, fmt.Errorf("JSON must be a list of book objects or contain a \"books\" list")
		}
		items, ok = obj["books"].([]any)
		if !ok {
			return nil, fmt.Errorf("JSON must be a list of book objects or contain a \"books\" list")
		}
	}

	var records []Record
	for _, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			continue
		}
		records = append(records, NormalizeRecord(fields))
	}
	return records, nil
}

// NormalizeRecord maps loosely-keyed input fields onto a Record, accepting
// the key casings seen in the wild (title/Title, start_date/Start Date/
// startDate and so on).
func NormalizeRecord(fields map[string]any) Record {
	lower := make(map[string]any, len(fields))
	for k, v := range fields {
		lower[normalizeKey(k)] = v
	}

	get := func(key string) string {
		v, ok := lower[key]
		if !ok || v == nil {
			return ""
		}
		switch t := v.(type) {
		case string:
			return strings.TrimSpace(t)
		case float64:
			if t == float64(int64(t)) {
				return strconv.FormatInt(int64(t), 10)
			}
			return strconv.FormatFloat(t, 'f', -1, 64)
		default:
			return strings.TrimSpace(fmt.Sprintf("%v", t))
		}
	}

	var rating *int
	if s := get("rating"); s != "" && s != "None" {
		if n, err := strconv.Atoi(s); err == nil {
			rating = &n
		}
	}

	return Record{
		Title:      get("title"),
		Author:     get("author"),
		ISBN:       get("isbn"),
		StartDate:  get("start_date"),
		FinishDate: get("finish_date"),
		Rating:     rating,
		Tags:       get("tags"),
		Notes:      get("notes"),
	}
}

// normalizeKey folds "Start Date", "startDate" and "start_date" onto one key.
func normalizeKey(key string) string {
	var b strings.Builder
	for i, r := range key {
		if r >= 'A' && r <= 'Z' {
			// camelCase boundary only; runs of capitals (ISBN) stay together
			if i > 0 && (key[i-1] >= 'a' && key[i-1] <= 'z' || key[i-1] >= '0' && key[i-1] <= '9') {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		if r == ' ' {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	return strings.ReplaceAll(b.String(), "__", "_")
}
