// Package ingest reads card records in bulk from JSON, YAML or CSV files.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yiblet/sieve/internal/catalog"
	"gopkg.in/yaml.v3"
)

// Format names an input encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

// ErrUnknownFormat is returned when a format cannot be determined.
var ErrUnknownFormat = errors.New("unknown input format")

// ParseFormat resolves a format name or file extension.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Load reads the records in path, choosing the decoder by file extension.
func Load(path string) ([]catalog.Record, error) {
	format, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	return Decode(f, format)
}

// Decode reads records from r. JSON and YAML accept either a list of
// objects or an object with an "items" list. CSV uses its first row as the
// field names.
func Decode(r io.Reader, format Format) ([]catalog.Record, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(r)
	case FormatYAML:
		return decodeYAML(r)
	case FormatCSV:
		return decodeCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func decodeJSON(r io.Reader) ([]catalog.Record, error) {
	var doc any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse json: %w", err)
	}
	return fromDocument(doc)
}

func decodeYAML(r io.Reader) ([]catalog.Record, error) {
	var doc any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return []catalog.Record{}, nil
		}
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	return fromDocument(doc)
}

// fromDocument accepts a decoded list of objects, or an object wrapping one
// under "items".
func fromDocument(doc any) ([]catalog.Record, error) {
	if wrapper, ok := doc.(map[string]any); ok {
		inner, found := wrapper["items"]
		if !found {
			return nil, fmt.Errorf("expected a list of items or an object with an \"items\" list")
		}
		doc = inner
	}

	list, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of items, got %T", doc)
	}

	records := make([]catalog.Record, 0, len(list))
	for i, entry := range list {
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("item %d: expected an object, got %T", i, entry)
		}
		records = append(records, catalog.Record(obj))
	}
	return records, nil
}

func decodeCSV(r io.Reader) ([]catalog.Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []catalog.Record{}, nil
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	var records []catalog.Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}

		rec := make(catalog.Record, len(header))
		for i, name := range header {
			if i < len(row) && row[i] != "" {
				rec[name] = row[i]
			}
		}
		records = append(records, rec)
	}
	if records == nil {
		records = []catalog.Record{}
	}
	return records, nil
}
