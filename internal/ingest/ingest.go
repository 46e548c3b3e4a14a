// Package ingest reads claimant batches from CSV, JSON and YAML files and
// coerces every row into the canonical model.Claimant shape.
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

	"gopkg.in/yaml.v3"

	"github.com/masonvector/masonvector/internal/model"
	"github.com/masonvector/masonvector/internal/normalize"
)

// ErrUnsupportedFormat is returned for file extensions ingest cannot read
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ReadFile reads claimants from path, choosing the decoder by extension
func ReadFile(path string) ([]model.Claimant, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var records []model.Claimant
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		records, err = ReadCSV(file)
	case ".json":
		records, err = ReadJSON(file)
	case ".yaml", ".yml":
		records, err = ReadYAML(file)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return records, nil
}

// ReadCSV reads a CSV document whose first row is the header.
// Rows may be shorter than the header; blank rows are skipped.
func ReadCSV(r io.Reader) ([]model.Claimant, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []model.Claimant{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	records := []model.Claimant{}
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if blank(row) {
			continue
		}

		fields := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(row) {
				fields[name] = row[i]
			}
		}
		records = append(records, normalize.FromFields(fields))
	}

	return records, nil
}

// ReadJSON reads a JSON array of objects
func ReadJSON(r io.Reader) ([]model.Claimant, error) {
	// Numbers stay as text so long numeric ids are not rounded through float64
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return fromRows(rows), nil
}

// ReadYAML reads a YAML sequence of mappings
func ReadYAML(r io.Reader) ([]model.Claimant, error) {
	var rows []map[string]any
	if err := yaml.NewDecoder(r).Decode(&rows); err != nil {
		if errors.Is(err, io.EOF) {
			return []model.Claimant{}, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return fromRows(rows), nil
}

func fromRows(rows []map[string]any) []model.Claimant {
	records := make([]model.Claimant, 0, len(rows))
	for _, row := range rows {
		records = append(records, normalize.FromAny(row))
	}
	return records
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
