package convert

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
)

// csvToJSONConverter converts a CSV document with a header row into a JSON
// array of flat objects.
type csvToJSONConverter struct{}

func NewCSVToJSONConverter() Converter {
	return &csvToJSONConverter{}
}

func (c *csvToJSONConverter) Name() string   { return "csv-to-json" }
func (c *csvToJSONConverter) Source() string { return "csv" }
func (c *csvToJSONConverter) Target() string { return "json" }

func (c *csvToJSONConverter) Convert(input []byte) ([]byte, error) {
	reader := csv.NewReader(bytes.NewReader(input))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(rows) == 0 {
		return []byte("[]"), nil
	}

	header := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(header))
		for i, field := range row {
			if i >= len(header) {
				break
			}
			rec[header[i]] = field
		}
		records = append(records, rec)
	}

	return json.MarshalIndent(records, "", "  ")
}

// jsonToCSVConverter converts a JSON array of flat objects into CSV with a
// header row built from the union of keys.
type jsonToCSVConverter struct{}

func NewJSONToCSVConverter() Converter {
	return &jsonToCSVConverter{}
}

func (c *jsonToCSVConverter) Name() string   { return "json-to-csv" }
func (c *jsonToCSVConverter) Source() string { return "json" }
func (c *jsonToCSVConverter) Target() string { return "csv" }

func (c *jsonToCSVConverter) Convert(input []byte) ([]byte, error) {
	var records []map[string]any
	if err := json.Unmarshal(input, &records); err != nil {
		return nil, fmt.Errorf("parsing json: expected an array of objects: %w", err)
	}

	keySet := make(map[string]struct{})
	for _, rec := range records {
		for k := range rec {
			keySet[k] = struct{}{}
		}
	}
	header := make([]string, 0, len(keySet))
	for k := range keySet {
		header = append(header, k)
	}
	sort.Strings(header)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, rec := range records {
		row := make([]string, len(header))
		for i, k := range header {
			if v, ok := rec[k]; ok && v != nil {
				row[i] = fmt.Sprint(v)
			}
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
