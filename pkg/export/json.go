package export

import (
	"encoding/json"
	"fmt"
)

// JSONExporter renders datasets as an array of objects keyed by column key.
type JSONExporter struct{}

// NewJSONExporter builds a JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Render produces indented JSON for the dataset.
func (e *JSONExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}
	records := make([]map[string]string, len(data.Rows))
	for i, row := range data.Rows {
		record := make(map[string]string, len(data.Columns))
		for _, col := range data.Columns {
			record[col.Key] = row[col.Key]
		}
		records[i] = record
	}
	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return out, nil
}
