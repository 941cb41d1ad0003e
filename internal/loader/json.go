package loader

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/huangsam/redundant/schema"
)

// JSONLoader reads records from a JSON file holding either an array of
// records or an object with a "records" array.
type JSONLoader struct {
	Path string
}

// Load implements contract.RecordLoader.
func (l *JSONLoader) Load(_ context.Context) ([]schema.DatasetRecord, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", l.Path, err)
	}
	return DecodeJSON(data)
}

// DecodeJSON decodes catalog records from JSON bytes.
func DecodeJSON(data []byte) ([]schema.DatasetRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var raws []rawRecord
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if trimmed[0] == '{' {
		var wrapper struct {
			Records []rawRecord `json:"records"`
		}
		if err := dec.Decode(&wrapper); err != nil {
			return nil, fmt.Errorf("failed to decode json records: %w", err)
		}
		raws = wrapper.Records
	} else if err := dec.Decode(&raws); err != nil {
		return nil, fmt.Errorf("failed to decode json records: %w", err)
	}
	return convertRaw(raws)
}
