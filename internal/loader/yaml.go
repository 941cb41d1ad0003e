package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/redundant/schema"
	"gopkg.in/yaml.v3"
)

// YAMLLoader reads records from a YAML file holding either a sequence of
// records or a mapping with a "records" sequence.
type YAMLLoader struct {
	Path string
}

// Load implements contract.RecordLoader.
func (l *YAMLLoader) Load(_ context.Context) ([]schema.DatasetRecord, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", l.Path, err)
	}
	return DecodeYAML(data)
}

// DecodeYAML decodes catalog records from YAML bytes.
func DecodeYAML(data []byte) ([]schema.DatasetRecord, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode yaml records: %w", err)
	}

	var raws []rawRecord
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	switch root.Kind {
	case yaml.MappingNode:
		var wrapper struct {
			Records []rawRecord `yaml:"records"`
		}
		if err := root.Decode(&wrapper); err != nil {
			return nil, fmt.Errorf("failed to decode yaml records: %w", err)
		}
		raws = wrapper.Records
	case yaml.SequenceNode:
		if err := root.Decode(&raws); err != nil {
			return nil, fmt.Errorf("failed to decode yaml records: %w", err)
		}
	default:
		return nil, fmt.Errorf("yaml input must be a list of records or a mapping with a records key")
	}
	return convertRaw(raws)
}
