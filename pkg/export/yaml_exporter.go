package export

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAMLExporter renders arbitrary documents as YAML.
type YAMLExporter struct {
	indent int
}

// NewYAMLExporter builds a YAML exporter using two-space indentation.
func NewYAMLExporter() *YAMLExporter {
	return &YAMLExporter{indent: 2}
}

// Render encodes the document.
func (e *YAMLExporter) Render(doc any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(e.indent)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close yaml encoder: %w", err)
	}
	return buf.Bytes(), nil
}
