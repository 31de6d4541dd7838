package yamlutil

import (
	"bytes"

	"go.yaml.in/yaml/v3"
)

// MarshalWithIndent encodes v with the given indent width. template.Encode
// and the fmt command use it so normalized output always carries the same
// two-space indentation regardless of the input's style.
func MarshalWithIndent(v any, indent int) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(indent)
	if err := encoder.Encode(v); err != nil {
		_ = encoder.Close()
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
