package yamlutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// UnmarshalStrict decodes YAML and rejects fields the target does not declare.
// An empty document leaves v untouched.
func UnmarshalStrict(data []byte, v interface{}) error {
	return DecodeStrict(bytes.NewReader(data), v)
}

// DecodeStrict is UnmarshalStrict over a reader.
func DecodeStrict(r io.Reader, v interface{}) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	err := decoder.Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "field") && strings.Contains(errStr, "not found") {
			return fmt.Errorf("unknown configuration field (check for typos): %w", err)
		}
		return err
	}
	return nil
}
