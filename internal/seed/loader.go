package seed

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var bundleSchema string

var schema = mustCompileSchema()

func mustCompileSchema() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(bundleSchema))
	if err != nil {
		panic(fmt.Sprintf("seed: invalid embedded schema: %v", err))
	}
	return s
}

// LoadFile reads and validates a YAML seed bundle.
func LoadFile(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return Parse(data)
}

// Parse validates data against the bundle schema and decodes it.
func Parse(data []byte) (*Bundle, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing seed YAML: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("seed file is empty")
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("validating seed bundle: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("seed bundle does not match schema: %s", strings.Join(msgs, "; "))
	}

	var bundle Bundle
	if err := yaml.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("decoding seed bundle: %w", err)
	}
	return &bundle, nil
}
