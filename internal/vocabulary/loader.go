package vocabulary

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON string

// SchemaError lists every schema violation of a vocabulary document.
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return "vocabulary schema validation failed: " + strings.Join(e.Violations, "; ")
}

// Load returns Default() when path is empty. Otherwise the file is validated
// against the embedded schema and overlaid on the defaults: lists present in
// the file replace the default list, map entries extend the default maps.
func Load(path string) (Vocabulary, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("read vocabulary: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (Vocabulary, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaJSON),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("vocabulary schema load: %w", err)
	}
	if !result.Valid() {
		se := &SchemaError{Violations: make([]string, 0, len(result.Errors()))}
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			se.Violations = append(se.Violations, field+": "+desc.Description())
		}
		return Vocabulary{}, se
	}

	v := Default()
	if err := json.Unmarshal(data, &v); err != nil {
		return Vocabulary{}, fmt.Errorf("decode vocabulary: %w", err)
	}
	if err := v.Validate(); err != nil {
		return Vocabulary{}, err
	}
	return v, nil
}
