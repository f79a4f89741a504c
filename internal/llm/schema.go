package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaSet is a registry of compiled JSON Schemas keyed by name. Raw model
// output is validated against a named schema once, at the trust boundary,
// before being decoded into typed pipeline structs.
type SchemaSet struct {
	schemas map[string]*jsonschema.Schema
}

// NewSchemaSet compiles the given schema sources. Compilation failure is a
// programming error in the schema source, not a runtime condition.
func NewSchemaSet(sources map[string]string) (*SchemaSet, error) {
	compiled := make(map[string]*jsonschema.Schema, len(sources))
	for name, src := range sources {
		compiler := jsonschema.NewCompiler()
		resource := name + ".json"
		if err := compiler.AddResource(resource, strings.NewReader(src)); err != nil {
			return nil, fmt.Errorf("add schema %q: %w", name, err)
		}
		schema, err := compiler.Compile(resource)
		if err != nil {
			return nil, fmt.Errorf("compile schema %q: %w", name, err)
		}
		compiled[name] = schema
	}
	return &SchemaSet{schemas: compiled}, nil
}

// Validate checks raw JSON against the named schema.
func (s *SchemaSet) Validate(name string, data []byte) error {
	schema, ok := s.schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal output: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("output does not match schema %q: %w", name, err)
	}
	return nil
}
