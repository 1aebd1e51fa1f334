// Package schema builds the JSON Schemas that tell a model which object to
// write, for use as a provider's structured-output response format.
package schema

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"

	"github.com/deepankarm/fieldstream/pkg/fieldstream"
)

// Generator generates JSON Schema for Go types
type Generator struct {
	reflector *jsonschema.Reflector
}

// NewGenerator creates a new schema generator
func NewGenerator() *Generator {
	return &Generator{
		reflector: &jsonschema.Reflector{
			Anonymous:                  true,
			ExpandedStruct:             true,
			AllowAdditionalProperties:  false,
			RequiredFromJSONSchemaTags: true,
		},
	}
}

// Reflect generates the raw JSON Schema for typ.
func (g *Generator) Reflect(typ reflect.Type) *jsonschema.Schema {
	return g.reflector.ReflectFromType(typ)
}

// Strict generates a schema for typ that satisfies OpenAI strict mode.
func (g *Generator) Strict(typ reflect.Type) (map[string]any, error) {
	m, err := toMap(g.Reflect(typ))
	if err != nil {
		return nil, err
	}
	return TransformForOpenAI(m), nil
}

// ForField returns the schema of an object with one required string
// property, name.
func ForField(name string) map[string]any {
	props := jsonschema.NewProperties()
	props.Set(name, &jsonschema.Schema{Type: "string"})

	m, err := toMap(&jsonschema.Schema{
		Type:                 "object",
		Properties:           props,
		Required:             []string{name},
		AdditionalProperties: jsonschema.FalseSchema,
	})
	if err != nil {
		// A hand-built schema of plain values always marshals.
		panic(err)
	}
	return m
}

// For returns the strict schema of T.
func For[T any]() (map[string]any, error) {
	return NewGenerator().Strict(reflect.TypeFor[T]())
}

// ForSchema returns the schema that matches how s reads the stream: the
// full shape for a typed schema, a single string property otherwise.
func ForSchema(s fieldstream.Schema) (map[string]any, error) {
	if typed, ok := s.(interface{ Type() reflect.Type }); ok {
		return NewGenerator().Strict(typed.Type())
	}
	return ForField(s.Field()), nil
}

// toMap converts schema to a generic map for manipulation
func toMap(s *jsonschema.Schema) (map[string]any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}
	return m, nil
}
