package fieldstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/deepankarm/fieldstream/pkg/internal/reflectutil"
)

// DefaultField is the field read when no schema is configured.
const DefaultField = "response"

// Schema reads the target field out of a partial document.
type Schema interface {
	// Field returns the JSON name of the target field.
	Field() string

	// Extract returns the field's current value. ready is false when the
	// document cannot be judged yet; a non-nil error is fatal.
	Extract(p Partial) (value string, ready bool, err error)
}

// OpenField reads a single top-level key from an otherwise unconstrained
// object. A missing key, or a key holding something other than a string,
// reads as "".
func OpenField(name string) Schema {
	return openField{name: name}
}

type openField struct {
	name string
}

func (f openField) Field() string { return f.name }

func (f openField) Extract(p Partial) (string, bool, error) {
	s, _ := p.Fields()[f.name].(string)
	return s, true, nil
}

// TypedSchema binds the target field to the fixed shape T. Complete
// documents must contain the target key, decode into T and pass T's
// `validate` struct tags. An empty target value is accepted.
type TypedSchema[T any] struct {
	field    string
	index    []int
	validate *validator.Validate
}

// Typed creates a schema for T whose target is the string field with JSON
// name field.
//
// Example:
//
//	type Reply struct {
//	    SpokenResponse string `json:"spoken_response"`
//	    Mood           string `json:"mood" validate:"oneof=calm excited"`
//	}
//
//	schema, err := fieldstream.Typed[Reply]("spoken_response")
func Typed[T any](field string) (*TypedSchema[T], error) {
	typ := reflect.TypeFor[T]()
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("typed schema needs a struct type, got %s", typ)
	}

	sf, ok := reflectutil.FieldByJSONName(typ, field)
	if !ok {
		return nil, fmt.Errorf("%s has no field with JSON name %q", typ, field)
	}
	if sf.Type.Kind() != reflect.String {
		return nil, fmt.Errorf("field %s.%s must be a string, got %s", typ, sf.Name, sf.Type)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := reflectutil.JSONFieldName(f)
		if name == "-" {
			return ""
		}
		return name
	})

	return &TypedSchema[T]{
		field:    field,
		index:    sf.Index,
		validate: validate,
	}, nil
}

// MustTyped is like Typed but panics on an invalid shape.
func MustTyped[T any](field string) *TypedSchema[T] {
	s, err := Typed[T](field)
	if err != nil {
		panic(err)
	}
	return s
}

// Field returns the JSON name of the target field.
func (s *TypedSchema[T]) Field() string { return s.field }

// Type returns the reflected shape, for schema generation.
func (s *TypedSchema[T]) Type() reflect.Type { return reflect.TypeFor[T]() }

// Decode decodes p into T. Validation runs only once p is complete.
func (s *TypedSchema[T]) Decode(p Partial) (T, bool, error) {
	var v T
	if err := json.Unmarshal(p.Raw(), &v); err != nil {
		if !p.Complete() {
			// A later chunk may still make it fit; only judge whole documents.
			return v, false, nil
		}
		return v, false, decodeMismatch(err)
	}

	if p.Complete() {
		if _, ok := p.Fields()[s.field]; !ok {
			return v, false, &Error{
				Kind:    KindSchemaMismatch,
				Loc:     []string{s.field},
				Message: "field required",
				Offset:  -1,
			}
		}
		if err := s.validate.Struct(&v); err != nil {
			return v, false, validationMismatch(err)
		}
	}
	return v, true, nil
}

// Extract implements Schema.
func (s *TypedSchema[T]) Extract(p Partial) (string, bool, error) {
	v, ready, err := s.Decode(p)
	if err != nil || !ready {
		return "", false, err
	}
	return reflect.ValueOf(&v).Elem().FieldByIndex(s.index).String(), true, nil
}

func decodeMismatch(err error) *Error {
	e := &Error{
		Kind:    KindSchemaMismatch,
		Message: err.Error(),
		Offset:  -1,
		Err:     err,
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field != "" {
			e.Loc = strings.Split(typeErr.Field, ".")
		}
		e.Message = fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value)
		e.Offset = int(typeErr.Offset)
	}
	return e
}

func validationMismatch(err error) *Error {
	e := &Error{
		Kind:    KindSchemaMismatch,
		Message: err.Error(),
		Offset:  -1,
		Err:     err,
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		// Namespace is "Type.field.sub"; drop the type name.
		if ns := strings.Split(first.Namespace(), "."); len(ns) > 1 {
			e.Loc = ns[1:]
		}
		e.Message = fmt.Sprintf("failed %q validation", first.Tag())
	}
	return e
}
