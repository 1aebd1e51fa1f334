// Package reflectutil provides reflection helpers for binding JSON fields to
// Go struct fields.
package reflectutil

import (
	"reflect"
	"strings"
)

// JSONFieldName returns the JSON field name for a struct field.
// Returns the json tag name if present, otherwise the Go field name.
// Returns "-" for ignored fields.
func JSONFieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name
	}
	if idx := strings.Index(tag, ","); idx != -1 {
		if idx == 0 {
			return field.Name
		}
		return tag[:idx]
	}
	return tag
}

// FieldByJSONName finds the exported struct field that encoding/json would
// decode the key jsonName into, including fields promoted from embedded
// structs. Only exact JSON names match.
func FieldByJSONName(typ reflect.Type, jsonName string) (reflect.StructField, bool) {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return reflect.StructField{}, false
	}

	for _, field := range reflect.VisibleFields(typ) {
		if !field.IsExported() || field.Anonymous {
			continue
		}
		if JSONFieldName(field) == jsonName {
			return field, true
		}
	}
	return reflect.StructField{}, false
}
