// Package fieldstream declares the typed schema constructors the analyzer
// inspects.
package fieldstream

type TypedSchema[T any] struct{}

func Typed[T any](field string) (*TypedSchema[T], error) { return nil, nil }

func MustTyped[T any](field string) *TypedSchema[T] { return nil }

// Other has the same shape but is not checked.
func Other[T any](field string) *TypedSchema[T] { return nil }
