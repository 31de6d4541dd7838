package schema

import (
	"fmt"
	"strings"

	"github.com/stacklint/stacklint/faults"
)

type ScalarKind string

const (
	ScalarString  ScalarKind = "String"
	ScalarBoolean ScalarKind = "Boolean"
	ScalarInteger ScalarKind = "Integer"
	ScalarJson    ScalarKind = "Json"
)

type KindClass int

const (
	ClassScalar KindClass = iota
	ClassList
	ClassObject
)

// PropertyKind is the closed variant describing the shape a property accepts:
// a scalar of some kind, a list of an element kind, or a named object
// definition from the catalog.
type PropertyKind struct {
	Class  KindClass
	Scalar ScalarKind
	Elem   *PropertyKind
	Object string
}

func (k PropertyKind) String() string {
	switch k.Class {
	case ClassScalar:
		return strings.ToLower(string(k.Scalar))
	case ClassList:
		if k.Elem == nil {
			return "[]"
		}
		return "[]" + k.Elem.String()
	case ClassObject:
		return k.Object
	}
	return "unknown"
}

var scalarKinds = map[string]ScalarKind{
	"string":  ScalarString,
	"boolean": ScalarBoolean,
	"bool":    ScalarBoolean,
	"integer": ScalarInteger,
	"int":     ScalarInteger,
	"json":    ScalarJson,
}

// ParseKind parses a compact type string: a scalar name, "[]T" for a list of
// T, or a bare identifier naming an object definition.
func ParseKind(value string) (PropertyKind, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return PropertyKind{}, faults.NewTypedError(faults.CatalogError, "property kind must not be empty", nil)
	}

	if strings.HasPrefix(trimmed, "[]") {
		elem, err := ParseKind(strings.TrimPrefix(trimmed, "[]"))
		if err != nil {
			return PropertyKind{}, err
		}
		return PropertyKind{Class: ClassList, Elem: &elem}, nil
	}

	if scalar, found := scalarKinds[strings.ToLower(trimmed)]; found {
		return PropertyKind{Class: ClassScalar, Scalar: scalar}, nil
	}

	if !isIdentifier(trimmed) {
		return PropertyKind{}, faults.NewTypedError(
			faults.CatalogError,
			fmt.Sprintf("invalid property kind %q", value),
			nil,
		)
	}
	return PropertyKind{Class: ClassObject, Object: trimmed}, nil
}

func isIdentifier(value string) bool {
	for idx, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && idx > 0:
		default:
			return false
		}
	}
	return value != ""
}
