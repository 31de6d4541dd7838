package validate

import (
	"strconv"
	"strings"

	"github.com/stacklint/stacklint/diag"
	"github.com/stacklint/stacklint/schema"
	"github.com/stacklint/stacklint/template"
)

// checkKind compares a property subtree against its declared kind. Function
// nodes are always treated as compatible: their runtime type cannot be known
// statically. Json accepts any shape.
func checkKind(catalog *schema.Catalog, owner string, path string, node *template.Node, kind schema.PropertyKind) []diag.Diagnostic {
	if node == nil || node.Kind == template.KindFunction {
		return nil
	}

	switch kind.Class {
	case schema.ClassScalar:
		return checkScalarKind(owner, path, node, kind.Scalar)

	case schema.ClassList:
		if node.Kind != template.KindSequence {
			return mismatch(owner, path, "a list", node)
		}
		if kind.Elem == nil {
			return nil
		}
		var diagnostics []diag.Diagnostic
		for idx, item := range node.Items {
			diagnostics = append(diagnostics,
				checkKind(catalog, owner, path+"."+strconv.Itoa(idx), item, *kind.Elem)...)
		}
		return diagnostics

	case schema.ClassObject:
		if node.Kind != template.KindMapping {
			return mismatch(owner, path, "an object", node)
		}
		definition, found := catalog.Definition(kind.Object)
		if !found {
			return nil
		}
		var diagnostics []diag.Diagnostic
		for _, entry := range node.Entries {
			propertyKind, known := definition.Properties[entry.Key]
			if !known {
				diagnostics = append(diagnostics, diag.Errorf(
					diag.UnknownProperty, owner, path+"."+entry.Key,
					"object %s has no property %q", kind.Object, entry.Key,
				))
				continue
			}
			diagnostics = append(diagnostics,
				checkKind(catalog, owner, path+"."+entry.Key, entry.Value, propertyKind)...)
		}
		return diagnostics
	}

	return nil
}

func checkScalarKind(owner string, path string, node *template.Node, scalar schema.ScalarKind) []diag.Diagnostic {
	if scalar == schema.ScalarJson {
		return nil
	}
	if node.Kind != template.KindScalar {
		return mismatch(owner, path, "a "+strings.ToLower(string(scalar))+" scalar", node)
	}

	switch scalar {
	case schema.ScalarInteger:
		if _, err := strconv.ParseInt(node.Value, 10, 64); err != nil {
			return []diag.Diagnostic{diag.Errorf(
				diag.PropertyKindMismatch, owner, path,
				"value %q is not an integer", node.Value,
			)}
		}
	case schema.ScalarBoolean:
		switch node.Value {
		case "true", "false", "True", "False":
		default:
			return []diag.Diagnostic{diag.Errorf(
				diag.PropertyKindMismatch, owner, path,
				"value %q is not a boolean", node.Value,
			)}
		}
	}
	return nil
}

func mismatch(owner string, path string, expected string, node *template.Node) []diag.Diagnostic {
	return []diag.Diagnostic{diag.Errorf(
		diag.PropertyKindMismatch, owner, path,
		"expected %s, found a %s", expected, node.Kind,
	)}
}
