package template

import (
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/stacklint/stacklint/faults"
	"github.com/stacklint/stacklint/yamlutil"
)

const encodeIndent = 2

// Encode serializes a Node tree back to YAML using the short-form intrinsic
// tags. Parsing the output yields a tree structurally equal to the input.
func Encode(node *Node) ([]byte, error) {
	if node == nil {
		return nil, faults.NewTypedError(faults.InternalError, "cannot encode nil node", nil)
	}

	yamlNode, err := toYAMLNode(node)
	if err != nil {
		return nil, err
	}
	return yamlutil.MarshalWithIndent(yamlNode, encodeIndent)
}

func toYAMLNode(node *Node) (*yaml.Node, error) {
	switch node.Kind {
	case KindScalar:
		return scalarYAMLNode(node.Value, node.Tag), nil

	case KindSequence:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range node.Items {
			converted, err := toYAMLNode(item)
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content, converted)
		}
		return out, nil

	case KindMapping:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, entry := range node.Entries {
			converted, err := toYAMLNode(entry.Value)
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content, scalarYAMLNode(entry.Key, "!!str"), converted)
		}
		return out, nil

	case KindFunction:
		return functionYAMLNode(node)
	}

	return nil, faults.NewTypedError(faults.InternalError, fmt.Sprintf("cannot encode node kind %s", node.Kind), nil)
}

func functionYAMLNode(node *Node) (*yaml.Node, error) {
	tag := "!" + string(node.Fn)

	if node.Fn == FnGetAtt && splitsBackToGetAttArgs(node.Args) {
		out := scalarYAMLNode(node.Args[0].Value+"."+node.Args[1].Value, "")
		out.Tag = tag
		return out, nil
	}

	if len(node.Args) == 1 {
		converted, err := toYAMLNode(node.Args[0])
		if err != nil {
			return nil, err
		}
		if node.Args[0].Kind == KindFunction {
			// Nested intrinsics cannot stack two tags on one node; wrap the
			// inner call in a single-item sequence instead.
			out := &yaml.Node{Kind: yaml.SequenceNode, Tag: tag, Content: []*yaml.Node{converted}}
			return out, nil
		}
		converted.Tag = tag
		if node.Args[0].Kind == KindScalar {
			converted.Style = 0
		}
		return converted, nil
	}

	out := &yaml.Node{Kind: yaml.SequenceNode, Tag: tag}
	for _, arg := range node.Args {
		converted, err := toYAMLNode(arg)
		if err != nil {
			return nil, err
		}
		out.Content = append(out.Content, converted)
	}
	return out, nil
}

func scalarYAMLNode(value string, tag string) *yaml.Node {
	out := &yaml.Node{Kind: yaml.ScalarNode, Value: value, Tag: tag}
	if tag == "!!str" && looksAmbiguous(value) {
		out.Style = yaml.DoubleQuotedStyle
	}
	return out
}

// splitsBackToGetAttArgs reports whether the args can be joined into the
// dotted scalar short form and still split back unchanged: exactly a logical
// name and an attribute, both plain strings, with no dot in the name (the
// split cuts on the first dot, so a dotted name would shift segments into the
// attribute).
func splitsBackToGetAttArgs(args []*Node) bool {
	if len(args) != 2 {
		return false
	}
	for _, arg := range args {
		if arg == nil || arg.Kind != KindScalar || arg.Tag != "!!str" {
			return false
		}
	}
	return !strings.Contains(args[0].Value, ".")
}

// looksAmbiguous reports whether a string scalar would resolve to a non-string
// type when re-parsed unquoted.
func looksAmbiguous(value string) bool {
	if value == "" {
		return true
	}
	var probe yaml.Node
	if err := yaml.Unmarshal([]byte(value), &probe); err != nil {
		return true
	}
	root := documentRoot(&probe)
	return root == nil || root.Kind != yaml.ScalarNode || root.Tag != "!!str"
}
