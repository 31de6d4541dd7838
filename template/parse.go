package template

import (
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/stacklint/stacklint/faults"
)

var shortFormTags = map[string]FnTag{
	"!Ref":         FnRef,
	"!GetAtt":      FnGetAtt,
	"!Join":        FnJoin,
	"!Sub":         FnSub,
	"!FindInMap":   FnFindInMap,
	"!ImportValue": FnImportValue,
	"!Base64":      FnBase64,
}

var longFormKeys = map[string]FnTag{
	"Ref":             FnRef,
	"Fn::GetAtt":      FnGetAtt,
	"Fn::Join":        FnJoin,
	"Fn::Sub":         FnSub,
	"Fn::FindInMap":   FnFindInMap,
	"Fn::ImportValue": FnImportValue,
	"Fn::Base64":      FnBase64,
}

// Parse converts raw template text into a Node tree. It is the only stage
// allowed to fail the run; every error it returns is a faults.TypedError with
// one of the parse categories.
func Parse(data []byte) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, classifyYAMLError(err)
	}

	root := documentRoot(&doc)
	if root == nil {
		return &Node{Kind: KindMapping}, nil
	}

	node, err := convert(root)
	if err != nil {
		return nil, err
	}
	if node.Kind == KindScalar && node.Tag == "!!null" {
		return &Node{Kind: KindMapping, Line: node.Line, Column: node.Column}, nil
	}
	return node, nil
}

func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc == nil || doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	return doc.Content[0]
}

func convert(node *yaml.Node) (*Node, error) {
	if node == nil {
		return nil, faults.NewTypedError(faults.InternalError, "nil yaml node", nil)
	}
	if node.Kind == yaml.AliasNode {
		return convert(node.Alias)
	}

	if tag, found := shortFormTags[node.Tag]; found {
		return convertFunction(tag, node)
	}
	if strings.HasPrefix(node.Tag, "!") && !strings.HasPrefix(node.Tag, "!!") {
		return nil, faults.NewTypedErrorAt(
			faults.MalformedSyntax,
			fmt.Sprintf("unrecognized tag %q", node.Tag),
			node.Line, node.Column,
		)
	}

	switch node.Kind {
	case yaml.ScalarNode:
		return &Node{
			Kind:   KindScalar,
			Value:  node.Value,
			Tag:    node.Tag,
			Line:   node.Line,
			Column: node.Column,
		}, nil

	case yaml.SequenceNode:
		items := make([]*Node, 0, len(node.Content))
		for _, item := range node.Content {
			converted, err := convert(item)
			if err != nil {
				return nil, err
			}
			items = append(items, converted)
		}
		return &Node{Kind: KindSequence, Items: items, Line: node.Line, Column: node.Column}, nil

	case yaml.MappingNode:
		return convertMapping(node)
	}

	return nil, faults.NewTypedErrorAt(
		faults.MalformedSyntax,
		fmt.Sprintf("unsupported node kind %d", node.Kind),
		node.Line, node.Column,
	)
}

func convertMapping(node *yaml.Node) (*Node, error) {
	// A single-key mapping whose key names an intrinsic is the long form of
	// that intrinsic and normalizes to the same Function node as the tag form.
	if len(node.Content) == 2 {
		keyNode := node.Content[0]
		if keyNode.Kind == yaml.ScalarNode {
			if tag, found := longFormKeys[keyNode.Value]; found {
				return convertFunction(tag, node.Content[1])
			}
		}
	}

	entries := make([]Entry, 0, len(node.Content)/2)
	seen := make(map[string]struct{}, len(node.Content)/2)
	for idx := 0; idx+1 < len(node.Content); idx += 2 {
		keyNode := node.Content[idx]
		if keyNode.Kind != yaml.ScalarNode {
			return nil, faults.NewTypedErrorAt(
				faults.MalformedSyntax,
				"mapping key must be a scalar",
				keyNode.Line, keyNode.Column,
			)
		}
		key := keyNode.Value
		if _, exists := seen[key]; exists {
			return nil, faults.NewTypedErrorAt(
				faults.DuplicateKey,
				fmt.Sprintf("mapping key %q declared twice", key),
				keyNode.Line, keyNode.Column,
			)
		}
		seen[key] = struct{}{}

		value, err := convert(node.Content[idx+1])
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Key: key, Value: value})
	}

	return &Node{Kind: KindMapping, Entries: entries, Line: node.Line, Column: node.Column}, nil
}

func convertFunction(tag FnTag, payload *yaml.Node) (*Node, error) {
	if payload.Kind == yaml.AliasNode {
		return convertFunction(tag, payload.Alias)
	}

	fn := &Node{Kind: KindFunction, Fn: tag, Line: payload.Line, Column: payload.Column}

	switch payload.Kind {
	case yaml.ScalarNode:
		if tag == FnGetAtt {
			fn.Args = splitGetAttTarget(payload)
			return fn, nil
		}
		fn.Args = []*Node{{
			Kind:   KindScalar,
			Value:  payload.Value,
			Tag:    scalarTagOrDefault(payload.Tag),
			Line:   payload.Line,
			Column: payload.Column,
		}}
		return fn, nil

	case yaml.SequenceNode:
		args := make([]*Node, 0, len(payload.Content))
		for _, item := range payload.Content {
			converted, err := convert(item)
			if err != nil {
				return nil, err
			}
			args = append(args, converted)
		}
		fn.Args = args
		return fn, nil

	case yaml.MappingNode:
		arg, err := convertMapping(payload)
		if err != nil {
			return nil, err
		}
		fn.Args = []*Node{arg}
		return fn, nil
	}

	return nil, faults.NewTypedErrorAt(
		faults.MalformedSyntax,
		fmt.Sprintf("unsupported argument for %s", tag),
		payload.Line, payload.Column,
	)
}

// splitGetAttTarget expands the short form "Resource.Attribute" into the two
// scalar arguments the long form carries. Only the first dot separates the
// logical name; the remainder is the attribute path.
func splitGetAttTarget(payload *yaml.Node) []*Node {
	name, attribute, found := strings.Cut(payload.Value, ".")
	args := []*Node{{
		Kind:   KindScalar,
		Value:  name,
		Tag:    "!!str",
		Line:   payload.Line,
		Column: payload.Column,
	}}
	if found {
		args = append(args, &Node{
			Kind:   KindScalar,
			Value:  attribute,
			Tag:    "!!str",
			Line:   payload.Line,
			Column: payload.Column,
		})
	}
	return args
}

func scalarTagOrDefault(tag string) string {
	// Tagged scalars lose the implicit resolution yaml would apply, so the
	// intrinsic argument defaults to a string.
	if strings.HasPrefix(tag, "!!") {
		return tag
	}
	return "!!str"
}

func classifyYAMLError(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "end of stream") ||
		strings.Contains(msg, "']'") ||
		strings.Contains(msg, "'}'") {
		return faults.NewTypedError(faults.UnterminatedBlock, "template has an unterminated block", err)
	}
	return faults.NewTypedError(faults.MalformedSyntax, "template is not valid YAML", err)
}
