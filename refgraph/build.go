package refgraph

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/stacklint/stacklint/diag"
	"github.com/stacklint/stacklint/template"
)

// Top-level keys the provider understands that carry no cross-references we
// track. Anything else is reported as an unknown section.
var passthroughSections = map[string]struct{}{
	"AWSTemplateFormatVersion": {},
	"Description":              {},
	"Metadata":                 {},
	"Conditions":               {},
	"Transform":                {},
	"Rules":                    {},
}

// Build extracts the named sections and walks every resource and output
// subtree for cross-references. It never fails: structural problems degrade
// into diagnostics and extraction continues.
func Build(root *template.Node) (*Graph, []diag.Diagnostic) {
	graph := &Graph{
		Parameters: &template.Node{Kind: template.KindMapping},
		Mappings:   &template.Node{Kind: template.KindMapping},
		Outputs:    &template.Node{Kind: template.KindMapping},
	}
	var diagnostics []diag.Diagnostic

	if root == nil {
		return graph, diagnostics
	}
	if root.Kind != template.KindMapping {
		diagnostics = append(diagnostics, diag.Errorf(
			diag.MalformedSection, "", "template",
			"template root must be a mapping, found a %s", root.Kind,
		))
		return graph, diagnostics
	}

	for _, entry := range root.Entries {
		switch entry.Key {
		case string(SectionParameters):
			graph.Parameters = requireMapping(entry.Key, entry.Value, &diagnostics)
		case string(SectionMappings):
			graph.Mappings = requireMapping(entry.Key, entry.Value, &diagnostics)
		case string(SectionOutputs):
			graph.Outputs = requireMapping(entry.Key, entry.Value, &diagnostics)
		case string(SectionResources):
			resources := requireMapping(entry.Key, entry.Value, &diagnostics)
			for _, resourceEntry := range resources.Entries {
				graph.Resources = append(graph.Resources,
					extractResource(resourceEntry.Key, resourceEntry.Value, &diagnostics))
			}
		default:
			if _, known := passthroughSections[entry.Key]; !known {
				diagnostics = append(diagnostics, diag.Warningf(
					diag.UnknownSection, entry.Key, entry.Key,
					"unrecognized top-level section %q", entry.Key,
				))
			}
		}
	}

	for _, resource := range graph.Resources {
		base := "Resources." + resource.Name
		for _, dependency := range resource.DependsOn {
			graph.Edges = append(graph.Edges, Edge{
				From:        resource.Name,
				FromSection: SectionResources,
				To:          dependency,
				Via:         ViaDependsOn,
				Path:        base + ".DependsOn",
			})
		}
		if resource.Properties != nil {
			walk(graph, resource.Name, SectionResources, base+".Properties", resource.Properties, &diagnostics)
		}
	}

	for _, entry := range graph.Outputs.Entries {
		walk(graph, entry.Key, SectionOutputs, "Outputs."+entry.Key, entry.Value, &diagnostics)
	}

	return graph, diagnostics
}

func requireMapping(section string, node *template.Node, diagnostics *[]diag.Diagnostic) *template.Node {
	if node != nil && node.Kind == template.KindMapping {
		return node
	}
	*diagnostics = append(*diagnostics, diag.Errorf(
		diag.MalformedSection, section, section,
		"section %s must be a mapping", section,
	))
	return &template.Node{Kind: template.KindMapping}
}

func extractResource(name string, node *template.Node, diagnostics *[]diag.Diagnostic) Resource {
	resource := Resource{Name: name}
	path := "Resources." + name

	if node == nil || node.Kind != template.KindMapping {
		*diagnostics = append(*diagnostics, diag.Errorf(
			diag.MalformedSection, name, path,
			"resource %s must be a mapping", name,
		))
		return resource
	}

	if typeNode, found := node.Lookup("Type"); found && typeNode.IsScalar() {
		resource.Type = typeNode.Value
	} else {
		*diagnostics = append(*diagnostics, diag.Errorf(
			diag.MalformedSection, name, path+".Type",
			"resource %s has no Type", name,
		))
	}

	if properties, found := node.Lookup("Properties"); found {
		if properties.Kind == template.KindMapping {
			resource.Properties = properties
		} else {
			*diagnostics = append(*diagnostics, diag.Errorf(
				diag.MalformedSection, name, path+".Properties",
				"Properties of %s must be a mapping", name,
			))
		}
	}

	if dependsOn, found := node.Lookup("DependsOn"); found {
		resource.DependsOn = dependsOnNames(name, path, dependsOn, diagnostics)
	}

	return resource
}

func dependsOnNames(name string, path string, node *template.Node, diagnostics *[]diag.Diagnostic) []string {
	switch node.Kind {
	case template.KindScalar:
		return []string{node.Value}
	case template.KindSequence:
		var names []string
		for _, item := range node.Items {
			if item.IsScalar() {
				names = append(names, item.Value)
				continue
			}
			*diagnostics = append(*diagnostics, diag.Errorf(
				diag.InvalidFunctionUsage, name, path+".DependsOn",
				"DependsOn entries must be literal logical names",
			))
		}
		return names
	}
	*diagnostics = append(*diagnostics, diag.Errorf(
		diag.InvalidFunctionUsage, name, path+".DependsOn",
		"DependsOn must be a logical name or a list of logical names",
	))
	return nil
}

// walk is a single post-order traversal: children first, then the node's own
// intrinsic, so diagnostics inside arguments surface before the call's edge.
func walk(graph *Graph, owner string, section Section, path string, node *template.Node, diagnostics *[]diag.Diagnostic) {
	if node == nil {
		return
	}

	switch node.Kind {
	case template.KindMapping:
		for _, entry := range node.Entries {
			walk(graph, owner, section, path+"."+entry.Key, entry.Value, diagnostics)
		}
	case template.KindSequence:
		for idx, item := range node.Items {
			walk(graph, owner, section, path+indexSegment(idx), item, diagnostics)
		}
	case template.KindFunction:
		walkFunctionArgs(graph, owner, section, path, node, diagnostics)
		recordEdges(graph, owner, section, path, node, diagnostics)
	}
}

func walkFunctionArgs(graph *Graph, owner string, section Section, path string, node *template.Node, diagnostics *[]diag.Diagnostic) {
	for idx, arg := range node.Args {
		// Scalar arguments of reference intrinsics are names, not values;
		// they are consumed by recordEdges.
		if arg.IsScalar() {
			continue
		}
		walk(graph, owner, section, path+indexSegment(idx), arg, diagnostics)
	}
}

func recordEdges(graph *Graph, owner string, section Section, path string, node *template.Node, diagnostics *[]diag.Diagnostic) {
	switch node.Fn {
	case template.FnRef:
		if len(node.Args) == 1 && node.Args[0].IsScalar() {
			graph.Edges = append(graph.Edges, Edge{
				From:        owner,
				FromSection: section,
				To:          node.Args[0].Value,
				Via:         template.FnRef,
				Path:        path,
			})
			return
		}
		*diagnostics = append(*diagnostics, diag.Errorf(
			diag.InvalidFunctionUsage, owner, path,
			"Ref argument must be a single scalar name",
		))

	case template.FnGetAtt:
		if len(node.Args) >= 2 && allScalars(node.Args) {
			attribute := make([]string, 0, len(node.Args)-1)
			for _, arg := range node.Args[1:] {
				attribute = append(attribute, arg.Value)
			}
			graph.Edges = append(graph.Edges, Edge{
				From:        owner,
				FromSection: section,
				To:          node.Args[0].Value,
				Via:         template.FnGetAtt,
				Attribute:   strings.Join(attribute, "."),
				Path:        path,
			})
			return
		}
		*diagnostics = append(*diagnostics, diag.Errorf(
			diag.InvalidFunctionUsage, owner, path,
			"GetAtt requires a logical name and an attribute name",
		))

	case template.FnFindInMap:
		if len(node.Args) == 3 && node.Args[0].IsScalar() {
			graph.Edges = append(graph.Edges, Edge{
				From:        owner,
				FromSection: section,
				To:          node.Args[0].Value,
				Via:         template.FnFindInMap,
				Path:        path,
			})
			return
		}
		*diagnostics = append(*diagnostics, diag.Errorf(
			diag.InvalidFunctionUsage, owner, path,
			"FindInMap requires a map name and two keys",
		))

	case template.FnImportValue:
		graph.Edges = append(graph.Edges, Edge{
			From:        owner,
			FromSection: section,
			To:          ExternalTarget,
			Via:         template.FnImportValue,
			Path:        path,
		})

	case template.FnSub:
		recordSubEdges(graph, owner, section, path, node, diagnostics)
	}
}

var subVariablePattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func recordSubEdges(graph *Graph, owner string, section Section, path string, node *template.Node, diagnostics *[]diag.Diagnostic) {
	if len(node.Args) == 0 || !node.Args[0].IsScalar() {
		*diagnostics = append(*diagnostics, diag.Errorf(
			diag.InvalidFunctionUsage, owner, path,
			"Sub requires a template string",
		))
		return
	}

	shadowed := subVariableNames(node)
	for _, match := range subVariablePattern.FindAllStringSubmatch(node.Args[0].Value, -1) {
		variable := strings.TrimSpace(match[1])
		if strings.HasPrefix(variable, "!") {
			// ${!Literal} is escaped text, not a reference.
			continue
		}
		if _, found := shadowed[variable]; found {
			continue
		}
		target, attribute, _ := strings.Cut(variable, ".")
		graph.Edges = append(graph.Edges, Edge{
			From:        owner,
			FromSection: section,
			To:          target,
			Via:         template.FnSub,
			Attribute:   attribute,
			Path:        path,
		})
	}
}

// subVariableNames collects the names a Sub variable map declares; those
// shadow template names inside the Sub string.
func subVariableNames(node *template.Node) map[string]struct{} {
	if node.Fn != template.FnSub || len(node.Args) < 2 {
		return nil
	}
	varMap := node.Args[1]
	if varMap == nil || varMap.Kind != template.KindMapping {
		return nil
	}
	names := make(map[string]struct{}, len(varMap.Entries))
	for _, entry := range varMap.Entries {
		names[entry.Key] = struct{}{}
	}
	return names
}

func allScalars(nodes []*template.Node) bool {
	for _, node := range nodes {
		if !node.IsScalar() {
			return false
		}
	}
	return true
}

func indexSegment(idx int) string {
	return "." + strconv.Itoa(idx)
}
