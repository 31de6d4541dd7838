package validate

import (
	"sort"
	"strings"

	"github.com/stacklint/stacklint/diag"
	"github.com/stacklint/stacklint/refgraph"
	"github.com/stacklint/stacklint/schema"
	"github.com/stacklint/stacklint/template"
)

// Run checks the extracted graph against the catalog and returns the full,
// stably-ordered diagnostic list. Structural diagnostics collected during
// graph extraction are merged in. Every check is independent; none of them
// aborts the run.
func Run(graph *refgraph.Graph, structural []diag.Diagnostic, catalog *schema.Catalog) []diag.Diagnostic {
	diagnostics := append([]diag.Diagnostic(nil), structural...)

	diagnostics = append(diagnostics, checkDuplicateNames(graph)...)
	diagnostics = append(diagnostics, checkResourceSchemas(graph, catalog)...)
	diagnostics = append(diagnostics, checkReferences(graph, catalog)...)
	diagnostics = append(diagnostics, checkCycles(graph)...)
	diagnostics = append(diagnostics, checkUnusedParameters(graph)...)

	diag.Sort(diagnostics)
	return diagnostics
}

// Document parses raw template text, builds the graph, and validates it in
// one pass. Only the parse stage can fail.
func Document(data []byte, catalog *schema.Catalog) ([]diag.Diagnostic, error) {
	root, err := template.Parse(data)
	if err != nil {
		return nil, err
	}
	graph, structural := refgraph.Build(root)
	return Run(graph, structural, catalog), nil
}

func checkDuplicateNames(graph *refgraph.Graph) []diag.Diagnostic {
	namespaces := []struct {
		section refgraph.Section
		names   []string
	}{
		{refgraph.SectionParameters, graph.ParameterNames()},
		{refgraph.SectionResources, graph.ResourceNames()},
		{refgraph.SectionOutputs, graph.OutputNames()},
	}

	firstSeen := map[string]refgraph.Section{}
	var diagnostics []diag.Diagnostic
	for _, namespace := range namespaces {
		for _, name := range namespace.names {
			previous, seen := firstSeen[name]
			if !seen {
				firstSeen[name] = namespace.section
				continue
			}
			diagnostics = append(diagnostics, diag.Errorf(
				diag.DuplicateName, name, string(namespace.section)+"."+name,
				"logical name %q is already declared in %s", name, previous,
			))
		}
	}
	return diagnostics
}

func checkResourceSchemas(graph *refgraph.Graph, catalog *schema.Catalog) []diag.Diagnostic {
	var diagnostics []diag.Diagnostic
	for _, resource := range graph.Resources {
		if resource.Type == "" {
			continue
		}
		entry, found := catalog.Lookup(resource.Type)
		if !found {
			// Property checks are meaningless without a schema; report the
			// unknown type once and move on to the next resource.
			diagnostics = append(diagnostics, diag.Errorf(
				diag.UnknownResourceType, resource.Name,
				"Resources."+resource.Name+".Type",
				"resource type %q is not in the schema catalog", resource.Type,
			))
			continue
		}
		if resource.Properties == nil {
			continue
		}
		base := "Resources." + resource.Name + ".Properties"
		for _, property := range resource.Properties.Entries {
			kind, known := entry.Properties[property.Key]
			if !known {
				diagnostics = append(diagnostics, diag.Errorf(
					diag.UnknownProperty, resource.Name, base+"."+property.Key,
					"type %s has no property %q", resource.Type, property.Key,
				))
				continue
			}
			diagnostics = append(diagnostics,
				checkKind(catalog, resource.Name, base+"."+property.Key, property.Value, kind)...)
		}
	}
	return diagnostics
}

func checkReferences(graph *refgraph.Graph, catalog *schema.Catalog) []diag.Diagnostic {
	resources := map[string]refgraph.Resource{}
	for _, resource := range graph.Resources {
		resources[resource.Name] = resource
	}
	parameters := map[string]struct{}{}
	for _, name := range graph.ParameterNames() {
		parameters[name] = struct{}{}
	}
	mappings := map[string]struct{}{}
	for _, name := range graph.MappingNames() {
		mappings[name] = struct{}{}
	}

	var diagnostics []diag.Diagnostic
	for _, edge := range graph.Edges {
		if edge.To == refgraph.ExternalTarget || refgraph.IsPseudoParameter(edge.To) {
			continue
		}

		if edge.Via == refgraph.ViaDependsOn {
			if _, found := resources[edge.To]; !found {
				diagnostics = append(diagnostics, diag.Errorf(
					diag.DanglingReference, edge.From, edge.Path,
					"DependsOn target %q is not a declared resource", edge.To,
				))
			}
			continue
		}

		target, isResource := resources[edge.To]
		_, isParameter := parameters[edge.To]
		_, isMapping := mappings[edge.To]
		if !isResource && !isParameter && !isMapping {
			diagnostics = append(diagnostics, diag.Errorf(
				diag.DanglingReference, edge.From, edge.Path,
				"%s target %q is not a declared resource, parameter, or mapping", edge.Via, edge.To,
			))
			continue
		}

		if edge.Via == template.FnGetAtt && isResource && edge.Attribute != "" {
			diagnostics = append(diagnostics,
				checkAttribute(catalog, edge, target)...)
		}
	}
	return diagnostics
}

// checkAttribute verifies a GetAtt attribute name when the catalog carries
// attribute data for the target's type; without that data the sub-check is
// skipped rather than failed.
func checkAttribute(catalog *schema.Catalog, edge refgraph.Edge, target refgraph.Resource) []diag.Diagnostic {
	entry, found := catalog.Lookup(target.Type)
	if !found || !entry.HasAttributeData() {
		return nil
	}
	if entry.HasAttribute(edge.Attribute) {
		return nil
	}
	return []diag.Diagnostic{diag.Errorf(
		diag.UnknownProperty, edge.From, edge.Path,
		"type %s has no attribute %q", target.Type, edge.Attribute,
	)}
}

func checkUnusedParameters(graph *refgraph.Graph) []diag.Diagnostic {
	referenced := map[string]struct{}{}
	for _, edge := range graph.Edges {
		referenced[edge.To] = struct{}{}
	}

	var diagnostics []diag.Diagnostic
	for _, name := range graph.ParameterNames() {
		if _, found := referenced[name]; found {
			continue
		}
		diagnostics = append(diagnostics, diag.Warningf(
			diag.UnusedParameter, name, "Parameters."+name,
			"parameter %q is declared but never referenced", name,
		))
	}
	return diagnostics
}

func checkCycles(graph *refgraph.Graph) []diag.Diagnostic {
	resources := map[string]struct{}{}
	for _, resource := range graph.Resources {
		resources[resource.Name] = struct{}{}
	}

	// Creation-order dependencies only: Ref, GetAtt, and explicit DependsOn
	// between two declared resources.
	adjacency := map[string][]string{}
	for _, edge := range graph.Edges {
		if edge.FromSection != refgraph.SectionResources {
			continue
		}
		switch edge.Via {
		case template.FnRef, template.FnGetAtt, refgraph.ViaDependsOn:
		default:
			continue
		}
		if _, found := resources[edge.To]; !found {
			continue
		}
		adjacency[edge.From] = append(adjacency[edge.From], edge.To)
	}
	for from := range adjacency {
		sort.Strings(adjacency[from])
	}

	names := make([]string, 0, len(resources))
	for name := range resources {
		names = append(names, name)
	}
	sort.Strings(names)

	const (
		colorWhite = 0
		colorGray  = 1
		colorBlack = 2
	)
	colors := map[string]int{}
	var stack []string
	seenCycles := map[string]struct{}{}
	var diagnostics []diag.Diagnostic

	var visit func(name string)
	visit = func(name string) {
		colors[name] = colorGray
		stack = append(stack, name)
		for _, next := range adjacency[name] {
			switch colors[next] {
			case colorWhite:
				visit(next)
			case colorGray:
				cycle := extractCycle(stack, next)
				key := strings.Join(cycle, "\x00")
				if _, reported := seenCycles[key]; !reported {
					seenCycles[key] = struct{}{}
					diagnostics = append(diagnostics, diag.Errorf(
						diag.DependencyCycle, cycle[0], "Resources."+cycle[0],
						"creation-order dependency cycle: %s", strings.Join(append(cycle, cycle[0]), " -> "),
					))
				}
			}
		}
		stack = stack[:len(stack)-1]
		colors[name] = colorBlack
	}

	for _, name := range names {
		if colors[name] == colorWhite {
			visit(name)
		}
	}
	return diagnostics
}

// extractCycle returns the cycle on the DFS stack starting at the back-edge
// target, rotated so the lexicographically smallest member leads. The
// rotation keeps a given cycle's report identical regardless of entry point.
func extractCycle(stack []string, start string) []string {
	idx := len(stack) - 1
	for idx >= 0 && stack[idx] != start {
		idx--
	}
	cycle := append([]string(nil), stack[idx:]...)

	smallest := 0
	for position, name := range cycle {
		if name < cycle[smallest] {
			smallest = position
		}
	}
	rotated := make([]string, 0, len(cycle))
	rotated = append(rotated, cycle[smallest:]...)
	rotated = append(rotated, cycle[:smallest]...)
	return rotated
}
