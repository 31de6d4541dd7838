package refgraph

import (
	"github.com/stacklint/stacklint/template"
)

type Section string

const (
	SectionParameters Section = "Parameters"
	SectionMappings   Section = "Mappings"
	SectionResources  Section = "Resources"
	SectionOutputs    Section = "Outputs"
)

// ExternalTarget is the synthetic node ImportValue edges point at. It lives
// outside the template namespace and is never resolved locally.
const ExternalTarget = "<external>"

// ViaDependsOn marks explicit creation-order edges declared with DependsOn.
const ViaDependsOn = template.FnTag("DependsOn")

type Resource struct {
	Name       string
	Type       string
	Properties *template.Node
	DependsOn  []string
}

// Edge is a directed cross-reference from a declared entity to a named target.
// Attribute is set for GetAtt (and attribute-form Sub variables).
type Edge struct {
	From        string
	FromSection Section
	To          string
	Via         template.FnTag
	Attribute   string
	Path        string
}

// Graph holds the extracted sections and every cross-reference edge found in
// the Resources and Outputs subtrees.
type Graph struct {
	Parameters *template.Node
	Mappings   *template.Node
	Resources  []Resource
	Outputs    *template.Node
	Edges      []Edge
}

func (g *Graph) ParameterNames() []string {
	return g.Parameters.Keys()
}

func (g *Graph) MappingNames() []string {
	return g.Mappings.Keys()
}

func (g *Graph) OutputNames() []string {
	return g.Outputs.Keys()
}

func (g *Graph) ResourceNames() []string {
	names := make([]string, 0, len(g.Resources))
	for _, resource := range g.Resources {
		names = append(names, resource.Name)
	}
	return names
}

func (g *Graph) Resource(name string) (Resource, bool) {
	for _, resource := range g.Resources {
		if resource.Name == name {
			return resource, true
		}
	}
	return Resource{}, false
}

// EdgesFrom returns the edges owned by one logical name, in extraction order.
func (g *Graph) EdgesFrom(name string) []Edge {
	var edges []Edge
	for _, edge := range g.Edges {
		if edge.From == name {
			edges = append(edges, edge)
		}
	}
	return edges
}

var pseudoParameters = map[string]struct{}{
	"AWS::AccountId":        {},
	"AWS::NotificationARNs": {},
	"AWS::NoValue":          {},
	"AWS::Partition":        {},
	"AWS::Region":           {},
	"AWS::StackId":          {},
	"AWS::StackName":        {},
	"AWS::URLSuffix":        {},
}

// IsPseudoParameter reports whether a name is resolved implicitly by the
// provider and therefore never dangles.
func IsPseudoParameter(name string) bool {
	_, found := pseudoParameters[name]
	return found
}
