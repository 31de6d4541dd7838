package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/ddddddO/gtree"
	"github.com/goccy/go-json"

	"github.com/stacklint/stacklint/refgraph"
)

const FormatTree = "tree"

type edgeWire struct {
	From      string `json:"from"`
	Section   string `json:"section"`
	To        string `json:"to"`
	Via       string `json:"via"`
	Attribute string `json:"attribute,omitempty"`
	Path      string `json:"path"`
}

// Graph writes the reference edges in the requested format.
func Graph(w io.Writer, graph *refgraph.Graph, format string) error {
	switch format {
	case FormatText, "":
		return graphText(w, graph)
	case FormatTree:
		return graphTree(w, graph)
	case FormatJSON:
		return graphJSON(w, graph)
	}
	return fmt.Errorf("unknown output format %q", format)
}

func graphText(w io.Writer, graph *refgraph.Graph) error {
	for _, edge := range graph.Edges {
		target := edge.To
		if edge.Attribute != "" {
			target += "." + edge.Attribute
		}
		line := fmt.Sprintf("%s\t%s\t%s\t%s",
			LightBlue(edge.From), Grey(string(edge.Via)), target, edge.Path)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func graphTree(w io.Writer, graph *refgraph.Graph) error {
	root := gtree.NewRoot("template")

	for _, resource := range graph.Resources {
		node := root.Add(resource.Name + "  " + Grey(resource.Type))
		for _, edge := range graph.EdgesFrom(resource.Name) {
			node.Add(edgeLabel(edge))
		}
	}
	if len(graph.OutputNames()) > 0 {
		outputs := root.Add("Outputs")
		for _, name := range graph.OutputNames() {
			node := outputs.Add(name)
			for _, edge := range graph.EdgesFrom(name) {
				if edge.FromSection == refgraph.SectionOutputs {
					node.Add(edgeLabel(edge))
				}
			}
		}
	}

	var buf strings.Builder
	if err := gtree.OutputFromRoot(&buf, root); err != nil {
		return err
	}
	_, err := io.WriteString(w, buf.String())
	return err
}

func edgeLabel(edge refgraph.Edge) string {
	target := edge.To
	if edge.Attribute != "" {
		target += "." + edge.Attribute
	}
	return Grey(string(edge.Via)+" ") + target
}

func graphJSON(w io.Writer, graph *refgraph.Graph) error {
	wire := make([]edgeWire, 0, len(graph.Edges))
	for _, edge := range graph.Edges {
		wire = append(wire, edgeWire{
			From:      edge.From,
			Section:   string(edge.FromSection),
			To:        edge.To,
			Via:       string(edge.Via),
			Attribute: edge.Attribute,
			Path:      edge.Path,
		})
	}
	encoded, err := json.MarshalIndent(wire, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(encoded))
	return err
}
