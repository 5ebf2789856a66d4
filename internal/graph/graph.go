// Package graph generates DOT and Mermaid dependency graphs of a website
// topology.
package graph

import (
	"io"
	"strings"

	"github.com/emicklei/dot"

	"github.com/lex00/wetwire-site-go/internal/topology"
)

// Format specifies the output format for the graph.
type Format string

const (
	// FormatDOT outputs Graphviz DOT format.
	FormatDOT Format = "dot"
	// FormatMermaid outputs Mermaid format for GitHub/markdown rendering.
	FormatMermaid Format = "mermaid"
)

// stateColors fills nodes that have been through a build.
var stateColors = map[topology.State]string{
	topology.StateCreated:  "palegreen",
	topology.StateExisting: "lightblue",
	topology.StateFailed:   "salmon",
	topology.StateSkipped:  "lightgrey",
}

// Generator creates dependency graphs from a topology.
type Generator struct {
	// Format specifies the output format (dot or mermaid). Defaults to dot.
	Format Format

	// ClusterByKind groups nodes of the same kind.
	ClusterByKind bool
}

// Generate creates a dependency graph and writes it to w.
func (g *Generator) Generate(t *topology.Topology, w io.Writer) error {
	graph := g.buildGraph(t)

	format := g.Format
	if format == "" {
		format = FormatDOT
	}

	var output string
	if format == FormatMermaid {
		output = dot.MermaidGraph(graph, dot.MermaidTopToBottom)
	} else {
		output = graph.String()
	}

	_, err := w.Write([]byte(output))
	return err
}

// GenerateString is a convenience method that returns the graph as a string.
func (g *Generator) GenerateString(t *topology.Topology) (string, error) {
	var sb strings.Builder
	if err := g.Generate(t, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// buildGraph creates the dot.Graph structure from the topology.
func (g *Generator) buildGraph(t *topology.Topology) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "TB")

	graph.NodeInitializer(func(n dot.Node) {
		n.Attr("shape", "box")
		n.Attr("fontname", "Arial")
	})
	graph.EdgeInitializer(func(e dot.Edge) {
		e.Attr("fontname", "Arial")
		e.Attr("fontsize", "10")
	})

	nodes := make(map[string]dot.Node)
	clusters := make(map[topology.Kind]*dot.Graph)
	kindCount := make(map[topology.Kind]int)
	for _, n := range t.Nodes() {
		kindCount[n.Kind]++
	}

	for _, n := range t.Nodes() {
		parent := graph
		if g.ClusterByKind && kindCount[n.Kind] > 1 {
			cluster, ok := clusters[n.Kind]
			if !ok {
				cluster = graph.Subgraph("cluster_"+string(n.Kind), dot.ClusterOption{})
				cluster.Attr("label", string(n.Kind))
				cluster.Attr("style", "rounded")
				cluster.Attr("bgcolor", "lightyellow")
				clusters[n.Kind] = cluster
			}
			parent = cluster
		}

		node := parent.Node(n.ID)
		node.Label(n.ID + "\\n[" + string(n.Kind) + "]")
		if color, ok := stateColors[n.State]; ok {
			node.Attr("style", "filled")
			node.Attr("fillcolor", color)
		}
		nodes[n.ID] = node
	}

	for _, n := range t.Nodes() {
		refs := references(n.Spec)
		for _, dep := range n.DependsOn {
			e := graph.Edge(nodes[n.ID], nodes[dep])
			if refs[dep] {
				e.Attr("color", "blue")
			} else {
				e.Attr("style", "dashed")
			}
		}
	}

	return graph
}

// references returns the node IDs whose attributes a spec consumes. Other
// dependencies only order creation.
func references(spec topology.Spec) map[string]bool {
	refs := make(map[string]bool)
	switch s := spec.(type) {
	case topology.CertificateSpec:
		refs[s.ZoneRef] = true
	case topology.AccessPolicySpec:
		for _, g := range s.Grants {
			refs[g.BucketRef] = true
		}
	case topology.DistributionSpec:
		refs[s.CertificateRef] = true
		refs[s.AccessRef] = true
		refs[s.Logging.BucketRef] = true
		refs[s.DefaultBehavior.OriginRef] = true
		for _, b := range s.Behaviors {
			refs[b.OriginRef] = true
		}
	case topology.DnsRecordSpec:
		refs[s.ZoneRef] = true
		refs[s.TargetRef] = true
	}
	return refs
}
