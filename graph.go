package initorch

import (
	"fmt"
	"strings"
)

type GraphNode struct {
	ID   ID   `json:"id"`
	Kind Kind `json:"kind"`
}

// GraphEdge means "From depends on To".
type GraphEdge struct {
	From ID `json:"from"`
	To   ID `json:"to"`
}

type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// Graph returns a snapshot of the registered components and their declared
// dependency edges, in registration order. Edges may point at unregistered
// identities; Validate reports those.
func (r *Registry) Graph() Graph {
	r.mu.RLock()
	defer r.mu.RUnlock()

	nodes := make([]GraphNode, 0, len(r.order))
	edges := make([]GraphEdge, 0, len(r.order))
	for _, id := range r.order {
		def := r.defs[id]
		nodes = append(nodes, GraphNode{ID: id, Kind: def.kind})
		for _, dep := range def.deps {
			edges = append(edges, GraphEdge{From: id, To: dep})
		}
	}
	return Graph{Nodes: nodes, Edges: edges}
}

// DOT exports Graphviz DOT text.
func (g Graph) DOT() string {
	var b strings.Builder
	b.WriteString("digraph initorch {\n")
	b.WriteString("  rankdir=LR;\n")

	aliases := make(map[ID]string, len(g.Nodes))
	for i, n := range g.Nodes {
		alias := fmt.Sprintf("n%d", i)
		aliases[n.ID] = alias
		label := escapeDOT(n.ID.String()) + "\\n(" + n.Kind.String() + ")"
		b.WriteString(fmt.Sprintf("  %s [label=\"%s\"];\n", alias, label))
	}
	for _, e := range g.Edges {
		from, okFrom := aliases[e.From]
		to, okTo := aliases[e.To]
		if !okFrom || !okTo {
			continue
		}
		b.WriteString(fmt.Sprintf("  %s -> %s;\n", from, to))
	}
	b.WriteString("}\n")
	return b.String()
}

// Mermaid exports Mermaid graph text.
func (g Graph) Mermaid() string {
	var b strings.Builder
	b.WriteString("graph TD\n")

	aliases := make(map[ID]string, len(g.Nodes))
	for i, n := range g.Nodes {
		alias := fmt.Sprintf("n%d", i)
		aliases[n.ID] = alias
		label := escapeMermaid(n.ID.String()) + "<br/>(" + n.Kind.String() + ")"
		b.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", alias, label))
	}
	for _, e := range g.Edges {
		from, okFrom := aliases[e.From]
		to, okTo := aliases[e.To]
		if !okFrom || !okTo {
			continue
		}
		b.WriteString(fmt.Sprintf("    %s --> %s\n", from, to))
	}
	return b.String()
}

func escapeDOT(s string) string {
	return strings.ReplaceAll(s, "\"", "\\\"")
}

func escapeMermaid(s string) string {
	return strings.ReplaceAll(s, "\"", "\\\"")
}
