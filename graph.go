package modelsearch

import "strings"

// Graph is the ordered record of named computation nodes constructed while assembling one model
// specification. It is observational only and must never affect assembly behavior; it exists so
// that callers (and tests) can assert which transforms and projections were actually built.
//
// Node names are scoped with '/' the way the external layer builder scopes its variables, e.g.
// "label2/maybe_proj" or "label1/clip_by_global_norm".
type Graph struct {
	nodes []string
}

func NewGraph() *Graph { return &Graph{} }

// AddNode records a named node. Recording is inert: a nil Graph drops the node.
func (g *Graph) AddNode(name string) {
	if g == nil {
		return
	}
	g.nodes = append(g.nodes, name)
}

// Nodes returns a copy of the recorded node names, in construction order.
func (g *Graph) Nodes() []string {
	if g == nil {
		return nil
	}
	out := make([]string, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Contains reports whether any recorded node name contains the given substring.
func (g *Graph) Contains(substr string) bool {
	if g == nil {
		return false
	}
	for _, n := range g.nodes {
		if strings.Contains(n, substr) {
			return true
		}
	}
	return false
}

// scoped joins a scope and node name. An empty scope leaves the name as-is.
func scoped(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "/" + name
}
