package refgraph

import (
	"errors"
	"slices"

	"github.com/matzehuels/contentaudit/pkg/content"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the id is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when the id is already present.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when From is not a node.
	ErrUnknownSourceNode = errors.New("unknown source node")
)

// Node is one entry in the graph.
type Node struct {
	ID          string
	ContentType string
	Label       string // display name
}

// Edge is a link from one entry to another record.
type Edge struct {
	From     string
	To       string
	LinkType string // content.LinkTypeEntry or content.LinkTypeAsset
	Field    string // field the link was found in
}

// Graph is a directed graph of entry references.
//
// The zero value is not usable; use [New] or [Build].
// Graph is not safe for concurrent mutation.
type Graph struct {
	nodes    map[string]*Node
	order    []string
	edges    []Edge
	seen     map[[3]string]bool
	outgoing map[string][]string // entry links only
	incoming map[string][]string
	assets   map[string][]string // asset id -> linking entry ids
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		seen:     make(map[[3]string]bool),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		assets:   make(map[string][]string),
	}
}

// Build creates a graph from a batch of entries. Every entry becomes a
// node labelled with its display name in locale, and every link in its
// fields becomes an edge. Entries with malformed fields contribute a node
// and whatever links could be read.
func Build(entries []content.Entry, locale string) *Graph {
	g := New()
	for i := range entries {
		e := &entries[i]
		if e.ID() == "" {
			continue
		}
		_ = g.AddNode(Node{ID: e.ID(), ContentType: e.ContentTypeID(), Label: e.DisplayName(locale)})
	}
	for i := range entries {
		e := &entries[i]
		if _, ok := g.nodes[e.ID()]; !ok {
			continue
		}
		for _, l := range e.Links() {
			_ = g.AddEdge(Edge{From: e.ID(), To: l.ID, LinkType: l.LinkType, Field: l.Field})
		}
	}
	return g
}

// AddNode adds n to the graph. Nodes keep their insertion order.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	g.nodes[n.ID] = &n
	g.order = append(g.order, n.ID)
	return nil
}

// AddEdge records a link. The source must be a node; the target need not
// be. Repeated links between the same pair with the same link type are
// recorded once. Link types other than Entry and Asset are ignored.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if e.LinkType != content.LinkTypeEntry && e.LinkType != content.LinkTypeAsset {
		return nil
	}
	key := [3]string{e.From, e.To, e.LinkType}
	if g.seen[key] {
		return nil
	}
	g.seen[key] = true
	g.edges = append(g.edges, e)

	if e.LinkType == content.LinkTypeAsset {
		g.assets[e.To] = append(g.assets[e.To], e.From)
		return nil
	}
	g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
	g.incoming[e.To] = append(g.incoming[e.To], e.From)
	return nil
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.order))
	for i, id := range g.order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of entries in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of distinct links.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// InDegree returns the number of entries linking to id.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// OutDegree returns the number of entries id links to.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// AssetParents returns the entry ids that link to asset id.
func (g *Graph) AssetParents(id string) []string { return g.assets[id] }

// Referenced returns the set of entry ids that are the target of at least
// one entry link, including targets that are not nodes.
func (g *Graph) Referenced() map[string]bool {
	ref := make(map[string]bool, len(g.incoming))
	for id, parents := range g.incoming {
		if len(parents) > 0 {
			ref[id] = true
		}
	}
	return ref
}

// ReferencedAssets returns the set of asset ids linked from any entry.
func (g *Graph) ReferencedAssets() map[string]bool {
	ref := make(map[string]bool, len(g.assets))
	for id := range g.assets {
		ref[id] = true
	}
	return ref
}

// Reachable returns every entry id reachable from roots by following
// entry links, roots included. Unknown roots are ignored.
func (g *Graph) Reachable(roots []string) map[string]bool {
	seen := make(map[string]bool)
	var queue []string
	for _, r := range roots {
		if _, ok := g.nodes[r]; ok && !seen[r] {
			seen[r] = true
			queue = append(queue, r)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range g.outgoing[id] {
			if !seen[child] {
				seen[child] = true
				queue = append(queue, child)
			}
		}
	}
	return seen
}

// Dangling returns entry link targets that are not nodes, in the order
// they were first linked.
func (g *Graph) Dangling() []string {
	var out []string
	seen := make(map[string]bool)
	for _, e := range g.edges {
		if e.LinkType != content.LinkTypeEntry || seen[e.To] {
			continue
		}
		seen[e.To] = true
		if _, ok := g.nodes[e.To]; !ok {
			out = append(out, e.To)
		}
	}
	return out
}
