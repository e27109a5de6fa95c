// Package refgraph models the references between content records.
//
// A [Graph] has one node per entry and a directed edge for every entry
// link found in an entry's fields. Asset links are tracked alongside but
// do not form nodes. Edges may point at ids that are not nodes, for
// example a link to an entry that was deleted; such targets are reported
// by [Graph.Dangling] and still count as referenced.
//
// Two questions can be asked of a graph:
//
//   - [Graph.Referenced]: which entry ids are the target of at least one
//     link (one hop).
//   - [Graph.Reachable]: which entry ids can be reached by following links
//     from a set of roots (transitive closure).
//
// # Rendering
//
// [ToDOT] writes a Graphviz DOT description with unused entries
// highlighted, and [RenderSVG] renders it in-process using
// [github.com/goccy/go-graphviz].
package refgraph
