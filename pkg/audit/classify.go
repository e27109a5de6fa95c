package audit

import (
	"strings"

	"github.com/matzehuels/contentaudit/pkg/content"
	"github.com/matzehuels/contentaudit/pkg/refgraph"
)

// Excluded reports whether contentTypeID matches one of the exclusion
// substrings, case-insensitively.
func Excluded(contentTypeID string, substrings []string) bool {
	id := strings.ToLower(contentTypeID)
	for _, s := range substrings {
		if s != "" && strings.Contains(id, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

// UsedSet returns the entry ids that count as used under mode.
// For ModeReachable the roots are the entries of excluded types.
func UsedSet(g *refgraph.Graph, mode Mode, exclude []string) map[string]bool {
	if mode != ModeReachable {
		return g.Referenced()
	}
	var roots []string
	for _, n := range g.Nodes() {
		if Excluded(n.ContentType, exclude) {
			roots = append(roots, n.ID)
		}
	}
	return g.Reachable(roots)
}

// Classify returns the entries that are neither used nor of an excluded
// type, in input order. Entries without an id are skipped, as the graph
// skips them. It is a pure function of its inputs.
func Classify(entries []content.Entry, used map[string]bool, exclude []string) []content.Entry {
	var unused []content.Entry
	for i := range entries {
		e := &entries[i]
		if e.ID() == "" || used[e.ID()] || Excluded(e.ContentTypeID(), exclude) {
			continue
		}
		unused = append(unused, *e)
	}
	return unused
}
