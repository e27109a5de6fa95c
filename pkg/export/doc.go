// Package export writes report results and reference graphs to files.
//
// Report items are written as JSON ([WriteJSON]) or CSV ([WriteCSV]).
// Reference graphs are written as a JSON node/edge list with the linked
// assets ([WriteGraphJSON]):
//
//	{
//	  "nodes": [{"id": "A", "content_type": "article", "label": "Home hero", "in_degree": 1, "out_degree": 0}],
//	  "edges": [{"from": "B", "to": "A", "link_type": "Entry", "field": "hero"}],
//	  "assets": [{"id": "img1", "used_by": ["A"]}]
//	}
//
// [ToFile] writes through a temporary file and renames it into place with
// [github.com/natefinch/atomic], so an interrupted export never leaves a
// truncated file behind.
package export
