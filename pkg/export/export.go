package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"github.com/matzehuels/contentaudit/pkg/audit"
	apperrors "github.com/matzehuels/contentaudit/pkg/errors"
	"github.com/matzehuels/contentaudit/pkg/refgraph"
	"github.com/matzehuels/contentaudit/pkg/report"
)

// Format is an item export format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", apperrors.New(apperrors.ErrCodeInvalidFormat, "unknown export format %q (want json or csv)", s)
}

// FormatFromPath picks a format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return FormatCSV
	}
	return FormatJSON
}

// Document is the JSON form of a finished report.
type Document struct {
	Kind        report.Kind     `json:"kind"`
	RunID       string          `json:"run_id,omitempty"`
	ContentType string          `json:"content_type,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
	Scanned     int             `json:"scanned"`
	Truncated   bool            `json:"truncated,omitempty"`
	Items       []report.Item   `json:"items"`
	Failures    []audit.Failure `json:"failures,omitempty"`
}

// NewDocument builds a Document from an orchestrator snapshot.
func NewDocument(st report.State) Document {
	items := st.Items()
	if items == nil {
		items = []report.Item{}
	}
	return Document{
		Kind:        st.Kind,
		RunID:       st.RunID,
		ContentType: st.ContentType,
		GeneratedAt: st.FinishedAt,
		Scanned:     st.Scanned,
		Truncated:   st.Truncated,
		Items:       items,
		Failures:    st.Failures,
	}
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

var csvHeader = []string{"id", "name", "content_type", "status", "file_name", "updated_at"}

// WriteCSV writes items with a header row. Timestamps use RFC 3339.
func WriteCSV(w io.Writer, items []report.Item) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, it := range items {
		updated := ""
		if it.UpdatedAt != nil {
			updated = it.UpdatedAt.UTC().Format(time.RFC3339)
		}
		if err := cw.Write([]string{it.ID, it.Name, it.ContentType, it.Status, it.FileName, updated}); err != nil {
			return fmt.Errorf("write %s: %w", it.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write writes doc in format f. CSV carries only the items.
func Write(w io.Writer, f Format, doc Document) error {
	if f == FormatCSV {
		return WriteCSV(w, doc.Items)
	}
	return WriteJSON(w, doc)
}

type graphDoc struct {
	Nodes  []graphNode  `json:"nodes"`
	Edges  []graphEdge  `json:"edges"`
	Assets []graphAsset `json:"assets"`
}

type graphNode struct {
	ID          string `json:"id"`
	ContentType string `json:"content_type,omitempty"`
	Label       string `json:"label,omitempty"`
	Unused      bool   `json:"unused,omitempty"`
	InDegree    int    `json:"in_degree"`
	OutDegree   int    `json:"out_degree"`
}

// graphAsset is a linked asset and the entries linking to it.
type graphAsset struct {
	ID     string   `json:"id"`
	UsedBy []string `json:"used_by"`
}

type graphEdge struct {
	From     string `json:"from"`
	To       string `json:"to"`
	LinkType string `json:"link_type"`
	Field    string `json:"field,omitempty"`
}

// WriteGraphJSON writes g as a node/edge list plus the linked assets, sorted
// by id. Ids in unused are flagged.
func WriteGraphJSON(w io.Writer, g *refgraph.Graph, unused map[string]bool) error {
	nodes := g.Nodes()
	edges := g.Edges()
	assets := slices.Sorted(maps.Keys(g.ReferencedAssets()))
	out := graphDoc{
		Nodes:  make([]graphNode, len(nodes)),
		Edges:  make([]graphEdge, len(edges)),
		Assets: make([]graphAsset, len(assets)),
	}
	for i, n := range nodes {
		out.Nodes[i] = graphNode{
			ID:          n.ID,
			ContentType: n.ContentType,
			Label:       n.Label,
			Unused:      unused[n.ID],
			InDegree:    g.InDegree(n.ID),
			OutDegree:   g.OutDegree(n.ID),
		}
	}
	for i, e := range edges {
		out.Edges[i] = graphEdge{From: e.From, To: e.To, LinkType: e.LinkType, Field: e.Field}
	}
	for i, id := range assets {
		out.Assets[i] = graphAsset{ID: id, UsedBy: g.AssetParents(id)}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ToFile renders with write and atomically replaces path with the result.
func ToFile(path string, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
