package refgraph

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/contentaudit/pkg/content"
)

// Options configures DOT output.
type Options struct {
	// Unused marks entry ids drawn with the highlight fill.
	Unused map[string]bool
	// IncludeAssets draws linked assets as separate ellipse nodes.
	IncludeAssets bool
	// Detailed adds the content type below each label.
	Detailed bool
}

// Fill colors for highlighted nodes.
const (
	unusedFill   = "#f5c2c7"
	unusedBorder = "#b02a37"
	assetFill    = "#e7f1ff"
)

// attrs is a DOT attribute list, written in order.
type attrs []string

func (a attrs) String() string {
	if len(a) == 0 {
		return ""
	}
	return " [" + strings.Join(a, ", ") + "]"
}

func str(key, value string) string { return key + "=" + strconv.Quote(value) }

type dotWriter struct{ buf bytes.Buffer }

func (w *dotWriter) line(s string)           { w.buf.WriteString("  " + s + ";\n") }
func (w *dotWriter) node(id string, a attrs) { w.line(strconv.Quote(id) + a.String()) }
func (w *dotWriter) edge(from, to string, a attrs) {
	w.line(strconv.Quote(from) + " -> " + strconv.Quote(to) + a.String())
}

// ToDOT converts g to Graphviz DOT, left to right. Dangling targets are
// drawn dashed. Node ids are quoted so any platform id is safe.
func ToDOT(g *Graph, opts Options) string {
	var w dotWriter
	w.buf.WriteString("digraph G {\n")
	w.line("rankdir=LR")
	w.line(`bgcolor="transparent"`)
	w.line(`node [shape=box, style="rounded,filled", fillcolor=white, fontsize=14, margin="0.2,0.1"]`)

	for _, n := range g.Nodes() {
		a := attrs{str("label", label(g, n, opts.Detailed))}
		if opts.Unused[n.ID] {
			a = append(a, str("fillcolor", unusedFill), str("color", unusedBorder))
		}
		w.node(n.ID, a)
	}
	for _, id := range g.Dangling() {
		w.node(id, attrs{str("label", id+"\n(missing)"), str("style", "rounded,dashed")})
	}

	assets := make(map[string]bool)
	for _, e := range g.Edges() {
		switch {
		case e.LinkType == content.LinkTypeEntry:
			w.edge(e.From, e.To, attrs{str("label", e.Field)})
		case e.LinkType == content.LinkTypeAsset && opts.IncludeAssets:
			if !assets[e.To] {
				assets[e.To] = true
				w.node(assetNodeID(e.To), attrs{str("label", e.To), "shape=ellipse", str("fillcolor", assetFill)})
			}
			w.edge(e.From, assetNodeID(e.To), attrs{str("label", e.Field), "style=dotted"})
		}
	}

	w.buf.WriteString("}\n")
	return w.buf.String()
}

func assetNodeID(id string) string { return "asset:" + id }

// label is the node's display name. Detailed labels add the type, the id
// and the number of entry links in and out.
func label(g *Graph, n *Node, detailed bool) string {
	name := n.Label
	if name == "" {
		name = n.ID
	}
	if detailed {
		name += "\n" + n.ContentType + " · " + n.ID
		name += fmt.Sprintf("\nin %d · out %d", g.InDegree(n.ID), g.OutDegree(n.ID))
	}
	return name
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz root tag so the SVG scales from
// its own viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
