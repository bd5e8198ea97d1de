// Package nodelink renders hierarchies as Graphviz tree diagrams, the
// node-link counterpart to the sunburst view.
package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/mkarlsen/sunwheel/pkg/hierarchy"
	"github.com/mkarlsen/sunwheel/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes depth and value share in node labels.
	// When false, only the node name and value are shown.
	Detailed bool
}

// ToDOT converts a hierarchy to Graphviz DOT format for node-link
// visualization. The resulting DOT string can be rendered using [RenderSVG],
// [RenderPDF], or [RenderPNG]. Node IDs are full paths since names are only
// unique among siblings.
func ToDOT(tree *hierarchy.Tree, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	tree.Walk(func(n *hierarchy.Node) bool {
		id := nodeID(n)
		label := fmtLabel(tree, n, opts.Detailed)
		attrs := []string{fmt.Sprintf("label=%q", label)}
		if n.Value == 0 {
			attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(attrs, ", "))
		return true
	})

	buf.WriteString("\n")
	tree.Walk(func(n *hierarchy.Node) bool {
		for _, c := range n.Children {
			fmt.Fprintf(&buf, "  %q -> %q;\n", nodeID(n), nodeID(c))
		}
		return true
	})

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(n *hierarchy.Node) string {
	return strings.Join(n.Path(), "/")
}

func fmtLabel(tree *hierarchy.Tree, n *hierarchy.Node, detailed bool) string {
	if !detailed {
		return fmt.Sprintf("%s\n%.0f", n.Name, n.Value)
	}
	return fmt.Sprintf("%s\nvalue: %.0f\ndepth: %d\nshare: %.1f%%",
		n.Name, n.Value, n.Depth, tree.ShareOfTotal(n)*100)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with
// [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
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

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
