// Package sink renders sunburst layouts to SVG and JSON.
package sink

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/mkarlsen/sunwheel/pkg/chart"
	"github.com/mkarlsen/sunwheel/pkg/render/sunburst/styles"
	"github.com/mkarlsen/sunwheel/pkg/sunburst"
)

const (
	// frameMargin is the whitespace around the outer ring.
	frameMargin = 12.0

	// legendWidth reserves horizontal space for the legend column.
	legendWidth = 180.0

	// minLabelArc is the minimum arc length (radians x mid radius) at which
	// an arc gets an inline label. Shorter arcs rely on the hover title.
	minLabelArc = 26.0
)

const arcInteractionCSS = `
    .arc { stroke: #ffffff; stroke-width: 1.5; transition: opacity 0.2s ease; }
    .arc:hover { opacity: 0.8; }
    .arc-label { font-family: sans-serif; fill: #333333; pointer-events: none; }`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	palette styles.Palette
	legend  bool
	labels  bool
	titles  bool
}

// WithPalette sets the depth-indexed color palette (default [styles.Vivid]).
func WithPalette(p styles.Palette) SVGOption { return func(r *svgRenderer) { r.palette = p } }

// WithLegend adds a legend column listing the first-ring categories.
func WithLegend() SVGOption { return func(r *svgRenderer) { r.legend = true } }

// WithLabels draws inline names on arcs wide enough to hold them.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.labels = true } }

// WithTitles attaches hover titles (path, value, share) to each arc.
func WithTitles() SVGOption { return func(r *svgRenderer) { r.titles = true } }

// RenderSVG renders a sunburst layout as an SVG document. Invisible arcs
// (zero angular width or clipped beyond the max radius) are present in the
// layout but are not emitted, matching the interaction rule that zero-width
// nodes are never independently clickable.
func RenderSVG(l chart.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{palette: styles.Vivid}
	for _, opt := range opts {
		opt(&r)
	}

	size := 2 * (l.MaxRadius + frameMargin)
	width := size
	if r.legend {
		width += legendWidth
	}
	cx, cy := l.MaxRadius+frameMargin, l.MaxRadius+frameMargin

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, size, width, size)
	fmt.Fprintf(&buf, "<style>%s\n</style>\n", arcInteractionCSS)

	slots := ringSlots(l.Arcs)
	for i, a := range l.Arcs {
		if !a.Visible {
			continue
		}
		r.renderArc(&buf, a, slots[i], cx, cy)
	}

	if r.labels {
		for _, a := range l.Arcs {
			if a.Visible {
				renderLabel(&buf, a, cx, cy)
			}
		}
	}

	if r.legend {
		r.renderLegend(&buf, l, size)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// ringSlots assigns each arc its position within its depth ring, in layout
// order. Palettes use the slot to pick a color.
func ringSlots(arcs []chart.Arc) []int {
	slots := make([]int, len(arcs))
	perDepth := make(map[int]int)
	for i, a := range arcs {
		slots[i] = perDepth[a.Depth]
		perDepth[a.Depth]++
	}
	return slots
}

func (r *svgRenderer) renderArc(buf *bytes.Buffer, a chart.Arc, slot int, cx, cy float64) {
	fill := r.palette.Color(a.Depth, slot)
	id := "arc-" + strings.Join(a.Path, "/")

	fmt.Fprintf(buf, `<path id=%q class="arc" d=%q fill=%q>`,
		id, arcPath(a.Extent, cx, cy), fill)
	if r.titles {
		fmt.Fprintf(buf, "<title>%s — %s (%.1f%%)</title>",
			escape(strings.Join(a.Path, " / ")), trimFloat(a.Value), a.ShareOfTotal*100)
	}
	buf.WriteString("</path>\n")
}

func renderLabel(buf *bytes.Buffer, a chart.Arc, cx, cy float64) {
	e := a.Extent
	midR := (e.RadiusStart + e.RadiusEnd) / 2
	if e.AngularWidth()*midR < minLabelArc {
		return
	}
	mid := (e.AngleStart + e.AngleEnd) / 2
	x, y := polar(cx, cy, midR, mid)
	fontSize := 12.0
	if a.Depth == 0 {
		x, y = cx, cy
		fontSize = 14
	}
	fmt.Fprintf(buf, `<text class="arc-label" x="%.1f" y="%.1f" font-size="%.0f" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
		x, y, fontSize, escape(a.Name))
}

func (r *svgRenderer) renderLegend(buf *bytes.Buffer, l chart.Layout, size float64) {
	x := size + 8
	y := frameMargin + 8
	slot := 0
	for _, a := range l.Arcs {
		if a.Depth != 1 {
			continue
		}
		fmt.Fprintf(buf, `<rect x="%.1f" y="%.1f" width="12" height="12" fill=%q/>`+"\n",
			x, y, r.palette.Color(1, slot))
		fmt.Fprintf(buf, `<text class="arc-label" x="%.1f" y="%.1f" font-size="12">%s (%.1f%%)</text>`+"\n",
			x+18, y+10, escape(a.Name), a.ShareOfTotal*100)
		y += 20
		slot++
	}
}

// arcPath builds the SVG path for one extent. Pie slices (inner radius zero)
// fan out from the center; full-circle spans become two half arcs since a
// single SVG arc cannot start and end at the same point.
func arcPath(e sunburst.Extent, cx, cy float64) string {
	span := e.AngularWidth()
	full := span >= 2*math.Pi-1e-9

	if full {
		return annulusPath(e, cx, cy)
	}

	x0, y0 := polar(cx, cy, e.RadiusEnd, e.AngleStart)
	x1, y1 := polar(cx, cy, e.RadiusEnd, e.AngleEnd)
	large := 0
	if span > math.Pi {
		large = 1
	}

	if e.RadiusStart <= 0 {
		return fmt.Sprintf("M %.2f %.2f L %.2f %.2f A %.2f %.2f 0 %d 1 %.2f %.2f Z",
			cx, cy, x0, y0, e.RadiusEnd, e.RadiusEnd, large, x1, y1)
	}

	x2, y2 := polar(cx, cy, e.RadiusStart, e.AngleEnd)
	x3, y3 := polar(cx, cy, e.RadiusStart, e.AngleStart)
	return fmt.Sprintf("M %.2f %.2f A %.2f %.2f 0 %d 1 %.2f %.2f L %.2f %.2f A %.2f %.2f 0 %d 0 %.2f %.2f Z",
		x0, y0, e.RadiusEnd, e.RadiusEnd, large, x1, y1,
		x2, y2, e.RadiusStart, e.RadiusStart, large, x3, y3)
}

func annulusPath(e sunburst.Extent, cx, cy float64) string {
	top := fmt.Sprintf("M %.2f %.2f A %.2f %.2f 0 1 1 %.2f %.2f A %.2f %.2f 0 1 1 %.2f %.2f Z",
		cx, cy-e.RadiusEnd, e.RadiusEnd, e.RadiusEnd, cx, cy+e.RadiusEnd,
		e.RadiusEnd, e.RadiusEnd, cx, cy-e.RadiusEnd)
	if e.RadiusStart <= 0 {
		return top
	}
	// Inner circle wound the other way cuts the hole (even-odd by direction).
	hole := fmt.Sprintf(" M %.2f %.2f A %.2f %.2f 0 1 0 %.2f %.2f A %.2f %.2f 0 1 0 %.2f %.2f Z",
		cx, cy-e.RadiusStart, e.RadiusStart, e.RadiusStart, cx, cy+e.RadiusStart,
		e.RadiusStart, e.RadiusStart, cx, cy-e.RadiusStart)
	return top + hole
}

// polar converts (radius, angle) to SVG coordinates. Angle zero points up
// and grows clockwise, matching the layout convention.
func polar(cx, cy, r, angle float64) (float64, float64) {
	return cx + r*math.Sin(angle), cy - r*math.Cos(angle)
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

func trimFloat(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
