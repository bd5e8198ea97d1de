// Package styles provides depth-indexed color palettes for sunburst charts.
//
// The zoom controller carries no presentation knowledge; a palette is the
// caller-supplied lookup that maps an arc's depth and sibling slot to a fill
// color. Palettes cycle when a ring has more arcs than colors.
package styles

import "fmt"

// Palette maps an arc to a fill color. depth is the ring index (root = 0),
// slot is the arc's position within its ring.
type Palette interface {
	// Name identifies the palette in layout documents and CLI flags.
	Name() string

	// Color returns a CSS color for the arc at (depth, slot).
	Color(depth, slot int) string
}

// Ring is a palette backed by one color list per depth. Depths beyond the
// table reuse the last ring's colors; slots cycle within a ring.
type Ring struct {
	name  string
	rings [][]string
}

// NewRing creates a ring palette. At least one ring with one color is
// required; the root ring (depth 0) is typically a single neutral color.
func NewRing(name string, rings [][]string) Ring {
	return Ring{name: name, rings: rings}
}

// Name implements [Palette].
func (r Ring) Name() string { return r.name }

// Color implements [Palette].
func (r Ring) Color(depth, slot int) string {
	if len(r.rings) == 0 {
		return "#cccccc"
	}
	ring := r.rings[min(depth, len(r.rings)-1)]
	if len(ring) == 0 {
		return "#cccccc"
	}
	return ring[slot%len(ring)]
}

// Vivid is the default palette: a saturated categorical ring for the first
// level and progressively lighter tints for deeper rings.
var Vivid = NewRing("vivid", [][]string{
	{"#ffffff"},
	{"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f", "#edc948", "#b07aa1", "#ff9da7"},
	{"#7b9fc7", "#f5ab5f", "#e98385", "#98cbc7", "#81b97a", "#f2d978", "#c49ebb", "#ffbcc3"},
	{"#a8c3dd", "#f9c692", "#f1adae", "#bcdeda", "#aad2a5", "#f7e6a8", "#d9c2d4", "#ffd9dd"},
})

// Muted is a desaturated palette for print output.
var Muted = NewRing("muted", [][]string{
	{"#ffffff"},
	{"#8da0cb", "#fc8d62", "#66c2a5", "#e78ac3", "#a6d854", "#ffd92f", "#e5c494", "#b3b3b3"},
	{"#aebbd9", "#fcab88", "#8cd1b9", "#eda8d2", "#bce282", "#ffe25e", "#ecd4b4", "#c6c6c6"},
	{"#ced6e8", "#fdc9ae", "#b2e0ce", "#f4c5e1", "#d3ecb0", "#ffeb8e", "#f3e3d3", "#d9d9d9"},
})

// ByName resolves a palette from its CLI/layout name.
func ByName(name string) (Palette, error) {
	switch name {
	case "", Vivid.Name():
		return Vivid, nil
	case Muted.Name():
		return Muted, nil
	}
	return nil, fmt.Errorf("unknown style: %q (must be one of: vivid, muted)", name)
}
