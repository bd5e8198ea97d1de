package sunburst

import (
	"math"

	"github.com/mkarlsen/sunwheel/pkg/hierarchy"
)

// tau is one full turn. Angular extents live in [0, tau].
const tau = 2 * math.Pi

// Default layout geometry. A ring width of 60 with a max radius of 300
// displays five levels; deeper levels are clipped to the outer edge.
const (
	DefaultRingWidth = 60.0
	DefaultMaxRadius = 300.0
)

// Config controls the partition geometry.
type Config struct {
	// RingWidth is the radial thickness of one depth level.
	RingWidth float64

	// MaxRadius is the outer clipping radius. Rings beyond it are clipped
	// and reported as not visible.
	MaxRadius float64
}

func (c *Config) setDefaults() {
	if c.RingWidth <= 0 {
		c.RingWidth = DefaultRingWidth
	}
	if c.MaxRadius <= 0 {
		c.MaxRadius = DefaultMaxRadius
	}
}

// Extent is one node's angular and radial span. Angles are radians with
// AngleStart <= AngleEnd; a zero angular width means the node is collapsed
// and invisible. Radii grow outward from the center.
type Extent struct {
	AngleStart  float64 `json:"angle_start"`
	AngleEnd    float64 `json:"angle_end"`
	RadiusStart float64 `json:"radius_start"`
	RadiusEnd   float64 `json:"radius_end"`
}

// AngularWidth returns the angular span in radians.
func (e Extent) AngularWidth() float64 { return e.AngleEnd - e.AngleStart }

// Lerp linearly interpolates from e toward to. t=0 returns e, t=1 returns
// to. Renderers drive this per animation frame; the controller never does.
func (e Extent) Lerp(to Extent, t float64) Extent {
	return Extent{
		AngleStart:  e.AngleStart + (to.AngleStart-e.AngleStart)*t,
		AngleEnd:    e.AngleEnd + (to.AngleEnd-e.AngleEnd)*t,
		RadiusStart: e.RadiusStart + (to.RadiusStart-e.RadiusStart)*t,
		RadiusEnd:   e.RadiusEnd + (to.RadiusEnd-e.RadiusEnd)*t,
	}
}

// layout assigns the full-circle partition: the root spans [0, tau) at
// radius zero and every node's angular span is subdivided among its children
// in proportion to value. Zero-valued children receive zero-width spans at
// the subdivision cursor. Radial spans are depth-indexed rings clipped to
// MaxRadius.
func layout(tree *hierarchy.Tree, cfg Config) map[*hierarchy.Node]Extent {
	extents := make(map[*hierarchy.Node]Extent, tree.Len())

	var place func(n *hierarchy.Node, a0, a1 float64)
	place = func(n *hierarchy.Node, a0, a1 float64) {
		r0 := math.Min(float64(n.Depth)*cfg.RingWidth, cfg.MaxRadius)
		r1 := math.Min(r0+cfg.RingWidth, cfg.MaxRadius)
		extents[n] = Extent{AngleStart: a0, AngleEnd: a1, RadiusStart: r0, RadiusEnd: r1}

		if n.IsLeaf() {
			return
		}
		cursor := a0
		for _, c := range n.Children {
			span := 0.0
			if n.Value > 0 {
				span = (a1 - a0) * (c.Value / n.Value)
			}
			place(c, cursor, cursor+span)
			cursor += span
		}
	}

	place(tree.Root(), 0, tau)
	return extents
}
