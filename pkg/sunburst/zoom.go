package sunburst

import (
	"errors"
	"fmt"

	"github.com/mkarlsen/sunwheel/pkg/hierarchy"
)

var (
	// ErrUnknownNode is returned by [Controller.FocusOn] when the node does
	// not belong to the controller's tree - typically a stale reference kept
	// across a dataset reload. This is a programming error, not a user
	// condition.
	ErrUnknownNode = errors.New("node does not belong to this tree")

	// ErrForeignPlan is returned by [Controller.Apply] when the plan was
	// produced by a different controller.
	ErrForeignPlan = errors.New("plan belongs to a different controller")
)

// Controller owns one laid-out tree and the zoom focus over it.
//
// All operations are synchronous and O(tree size); the controller never
// blocks and never observes a partially built tree. It tracks only the
// logical focus and each node's last-committed extent - animation progress
// is entirely the caller's concern (see [TransitionPlan]).
//
// A Controller is intended for a single logical thread (the UI loop) and is
// not safe for concurrent mutation.
type Controller struct {
	tree    *hierarchy.Tree
	cfg     Config
	focus   *hierarchy.Node
	initial map[*hierarchy.Node]Extent
	current map[*hierarchy.Node]Extent
}

// Build constructs a tree from a raw dataset and wraps it in a controller.
// It fails with the hierarchy validation errors (see
// [hierarchy.IsInvalidTree]) when the dataset is empty or malformed.
func Build(raw *hierarchy.Raw, cfg Config) (*Controller, error) {
	tree, err := hierarchy.Build(raw)
	if err != nil {
		return nil, err
	}
	return New(tree, cfg), nil
}

// New wraps an already-built tree in a controller. The initial focus is the
// root and every node's committed extent equals its full-circle layout
// extent. The controller takes exclusive ownership of the tree.
func New(tree *hierarchy.Tree, cfg Config) *Controller {
	cfg.setDefaults()
	initial := layout(tree, cfg)
	current := make(map[*hierarchy.Node]Extent, len(initial))
	for n, e := range initial {
		current[n] = e
	}
	return &Controller{
		tree:    tree,
		cfg:     cfg,
		focus:   tree.Root(),
		initial: initial,
		current: current,
	}
}

// Tree returns the underlying hierarchy.
func (c *Controller) Tree() *hierarchy.Tree { return c.tree }

// Config returns the layout geometry.
func (c *Controller) Config() Config { return c.cfg }

// Focus returns the currently focused node. It is the root until the first
// successful FocusOn.
func (c *Controller) Focus() *hierarchy.Node { return c.focus }

// Extent returns n's last-committed extent.
func (c *Controller) Extent(n *hierarchy.Node) (Extent, error) {
	if !c.tree.Owns(n) {
		return Extent{}, fmt.Errorf("%w: %q", ErrUnknownNode, n.Name)
	}
	return c.current[n], nil
}

// InitialExtent returns n's extent from the full-circle layout computed at
// construction. It is unaffected by focus changes.
func (c *Controller) InitialExtent(n *hierarchy.Node) (Extent, error) {
	if !c.tree.Owns(n) {
		return Extent{}, fmt.Errorf("%w: %q", ErrUnknownNode, n.Name)
	}
	return c.initial[n], nil
}

// Visible reports whether an extent would render: its outer radius fits
// inside the configured max radius, its inner radius is non-negative, and
// its angular span is strictly positive. Zero-width nodes are drawn
// nowhere and should be excluded from hit-testing by the caller.
func (c *Controller) Visible(e Extent) bool {
	return e.RadiusEnd <= c.cfg.MaxRadius &&
		e.RadiusStart >= 0 &&
		e.AngularWidth() > 0
}

// FocusOn makes node the new focus and returns the transition plan toward
// it. The plan maps every tree node to its pre-transition (current) extent
// and its target extent:
//
//   - targets renormalize the build-time partition so that the focused
//     node's full angular extent maps to [0, 2π); nodes angularly disjoint
//     from the focus collapse to a zero-width span at the nearest edge;
//   - radial targets subtract the focus inner radius and floor at zero, so
//     ancestors collapse toward the center;
//   - focusing the root therefore restores the original full-circle layout.
//
// The plan is advisory: the controller does not animate. Commit the targets
// with [Controller.Apply] once the transition completes (or immediately when
// not animating). Returns ErrUnknownNode for nodes of another tree.
func (c *Controller) FocusOn(node *hierarchy.Node) (*TransitionPlan, error) {
	if !c.tree.Owns(node) {
		name := "<nil>"
		if node != nil {
			name = node.Name
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, name)
	}

	c.focus = node
	f := c.initial[node]

	plan := &TransitionPlan{
		owner:   c,
		focus:   node,
		entries: make([]PlanEntry, 0, c.tree.Len()),
		byNode:  make(map[*hierarchy.Node]int, c.tree.Len()),
	}
	for _, d := range c.tree.Nodes() {
		d0 := c.initial[d]
		target := Extent{
			AngleStart:  rescale(d0.AngleStart, f),
			AngleEnd:    rescale(d0.AngleEnd, f),
			RadiusStart: floorZero(d0.RadiusStart - f.RadiusStart),
			RadiusEnd:   floorZero(d0.RadiusEnd - f.RadiusStart),
		}
		plan.byNode[d] = len(plan.entries)
		plan.entries = append(plan.entries, PlanEntry{
			node:    d,
			Name:    d.Name,
			Path:    d.Path(),
			Depth:   d.Depth,
			Current: c.current[d],
			Target:  target,
			Visible: c.Visible(target),
		})
	}
	return plan, nil
}

// FocusParent focuses the current focus's parent, or the root again when the
// focus already is the root (a no-op plan when fully zoomed out).
func (c *Controller) FocusParent() (*TransitionPlan, error) {
	if c.focus.Parent() == nil {
		return c.FocusOn(c.tree.Root())
	}
	return c.FocusOn(c.focus.Parent())
}

// Apply commits a plan's targets as the new current extents. Callers do this
// when a transition finishes, or right after FocusOn when not animating.
// Plans from another controller are rejected.
func (c *Controller) Apply(plan *TransitionPlan) error {
	if plan == nil || plan.owner != c {
		return ErrForeignPlan
	}
	for _, e := range plan.entries {
		c.current[e.node] = e.Target
	}
	return nil
}

// rescale maps angle x into the focus extent's coordinate space, clamping
// into [0, tau]. Angles left of the focus collapse to 0, angles right of it
// to tau; a zero-width focus collapses everything to one of the two edges.
func rescale(x float64, focus Extent) float64 {
	span := focus.AngularWidth()
	if span <= 0 {
		if x <= focus.AngleStart {
			return 0
		}
		return tau
	}
	t := (x - focus.AngleStart) / span
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return t * tau
}

func floorZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
