package sunburst

import (
	"encoding/json"

	"github.com/mkarlsen/sunwheel/pkg/hierarchy"
)

// PlanEntry is one node's slice of a transition: where it is displayed now
// and where the new focus wants it. Current is a snapshot taken when the
// plan was computed, so a renderer can interpolate without racing a later
// focus change.
type PlanEntry struct {
	node *hierarchy.Node

	Name    string   `json:"name"`
	Path    []string `json:"path"`
	Depth   int      `json:"depth"`
	Current Extent   `json:"current"`
	Target  Extent   `json:"target"`
	Visible bool     `json:"visible"`
}

// Node returns the tree node this entry describes.
func (e PlanEntry) Node() *hierarchy.Node { return e.node }

// At returns the entry's extent at interpolation position t in [0, 1].
func (e PlanEntry) At(t float64) Extent { return e.Current.Lerp(e.Target, t) }

// TransitionPlan is the output of one focus change: a per-node mapping from
// pre-transition extent to target extent, in tree preorder. The plan is a
// value - computing it changes only the controller's logical focus, never
// the committed extents (see [Controller.Apply]).
type TransitionPlan struct {
	owner   *Controller
	focus   *hierarchy.Node
	entries []PlanEntry
	byNode  map[*hierarchy.Node]int
}

// Focus returns the node the plan transitions toward.
func (p *TransitionPlan) Focus() *hierarchy.Node { return p.focus }

// Entries returns all entries in tree preorder. The slice must not be
// modified.
func (p *TransitionPlan) Entries() []PlanEntry { return p.entries }

// Entry returns the entry for n, or false when n is not part of the plan's
// tree.
func (p *TransitionPlan) Entry(n *hierarchy.Node) (PlanEntry, bool) {
	i, ok := p.byNode[n]
	if !ok {
		return PlanEntry{}, false
	}
	return p.entries[i], true
}

// MarshalJSON emits the plan as the renderer-facing document: the focus path
// plus every entry with current/target extents and visibility.
func (p *TransitionPlan) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Focus   []string    `json:"focus"`
		Entries []PlanEntry `json:"entries"`
	}{
		Focus:   p.focus.Path(),
		Entries: p.entries,
	})
}
