package chart

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mkarlsen/sunwheel/pkg/hierarchy"
	"github.com/mkarlsen/sunwheel/pkg/sunburst"
)

// Visualization types.
const (
	VizTypeSunburst = "sunburst"
	VizTypeNodelink = "nodelink"
)

// Layout is the unified serialization format for computed visualizations.
//
// This is a discriminated union type - check VizType to determine which
// fields are populated:
//
//	Sunburst ("sunburst"):
//	  - Arcs: laid-out arcs with angular/radial extents
//	  - RingWidth, MaxRadius: partition geometry
//
//	Nodelink ("nodelink"):
//	  - DOT: Graphviz DOT string for rendering
//	  - Engine: Graphviz layout engine (e.g., "dot")
//
// Shared fields:
//   - Dataset: the source hierarchy, kept for round-trip focus computation
//   - Style: palette name
type Layout struct {
	VizType string `json:"viz_type"`
	Style   string `json:"style,omitempty"`

	Dataset *hierarchy.Raw `json:"dataset,omitempty"`

	// Sunburst-specific
	Arcs      []Arc    `json:"arcs,omitempty"`
	RingWidth float64  `json:"ring_width,omitempty"`
	MaxRadius float64  `json:"max_radius,omitempty"`
	Focus     []string `json:"focus,omitempty"` // path of the focused node, absent when un-zoomed

	// Nodelink-specific
	DOT    string `json:"dot,omitempty"`
	Engine string `json:"engine,omitempty"`
}

// IsSunburst returns true if this is a sunburst layout.
func (l *Layout) IsSunburst() bool { return l.VizType == VizTypeSunburst }

// IsNodelink returns true if this is a nodelink layout.
func (l *Layout) IsNodelink() bool { return l.VizType == VizTypeNodelink }

// Arc is one positioned sunburst segment.
type Arc struct {
	Name          string          `json:"name"`
	Path          []string        `json:"path"`
	Depth         int             `json:"depth"`
	Value         float64         `json:"value"`
	ShareOfTotal  float64         `json:"share_of_total"`
	ShareOfParent float64         `json:"share_of_parent"`
	Extent        sunburst.Extent `json:"extent"`
	Visible       bool            `json:"visible"`
}

// FromController captures a controller's committed state as a serializable
// sunburst layout. Arcs are in tree preorder.
func FromController(c *sunburst.Controller) Layout {
	tree := c.Tree()
	l := Layout{
		VizType:   VizTypeSunburst,
		Dataset:   tree.ToRaw(),
		RingWidth: c.Config().RingWidth,
		MaxRadius: c.Config().MaxRadius,
		Arcs:      make([]Arc, 0, tree.Len()),
	}
	if c.Focus() != tree.Root() {
		l.Focus = c.Focus().Path()
	}
	for _, n := range tree.Nodes() {
		ext, _ := c.Extent(n)
		l.Arcs = append(l.Arcs, Arc{
			Name:          n.Name,
			Path:          n.Path(),
			Depth:         n.Depth,
			Value:         n.Value,
			ShareOfTotal:  tree.ShareOfTotal(n),
			ShareOfParent: tree.ShareOfParent(n),
			Extent:        ext,
			Visible:       c.Visible(ext),
		})
	}
	return l
}

// Controller rebuilds a zoom controller from the layout's embedded dataset.
// When the layout records a focus path, the zoom is re-applied so the
// controller's committed state matches the layout's arcs. Only sunburst
// layouts carry enough information for this.
func (l *Layout) Controller() (*sunburst.Controller, error) {
	if !l.IsSunburst() {
		return nil, fmt.Errorf("layout is %q, not sunburst", l.VizType)
	}
	if l.Dataset == nil {
		return nil, fmt.Errorf("sunburst layout has no dataset")
	}
	c, err := sunburst.Build(l.Dataset, sunburst.Config{
		RingWidth: l.RingWidth,
		MaxRadius: l.MaxRadius,
	})
	if err != nil {
		return nil, err
	}
	if len(l.Focus) > 0 {
		node, ok := c.Tree().Find(l.Focus...)
		if !ok {
			return nil, fmt.Errorf("focus path %v not found in dataset", l.Focus)
		}
		plan, err := c.FocusOn(node)
		if err != nil {
			return nil, err
		}
		if err := c.Apply(plan); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Validates that required fields are present for the viz type.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}

	if l.VizType == "" {
		l.VizType = VizTypeSunburst
	}

	if l.IsSunburst() && len(l.Arcs) == 0 {
		return Layout{}, fmt.Errorf("sunburst layout must contain arcs")
	}
	if l.IsNodelink() && l.DOT == "" {
		return Layout{}, fmt.Errorf("nodelink layout must contain DOT string")
	}

	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
