package aggregate

import (
	"github.com/mkarlsen/sunwheel/pkg/hierarchy"
)

// Stats summarizes one aggregation run.
type Stats struct {
	Records int // records seen
	Matched int // records that matched all required levels
	Leaves  int // distinct leaf paths produced
}

// Aggregate classifies every record against the rule set and accumulates
// counts into a hierarchy dataset. A record missing a required level (one
// without a default) is skipped; everything else contributes its weight
// (default 1) to the leaf at the path of its inferred categories.
//
// The returned Raw is ready for [hierarchy.Build]; internal nodes carry no
// explicit values since Build rolls them up. Children appear in first-seen
// order - Build re-sorts by value.
func Aggregate(records []Record, rules *RuleSet) (*hierarchy.Raw, Stats) {
	root := &rawNode{name: rules.Root}
	stats := Stats{Records: len(records)}

	for _, rec := range records {
		path := make([]string, 0, len(rules.Levels))
		ok := true
		for _, lvl := range rules.Levels {
			cat, matched := lvl.Infer(rec.Text)
			if !matched {
				ok = false
				break
			}
			path = append(path, cat)
		}
		if !ok {
			continue
		}
		stats.Matched++

		weight := rec.Weight
		if weight <= 0 {
			weight = 1
		}
		root.add(path, weight)
	}

	raw := root.toRaw()
	stats.Leaves = countLeaves(raw)
	return raw, stats
}

// rawNode is the mutable accumulation form; it converts to hierarchy.Raw
// once counting is done.
type rawNode struct {
	name     string
	value    float64
	children []*rawNode
	index    map[string]*rawNode
}

func (n *rawNode) add(path []string, weight float64) {
	if len(path) == 0 {
		n.value += weight
		return
	}
	if n.index == nil {
		n.index = make(map[string]*rawNode)
	}
	child, ok := n.index[path[0]]
	if !ok {
		child = &rawNode{name: path[0]}
		n.index[path[0]] = child
		n.children = append(n.children, child)
	}
	child.add(path[1:], weight)
}

func (n *rawNode) toRaw() *hierarchy.Raw {
	r := &hierarchy.Raw{Name: n.name}
	if len(n.children) == 0 {
		v := n.value
		r.Value = &v
		return r
	}
	r.Children = make([]hierarchy.Raw, 0, len(n.children))
	for _, c := range n.children {
		r.Children = append(r.Children, *c.toRaw())
	}
	return r
}

func countLeaves(r *hierarchy.Raw) int {
	if r.IsLeaf() {
		return 1
	}
	total := 0
	for i := range r.Children {
		total += countLeaves(&r.Children[i])
	}
	return total
}
