package hierarchy

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	// ErrEmptyTree is returned by [Build] when the dataset has no nodes.
	ErrEmptyTree = errors.New("empty tree")

	// ErrMissingValue is returned by [Build] when a leaf node (no children
	// field) does not supply a value.
	ErrMissingValue = errors.New("leaf node missing value")

	// ErrNegativeValue is returned by [Build] when a leaf value is negative.
	ErrNegativeValue = errors.New("leaf value must be non-negative")

	// ErrNonFiniteValue is returned by [Build] when a leaf value is NaN or
	// infinite.
	ErrNonFiniteValue = errors.New("leaf value must be finite")

	// ErrNoChildren is returned by [Build] when an internal node (children
	// field present) has zero children. Such a node has no derivable value.
	ErrNoChildren = errors.New("internal node has no children")
)

// IsInvalidTree reports whether err is one of the dataset validation errors
// returned by [Build]. Callers that don't care which constraint failed can
// use this instead of checking each sentinel.
func IsInvalidTree(err error) bool {
	return errors.Is(err, ErrEmptyTree) ||
		errors.Is(err, ErrMissingValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrNonFiniteValue) ||
		errors.Is(err, ErrNoChildren)
}

// Raw is the dataset interchange form: a nested JSON structure where each
// node has a name and either a value (leaf) or a children array (internal).
// A node with a children field present - even an empty array - is internal;
// a node without one is a leaf and must supply a non-negative finite value.
type Raw struct {
	Name     string   `json:"name"`
	Value    *float64 `json:"value,omitempty"`
	Children []Raw    `json:"children,omitempty"`
}

// IsLeaf reports whether the raw node has no children field.
func (r Raw) IsLeaf() bool { return r.Children == nil }

// Node is one entity of a built tree. Structure (Name, Depth, Children,
// parent link) is fixed at construction; Value is the given leaf weight or
// the rolled-up sum for internal nodes.
//
// Nodes are owned by exactly one [Tree] and must not be shared across trees.
type Node struct {
	Name     string
	Value    float64
	Depth    int
	Children []*Node

	parent *Node
	tree   *Tree
}

// Parent returns the node's parent, or nil for the root. The back-reference
// is used only for ancestry traversal; the parent owns the child.
func (n *Node) Parent() *Node { return n.parent }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Path returns the ancestor names from the root down to this node,
// root-first. It always succeeds for a node belonging to a built tree.
func (n *Node) Path() []string {
	var names []string
	for cur := n; cur != nil; cur = cur.parent {
		names = append(names, cur.Name)
	}
	slices.Reverse(names)
	return names
}

// Tree is a validated, laid-out-ready hierarchy. It is exclusively owned by
// one consumer for its lifetime: one dataset load produces one tree, which is
// discarded when a new dataset is loaded. Tree is not safe for concurrent
// mutation, but all accessors are read-only after Build.
type Tree struct {
	root  *Node
	nodes []*Node // preorder
}

// Build constructs a tree from a raw dataset.
//
// Build validates the dataset (see the Err* sentinels), computes internal
// node values bottom-up, and sorts every node's children in descending value
// order, preserving input order for ties. Any value supplied on an internal
// node is ignored in favor of the rolled-up sum.
//
// Build either returns a fully valid tree or an error; there is no partial
// tree state visible to callers.
func Build(raw *Raw) (*Tree, error) {
	if raw == nil {
		return nil, ErrEmptyTree
	}
	t := &Tree{}
	root, err := t.build(*raw, nil, 0)
	if err != nil {
		return nil, err
	}
	t.root = root
	t.collect(root)
	return t, nil
}

func (t *Tree) build(raw Raw, parent *Node, depth int) (*Node, error) {
	n := &Node{
		Name:   raw.Name,
		Depth:  depth,
		parent: parent,
		tree:   t,
	}

	if raw.IsLeaf() {
		if raw.Value == nil {
			return nil, fmt.Errorf("%w: %q", ErrMissingValue, raw.Name)
		}
		v := *raw.Value
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %q", ErrNonFiniteValue, raw.Name)
		}
		if v < 0 {
			return nil, fmt.Errorf("%w: %q has %v", ErrNegativeValue, raw.Name, v)
		}
		n.Value = v
		return n, nil
	}

	if len(raw.Children) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoChildren, raw.Name)
	}

	n.Children = make([]*Node, 0, len(raw.Children))
	for _, rc := range raw.Children {
		child, err := t.build(rc, n, depth+1)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
		n.Value += child.Value
	}

	slices.SortStableFunc(n.Children, func(a, b *Node) int {
		return cmp.Compare(b.Value, a.Value)
	})
	return n, nil
}

func (t *Tree) collect(n *Node) {
	t.nodes = append(t.nodes, n)
	for _, c := range n.Children {
		t.collect(c)
	}
}

// Root returns the tree's root node.
func (t *Tree) Root() *Node { return t.root }

// Nodes returns all nodes in preorder (root first, children in descending
// value order). The returned slice must not be modified.
func (t *Tree) Nodes() []*Node { return t.nodes }

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// Depth returns the deepest populated level (root = 0).
func (t *Tree) Depth() int {
	max := 0
	for _, n := range t.nodes {
		if n.Depth > max {
			max = n.Depth
		}
	}
	return max
}

// Owns reports whether n belongs to this tree. Nodes from a previous or
// foreign tree are not owned, even if structurally identical.
func (t *Tree) Owns(n *Node) bool { return n != nil && n.tree == t }

// ShareOfTotal returns n's value as a fraction of the root value, or 0 when
// the root value is zero.
func (t *Tree) ShareOfTotal(n *Node) float64 {
	if t.root.Value == 0 {
		return 0
	}
	return n.Value / t.root.Value
}

// ShareOfParent returns n's value as a fraction of its parent's value.
// The root has no parent and is defined to have share 1. Children of a
// zero-valued parent report 0 (their values are necessarily zero too).
func (t *Tree) ShareOfParent(n *Node) float64 {
	if n.parent == nil {
		return 1
	}
	if n.parent.Value == 0 {
		return 0
	}
	return n.Value / n.parent.Value
}

// Find walks the tree following sibling names, root-first. The first name
// must match the root. It returns the matched node and true, or nil and
// false when any step does not match. Names are unique only among siblings,
// so a full path identifies exactly one node.
func (t *Tree) Find(path ...string) (*Node, bool) {
	if len(path) == 0 || path[0] != t.root.Name {
		return nil, false
	}
	cur := t.root
steps:
	for _, name := range path[1:] {
		for _, c := range cur.Children {
			if c.Name == name {
				cur = c
				continue steps
			}
		}
		return nil, false
	}
	return cur, true
}

// Walk visits nodes in preorder, stopping early if fn returns false for a
// node (its subtree is skipped).
func (t *Tree) Walk(fn func(*Node) bool) {
	var walk func(*Node)
	walk = func(n *Node) {
		if !fn(n) {
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.root)
}

// ToRaw converts the built tree back to its dataset form. Leaf values are
// emitted explicitly; internal nodes carry only children (their values are
// derivable). This enables round-tripping aggregated datasets to disk.
func (t *Tree) ToRaw() *Raw {
	var conv func(*Node) Raw
	conv = func(n *Node) Raw {
		r := Raw{Name: n.Name}
		if n.IsLeaf() {
			v := n.Value
			r.Value = &v
			return r
		}
		r.Children = make([]Raw, 0, len(n.Children))
		for _, c := range n.Children {
			r.Children = append(r.Children, conv(c))
		}
		return r
	}
	raw := conv(t.root)
	return &raw
}
