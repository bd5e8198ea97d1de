package hierarchy

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func fp(v float64) *float64 { return &v }

// seasons is the standard fixture: root → Spring(30), Summer{Beach(40), Hiking(30)}.
func seasons() *Raw {
	return &Raw{
		Name: "root",
		Children: []Raw{
			{Name: "Spring", Value: fp(30)},
			{Name: "Summer", Children: []Raw{
				{Name: "Beach", Value: fp(40)},
				{Name: "Hiking", Value: fp(30)},
			}},
		},
	}
}

func TestBuildRollsUpValues(t *testing.T) {
	tree, err := Build(seasons())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if got := tree.Root().Value; got != 100 {
		t.Errorf("root value = %v, want 100", got)
	}
	summer, ok := tree.Find("root", "Summer")
	if !ok {
		t.Fatal("Find(root/Summer) failed")
	}
	if summer.Value != 70 {
		t.Errorf("Summer value = %v, want 70", summer.Value)
	}
	if tree.Len() != 5 {
		t.Errorf("Len = %d, want 5", tree.Len())
	}
	if tree.Depth() != 2 {
		t.Errorf("Depth = %d, want 2", tree.Depth())
	}
}

func TestBuildIgnoresInternalValue(t *testing.T) {
	raw := &Raw{
		Name:  "root",
		Value: fp(9999), // ignored: internal nodes derive their value
		Children: []Raw{
			{Name: "a", Value: fp(1)},
			{Name: "b", Value: fp(2)},
		},
	}
	tree, err := Build(raw)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tree.Root().Value != 3 {
		t.Errorf("root value = %v, want rolled-up 3", tree.Root().Value)
	}
}

func TestBuildSortsChildrenDescending(t *testing.T) {
	raw := &Raw{
		Name: "root",
		Children: []Raw{
			{Name: "small", Value: fp(1)},
			{Name: "big", Value: fp(10)},
			{Name: "mid", Value: fp(5)},
		},
	}
	tree, err := Build(raw)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var got []string
	for _, c := range tree.Root().Children {
		got = append(got, c.Name)
	}
	want := []string{"big", "mid", "small"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("children = %v, want %v", got, want)
	}
}

func TestBuildSortIsStableForTies(t *testing.T) {
	raw := &Raw{
		Name: "root",
		Children: []Raw{
			{Name: "first", Value: fp(5)},
			{Name: "second", Value: fp(5)},
			{Name: "third", Value: fp(5)},
		},
	}
	tree, err := Build(raw)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var got []string
	for _, c := range tree.Root().Children {
		got = append(got, c.Name)
	}
	want := []string{"first", "second", "third"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tied children reordered: %v, want %v", got, want)
	}
}

func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name string
		raw  *Raw
		want error
	}{
		{"nil dataset", nil, ErrEmptyTree},
		{"leaf without value", &Raw{Name: "x"}, ErrMissingValue},
		{"negative value", &Raw{Name: "x", Value: fp(-1)}, ErrNegativeValue},
		{"nan value", &Raw{Name: "x", Value: fp(math.NaN())}, ErrNonFiniteValue},
		{"inf value", &Raw{Name: "x", Value: fp(math.Inf(1))}, ErrNonFiniteValue},
		{"internal without children", &Raw{Name: "x", Children: []Raw{}}, ErrNoChildren},
		{"nested invalid leaf", &Raw{Name: "x", Children: []Raw{{Name: "y"}}}, ErrMissingValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.raw)
			if !errors.Is(err, tt.want) {
				t.Errorf("Build error = %v, want %v", err, tt.want)
			}
			if !IsInvalidTree(err) {
				t.Errorf("IsInvalidTree(%v) = false, want true", err)
			}
		})
	}
}

func TestIsInvalidTreeRejectsOtherErrors(t *testing.T) {
	if IsInvalidTree(errors.New("boom")) {
		t.Error("IsInvalidTree should not match arbitrary errors")
	}
	if IsInvalidTree(nil) {
		t.Error("IsInvalidTree(nil) should be false")
	}
}

func TestZeroValuedLeavesAreValid(t *testing.T) {
	raw := &Raw{
		Name: "root",
		Children: []Raw{
			{Name: "empty", Value: fp(0)},
			{Name: "full", Value: fp(10)},
		},
	}
	tree, err := Build(raw)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tree.Root().Value != 10 {
		t.Errorf("root value = %v, want 10", tree.Root().Value)
	}
}

func TestShares(t *testing.T) {
	tree, err := Build(seasons())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	beach, _ := tree.Find("root", "Summer", "Beach")
	if got := tree.ShareOfTotal(beach); got != 0.4 {
		t.Errorf("ShareOfTotal(Beach) = %v, want 0.4", got)
	}
	if got := tree.ShareOfParent(beach); got != 40.0/70.0 {
		t.Errorf("ShareOfParent(Beach) = %v, want 4/7", got)
	}
	if got := tree.ShareOfParent(tree.Root()); got != 1 {
		t.Errorf("ShareOfParent(root) = %v, want 1", got)
	}
	if got := tree.ShareOfTotal(tree.Root()); got != 1 {
		t.Errorf("ShareOfTotal(root) = %v, want 1", got)
	}
}

func TestSiblingSharesSumToOne(t *testing.T) {
	tree, err := Build(seasons())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	tree.Walk(func(n *Node) bool {
		if n.IsLeaf() {
			return true
		}
		sum := 0.0
		for _, c := range n.Children {
			sum += tree.ShareOfParent(c)
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("shares under %s sum to %v, want 1", n.Name, sum)
		}
		return true
	})
}

func TestSharesWithZeroTotal(t *testing.T) {
	raw := &Raw{
		Name: "root",
		Children: []Raw{
			{Name: "a", Value: fp(0)},
			{Name: "b", Value: fp(0)},
		},
	}
	tree, err := Build(raw)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	a, _ := tree.Find("root", "a")
	if got := tree.ShareOfTotal(a); got != 0 {
		t.Errorf("ShareOfTotal with zero root = %v, want 0", got)
	}
	if got := tree.ShareOfParent(a); got != 0 {
		t.Errorf("ShareOfParent with zero parent = %v, want 0", got)
	}
}

func TestFind(t *testing.T) {
	tree, err := Build(seasons())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	tests := []struct {
		name string
		path []string
		ok   bool
	}{
		{"root", []string{"root"}, true},
		{"nested leaf", []string{"root", "Summer", "Beach"}, true},
		{"missing node", []string{"root", "Winter"}, false},
		{"wrong root", []string{"other", "Summer"}, false},
		{"empty path", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := tree.Find(tt.path...)
			if ok != tt.ok {
				t.Fatalf("Find(%v) ok = %v, want %v", tt.path, ok, tt.ok)
			}
			if ok && n.Name != tt.path[len(tt.path)-1] {
				t.Errorf("Find(%v) = %q", tt.path, n.Name)
			}
		})
	}
}

func TestPath(t *testing.T) {
	tree, err := Build(seasons())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	beach, _ := tree.Find("root", "Summer", "Beach")
	want := []string{"root", "Summer", "Beach"}
	if got := beach.Path(); !reflect.DeepEqual(got, want) {
		t.Errorf("Path = %v, want %v", got, want)
	}
}

func TestOwns(t *testing.T) {
	t1, _ := Build(seasons())
	t2, _ := Build(seasons())

	if !t1.Owns(t1.Root()) {
		t.Error("tree should own its own root")
	}
	if t1.Owns(t2.Root()) {
		t.Error("tree should not own a foreign node")
	}
	if t1.Owns(nil) {
		t.Error("tree should not own nil")
	}
}

func TestWalkSkipsSubtree(t *testing.T) {
	tree, _ := Build(seasons())

	var visited []string
	tree.Walk(func(n *Node) bool {
		visited = append(visited, n.Name)
		return n.Name != "Summer"
	})

	for _, name := range visited {
		if name == "Beach" || name == "Hiking" {
			t.Errorf("Walk visited %q inside a skipped subtree", name)
		}
	}
	if len(visited) != 3 {
		t.Errorf("visited %v, want root, Summer, Spring in some order", visited)
	}
}

func TestNodesPreorder(t *testing.T) {
	tree, _ := Build(seasons())

	var got []string
	for _, n := range tree.Nodes() {
		got = append(got, n.Name)
	}
	// Children sorted by value: Summer(70) before Spring(30), Beach before Hiking.
	want := []string{"root", "Summer", "Beach", "Hiking", "Spring"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Nodes = %v, want %v", got, want)
	}
}

func TestToRawRoundTrip(t *testing.T) {
	tree, err := Build(seasons())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	again, err := Build(tree.ToRaw())
	if err != nil {
		t.Fatalf("rebuild from ToRaw: %v", err)
	}
	if again.Root().Value != tree.Root().Value {
		t.Errorf("root value = %v, want %v", again.Root().Value, tree.Root().Value)
	}
	if again.Len() != tree.Len() {
		t.Errorf("Len = %d, want %d", again.Len(), tree.Len())
	}

	raw := tree.ToRaw()
	if raw.Value != nil {
		t.Error("internal node should not carry an explicit value")
	}
}
