package nodelink

import (
	"strings"
	"testing"

	"github.com/mkarlsen/sunwheel/pkg/hierarchy"
)

func fp(v float64) *float64 { return &v }

func buildTree(t *testing.T) *hierarchy.Tree {
	t.Helper()
	tree, err := hierarchy.Build(&hierarchy.Raw{
		Name: "root",
		Children: []hierarchy.Raw{
			{Name: "Spring", Value: fp(30)},
			{Name: "Summer", Children: []hierarchy.Raw{
				{Name: "Beach", Value: fp(40)},
				{Name: "Hiking", Value: fp(0)},
			}},
		},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return tree
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(buildTree(t), Options{})

	if !strings.HasPrefix(dot, "digraph G {") {
		t.Fatalf("dot should open a digraph, got %q", dot[:20])
	}
	if !strings.HasSuffix(strings.TrimSpace(dot), "}") {
		t.Fatal("dot should close the digraph")
	}

	// Node IDs are full paths so sibling name collisions cannot merge nodes.
	for _, id := range []string{`"root"`, `"root/Summer"`, `"root/Summer/Beach"`} {
		if !strings.Contains(dot, id) {
			t.Errorf("missing node %s", id)
		}
	}
	for _, edge := range []string{`"root" -> "root/Summer"`, `"root/Summer" -> "root/Summer/Beach"`} {
		if !strings.Contains(dot, edge) {
			t.Errorf("missing edge %s", edge)
		}
	}
}

func TestToDOTMarksZeroValueNodes(t *testing.T) {
	dot := ToDOT(buildTree(t), Options{})

	if !strings.Contains(dot, "lightgrey") {
		t.Error("zero-valued nodes should be greyed out")
	}
}

func TestToDOTDetailedLabels(t *testing.T) {
	plain := ToDOT(buildTree(t), Options{})
	detailed := ToDOT(buildTree(t), Options{Detailed: true})

	if strings.Contains(plain, "share:") {
		t.Error("plain labels should not include shares")
	}
	if !strings.Contains(detailed, "share:") || !strings.Contains(detailed, "depth:") {
		t.Error("detailed labels should include share and depth")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00">body</svg>`)
	out := string(normalizeViewBox(in))

	if !strings.Contains(out, `viewBox="0 0 100.00 50.00"`) {
		t.Errorf("viewBox not normalized: %s", out)
	}
	if !strings.Contains(out, `width="100" height="50"`) {
		t.Errorf("dimensions not pixel-normalized: %s", out)
	}
	if !strings.Contains(out, "body</svg>") {
		t.Error("body lost during normalization")
	}
}

func TestNormalizeViewBoxPassthrough(t *testing.T) {
	in := []byte(`<svg>no viewbox here</svg>`)
	if got := string(normalizeViewBox(in)); got != string(in) {
		t.Errorf("svg without viewBox should pass through, got %s", got)
	}
}
