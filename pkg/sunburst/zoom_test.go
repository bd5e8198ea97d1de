package sunburst

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mkarlsen/sunwheel/pkg/hierarchy"
)

func mustFind(t *testing.T, c *Controller, path ...string) *hierarchy.Node {
	t.Helper()
	n, ok := c.Tree().Find(path...)
	if !ok {
		t.Fatalf("Find(%v) failed", path)
	}
	return n
}

func TestFocusOnExpandsTarget(t *testing.T) {
	c := mustBuild(t, seasons(), Config{})
	summer := mustFind(t, c, "root", "Summer")

	plan, err := c.FocusOn(summer)
	if err != nil {
		t.Fatalf("FocusOn: %v", err)
	}
	if c.Focus() != summer {
		t.Error("focus should move to Summer")
	}

	entry, ok := plan.Entry(summer)
	if !ok {
		t.Fatal("plan missing the focused node")
	}
	if !near(entry.Target.AngleStart, 0) || !near(entry.Target.AngleEnd, tau) {
		t.Errorf("focus target angles = [%v, %v], want [0, tau]", entry.Target.AngleStart, entry.Target.AngleEnd)
	}
	if entry.Target.RadiusStart != 0 {
		t.Errorf("focus target RadiusStart = %v, want 0", entry.Target.RadiusStart)
	}

	// Children renormalize against the focus: Beach is 4/7 of Summer.
	beach, _ := plan.Entry(mustFind(t, c, "root", "Summer", "Beach"))
	if !near(beach.Target.AngularWidth(), (40.0/70.0)*tau) {
		t.Errorf("Beach target width = %v, want 4/7 of tau", beach.Target.AngularWidth())
	}
}

func TestFocusOnCollapsesDisjointNodes(t *testing.T) {
	c := mustBuild(t, seasons(), Config{})
	summer := mustFind(t, c, "root", "Summer")

	plan, err := c.FocusOn(summer)
	if err != nil {
		t.Fatalf("FocusOn: %v", err)
	}

	// Spring lies entirely right of Summer, so it collapses to tau.
	spring, _ := plan.Entry(mustFind(t, c, "root", "Spring"))
	if spring.Target.AngularWidth() != 0 {
		t.Errorf("disjoint node width = %v, want 0", spring.Target.AngularWidth())
	}
	if !near(spring.Target.AngleStart, tau) {
		t.Errorf("disjoint node collapses at %v, want tau", spring.Target.AngleStart)
	}
	if spring.Visible {
		t.Error("collapsed node should not be marked visible")
	}
}

func TestFocusOnCollapsesAncestorsInward(t *testing.T) {
	c := mustBuild(t, seasons(), Config{RingWidth: 60, MaxRadius: 300})
	summer := mustFind(t, c, "root", "Summer")

	plan, _ := c.FocusOn(summer)

	// Focus sits at depth 1 (inner radius 60); the root shifts inward and
	// floors at zero, occupying [0, 0].
	root, _ := plan.Entry(c.Tree().Root())
	if root.Target.RadiusStart != 0 || root.Target.RadiusEnd != 0 {
		t.Errorf("ancestor radii = [%v, %v], want [0, 0]", root.Target.RadiusStart, root.Target.RadiusEnd)
	}

	// Descendants shift inward by one ring.
	beach, _ := plan.Entry(mustFind(t, c, "root", "Summer", "Beach"))
	if beach.Target.RadiusStart != 60 || beach.Target.RadiusEnd != 120 {
		t.Errorf("descendant radii = [%v, %v], want [60, 120]", beach.Target.RadiusStart, beach.Target.RadiusEnd)
	}
}

func TestFocusOnDoesNotCommit(t *testing.T) {
	c := mustBuild(t, seasons(), Config{})
	summer := mustFind(t, c, "root", "Summer")
	before, _ := c.Extent(summer)

	if _, err := c.FocusOn(summer); err != nil {
		t.Fatalf("FocusOn: %v", err)
	}

	after, _ := c.Extent(summer)
	if before != after {
		t.Error("FocusOn must not change committed extents before Apply")
	}
}

func TestApplyCommitsTargets(t *testing.T) {
	c := mustBuild(t, seasons(), Config{})
	summer := mustFind(t, c, "root", "Summer")

	plan, _ := c.FocusOn(summer)
	if err := c.Apply(plan); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	got, _ := c.Extent(summer)
	entry, _ := plan.Entry(summer)
	if got != entry.Target {
		t.Errorf("committed extent = %+v, want target %+v", got, entry.Target)
	}
}

func TestFocusRootRestoresOriginalLayout(t *testing.T) {
	c := mustBuild(t, seasons(), Config{})
	summer := mustFind(t, c, "root", "Summer")

	plan, _ := c.FocusOn(summer)
	if err := c.Apply(plan); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	plan, err := c.FocusOn(c.Tree().Root())
	if err != nil {
		t.Fatalf("FocusOn(root): %v", err)
	}
	if err := c.Apply(plan); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	for _, n := range c.Tree().Nodes() {
		got, _ := c.Extent(n)
		want, _ := c.InitialExtent(n)
		if !extentNear(got, want) {
			t.Errorf("%s extent = %+v after round trip, want initial %+v", n.Name, got, want)
		}
	}
}

func TestRefocusIsIdempotent(t *testing.T) {
	c := mustBuild(t, seasons(), Config{})
	summer := mustFind(t, c, "root", "Summer")

	first, _ := c.FocusOn(summer)
	_ = c.Apply(first)
	second, _ := c.FocusOn(summer)

	for _, e := range second.Entries() {
		if e.Current != e.Target {
			t.Errorf("%s: refocusing the same node should be a no-op, current %+v target %+v",
				e.Name, e.Current, e.Target)
		}
	}
}

func TestFocusParent(t *testing.T) {
	c := mustBuild(t, seasons(), Config{})
	beach := mustFind(t, c, "root", "Summer", "Beach")

	plan, _ := c.FocusOn(beach)
	_ = c.Apply(plan)

	plan, err := c.FocusParent()
	if err != nil {
		t.Fatalf("FocusParent: %v", err)
	}
	if plan.Focus().Name != "Summer" {
		t.Errorf("FocusParent moved to %q, want Summer", plan.Focus().Name)
	}
}

func TestFocusParentAtRootIsNoop(t *testing.T) {
	c := mustBuild(t, seasons(), Config{})

	plan, err := c.FocusParent()
	if err != nil {
		t.Fatalf("FocusParent: %v", err)
	}
	if plan.Focus() != c.Tree().Root() {
		t.Error("FocusParent at root should re-focus the root")
	}
	for _, e := range plan.Entries() {
		if !extentNear(e.Current, e.Target) {
			t.Errorf("%s: plan should be a no-op at root", e.Name)
		}
	}
}

func TestFocusOnForeignNode(t *testing.T) {
	c1 := mustBuild(t, seasons(), Config{})
	c2 := mustBuild(t, seasons(), Config{})

	_, err := c1.FocusOn(c2.Tree().Root())
	if !errors.Is(err, ErrUnknownNode) {
		t.Errorf("err = %v, want ErrUnknownNode", err)
	}
	_, err = c1.FocusOn(nil)
	if !errors.Is(err, ErrUnknownNode) {
		t.Errorf("FocusOn(nil) err = %v, want ErrUnknownNode", err)
	}
}

func TestApplyRejectsForeignPlan(t *testing.T) {
	c1 := mustBuild(t, seasons(), Config{})
	c2 := mustBuild(t, seasons(), Config{})

	plan, _ := c2.FocusOn(c2.Tree().Root())
	if err := c1.Apply(plan); !errors.Is(err, ErrForeignPlan) {
		t.Errorf("err = %v, want ErrForeignPlan", err)
	}
	if err := c1.Apply(nil); !errors.Is(err, ErrForeignPlan) {
		t.Errorf("Apply(nil) err = %v, want ErrForeignPlan", err)
	}
}

func TestFocusOnZeroWidthNode(t *testing.T) {
	raw := &hierarchy.Raw{
		Name: "root",
		Children: []hierarchy.Raw{
			{Name: "full", Value: fp(10)},
			{Name: "empty", Value: fp(0)},
		},
	}
	c := mustBuild(t, raw, Config{})
	empty := mustFind(t, c, "root", "empty")

	plan, err := c.FocusOn(empty)
	if err != nil {
		t.Fatalf("FocusOn zero-width node: %v", err)
	}

	// Every angle collapses to one of the two edges of the degenerate focus.
	for _, e := range plan.Entries() {
		for _, a := range []float64{e.Target.AngleStart, e.Target.AngleEnd} {
			if !near(a, 0) && !near(a, tau) {
				t.Errorf("%s target angle = %v, want 0 or tau", e.Name, a)
			}
		}
	}
}

func TestPlanEntryAt(t *testing.T) {
	c := mustBuild(t, seasons(), Config{})
	summer := mustFind(t, c, "root", "Summer")

	plan, _ := c.FocusOn(summer)
	entry, _ := plan.Entry(summer)

	if got := entry.At(0); got != entry.Current {
		t.Errorf("At(0) = %+v, want current", got)
	}
	if got := entry.At(1); got != entry.Target {
		t.Errorf("At(1) = %+v, want target", got)
	}
}

func TestPlanEntriesPreorder(t *testing.T) {
	c := mustBuild(t, seasons(), Config{})

	plan, _ := c.FocusOn(c.Tree().Root())
	if len(plan.Entries()) != c.Tree().Len() {
		t.Fatalf("plan has %d entries, want %d", len(plan.Entries()), c.Tree().Len())
	}
	for i, n := range c.Tree().Nodes() {
		if plan.Entries()[i].Node() != n {
			t.Errorf("entry %d is %q, want %q", i, plan.Entries()[i].Name, n.Name)
		}
	}
}

func TestPlanMarshalJSON(t *testing.T) {
	c := mustBuild(t, seasons(), Config{})
	summer := mustFind(t, c, "root", "Summer")

	plan, _ := c.FocusOn(summer)
	data, err := json.Marshal(plan)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var doc struct {
		Focus   []string `json:"focus"`
		Entries []struct {
			Name   string `json:"name"`
			Target struct {
				AngleStart float64 `json:"angle_start"`
			} `json:"target"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := strings.Join(doc.Focus, "/"); got != "root/Summer" {
		t.Errorf("focus = %q, want root/Summer", got)
	}
	if len(doc.Entries) != 5 {
		t.Errorf("entries = %d, want 5", len(doc.Entries))
	}
}
