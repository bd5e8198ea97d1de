// Package sunburst computes polar partition layouts for weighted hierarchies
// and tracks an interactive zoom focus over them.
//
// A partition layout assigns every node an angular extent proportional to
// its value share, nested within its parent's extent, and a radial extent
// indexed by depth (one ring per level). The [Controller] owns one laid-out
// tree, remembers which node is currently focused, and answers each focus
// change with a [TransitionPlan]: a snapshot of per-node current and target
// extents a renderer can interpolate between. The controller itself never
// animates and holds no presentation state; colors, easing, and hit-testing
// belong to the caller.
package sunburst
