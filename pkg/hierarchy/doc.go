// Package hierarchy provides the weighted tree model that backs sunburst
// visualizations.
//
// A tree is built once from a Raw dataset (nested name/value/children JSON),
// validated, and never structurally mutated afterwards. Leaf values are
// given; internal values are rolled up bottom-up so that every internal
// node's value equals the sum of its children. Children are kept in
// descending value order (ties preserve input order), which fixes the
// angular ordering of the partition layout in [pkg/sunburst].
package hierarchy
