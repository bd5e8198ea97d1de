// Package aggregate turns flat record datasets into the weighted hierarchy
// the sunburst consumes.
//
// Records are free-text entries (chat messages, survey answers, log lines).
// A [RuleSet] defines ordered classification levels - e.g. season, place,
// activity - each with keyword-matched categories. Every record that matches
// all required levels contributes a count of one to the leaf at the path of
// its inferred categories; the resulting counts form a [hierarchy.Raw]
// dataset ready for layout.
package aggregate
