package sink

import (
	"encoding/json"

	"github.com/mkarlsen/sunwheel/pkg/chart"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	style   string
	dataset bool
}

// WithJSONStyle records the palette name in the JSON output for round-trip
// rendering.
func WithJSONStyle(s string) JSONOption { return func(r *jsonRenderer) { r.style = s } }

// WithJSONDataset embeds the source dataset in the output, enabling focus
// computation on the exported document.
func WithJSONDataset() JSONOption { return func(r *jsonRenderer) { r.dataset = true } }

// RenderJSON exports the laid-out arcs as a pretty-printed JSON document.
// This is the primary interchange format, consumed by external renderers
// that animate transitions themselves.
func RenderJSON(l chart.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := l
	out.Style = r.style
	if !r.dataset {
		out.Dataset = nil
	}
	return json.MarshalIndent(out, "", "  ")
}
