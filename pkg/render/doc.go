// Package render provides visualization rendering for hierarchy datasets.
//
// # Overview
//
// This package contains the rendering layer that transforms laid-out
// hierarchies into visual outputs. It provides:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Sunburst charts (in [sunburst] subpackage)
//   - Node-link diagrams (in [nodelink] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). These are used by both
// sunburst and node-link renderers.
//
//	svg := sink.RenderSVG(layout, opts...)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// # Sunburst Charts
//
// The [sunburst/sink] subpackage renders partition layouts as concentric
// rings where each arc's angular span is proportional to its value share.
// Colors come from the depth-indexed palettes in [sunburst/styles].
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage renders the same hierarchy as a traditional
// tree diagram using Graphviz. Nodes appear as boxes connected by arrows.
//
//	dot := nodelink.ToDOT(tree, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//	pdf, err := render.ToPDF(svg)
//
// [sunburst/sink]: github.com/mkarlsen/sunwheel/pkg/render/sunburst/sink
// [sunburst/styles]: github.com/mkarlsen/sunwheel/pkg/render/sunburst/styles
// [nodelink]: github.com/mkarlsen/sunwheel/pkg/render/nodelink
package render
