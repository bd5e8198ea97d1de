package pipeline

import (
	"fmt"
	"strings"

	"github.com/mkarlsen/sunwheel/pkg/chart"
	"github.com/mkarlsen/sunwheel/pkg/errors"
	"github.com/mkarlsen/sunwheel/pkg/hierarchy"
	"github.com/mkarlsen/sunwheel/pkg/render"
	"github.com/mkarlsen/sunwheel/pkg/render/nodelink"
	"github.com/mkarlsen/sunwheel/pkg/render/sunburst/sink"
	"github.com/mkarlsen/sunwheel/pkg/render/sunburst/styles"
	"github.com/mkarlsen/sunwheel/pkg/sunburst"
)

// GenerateLayout computes a layout for the dataset without caching.
// For sunburst layouts an optional focus path is applied and committed
// before the arcs are captured.
func GenerateLayout(raw *hierarchy.Raw, opts Options) (chart.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return chart.Layout{}, err
	}

	switch {
	case opts.IsSunburst():
		return generateSunburstLayout(raw, opts)
	case opts.IsNodelink():
		return generateNodelinkLayout(raw, opts)
	default:
		return chart.Layout{}, errors.New(errors.ErrCodeInvalidVizType, "invalid viz_type: %q", opts.VizType)
	}
}

func generateSunburstLayout(raw *hierarchy.Raw, opts Options) (chart.Layout, error) {
	c, err := sunburst.Build(raw, sunburst.Config{
		RingWidth: opts.RingWidth,
		MaxRadius: opts.MaxRadius,
	})
	if err != nil {
		if hierarchy.IsInvalidTree(err) {
			return chart.Layout{}, errors.Wrap(errors.ErrCodeInvalidTree, err, "invalid dataset")
		}
		return chart.Layout{}, err
	}

	if len(opts.Focus) > 0 {
		node, ok := c.Tree().Find(opts.Focus...)
		if !ok {
			return chart.Layout{}, errors.New(errors.ErrCodeUnknownNode,
				"no node at path %q", strings.Join(opts.Focus, "/"))
		}
		plan, err := c.FocusOn(node)
		if err != nil {
			return chart.Layout{}, err
		}
		if err := c.Apply(plan); err != nil {
			return chart.Layout{}, err
		}
	}

	l := chart.FromController(c)
	l.Style = opts.Style
	return l, nil
}

func generateNodelinkLayout(raw *hierarchy.Raw, opts Options) (chart.Layout, error) {
	tree, err := hierarchy.Build(raw)
	if err != nil {
		if hierarchy.IsInvalidTree(err) {
			return chart.Layout{}, errors.Wrap(errors.ErrCodeInvalidTree, err, "invalid dataset")
		}
		return chart.Layout{}, err
	}
	dot := nodelink.ToDOT(tree, nodelink.Options{Detailed: opts.Detailed})
	return chart.Layout{
		VizType: chart.VizTypeNodelink,
		Style:   opts.Style,
		Dataset: tree.ToRaw(),
		DOT:     dot,
		Engine:  "dot",
	}, nil
}

// RenderFromLayout renders a layout into every requested format without
// caching. The returned map is keyed by format name.
func RenderFromLayout(layout chart.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		if layout.IsNodelink() {
			data, err = renderNodelinkFormat(layout, format, opts)
		} else {
			data, err = renderSunburstFormat(layout, format, opts)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderSunburstFormat(layout chart.Layout, format string, opts Options) ([]byte, error) {
	if format == FormatJSON {
		return sink.RenderJSON(layout, sink.WithJSONStyle(opts.Style), sink.WithJSONDataset())
	}

	palette, err := styles.ByName(opts.Style)
	if err != nil {
		return nil, err
	}
	svgOpts := []sink.SVGOption{sink.WithPalette(palette)}
	if opts.Legend {
		svgOpts = append(svgOpts, sink.WithLegend())
	}
	if opts.Labels {
		svgOpts = append(svgOpts, sink.WithLabels())
	}
	if opts.Titles {
		svgOpts = append(svgOpts, sink.WithTitles())
	}
	svg := sink.RenderSVG(layout, svgOpts...)

	switch format {
	case FormatSVG:
		return svg, nil
	case FormatPNG:
		return render.ToPNG(svg, opts.Scale)
	case FormatPDF:
		return render.ToPDF(svg)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
	}
}

func renderNodelinkFormat(layout chart.Layout, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return nodelink.RenderSVG(layout.DOT)
	case FormatPNG:
		return nodelink.RenderPNG(layout.DOT, opts.Scale)
	case FormatPDF:
		return nodelink.RenderPDF(layout.DOT)
	case FormatJSON:
		return chart.MarshalLayout(layout)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
	}
}
