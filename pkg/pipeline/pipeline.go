// Package pipeline provides the core visualization pipeline for Sunwheel.
//
// This package implements the complete aggregate → layout → render pipeline
// that can be used by CLI and API components. By centralizing this logic,
// we ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Aggregate: Categorize weighted records into a hierarchy dataset
//  2. Layout: Compute arc extents (sunburst) or a DOT graph (nodelink)
//  3. Render: Generate output in various formats (SVG, PNG, PDF, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    RecordsPath: "activities.jsonl",
//	    RulesPath:   "rules.toml",
//	    VizType:     "sunburst",
//	    Formats:     []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Aggregate only
//	raw, stats, err := runner.Aggregate(ctx, opts)
//
//	// Layout with an existing dataset
//	layout, err := runner.GenerateLayout(ctx, raw, opts)
//
//	// Render with an existing layout
//	artifacts, err := runner.Render(ctx, layout, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mkarlsen/sunwheel/pkg/cache"
	"github.com/mkarlsen/sunwheel/pkg/chart"
	"github.com/mkarlsen/sunwheel/pkg/errors"
	"github.com/mkarlsen/sunwheel/pkg/hierarchy"
)

// Default values shared by CLI and API.
const (
	// DefaultScale is the default raster scale factor for PNG output.
	DefaultScale = 2.0

	// DefaultStyle is the default color palette.
	DefaultStyle = "vivid"
)

// DefaultVizType is the default visualization type.
const DefaultVizType = chart.VizTypeSunburst

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ValidStyles is the set of supported color palettes.
var ValidStyles = map[string]bool{
	"vivid": true,
	"muted": true,
}

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = map[string]bool{
	chart.VizTypeSunburst: true,
	chart.VizTypeNodelink: true,
}

// Options contains all configuration for the visualization pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Aggregate options
	RecordsPath string         `json:"records_path,omitempty"`
	RulesPath   string         `json:"rules_path,omitempty"`
	TextColumn  string         `json:"text_column,omitempty"` // CSV column holding the record text
	Dataset     *hierarchy.Raw `json:"dataset,omitempty"`     // Inline dataset, skips aggregation
	Refresh     bool           `json:"refresh,omitempty"`

	// Layout options
	VizType   string   `json:"viz_type,omitempty"`
	RingWidth float64  `json:"ring_width,omitempty"`
	MaxRadius float64  `json:"max_radius,omitempty"`
	Focus     []string `json:"focus,omitempty"`    // Node path to focus before rendering
	Detailed  bool     `json:"detailed,omitempty"` // Detailed nodelink labels

	// Render options
	Formats []string `json:"formats,omitempty"`
	Style   string   `json:"style,omitempty"`
	Legend  bool     `json:"legend,omitempty"`
	Labels  bool     `json:"labels,omitempty"`
	Titles  bool     `json:"titles,omitempty"`
	Scale   float64  `json:"scale,omitempty"` // PNG raster scale

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Dataset is the aggregated (or inline) hierarchy.
	Dataset *hierarchy.Raw

	// DatasetHash is the content hash of the dataset.
	DatasetHash string

	// Layout contains the layout data (arcs or DOT).
	Layout chart.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Records       int // Input records read
	Matched       int // Records that matched a category on every required level
	Nodes         int // Nodes in the resulting hierarchy
	AggregateTime time.Duration
	LayoutTime    time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	DatasetHit bool // Whether the aggregated dataset came from cache
	LayoutHit  bool // Whether the layout came from cache
	RenderHit  bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	if !ValidStyles[style] {
		return errors.New(errors.ErrCodeInvalidStyle,
			"invalid style: %q (must be one of: vivid, muted)", style)
	}
	return nil
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if !ValidVizTypes[vizType] {
		return errors.New(errors.ErrCodeInvalidVizType,
			"invalid viz_type: %q (must be one of: sunburst, nodelink)", vizType)
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForAggregate(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForAggregate checks required fields for aggregation.
func (o *Options) ValidateForAggregate() error {
	if o.Dataset == nil {
		if o.RecordsPath == "" {
			return errors.New(errors.ErrCodeInvalidInput, "records_path or dataset is required")
		}
		if o.RulesPath == "" {
			return errors.New(errors.ErrCodeInvalidInput, "rules_path is required")
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
// Zero ring width and max radius are left alone; the partition layer applies
// its own geometry defaults.
func (o *Options) SetLayoutDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return ValidateVizType(o.VizType)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidateStyle(o.Style)
}

// IsSunburst returns true if this is a sunburst visualization.
func (o *Options) IsSunburst() bool {
	return o.VizType == "" || o.VizType == chart.VizTypeSunburst
}

// IsNodelink returns true if this is a nodelink visualization.
func (o *Options) IsNodelink() bool {
	return o.VizType == chart.VizTypeNodelink
}

// DatasetKeyOpts returns cache key options for aggregation.
func (o *Options) DatasetKeyOpts() cache.DatasetKeyOpts {
	return cache.DatasetKeyOpts{
		TextColumn: o.TextColumn,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		VizType:   o.VizType,
		RingWidth: o.RingWidth,
		MaxRadius: o.MaxRadius,
		Focus:     o.Focus,
		Detailed:  o.Detailed,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Style:  o.Style,
		Legend: o.Legend,
		Labels: o.Labels,
		Titles: o.Titles,
	}
}
