package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkarlsen/sunwheel/pkg/chart"
	"github.com/mkarlsen/sunwheel/pkg/pipeline"
)

// renderCommand creates the render command: the dataset-to-artifact shortcut.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
		focusStr   string
	)
	opts := pipeline.Options{}
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()

	cmd := &cobra.Command{
		Use:   "render [dataset.json]",
		Short: "Render a dataset to visual output",
		Long: `Render a dataset to visual output.

The render command combines 'layout' and 'visualize': it takes a
dataset.json file, computes the layout, and renders it in one step.
Use --focus to zoom into a subtree before rendering.

Results of every stage are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			opts.Focus = parseFocusPath(focusStr)
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	// Layout flags
	cmd.Flags().StringVarP(&opts.VizType, "type", "t", opts.VizType, "visualization type: sunburst (default), nodelink")
	cmd.Flags().Float64Var(&opts.RingWidth, "ring-width", opts.RingWidth, "ring thickness in pixels (sunburst)")
	cmd.Flags().Float64Var(&opts.MaxRadius, "max-radius", opts.MaxRadius, "maximum chart radius in pixels (sunburst)")
	cmd.Flags().StringVar(&focusStr, "focus", "", "node path to zoom into, slash-separated (e.g. root/Summer)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", opts.Detailed, "show detailed node labels (nodelink)")

	// Render flags
	cmd.Flags().StringVar(&opts.Style, "style", opts.Style, "color palette: vivid (default), muted")
	cmd.Flags().BoolVar(&opts.Legend, "legend", opts.Legend, "draw a depth-1 legend next to the chart")
	cmd.Flags().BoolVar(&opts.Labels, "labels", opts.Labels, "draw names inside arcs that are wide enough")
	cmd.Flags().BoolVar(&opts.Titles, "titles", opts.Titles, "add hover tooltips with value and share")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "raster scale factor for PNG output")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), pdf, png, json (comma-separated)")

	return cmd
}

// runRender loads the dataset and executes the layout and render stages.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	raw, err := chart.ReadDatasetFile(input)
	if err != nil {
		return fmt.Errorf("load dataset %s: %w", input, err)
	}
	opts.Dataset = raw

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", opts.VizType))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	return writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		cacheHit:  result.CacheInfo.RenderHit,
	})
}
