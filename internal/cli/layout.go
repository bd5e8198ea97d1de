package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkarlsen/sunwheel/pkg/chart"
	"github.com/mkarlsen/sunwheel/pkg/pipeline"
)

// layoutCommand creates the layout command for computing visualization layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output   string
		noCache  bool
		focusStr string
	)
	opts := pipeline.Options{}
	opts.SetLayoutDefaults()

	cmd := &cobra.Command{
		Use:   "layout [dataset.json]",
		Short: "Compute a visualization layout from a dataset",
		Long: `Compute a visualization layout from a dataset.

The layout command takes a dataset.json file (produced by 'aggregate', or
written by hand) and computes the layout for visualization. The output is
a layout.json file that can be rendered to SVG/PNG/PDF using the
'visualize' command.

For sunburst layouts, --focus zooms into a node before the arcs are
captured: the node's angular span fills the full circle and its subtree
shifts to the center.

Supports both sunburst (-t sunburst) and nodelink (-t nodelink)
visualization types.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Focus = parseFocusPath(focusStr)
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	// Layout flags
	cmd.Flags().StringVarP(&opts.VizType, "type", "t", opts.VizType, "visualization type: sunburst (default), nodelink")
	cmd.Flags().Float64Var(&opts.RingWidth, "ring-width", opts.RingWidth, "ring thickness in pixels (sunburst)")
	cmd.Flags().Float64Var(&opts.MaxRadius, "max-radius", opts.MaxRadius, "maximum chart radius in pixels (sunburst)")
	cmd.Flags().StringVar(&focusStr, "focus", "", "node path to zoom into, slash-separated (e.g. root/Summer)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", opts.Detailed, "show detailed node labels (nodelink)")
	cmd.Flags().StringVar(&opts.Style, "style", opts.Style, "color palette: vivid (default), muted")

	return cmd
}

// runLayout loads the dataset, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	raw, err := chart.ReadDatasetFile(input)
	if err != nil {
		return fmt.Errorf("load dataset %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", opts.VizType))
	spinner.Start()

	layout, cacheHit, err := runner.GenerateLayoutWithCacheInfo(ctx, raw, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}

	if err := chart.WriteLayoutFile(layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(layout.Arcs), layoutDepth(layout), cacheHit)
	printNewline()
	printNextStep("Render", "sunwheel visualize "+outputPath)

	return nil
}

// layoutDepth returns the deepest ring in a sunburst layout, or 0 for
// nodelink layouts.
func layoutDepth(l chart.Layout) int {
	depth := 0
	for _, a := range l.Arcs {
		if a.Depth > depth {
			depth = a.Depth
		}
	}
	return depth
}
