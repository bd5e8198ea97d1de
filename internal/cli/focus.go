package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkarlsen/sunwheel/pkg/chart"
	"github.com/mkarlsen/sunwheel/pkg/sunburst"
)

// focusCommand creates the focus command for computing zoom transitions.
func (c *CLI) focusCommand() *cobra.Command {
	var (
		output    string
		applyPath string
		parent    bool
	)

	cmd := &cobra.Command{
		Use:   "focus [layout.json] [node-path]",
		Short: "Compute a zoom transition for a node path",
		Long: `Compute a zoom transition for a node path.

The focus command loads a sunburst layout, rebuilds the zoom state from its
embedded dataset, and computes the transition plan that zooms into the node
at the given slash-separated path (e.g. root/Summer). The plan lists every
node's current extent, target extent, and target visibility; animation
frames can be produced by interpolating between the two.

The plan is written as JSON to stdout or --output. With --apply, the plan
is also committed and the resulting zoomed layout written to the given
path, ready for 'visualize'.

Focusing on the root restores the original un-zoomed layout. With
--parent, the path argument is omitted and the focus moves one level up
from the layout's current focus.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !parent && len(args) < 2 {
				return fmt.Errorf("node path required (or use --parent)")
			}
			var path []string
			if len(args) == 2 {
				path = parseFocusPath(args[1])
			}
			return c.runFocus(args[0], path, parent, output, applyPath)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "plan output file (stdout if empty)")
	cmd.Flags().StringVar(&applyPath, "apply", "", "commit the plan and write the zoomed layout to this file")
	cmd.Flags().BoolVar(&parent, "parent", false, "focus one level up instead of a named path")

	return cmd
}

// runFocus rebuilds the controller from the layout and computes the plan.
func (c *CLI) runFocus(input string, path []string, parent bool, output, applyPath string) error {
	layout, err := chart.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	ctrl, err := layout.Controller()
	if err != nil {
		return fmt.Errorf("rebuild zoom state: %w", err)
	}

	var plan *sunburst.TransitionPlan
	if parent {
		plan, err = ctrl.FocusParent()
	} else {
		node, ok := ctrl.Tree().Find(path...)
		if !ok {
			return fmt.Errorf("no node at path %q", strings.Join(path, "/"))
		}
		plan, err = ctrl.FocusOn(node)
	}
	if err != nil {
		return fmt.Errorf("compute focus: %w", err)
	}

	data, err := plan.MarshalJSON()
	if err != nil {
		return fmt.Errorf("serialize plan: %w", err)
	}

	out, err := openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.Write(append(data, '\n')); err != nil {
		return err
	}

	visible := 0
	for _, e := range plan.Entries() {
		if e.Visible {
			visible++
		}
	}

	if output != "" {
		printSuccess("Focus plan computed")
		printFile(output)
		printKeyValue("focus", strings.Join(plan.Focus().Path(), "/"))
		printKeyValue("visible", fmt.Sprintf("%d of %d nodes", visible, len(plan.Entries())))
	}

	if applyPath != "" {
		if err := ctrl.Apply(plan); err != nil {
			return fmt.Errorf("apply plan: %w", err)
		}
		zoomed := chart.FromController(ctrl)
		zoomed.Style = layout.Style
		if err := chart.WriteLayoutFile(zoomed, applyPath); err != nil {
			return fmt.Errorf("write zoomed layout %s: %w", applyPath, err)
		}
		printFile(applyPath)
		printNewline()
		printNextStep("Render", "sunwheel visualize "+applyPath)
	}

	return nil
}
