package cli

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/mkarlsen/sunwheel/pkg/chart"
	"github.com/mkarlsen/sunwheel/pkg/hierarchy"
	"github.com/mkarlsen/sunwheel/pkg/sunburst"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// exploreCommand creates the explore command for interactive drill-down.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		ringWidth float64
		maxRadius float64
	)

	cmd := &cobra.Command{
		Use:   "explore [dataset.json]",
		Short: "Interactively drill into a dataset in the terminal",
		Long: `Interactively drill into a dataset in the terminal.

The explore command loads a dataset and opens a terminal UI over the zoom
state: select a child to zoom into it, go back up to widen the view. Each
row shows the node's value, its share of the current focus, and the
angular span it would occupy in the rendered sunburst.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(args[0], ringWidth, maxRadius)
		},
	}

	cmd.Flags().Float64Var(&ringWidth, "ring-width", 0, "ring thickness in pixels")
	cmd.Flags().Float64Var(&maxRadius, "max-radius", 0, "maximum chart radius in pixels")

	return cmd
}

// runExplore builds the controller and hands it to the bubbletea program.
func (c *CLI) runExplore(input string, ringWidth, maxRadius float64) error {
	raw, err := chart.ReadDatasetFile(input)
	if err != nil {
		return fmt.Errorf("load dataset %s: %w", input, err)
	}

	ctrl, err := sunburst.Build(raw, sunburst.Config{
		RingWidth: ringWidth,
		MaxRadius: maxRadius,
	})
	if err != nil {
		return fmt.Errorf("build zoom state: %w", err)
	}

	model := newExploreModel(ctrl)
	if _, err := tea.NewProgram(model).Run(); err != nil {
		return fmt.Errorf("explore: %w", err)
	}
	return nil
}

// exploreModel is the bubbletea model for interactive zoom navigation.
type exploreModel struct {
	ctrl   *sunburst.Controller
	cursor int
	err    error
}

func newExploreModel(ctrl *sunburst.Controller) exploreModel {
	return exploreModel{ctrl: ctrl}
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	children := m.ctrl.Focus().Children

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(children)-1 {
				m.cursor++
			}
		case "enter", "right", "l":
			if m.cursor < len(children) {
				m.err = m.zoomTo(children[m.cursor])
				m.cursor = 0
			}
		case "backspace", "left", "h", "u":
			m.err = m.zoomOut()
			m.cursor = 0
		}
	}
	return m, nil
}

// zoomTo focuses a child and commits the transition immediately; the TUI
// does not animate.
func (m *exploreModel) zoomTo(n *hierarchy.Node) error {
	if n.IsLeaf() {
		return nil // nothing below a leaf to show
	}
	plan, err := m.ctrl.FocusOn(n)
	if err != nil {
		return err
	}
	return m.ctrl.Apply(plan)
}

func (m *exploreModel) zoomOut() error {
	plan, err := m.ctrl.FocusParent()
	if err != nil {
		return err
	}
	return m.ctrl.Apply(plan)
}

func (m exploreModel) View() string {
	var b strings.Builder

	focus := m.ctrl.Focus()
	tree := m.ctrl.Tree()

	b.WriteString(StyleTitle.Render("Explore: " + strings.Join(focus.Path(), " / ")))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ zoom in  ⌫ zoom out  q quit"))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(StyleWarning.Render(m.err.Error()))
		b.WriteString("\n\n")
	}

	children := focus.Children
	if len(children) == 0 {
		b.WriteString(listDimStyle.Render("  (leaf node)"))
		b.WriteString("\n")
		return b.String()
	}

	rows := [][]string{}
	for i, n := range children {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		ext, _ := m.ctrl.Extent(n)
		span := "—"
		if w := ext.AngularWidth(); w > 0 {
			span = fmt.Sprintf("%.1f°", w*180/math.Pi)
		}

		kind := "leaf"
		if !n.IsLeaf() {
			kind = fmt.Sprintf("%d children", len(n.Children))
		}

		rows = append(rows, []string{
			cursor,
			n.Name,
			fmt.Sprintf("%.2f", n.Value),
			fmt.Sprintf("%.1f%%", tree.ShareOfParent(n)*100),
			span,
			kind,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Value", "Share", "Span", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row == m.cursor {
				return listSelectedStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(children))))
	b.WriteString("\n")

	return b.String()
}
