package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	mtio "github.com/matzehuels/mindtree/pkg/io"
	"github.com/matzehuels/mindtree/pkg/mindmap/engine"
	"github.com/matzehuels/mindtree/pkg/mindmap/interact"
	"github.com/matzehuels/mindtree/pkg/mindmap/layout"
	"github.com/matzehuels/mindtree/pkg/mindmap/scene"
	"github.com/matzehuels/mindtree/pkg/pipeline"
)

const (
	exploreTick   = 50 * time.Millisecond
	explorePanBy  = 40.0
	exploreZoomBy = 1.25
)

var (
	exploreTooltipStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorGray).
				Padding(0, 1).
				MaxWidth(48)
	exploreFocusStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
)

// exploreCommand creates the explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "explore [input]",
		Short: "Explore a mind map in the terminal",
		Long: `Explore a mind map in the terminal.

The tree is laid out and drawn exactly as for 'render', and the terminal
drives the same interaction as the html page: the focused node is under the
pointer, its summary fades in as a tooltip, and enter follows its link.

Keys:
  tab, shift+tab   focus next / previous node
  arrows           pan
  + / -            zoom in / out around the focused node
  enter            open the focused node's link
  0                reset pan and zoom
  r                reload the input
  q                quit`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeTreeFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(flags)
			if err != nil {
				return err
			}
			return c.runExplore(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().Float64Var(&flags.width, "width", 0, "canvas width in pixels (default from config)")
	cmd.Flags().Float64Var(&flags.height, "height", 0, "canvas height in pixels (default from config)")
	cmd.Flags().BoolVar(&flags.contour, "contour", false, "pack subtrees by contour instead of disjoint bands")
	cmd.Flags().Float64Var(&flags.minScale, "min-scale", 0, "minimum zoom")
	cmd.Flags().Float64Var(&flags.maxScale, "max-scale", 0, "maximum zoom")

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, input string, opts pipeline.Options) error {
	// The alternate screen owns the terminal; engine logs would tear it.
	quiet := log.New(io.Discard)
	m := newExploreModel(input, opts, quiet, nil)
	if err := m.reload(); err != nil {
		return err
	}
	defer m.engine.Teardown()

	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// =============================================================================
// Model
// =============================================================================

type exploreTickMsg time.Time

// exploreModel hosts one engine on a recording surface and turns keys into
// pointer events.
type exploreModel struct {
	input  string
	read   func(path string) ([]byte, mtio.Format, error)
	engine *engine.Engine
	focus  int
	status string
	err    error
}

// newExploreModel builds the model. nav receives followed links; nil opens
// them in the system browser.
func newExploreModel(input string, opts pipeline.Options, logger *log.Logger, nav interact.Navigator) *exploreModel {
	m := &exploreModel{input: input, read: mtio.ReadFile}
	if nav == nil {
		nav = interact.BrowserNavigator{}
	}
	opened := interact.NavigatorFunc(func(url string) error {
		if err := nav.Open(url); err != nil {
			return err
		}
		m.status = "opened " + url
		return nil
	})

	opts.Logger = logger
	opts.SetLayoutDefaults()
	eopts := engine.Options{
		Margins:  *opts.Margins,
		Layout:   opts.LayoutOptions(),
		Interact: []interact.Option{interact.WithOptions(opts.InteractOptions())},
		Logger:   logger,
	}
	m.engine = engine.New(scene.NewRecorder(opts.Width, opts.Height), opened, eopts)
	return m
}

// reload reads the input again and submits it. The previous scene is torn
// down even when the new input is rejected.
func (m *exploreModel) reload() error {
	m.focus = 0
	data, format, err := m.read(m.input)
	if err != nil {
		m.engine.Teardown()
		return err
	}
	v, err := mtio.DecodeValue(data, format)
	if err != nil {
		m.engine.Teardown()
		return err
	}
	if _, err := m.engine.Submit(v); err != nil {
		return err
	}
	m.hover()
	return nil
}

func (m *exploreModel) Init() tea.Cmd {
	return exploreTickCmd()
}

func exploreTickCmd() tea.Cmd {
	return tea.Tick(exploreTick, func(t time.Time) tea.Msg { return exploreTickMsg(t) })
}

func (m *exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case exploreTickMsg:
		m.engine.Dispatch(interact.Event{Kind: interact.Tick})
		return m, exploreTickCmd()
	case tea.KeyMsg:
		return m, m.key(msg.String())
	}
	return m, nil
}

func (m *exploreModel) key(k string) tea.Cmd {
	cycle := m.engine.Current()
	switch k {
	case "q", "ctrl+c", "esc":
		return tea.Quit
	case "r":
		m.status = ""
		if err := m.reload(); err != nil {
			m.err = err
		} else {
			m.err = nil
			m.status = "reloaded " + m.input
		}
		return nil
	}
	if cycle == nil {
		return nil
	}

	ctrl := cycle.Controller
	switch k {
	case "tab", "n":
		m.focus = (m.focus + 1) % len(cycle.Handle.Regions)
		m.hover()
	case "shift+tab", "p":
		m.focus = (m.focus - 1 + len(cycle.Handle.Regions)) % len(cycle.Handle.Regions)
		m.hover()
	case "left":
		ctrl.PanBy(explorePanBy, 0)
		m.hover()
	case "right":
		ctrl.PanBy(-explorePanBy, 0)
		m.hover()
	case "up":
		ctrl.PanBy(0, explorePanBy)
		m.hover()
	case "down":
		ctrl.PanBy(0, -explorePanBy)
		m.hover()
	case "+", "=":
		x, y := m.pointer()
		ctrl.ZoomBy(x, y, exploreZoomBy)
	case "-", "_":
		x, y := m.pointer()
		ctrl.ZoomBy(x, y, 1/exploreZoomBy)
	case "0":
		ctrl.Reset()
		m.hover()
	case "enter":
		x, y := m.pointer()
		m.engine.Dispatch(interact.Event{Kind: interact.Click, X: x, Y: y})
	}
	return nil
}

// pointer returns the surface position of the focused node's circle.
func (m *exploreModel) pointer() (x, y float64) {
	cycle := m.engine.Current()
	if cycle == nil || len(cycle.Handle.Regions) == 0 {
		return 0, 0
	}
	r := cycle.Handle.Regions[m.focus]
	return cycle.Controller.State().Transform.Apply(r.Center)
}

// hover moves the pointer onto the focused node.
func (m *exploreModel) hover() {
	x, y := m.pointer()
	m.engine.Dispatch(interact.Event{Kind: interact.PointerMove, X: x, Y: y})
}

func (m *exploreModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.input))
	b.WriteString("\n\n")

	cycle := m.engine.Current()
	if cycle == nil {
		b.WriteString(styleIconError.Render(iconError) + " ")
		if m.err != nil {
			b.WriteString(m.err.Error())
		} else {
			b.WriteString("nothing to show")
		}
		b.WriteString("\n\n" + StyleDim.Render("r reload · q quit") + "\n")
		return b.String()
	}

	for i, r := range cycle.Handle.Regions {
		line := strings.Repeat("  ", r.Path.Depth()) + r.Name
		if r.HasLink() {
			line += " " + StyleLink.Render(r.Link)
		}
		if i == m.focus {
			b.WriteString(exploreFocusStyle.Render(iconInfo+" ") + exploreFocusStyle.Render(line))
		} else {
			b.WriteString("  " + StyleValue.Render(line))
		}
		b.WriteString("\n")
	}

	st := cycle.Controller.State()
	if st.Tooltip.Phase != interact.Hidden && st.Tooltip.Content != "" {
		style := exploreTooltipStyle
		if st.Tooltip.Opacity < cycle.Controller.Options().TooltipOpacity/2 {
			style = style.Foreground(colorDim)
		}
		b.WriteString("\n" + style.Render(st.Tooltip.Content) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(StyleDim.Render(statusLine(st, cycle.Layout)))
	if m.status != "" {
		b.WriteString("\n" + StyleSuccess.Render(m.status))
	}
	if m.err != nil {
		b.WriteString("\n" + StyleWarning.Render(m.err.Error()))
	}
	b.WriteString("\n" + StyleDim.Render("tab focus · arrows pan · +/- zoom · enter open · 0 reset · r reload · q quit") + "\n")
	return b.String()
}

func statusLine(st interact.SceneState, l *layout.Layout) string {
	t := st.Transform
	return fmt.Sprintf("%d nodes · zoom %s · pan %.0f,%.0f · tooltip %s",
		l.NodeCount, StyleNumber.Render(fmt.Sprintf("%.2f", t.K)), t.X, t.Y, st.Tooltip.Phase)
}
