package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowprof/pkg/layout"
	"github.com/matzehuels/flowprof/pkg/report"
	"github.com/matzehuels/flowprof/pkg/surface"
)

// Keyboard pan step in screen pixels, and the wheel delta of one zoom key.
const (
	panStep   = 40
	zoomDelta = 120
)

var (
	browseSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	browseNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	browsePillStyle     = lipgloss.NewStyle().Foreground(colorWhite).Background(lipgloss.Color("237")).Padding(0, 1)
	browseTabStyle      = lipgloss.NewStyle().Foreground(colorGray).Padding(0, 1)
	browseActiveStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1).Underline(true)
	browsePaneStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// browseCommand creates the terminal browser.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		reportPath string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "browse [<profile.log> <ops.json>]",
		Short: "Explore a report in the terminal",
		Long: `Explore a report in the terminal.

Keys: ↑/↓ move, enter toggle, e expand all, c collapse all, / search,
tab switch between tree and graph, arrows and +/- pan and zoom the graph,
0 reset the view, q quit.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if reportPath != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.loadReport(cmd.Context(), reportPath, args, noCache)
			if err != nil {
				return err
			}
			m := newBrowseModel(r, c.config().Layout)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&reportPath, "report", "", "browse a report JSON file instead of building one")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// loadReport reads a report document, or builds one from a log and a spec.
func (c *CLI) loadReport(ctx context.Context, reportPath string, args []string, noCache bool) (*report.Report, error) {
	if reportPath != "" {
		data, err := os.ReadFile(reportPath)
		if err != nil {
			return nil, fmt.Errorf("read report: %w", err)
		}
		return report.Unmarshal(data)
	}

	opts, err := c.baseOptions()
	if err != nil {
		return nil, err
	}
	opts.LogPath, opts.SpecPath = args[0], args[1]

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return nil, err
	}
	defer runner.Close()
	return runner.Build(ctx, opts)
}

// =============================================================================
// browseModel - bubbletea model over surface.State
// =============================================================================

// browseModel keeps a surface state and the frame rendered from it. Every
// key becomes a surface event followed by a full re-render.
type browseModel struct {
	report *report.Report
	layout []layout.Option
	state  surface.State
	frame  surface.Frame

	cursor int // index into frame.Tree
	offset int
	height int
	width  int

	searching bool
	query     string
	status    string
}

func newBrowseModel(r *report.Report, cfg layout.Config) browseModel {
	m := browseModel{
		report: r,
		layout: []layout.Option{layout.WithConfig(cfg)},
		state:  surface.Initial(r),
		height: 20,
		width:  100,
	}
	m.rerender()
	return m
}

func (m *browseModel) rerender() {
	m.frame = surface.Render(m.state, m.report, m.layout...)
	m.cursor = 0
	for i, row := range m.frame.Tree {
		if row.Selected {
			m.cursor = i
			break
		}
	}
	m.scroll()
}

func (m *browseModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

// apply runs ev and re-renders. Rejected events leave the state as is and
// show the error in the status line.
func (m *browseModel) apply(ev surface.Event) {
	next, err := surface.Apply(m.state, m.report, ev)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
	m.state = next
	m.rerender()
}

func (m browseModel) Init() tea.Cmd { return nil }

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = max(msg.Height-12, 5)
		m.scroll()
		return m, nil
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg), nil
		}
		return m.updateKey(msg)
	}
	return m, nil
}

func (m browseModel) updateSearch(msg tea.KeyMsg) browseModel {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
	case tea.KeyEsc:
		m.searching = false
		m.query = ""
		m.apply(surface.Event{Kind: surface.KindSearch})
	case tea.KeyBackspace:
		if r := []rune(m.query); len(r) > 0 {
			m.query = string(r[:len(r)-1])
			m.apply(surface.Event{Kind: surface.KindSearch, Query: m.query})
		}
	case tea.KeyRunes:
		m.query += string(msg.Runes)
		m.apply(surface.Event{Kind: surface.KindSearch, Query: m.query})
	case tea.KeySpace:
		m.query += " "
		m.apply(surface.Event{Kind: surface.KindSearch, Query: m.query})
	}
	return m
}

func (m browseModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	graph := m.state.Tab == surface.TabGraph

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		tab := surface.TabGraph
		if graph {
			tab = surface.TabTree
		}
		m.apply(surface.Event{Kind: surface.KindTab, Tab: tab})
	case "/":
		m.searching = true
	case "e":
		m.apply(surface.Event{Kind: surface.KindExpandAll})
	case "c":
		m.apply(surface.Event{Kind: surface.KindCollapseAll})
	case "+", "=":
		m.apply(surface.Event{Kind: surface.KindZoom, DeltaY: -zoomDelta})
	case "-":
		m.apply(surface.Event{Kind: surface.KindZoom, DeltaY: zoomDelta})
	case "0":
		m.apply(surface.Event{Kind: surface.KindResetView})
	case "up", "k":
		if graph {
			m.apply(surface.Event{Kind: surface.KindPan, DY: panStep})
		} else {
			m.move(-1)
		}
	case "down", "j":
		if graph {
			m.apply(surface.Event{Kind: surface.KindPan, DY: -panStep})
		} else {
			m.move(1)
		}
	case "left", "h":
		if graph {
			m.apply(surface.Event{Kind: surface.KindPan, DX: panStep})
		}
	case "right", "l":
		if graph {
			m.apply(surface.Event{Kind: surface.KindPan, DX: -panStep})
		}
	case "enter", " ":
		if row, ok := m.current(); ok {
			m.apply(surface.Event{Kind: surface.KindToggle, Name: row.Name})
		}
	}
	return m, nil
}

// move selects the row delta lines away from the cursor.
func (m *browseModel) move(delta int) {
	i := m.cursor + delta
	if i < 0 || i >= len(m.frame.Tree) {
		return
	}
	m.apply(surface.Event{Kind: surface.KindSelect, Name: m.frame.Tree[i].Name})
}

func (m browseModel) current() (surface.Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.frame.Tree) {
		return surface.Row{}, false
	}
	return m.frame.Tree[m.cursor], true
}

// =============================================================================
// View
// =============================================================================

func (m browseModel) View() string {
	var b strings.Builder

	pills := make([]string, len(m.frame.Summary))
	for i, p := range m.frame.Summary {
		pills[i] = browsePillStyle.Render(p.Label + ": " + p.Value)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, pills...))
	b.WriteString("\n")
	b.WriteString(m.tabs())
	b.WriteString("\n")

	if m.state.Tab == surface.TabGraph {
		b.WriteString(browsePaneStyle.Render(m.graphView()))
	} else {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			browsePaneStyle.Render(m.treeView()),
			browsePaneStyle.Render(m.detailView())))
	}
	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m browseModel) tabs() string {
	tree, graph := browseTabStyle, browseTabStyle
	if m.state.Tab == surface.TabGraph {
		graph = browseActiveStyle
	} else {
		tree = browseActiveStyle
	}
	return tree.Render("Tree") + graph.Render("Graph")
}

func (m browseModel) treeView() string {
	if len(m.frame.Tree) == 0 {
		return StyleDim.Render("no nodes")
	}
	end := min(m.offset+m.height, len(m.frame.Tree))
	lines := make([]string, 0, end-m.offset)
	for _, row := range m.frame.Tree[m.offset:end] {
		line := strings.Repeat("  ", row.Depth) + row.Toggle() + " " + row.Text()
		if row.Selected {
			lines = append(lines, browseSelectedStyle.Render(line))
		} else {
			lines = append(lines, browseNormalStyle.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

func (m browseModel) detailView() string {
	d := m.frame.Detail
	if d == nil {
		return StyleDim.Render("Select a node")
	}
	var b strings.Builder
	b.WriteString(StyleTitle.Render(d.Title))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(d.Meta))
	if len(d.Operators) == 0 {
		return b.String()
	}

	rows := make([][]string, len(d.Operators))
	for i, op := range d.Operators {
		rows[i] = []string{op.Addr, op.OpName, fmt.Sprint(op.Activations), op.TotalActiveMs}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("addr", "operator", "act", "ms").
		Rows(rows...)
	b.WriteString("\n")
	b.WriteString(t.Render())
	return b.String()
}

// graphView lists the layers of the layout top to bottom; the selected
// node is highlighted.
func (m browseModel) graphView() string {
	g := m.frame.Graph
	if g == nil || len(g.Layers) == 0 {
		return StyleDim.Render("empty graph")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n",
		StyleDim.Render(fmt.Sprintf("%d layers · %d crossings", len(g.Layers), g.Crossings)),
		StyleDim.Render(m.frame.Transform))
	for i, layer := range g.Layers {
		names := make([]string, len(layer))
		for j, name := range layer {
			label := name
			if n, ok := m.report.Nodes[name]; ok && n.Label != "" {
				label = n.Label
			}
			if name == m.state.Selected {
				names[j] = browseSelectedStyle.Render("[" + label + "]")
			} else {
				names[j] = browseNormalStyle.Render(label)
			}
		}
		fmt.Fprintf(&b, "%s %s\n", StyleDim.Render(fmt.Sprintf("%2d", i)), strings.Join(names, StyleDim.Render("  ")))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m browseModel) footer() string {
	switch {
	case m.searching:
		return StyleHighlight.Render("/") + m.query + StyleDim.Render("▏")
	case m.status != "":
		return StyleWarning.Render(m.status)
	case m.state.Search != "":
		return StyleDim.Render("filter: " + m.state.Search + "  (/ to edit, esc clears)")
	}
	return StyleDim.Render("↑/↓ move  ⏎ toggle  e/c expand/collapse  / search  tab graph  q quit")
}
