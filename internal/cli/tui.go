package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/codegraph/pkg/errors"
	"github.com/matzehuels/codegraph/pkg/graph"
	"github.com/matzehuels/codegraph/pkg/render"
	"github.com/matzehuels/codegraph/pkg/tree"
	"github.com/matzehuels/codegraph/pkg/workspace"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the browse command, a terminal front end for a
// workspace.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		output string
		src    sourceFlags
		lay    layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Explore tree and graph in the terminal",
		Long: `Explore a codebase tree and its graph in the terminal.

The side tree lists every folder and file. Selecting an entry looks up its
graph node and shows level, position and degree. Keys:

  ↑/k ↓/j  move        ⏎  select        /  search
  r        rebuild     c  color scheme  e  export CSV
  esc      clear       q  quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			if err := src.apply(cmd, &opts); err != nil {
				return err
			}
			lay.apply(cmd, &opts)

			ws, err := workspace.New(workspace.Options{
				Logger:   c.Logger,
				Base:     opts,
				Settings: c.Config.Settings,
			})
			if err != nil {
				return err
			}
			req := workspace.Request{
				Source:  opts.Source,
				Seed:    opts.Seed,
				Folders: opts.Folders,
				Files:   opts.Files,
			}
			// Log lines would tear the alternate screen.
			c.SetLogLevel(LogError)

			model := NewBrowseModel(cmd.Context(), ws, req)
			model.ExportPath = output
			final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}
			if m, ok := final.(BrowseModel); ok {
				m.close()
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", defaultCSVFile, "CSV file written by the export key")
	src.register(cmd)
	lay.register(cmd, "")

	return cmd
}

// =============================================================================
// BrowseModel - Interactive tree and graph explorer
// =============================================================================

// treeRow is one line of the flattened side tree.
type treeRow struct {
	Path   string
	Name   string
	Depth  int
	Folder bool
	Size   int64
}

// flattenTree lists root in display order.
func flattenTree(root *tree.Node) []treeRow {
	var rows []treeRow
	_ = tree.Walk(root, func(v tree.Visit) error {
		rows = append(rows, treeRow{
			Path:   v.Path,
			Name:   v.Node.Name,
			Depth:  v.Depth,
			Folder: v.Node.IsFolder(),
			Size:   v.Node.Size,
		})
		return nil
	})
	return rows
}

// Messages produced by the model's commands.
type (
	rebuiltMsg struct {
		snap workspace.Snapshot
		err  error
	}
	selectedMsg struct {
		node graph.Node
		err  error
	}
	exportedMsg struct {
		rows int
		path string
		err  error
	}
	settingsMsg struct {
		settings render.Settings
		err      error
	}
	noticeMsg workspace.Notice
)

// BrowseModel is the bubbletea model of the browse command.
type BrowseModel struct {
	ws      *workspace.Workspace
	ctx     context.Context
	req     workspace.Request
	notices <-chan workspace.Notice
	unsub   func()

	Rows     []treeRow
	Cursor   int
	Offset   int
	Height   int
	Selected *graph.Node
	Query    string
	Editing  bool
	Busy     bool
	Status   string
	Notice   *workspace.Notice

	// ExportPath is where the export key writes the edge CSV.
	ExportPath string
}

// NewBrowseModel creates a browse model over ws. The first rebuild uses req.
func NewBrowseModel(ctx context.Context, ws *workspace.Workspace, req workspace.Request) BrowseModel {
	notices, unsub := ws.Subscribe(0)
	return BrowseModel{
		ws:         ws,
		ctx:        ctx,
		req:        req,
		notices:    notices,
		unsub:      unsub,
		Height:     15,
		ExportPath: defaultCSVFile,
	}
}

func (m BrowseModel) close() {
	if m.unsub != nil {
		m.unsub()
	}
}

func (m BrowseModel) Init() tea.Cmd {
	return tea.Batch(m.rebuild(), m.waitNotice())
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Editing {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)

	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-12, 5)

	case rebuiltMsg:
		m.Busy = false
		if msg.err != nil {
			if errors.Is(msg.err, errors.ErrCodeStale) {
				return m, nil
			}
			m.Status = errors.UserMessage(msg.err)
			return m, nil
		}
		m.Selected = nil
		m.Status = fmt.Sprintf("generation %d: %d nodes, %d edges",
			msg.snap.Generation, msg.snap.Graph.NodeCount(), msg.snap.Graph.EdgeCount())
		m.setRows(m.filtered(msg.snap.Tree))

	case selectedMsg:
		if msg.err != nil {
			m.Selected = nil
			m.Status = errors.UserMessage(msg.err)
			return m, nil
		}
		n := msg.node
		m.Selected = &n
		m.Status = ""

	case exportedMsg:
		if msg.err != nil {
			m.Status = errors.UserMessage(msg.err)
			return m, nil
		}
		m.Status = fmt.Sprintf("exported %d edges to %s", msg.rows, msg.path)

	case settingsMsg:
		if msg.err != nil {
			m.Status = errors.UserMessage(msg.err)
			return m, nil
		}
		m.Status = "color scheme: " + msg.settings.ColorScheme

	case noticeMsg:
		n := workspace.Notice(msg)
		m.Notice = &n
		return m, m.waitNotice()
	}
	return m, nil
}

func (m BrowseModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.ws.ClearSelection()
		m.Selected = nil
		m.Notice = nil
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "enter":
		if m.Cursor < len(m.Rows) {
			return m, m.selectPath(m.Rows[m.Cursor].Path)
		}
	case "/":
		m.Editing = true
	case "r":
		if m.Busy {
			return m, nil
		}
		m.Busy = true
		m.Status = "rebuilding..."
		// A seeded request would produce the same tree again.
		m.req.Seed = 0
		return m, m.rebuild()
	case "c":
		return m, m.cycleScheme()
	case "e":
		return m, m.export()
	}
	return m, nil
}

func (m BrowseModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.Editing = false
		m.applySearch()
	case tea.KeyEsc:
		m.Editing = false
		m.Query = ""
		m.applySearch()
	case tea.KeyBackspace:
		if r := []rune(m.Query); len(r) > 0 {
			m.Query = string(r[:len(r)-1])
		}
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyRunes, tea.KeySpace:
		m.Query += string(msg.Runes)
	}
	return m, nil
}

func (m *BrowseModel) applySearch() {
	root, err := m.ws.Search(m.Query)
	if err != nil {
		m.Status = errors.UserMessage(err)
		return
	}
	m.setRows(root)
	if m.Query != "" {
		m.Status = fmt.Sprintf("%d matches for %q", max(len(m.Rows)-1, 0), m.Query)
	}
}

// filtered applies the current query to a freshly committed tree.
func (m BrowseModel) filtered(root *tree.Node) *tree.Node {
	if m.Query == "" {
		return root
	}
	return tree.Filter(root, m.Query)
}

func (m *BrowseModel) setRows(root *tree.Node) {
	m.Rows = flattenTree(root)
	m.Cursor = min(m.Cursor, max(len(m.Rows)-1, 0))
	m.Offset = min(m.Offset, m.Cursor)
}

func (m *BrowseModel) move(delta int) {
	next := m.Cursor + delta
	if next < 0 || next >= len(m.Rows) {
		return
	}
	m.Cursor = next
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// =============================================================================
// Commands
// =============================================================================

func (m BrowseModel) rebuild() tea.Cmd {
	ws, ctx, req := m.ws, m.ctx, m.req
	return func() tea.Msg {
		snap, err := ws.Rebuild(ctx, req)
		return rebuiltMsg{snap: snap, err: err}
	}
}

func (m BrowseModel) selectPath(path string) tea.Cmd {
	ws, ctx := m.ws, m.ctx
	return func() tea.Msg {
		n, err := ws.SelectPath(ctx, path)
		return selectedMsg{node: n, err: err}
	}
}

func (m BrowseModel) cycleScheme() tea.Cmd {
	ws, ctx := m.ws, m.ctx
	return func() tea.Msg {
		scheme := nextScheme(ws.Settings().ColorScheme)
		settings, err := ws.ApplySettings(ctx, render.Patch{ColorScheme: &scheme})
		return settingsMsg{settings: settings, err: err}
	}
}

func (m BrowseModel) export() tea.Cmd {
	ws, ctx, path := m.ws, m.ctx, m.ExportPath
	return func() tea.Msg {
		var buf bytes.Buffer
		rows, err := ws.ExportCSV(ctx, &buf)
		if err != nil {
			return exportedMsg{err: err}
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return exportedMsg{err: err}
		}
		return exportedMsg{rows: rows, path: path}
	}
}

func (m BrowseModel) waitNotice() tea.Cmd {
	ch := m.notices
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return noticeMsg(n)
	}
}

// nextScheme returns the color scheme after current, wrapping around.
func nextScheme(current string) string {
	schemes := render.Schemes()
	i := slices.Index(schemes, current)
	return schemes[(i+1)%len(schemes)]
}

// =============================================================================
// View
// =============================================================================

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Codebase Graph"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  / search  r rebuild  c colors  e export  q quit"))
	b.WriteString("\n\n")

	if m.Editing || m.Query != "" {
		b.WriteString(StyleHighlight.Render("/" + m.Query))
		if m.Editing {
			b.WriteString(listDimStyle.Render("▏"))
		}
		b.WriteString("\n\n")
	}

	if len(m.Rows) == 0 {
		if m.Busy || m.Status == "" {
			b.WriteString(listDimStyle.Render("  building..."))
		} else {
			b.WriteString(listDimStyle.Render("  nothing to show"))
		}
		b.WriteString("\n")
	}

	end := min(m.Offset+m.Height, len(m.Rows))
	for i := m.Offset; i < end; i++ {
		b.WriteString(m.renderRow(i))
		b.WriteString("\n")
	}

	if m.Selected != nil {
		b.WriteString("\n")
		b.WriteString(m.details(*m.Selected))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.Notice != nil {
		b.WriteString(noticeLine(*m.Notice))
		b.WriteString("\n")
	}
	if m.Status != "" {
		b.WriteString(listDimStyle.Render("  " + m.Status))
		b.WriteString("\n")
	}
	if len(m.Rows) > 0 {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))
	}

	return b.String()
}

func (m BrowseModel) renderRow(i int) string {
	r := m.Rows[i]
	cursor := "  "
	if i == m.Cursor {
		cursor = "▸ "
	}
	indent := strings.Repeat("  ", r.Depth)

	name := r.Name
	if r.Folder {
		name += "/"
	}
	line := cursor + indent + name

	switch {
	case i == m.Cursor:
		return listSelectedStyle.Render(line)
	case m.Selected != nil && m.Selected.Path == r.Path:
		return StyleHighlight.Render(line)
	case r.Folder:
		return StyleFolder.Render(line)
	default:
		return listNormalStyle.Render(line) + listDimStyle.Render(fmt.Sprintf("  %d B", r.Size))
	}
}

// details renders the graph facts of the selected node as a table.
func (m BrowseModel) details(n graph.Node) string {
	in, out := 0, 0
	if g := m.ws.Snapshot().Graph; g != nil {
		in, out = g.InDegree(n.ID), g.OutDegree(n.ID)
	}
	rows := [][]string{
		{"Node", n.DisplayLabel()},
		{"ID", n.ID},
		{"Kind", n.Kind},
		{"Level", fmt.Sprint(n.Level)},
		{"Position", fmt.Sprintf("%.0f, %.0f", n.Position.X, n.Position.Y)},
		{"In / Out", fmt.Sprintf("%d / %d", in, out)},
	}

	keyStyle := lipgloss.NewStyle().Foreground(colorGray)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return keyStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	return t.Render()
}

func noticeLine(n workspace.Notice) string {
	switch n.Level {
	case workspace.LevelError:
		return styleIconError.Render("  "+iconError) + " " + n.Message
	case workspace.LevelWarn:
		return styleIconWarning.Render("  "+iconWarning) + " " + n.Message
	default:
		return styleIconInfo.Render("  "+iconInfo) + " " + n.Message
	}
}
