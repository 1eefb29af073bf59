package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/hayeah/focustree/ignore"
	"github.com/hayeah/focustree/internal/match"
	"github.com/hayeah/focustree/internal/state"
	"github.com/hayeah/focustree/tree"
)

// PanelCmd opens the interactive tree panel.
type PanelCmd struct{}

// PanelRunner runs the panel until the user quits.
type PanelRunner struct {
	App *App
}

func NewPanelRunner(app *App) *PanelRunner {
	return &PanelRunner{App: app}
}

func (r *PanelRunner) Run(ctx context.Context) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("panel needs an interactive terminal, use 'show' instead")
	}

	m := newPanelModel(ctx, r.App)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// Send blocks until the event loop reads; Update itself triggers
	// notifications, so deliver them from a separate goroutine.
	cancel := r.App.Provider.OnDidChange(func() {
		go p.Send(treeChangedMsg{})
	})
	defer cancel()
	r.App.Reveal.Set(func() {
		go p.Send(revealMsg{})
	})
	defer r.App.Reveal.Set(nil)

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

type treeChangedMsg struct{}

type revealMsg struct{}

type editorDoneMsg struct{ err error }

// panelMode selects what key presses drive.
type panelMode int

const (
	modeBrowse panelMode = iota
	modeCreate
	modeFilter
)

// maxFilterWalk bounds how many entries one filter pass visits.
const maxFilterWalk = 5000

// panelRow is one visible line of the panel.
type panelRow struct {
	node  tree.Node
	item  tree.Item
	depth int
}

// panelModel is the Bubble Tea model for the tree panel.
type panelModel struct {
	ctx      context.Context
	provider *tree.Provider
	store    *state.Store
	editor   string
	copy     func(string) error

	// Filter walk: skip is built per focused root from the watch ignore
	// settings.
	gitignore bool
	exclude   []string
	skip      *ignore.Ignore
	skipRoot  string
	walkLimit int

	rows     []panelRow
	expanded map[string]bool
	cursor   int
	status   string

	// Creation and filter prompt
	input    textinput.Model
	mode     panelMode
	creating tree.EntryKind
	filter   match.Query

	viewport viewport.Model
	ready    bool
}

func newPanelModel(ctx context.Context, app *App) panelModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 0

	m := panelModel{
		ctx:       ctx,
		provider:  app.Provider,
		store:     app.Store,
		editor:    app.Config.Editor,
		copy:      clipboard.WriteAll,
		gitignore: app.Config.Watch.Gitignore,
		exclude:   app.Config.Watch.Exclude,
		walkLimit: maxFilterWalk,
		expanded:  make(map[string]bool),
		input:     ti,
		viewport:  viewport.New(0, 0), // Will be properly sized in tea.WindowSizeMsg
	}
	m.reload()
	return m
}

func (m panelModel) Init() tea.Cmd {
	return nil
}

func (m panelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 2 // Root line + blank line
		footerHeight := 3 // Prompt or status + usage hint
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerHeight-footerHeight, 1)
		m.viewport.YPosition = headerHeight
		m.ready = true
		m.updateViewportContent()
		return m, nil

	case treeChangedMsg:
		m.reload()
		return m, nil

	case revealMsg:
		m.cursor = 0
		m.reload()
		m.viewport.GotoTop()
		return m, nil

	case editorDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Editor failed: %v", msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode != modeBrowse {
			return m.updatePrompt(msg)
		}
		return m.updateKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m panelModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "esc":
		if m.filter.Empty() {
			return m, tea.Quit
		}
		m.filter = match.Query{}
		m.input.SetValue("")
		m.reload()

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case "home":
		m.cursor = 0

	case "end":
		m.cursor = max(len(m.rows)-1, 0)

	case "right", "l":
		if row, ok := m.current(); ok && row.item.Collapsible && !m.expanded[row.node.Path] {
			m.expanded[row.node.Path] = true
			m.reload()
		}

	case "left", "h":
		m.collapse()

	case "enter", " ":
		row, ok := m.current()
		if !ok {
			break
		}
		if row.item.Collapsible {
			m.expanded[row.node.Path] = !m.expanded[row.node.Path]
			m.reload()
			break
		}
		return m, m.open(row)

	case "n", "N":
		if _, ok := m.provider.Root(); !ok {
			m.status = "No folder is focused."
			break
		}
		m.creating = tree.File
		if msg.String() == "N" {
			m.creating = tree.Directory
		}
		m.mode = modeCreate
		m.input.Placeholder = fmt.Sprintf("New %s name", m.creating)
		m.input.SetValue("")
		return m, m.input.Focus()

	case "/":
		if _, ok := m.provider.Root(); !ok {
			m.status = "No folder is focused."
			break
		}
		m.mode = modeFilter
		m.input.Placeholder = "Filter: foo ^prefix suffix$ 'word"
		return m, m.input.Focus()

	case "f":
		row, ok := m.current()
		if !ok || !row.item.Collapsible {
			m.status = "Select a folder to focus."
			break
		}
		m.focus(row.node.Path)

	case "y":
		row, ok := m.current()
		if !ok {
			break
		}
		if err := m.copy(row.item.Path); err != nil {
			m.status = fmt.Sprintf("Failed to copy path: %v", err)
			break
		}
		m.status = fmt.Sprintf("Copied %s", row.item.Path)

	case "r":
		m.reload()
		m.status = "Refreshed."

	case "c":
		if err := m.provider.Clear(m.ctx); err != nil {
			m.status = err.Error()
			break
		}
		m.expanded = make(map[string]bool)
		m.reload()
		m.status = "Focus cleared."
	}

	m.ensureCursorVisible()
	m.updateViewportContent()
	return m, nil
}

func (m panelModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		if m.mode == modeFilter {
			m.filter = match.Query{}
			m.input.SetValue("")
			m.reload()
		}
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil

	case "enter":
		mode := m.mode
		m.mode = modeBrowse
		m.input.Blur()
		if mode == modeCreate {
			m.create(m.input.Value())
		}
		m.updateViewportContent()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == modeFilter {
		m.applyFilter(m.input.Value())
	}
	return m, cmd
}

// applyFilter narrows the rows to entries whose path below the root matches
// pattern. An ill-formed pattern keeps the previous filter.
func (m *panelModel) applyFilter(pattern string) {
	q, err := match.Parse(pattern)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
	m.filter = q
	m.cursor = 0
	m.reload()
}

// create makes a new entry next to (or inside) the selected row.
func (m *panelModel) create(name string) {
	var parent *tree.Node
	if row, ok := m.current(); ok {
		n := row.node
		parent = &n
	}

	node, err := m.provider.Create(m.ctx, parent, name, m.creating)
	var exists *tree.ExistsError
	switch {
	case errors.Is(err, tree.ErrNoFocus):
		m.status = "No folder is focused."
		return
	case errors.Is(err, tree.ErrEmptyName):
		m.status = "Name must not be empty."
		return
	case errors.As(err, &exists):
		m.status = fmt.Sprintf("%s already exists.", filepath.Base(exists.Path))
		return
	case err != nil:
		m.status = err.Error()
		return
	}

	dir := filepath.Dir(node.Path)
	root, _ := m.provider.Root()
	for d := dir; d != root && strings.HasPrefix(d, root); d = filepath.Dir(d) {
		m.expanded[d] = true
	}
	m.reload()
	for i, row := range m.rows {
		if row.node.Equal(node) {
			m.cursor = i
		}
	}
	m.ensureCursorVisible()
	m.status = fmt.Sprintf("Created %s %s.", m.creating, node.Name())
}

// focus refocuses the tree on path and records it in the history. The
// provider's reveal request resets the view.
func (m *panelModel) focus(path string) {
	if err := m.provider.Focus(m.ctx, path); err != nil {
		m.status = err.Error()
		return
	}
	if m.store != nil {
		if err := m.store.RecordFocus(m.ctx, path); err != nil {
			m.status = err.Error()
			return
		}
	}
	m.expanded = make(map[string]bool)
	m.filter = match.Query{}
	m.input.SetValue("")
	m.cursor = 0
	m.reload()
	m.status = fmt.Sprintf("Focused %s.", path)
}

// open launches the editor on a file row.
func (m panelModel) open(row panelRow) tea.Cmd {
	if row.item.Command == nil || row.item.Command.Name != tree.CommandOpen {
		return nil
	}
	argv := strings.Fields(m.editor)
	if len(argv) == 0 {
		return nil
	}
	argv = append(argv, row.item.Command.Args...)
	c := exec.Command(argv[0], argv[1:]...)
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return editorDoneMsg{err: err}
	})
}

// collapse closes the selected folder, or moves to the parent row.
func (m *panelModel) collapse() {
	row, ok := m.current()
	if !ok {
		return
	}
	if row.item.Collapsible && m.expanded[row.node.Path] {
		delete(m.expanded, row.node.Path)
		m.reload()
		return
	}
	parent := filepath.Dir(row.node.Path)
	for i := m.cursor - 1; i >= 0; i-- {
		if m.rows[i].node.Path == parent {
			m.cursor = i
			return
		}
	}
}

func (m panelModel) current() (panelRow, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return panelRow{}, false
	}
	return m.rows[m.cursor], true
}

// reload rebuilds the visible rows from the provider. Listing errors are
// shown in the status line.
func (m *panelModel) reload() {
	var selected string
	if row, ok := m.current(); ok {
		selected = row.node.Path
	}

	m.rows = nil
	if root, ok := m.provider.Root(); ok {
		var err error
		if m.filter.Empty() {
			err = m.appendRows(nil, 0)
		} else {
			var walk filterWalk
			err = m.appendMatches(root, nil, &walk)
			if err == nil && walk.truncated {
				m.status = fmt.Sprintf("Filter stopped after %d entries.", walk.visited)
			}
		}
		if err != nil {
			m.status = err.Error()
		}
	}

	m.cursor = min(m.cursor, max(len(m.rows)-1, 0))
	for i, row := range m.rows {
		if row.node.Path == selected {
			m.cursor = i
			break
		}
	}
	m.updateViewportContent()
}

func (m *panelModel) appendRows(parent *tree.Node, depth int) error {
	children, err := m.provider.Children(m.ctx, parent)
	if err != nil {
		return err
	}
	for _, child := range children {
		item, err := m.provider.Describe(m.ctx, child)
		if err != nil {
			// Entry vanished between listing and describing.
			continue
		}
		m.rows = append(m.rows, panelRow{node: child, item: item, depth: depth})
		if item.Collapsible && m.expanded[child.Path] {
			if err := m.appendRows(&child, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

type filterWalk struct {
	visited   int
	truncated bool
}

// appendMatches walks the tree below root and keeps the entries matching
// the filter, labelled with their path below root. Ignored entries are not
// visited past their own stat, and the walk stops after walkLimit entries.
func (m *panelModel) appendMatches(root string, parent *tree.Node, walk *filterWalk) error {
	children, err := m.provider.Children(m.ctx, parent)
	if err != nil {
		return err
	}
	for _, child := range children {
		if walk.visited >= m.walkLimit {
			walk.truncated = true
			return nil
		}
		walk.visited++

		item, err := m.provider.Describe(m.ctx, child)
		if err != nil {
			continue
		}
		if m.ignored(root, child.Path, item.Collapsible) {
			continue
		}
		rel, err := filepath.Rel(root, child.Path)
		if err != nil {
			continue
		}
		if m.filter.Match(rel) {
			item.Label = filepath.ToSlash(rel)
			m.rows = append(m.rows, panelRow{node: child, item: item})
		}
		if item.Collapsible {
			if err := m.appendMatches(root, &child, walk); err != nil {
				return err
			}
		}
	}
	return nil
}

// ignored reports whether the filter walk leaves path out. .git folders
// are always left out, even when the ignore rules cannot be read.
func (m *panelModel) ignored(root, path string, isDir bool) bool {
	if isDir && filepath.Base(path) == ".git" {
		return true
	}
	if m.skip == nil || m.skipRoot != root {
		ig, err := ignore.NewIgnore(root, m.gitignore, m.exclude...)
		if err != nil {
			m.status = err.Error()
			return false
		}
		m.skip, m.skipRoot = ig, root
	}
	skip, err := m.skip.IsIgnored(path, isDir)
	return err == nil && skip
}

var (
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	folderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	headerStyle = lipgloss.NewStyle().Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func (m panelModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := "No folder is focused."
	if root, ok := m.provider.Root(); ok {
		header = root
	}
	headerView := headerStyle.Render(header) + "\n\n"

	footer := statusStyle.Render(m.status)
	if m.mode != modeBrowse {
		footer = m.input.View()
	}
	usageHint := "(↑/↓ move, →/← expand/collapse, Enter open, f focus folder, / filter, y copy path, n new file, N new folder, r refresh, c clear, q quit)"

	return fmt.Sprintf("%s%s\n%s\n%s", headerView, m.viewport.View(), footer, usageHint)
}

// updateViewportContent renders the rows into the viewport.
func (m *panelModel) updateViewportContent() {
	var sb strings.Builder
	for i, row := range m.rows {
		sb.WriteString(m.renderRow(i, row) + "\n")
	}
	m.viewport.SetContent(sb.String())
}

func (m panelModel) renderRow(i int, row panelRow) string {
	cursor := " "
	if i == m.cursor {
		cursor = ">"
	}
	marker := "  "
	label := row.item.Label
	if row.item.Collapsible {
		marker = "▸ "
		if m.expanded[row.node.Path] {
			marker = "▾ "
		}
		label = folderStyle.Render(label + "/")
	}
	line := fmt.Sprintf("%s %s%s%s", cursor, strings.Repeat("  ", row.depth), marker, label)
	if i == m.cursor {
		line = cursorStyle.Render(line)
	}
	return line
}

// ensureCursorVisible makes sure the cursor is visible in the viewport
func (m *panelModel) ensureCursorVisible() {
	if m.viewport.Height <= 0 {
		return
	}
	top := m.viewport.YOffset
	bottom := m.viewport.YOffset + m.viewport.Height - 1
	if m.cursor < top {
		m.viewport.SetYOffset(m.cursor)
	} else if m.cursor > bottom {
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}
