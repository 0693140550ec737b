// Package tui provides a Bubble Tea browser for the batches under a root.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/relapse/internal/render"
	"github.com/fakeyudi/relapse/internal/selection"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("237"))

	rowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	countStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("178"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("238")).
			PaddingLeft(1)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Loader produces the filtered batches, most recent first.
type Loader func() ([]selection.Selection, error)

type loadedMsg struct {
	batches []selection.Selection
	err     error
}

// Model is the root Bubble Tea model for the browser.
type Model struct {
	root    string
	load    Loader
	watcher *Watcher
	now     func() time.Time
	batches []selection.Selection
	cursor  int
	chosen  int
	files   viewport.Model
	width   int
	height  int
	ready   bool
	err     error
	reloads int
}

// New creates a browser model. watcher may be nil.
func New(root string, load Loader, watcher *Watcher) Model {
	return Model{
		root:    root,
		load:    load,
		watcher: watcher,
		now:     time.Now,
		chosen:  -1,
	}
}

// Chosen returns the batch picked with enter, if any.
func (m Model) Chosen() (*selection.Selection, bool) {
	if m.chosen < 0 || m.chosen >= len(m.batches) {
		return nil, false
	}
	return &m.batches[m.chosen], true
}

func (m Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		b, err := m.load()
		return loadedMsg{batches: b, err: err}
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadCmd()}
	if m.watcher != nil {
		cmds = append(cmds, m.watcher.next())
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if len(m.batches) > 0 {
				m.chosen = m.cursor
			}
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.refreshFiles()
			}
			return m, nil
		case "down", "j":
			if m.cursor < len(m.batches)-1 {
				m.cursor++
				m.refreshFiles()
			}
			return m, nil
		case "r":
			return m, m.loadCmd()
		}
		var cmd tea.Cmd
		m.files, cmd = m.files.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.files = viewport.New(m.filesWidth(), m.bodyHeight())
		m.refreshFiles()
		return m, nil

	case loadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.batches = msg.batches
			m.reloads++
			if m.cursor >= len(m.batches) {
				m.cursor = max(0, len(m.batches)-1)
			}
			m.refreshFiles()
		}
		return m, nil

	case changedMsg:
		return m, tea.Batch(m.loadCmd(), m.watcher.next())

	case watchErrMsg:
		m.err = msg.err
		return m, m.watcher.next()
	}
	return m, nil
}

func (m Model) listWidth() int {
	w := m.width * 2 / 5
	if w < 20 {
		w = 20
	}
	return w
}

func (m Model) filesWidth() int {
	w := m.width - m.listWidth() - 2
	if w < 10 {
		w = 10
	}
	return w
}

func (m Model) bodyHeight() int {
	h := m.height - 2
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) refreshFiles() {
	if !m.ready {
		return
	}
	if len(m.batches) == 0 {
		m.files.SetContent(rowStyle.Render("(no files)"))
		return
	}
	var sb strings.Builder
	for _, f := range m.batches[m.cursor].Files {
		sb.WriteString(filepath.ToSlash(f.Relative))
		sb.WriteString("\n")
	}
	m.files.SetContent(sb.String())
	m.files.GotoTop()
}

func (m Model) renderList() string {
	var rows []string
	now := m.now()
	for i, b := range m.batches {
		label := fmt.Sprintf("%2d  %s  %s", i, render.Human(b.Batch.Min, now), countStyle.Render(fmt.Sprintf("%d", len(b.Files))))
		if i == m.cursor {
			rows = append(rows, selectedRowStyle.Width(m.listWidth()).Render(label))
		} else {
			rows = append(rows, rowStyle.Render(label))
		}
	}
	if len(rows) == 0 {
		rows = append(rows, rowStyle.Render("no batches"))
	}
	// Keep the cursor on screen.
	h := m.bodyHeight()
	start := 0
	if m.cursor >= h {
		start = m.cursor - h + 1
	}
	end := min(len(rows), start+h)
	return lipgloss.NewStyle().Width(m.listWidth()).Height(h).Render(strings.Join(rows[start:end], "\n"))
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	header := "  relapse  " + m.root
	if len(m.batches) > 0 {
		b := m.batches[m.cursor].Batch
		header += "  " + render.Window(b.Min, b.Max, m.now())
	}
	title := titleStyle.Width(m.width).Render(header)

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderList(), paneStyle.Render(m.files.View()))

	hint := "↑/↓ batch  pgup/pgdn scroll  enter print  r rescan  q quit"
	if m.watcher != nil {
		hint += fmt.Sprintf("  watching (%d scans)", m.reloads)
	}
	status := statusBarStyle.Width(m.width).Render(hint)
	if m.err != nil {
		status = statusBarStyle.Width(m.width).Render(errStyle.Render("error: " + m.err.Error()))
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, body, status)
}

// Run starts the browser and returns the final model.
func Run(m Model) (Model, error) {
	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return m, err
	}
	return final.(Model), nil
}
