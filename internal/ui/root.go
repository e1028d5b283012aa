package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/leadboard/internal/app"
	"github.com/dori/leadboard/internal/ui/theme"
	"github.com/dori/leadboard/internal/ui/views"
)

// RootModel is the main application model that manages views
type RootModel struct {
	app    *app.App
	keys   KeyMap
	help   help.Model
	width  int
	height int

	currentView View
	boardsView  views.BoardsView
	kanbanView  views.KanbanView
	helpVisible bool

	// Status message
	statusMsg string
	errorMsg  string
}

// NewRootModel creates a new root model. The favorite leads board, if any,
// is opened directly.
func NewRootModel(application *app.App) RootModel {
	h := help.New()
	h.ShowAll = true

	if name := application.Config.Theme; name != "" {
		if t, ok := theme.ByName(name); ok {
			theme.SetTheme(t)
		}
	}

	svc := application.Service
	m := RootModel{
		app:         application,
		keys:        DefaultKeyMap(),
		help:        h,
		currentView: ViewBoards,
		boardsView:  views.NewBoardsView(svc),
		kanbanView:  views.NewKanbanView(svc),
	}
	if boards := svc.Boards(); len(boards) > 0 && boards[0].IsFavorite {
		m.kanbanView = m.kanbanView.Open(boards[0].ID)
		m.currentView = ViewBoard
	}
	return m
}

// revertTimeout bounds the flush and restore behind a revert
const revertTimeout = 10 * time.Second

// Init reports overdue tasks on start
func (m RootModel) Init() tea.Cmd {
	doc := m.app.Service.Snapshot()
	now := time.Now()
	overdue := 0
	for i := range doc.Tasks {
		if doc.Tasks[i].IsOverdue(now) {
			overdue++
		}
	}
	if overdue == 0 {
		return nil
	}
	return func() tea.Msg {
		return StatusMsg{Message: fmt.Sprintf("%d overdue tasks", overdue)}
	}
}

func (m RootModel) isInputMode() bool {
	switch m.currentView {
	case ViewBoards:
		return m.boardsView.IsInputMode()
	case ViewBoard:
		return m.kanbanView.IsInputMode()
	}
	return false
}

// Update handles messages
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		// Reserve space for header (1 line) and footer (3 lines)
		contentHeight := m.height - 4
		m.boardsView = m.boardsView.SetSize(m.width, contentHeight)
		m.kanbanView = m.kanbanView.SetSize(m.width, contentHeight)
		return m, nil

	case tea.KeyMsg:
		// Clear the status on any keypress; a save error stays until the next save
		m.statusMsg = ""

		isInputMode := m.isInputMode()

		switch {
		case key.Matches(msg, m.keys.Quit):
			// ctrl+c always quits, but 'q' only quits when not in input mode
			if msg.String() == "ctrl+c" || !isInputMode {
				return m, tea.Quit
			}

		case key.Matches(msg, m.keys.ThemeCycle):
			return m, m.cycleTheme()
		}

		if m.helpVisible {
			if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) {
				m.helpVisible = false
			}
			return m, nil
		}

		if !isInputMode && key.Matches(msg, m.keys.Help) {
			m.helpVisible = true
			return m, nil
		}

		if !isInputMode && key.Matches(msg, m.keys.Revert) {
			return m, m.revert()
		}

	case views.OpenBoardMsg:
		m.kanbanView = m.kanbanView.Open(msg.BoardID)
		m.currentView = ViewBoard
		return m, nil

	case views.BackMsg:
		m.boardsView = m.boardsView.Refresh()
		m.currentView = ViewBoards
		return m, nil

	case SaveFailedMsg:
		m.errorMsg = fmt.Sprintf("Save failed: %v (changes are kept in memory)", msg.Err)
		return m, nil

	case SavedMsg:
		m.errorMsg = ""
		return m, nil

	case RefreshMsg:
		m.boardsView = m.boardsView.Refresh()
		m.kanbanView = m.kanbanView.Refresh()
		if _, ok := m.app.Service.Board(m.kanbanView.BoardID()); !ok && m.currentView == ViewBoard {
			m.currentView = ViewBoards
		}
		m.errorMsg = ""
		m.statusMsg = msg.Message
		return m, nil

	case ErrorMsg:
		m.errorMsg = msg.Err.Error()
		return m, nil

	case StatusMsg:
		m.statusMsg = msg.Message
		return m, nil

	case ThemeChangedMsg:
		m.statusMsg = fmt.Sprintf("Theme: %s", msg.ThemeName)
		return m, nil
	}

	if s, ok := views.Status(msg); ok {
		m.statusMsg = s
		return m, nil
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch m.currentView {
	case ViewBoards:
		var next tea.Model
		next, cmd = m.boardsView.Update(msg)
		m.boardsView = next.(views.BoardsView)
	case ViewBoard:
		var next tea.Model
		next, cmd = m.kanbanView.Update(msg)
		m.kanbanView = next.(views.KanbanView)
	}
	return m, cmd
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	contentHeight := m.height - 4
	if m.errorMsg != "" || m.statusMsg != "" {
		contentHeight--
	}

	var content string
	switch {
	case m.helpVisible:
		content = m.renderHelp()
	case m.currentView == ViewBoard:
		content = m.kanbanView.View()
	default:
		content = m.boardsView.View()
	}

	// Ensure content fills available space
	contentLines := strings.Count(content, "\n") + 1
	if contentLines < contentHeight {
		content += strings.Repeat("\n", contentHeight-contentLines)
	}
	sections = append(sections, content)
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

// renderHeader renders the header bar
func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	title := styles.Header.Render("leadboard")

	viewStyle := lipgloss.NewStyle().
		Foreground(t.Subtle).
		Padding(0, 1)
	current := m.currentView
	if m.helpVisible {
		current = ViewHelp
	}
	viewIndicator := viewStyle.Render(fmt.Sprintf("[%s]", current.String()))

	right := fmt.Sprintf("theme: %s", t.Name)
	if m.app.Autosaver != nil {
		if rev := m.app.Autosaver.Revision(); rev > 0 {
			right = fmt.Sprintf("rev %d · %s", rev, right)
		}
	}
	rightSide := viewStyle.Render(right)

	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, title, viewIndicator)
	gap := max(m.width-lipgloss.Width(leftSide)-lipgloss.Width(rightSide), 0)
	return leftSide + strings.Repeat(" ", gap) + rightSide
}

// renderFooter renders the footer/status bar
func (m RootModel) renderFooter() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	k := func(keys, desc string) string {
		return styles.HelpKey.Render(keys) + styles.HelpDesc.Render(" "+desc)
	}
	sep := styles.HelpSeparator.Render(" │ ")

	var statusLine string
	if m.errorMsg != "" {
		statusLine = lipgloss.NewStyle().Foreground(t.Error).Render(m.errorMsg)
	} else if m.statusMsg != "" {
		statusLine = lipgloss.NewStyle().Foreground(t.Info).Render(m.statusMsg)
	}

	var line1, line2 string
	switch {
	case m.helpVisible:
		line1 = k("?/esc", "close help")
	case m.isInputMode():
		line1 = k("enter", "confirm") + sep + k("esc", "cancel")
	case m.currentView == ViewBoard:
		line1 = k("h/l", "columns") + sep +
			k("j/k", "tasks") + sep +
			k("H/L", "move across") + sep +
			k("J/K", "reorder") + sep +
			k("</>", "move column")
		line2 = k("a", "add") + sep +
			k("e", "edit") + sep +
			k("p", "priority") + sep +
			k("d", "delete") + sep +
			k("A/x", "add/del column") + sep +
			k("esc", "boards") + sep +
			k("?", "help")
	default:
		line1 = k("j/k", "navigate") + sep +
			k("enter", "open") + sep +
			k("a", "add") + sep +
			k("r", "rename") + sep +
			k("d", "delete")
		line2 = k("f", "favorite") + sep +
			k("z", "archive") + sep +
			k("u", "revert") + sep +
			k("ctrl+t", "theme") + sep +
			k("?", "help") + sep +
			k("q", "quit")
	}

	var lines []string
	if statusLine != "" {
		lines = append(lines, statusLine)
	}
	if line1 != "" {
		lines = append(lines, line1)
	}
	if line2 != "" {
		lines = append(lines, line2)
	}
	return strings.Join(lines, "\n")
}

// renderHelp renders the help overlay from the key map
func (m RootModel) renderHelp() string {
	t := theme.Current.Theme
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		MarginBottom(1)

	return titleStyle.Render("leadboard help") + "\n\n" + m.help.View(m.keys)
}

// cycleTheme cycles through available themes
func (m RootModel) cycleTheme() tea.Cmd {
	themes := theme.Available()
	current := theme.Current.Theme.Name

	for i, t := range themes {
		if t.Name == current {
			next := themes[(i+1)%len(themes)]
			theme.SetTheme(next)
			return func() tea.Msg { return ThemeChangedMsg{ThemeName: next.Name} }
		}
	}
	return nil
}

// revert restores the revision saved before the newest one. Pressing it
// again reverts the revert.
func (m RootModel) revert() tea.Cmd {
	a := m.app
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), revertTimeout)
		defer cancel()

		if err := a.Autosaver.Flush(ctx); err != nil {
			return ErrorMsg{Err: fmt.Errorf("revert: %w", err)}
		}
		revs, err := a.History(ctx, 2)
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("revert: %w", err)}
		}
		if len(revs) < 2 {
			return StatusMsg{Message: "Nothing to revert"}
		}
		target := revs[1].Revision
		rev, err := a.Restore(ctx, target)
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("revert: %w", err)}
		}
		return RefreshMsg{Message: fmt.Sprintf("Reverted to revision %d (saved as %d)", target, rev)}
	}
}
