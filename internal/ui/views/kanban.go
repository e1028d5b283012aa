package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/leadboard/internal/board"
	"github.com/dori/leadboard/internal/model"
	"github.com/dori/leadboard/internal/ui/theme"
)

// KanbanMode represents the current input mode
type KanbanMode int

const (
	KanbanModeNormal KanbanMode = iota
	KanbanModeAddTask
	KanbanModeAddColumn
	KanbanModeEdit
	KanbanModeSearch
	KanbanModeConfirmDeleteTask
	KanbanModeConfirmDeleteColumn
)

const minColumnWidth = 28

// KanbanView renders one board as side-by-side columns
type KanbanView struct {
	svc    *board.Service
	now    func() time.Time
	width  int
	height int

	boardID string
	title   string
	columns []model.Column
	tasks   map[string][]model.Task

	// Navigation state
	currentColumn int
	cursorRow     int

	// Per-column scroll offset, keyed by column id
	columnScroll map[string]int

	// Input mode
	mode      KanbanMode
	textInput textinput.Model

	// Task or column the pending edit/delete refers to
	targetID string

	searchFilter string
}

// NewKanbanView creates a new kanban view
func NewKanbanView(svc *board.Service) KanbanView {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 256

	return KanbanView{
		svc:          svc,
		now:          time.Now,
		tasks:        make(map[string][]model.Task),
		columnScroll: make(map[string]int),
		textInput:    ti,
	}
}

// Init initializes the kanban view
func (v KanbanView) Init() tea.Cmd {
	return nil
}

// SetSize sets the view dimensions
func (v KanbanView) SetSize(width, height int) KanbanView {
	v.width = width
	v.height = height
	return v
}

// Open points the view at boardID and resets navigation
func (v KanbanView) Open(boardID string) KanbanView {
	v.boardID = boardID
	v.currentColumn = 0
	v.cursorRow = 0
	v.mode = KanbanModeNormal
	v.searchFilter = ""
	v.columnScroll = make(map[string]int)
	v.reload()
	return v
}

// Refresh re-reads the board from the service, keeping the cursor in range
func (v KanbanView) Refresh() KanbanView {
	v.reload()
	return v
}

// BoardID returns the id of the board being shown
func (v KanbanView) BoardID() string {
	return v.boardID
}

func (v *KanbanView) reload() {
	b, ok := v.svc.Board(v.boardID)
	if !ok {
		v.title = ""
		v.columns = nil
		v.tasks = make(map[string][]model.Task)
		v.currentColumn, v.cursorRow = 0, 0
		return
	}
	v.title = b.Title
	v.columns = v.svc.Columns(v.boardID)
	v.tasks = make(map[string][]model.Task, len(v.columns))
	for _, c := range v.columns {
		v.tasks[c.ID] = v.svc.Tasks(c.ID)
	}
	if v.currentColumn >= len(v.columns) {
		v.currentColumn = max(len(v.columns)-1, 0)
	}
	v.clampCursor()
}

// Update handles messages
func (v KanbanView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch v.mode {
		case KanbanModeAddTask, KanbanModeAddColumn, KanbanModeEdit:
			return v.handleInputMode(msg)
		case KanbanModeSearch:
			return v.handleSearchMode(msg)
		case KanbanModeConfirmDeleteTask, KanbanModeConfirmDeleteColumn:
			return v.handleConfirmDeleteMode(msg)
		default:
			return v.handleNormalMode(msg)
		}
	}

	if v.IsInputMode() {
		var cmd tea.Cmd
		v.textInput, cmd = v.textInput.Update(msg)
		return v, cmd
	}
	return v, nil
}

// handleNormalMode handles keys in normal mode
func (v KanbanView) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	// Column navigation
	case "h", "left":
		if v.currentColumn > 0 {
			v.currentColumn--
			v.clampCursor()
		}

	case "l", "right":
		if v.currentColumn < len(v.columns)-1 {
			v.currentColumn++
			v.clampCursor()
		}

	// Row navigation
	case "j", "down":
		if v.cursorRow < len(v.visibleTasks(v.currentColumn))-1 {
			v.cursorRow++
			v.ensureCursorVisible()
		}

	case "k", "up":
		if v.cursorRow > 0 {
			v.cursorRow--
			v.ensureCursorVisible()
		}

	case "g":
		v.cursorRow = 0
		v.ensureCursorVisible()

	case "G":
		v.cursorRow = max(len(v.visibleTasks(v.currentColumn))-1, 0)
		v.ensureCursorVisible()

	// Moves
	case "H":
		return v.moveTaskAcross(-1)
	case "L":
		return v.moveTaskAcross(1)
	case "K":
		return v.reorderTask(-1)
	case "J":
		return v.reorderTask(1)
	case "<":
		return v.moveColumn(-1)
	case ">":
		return v.moveColumn(1)

	// Task actions
	case "a":
		if _, ok := v.column(); ok {
			v.startInput(KanbanModeAddTask, "", "New task...", "")
		}

	case "e", "enter":
		if t, ok := v.task(); ok {
			v.startInput(KanbanModeEdit, t.ID, "", t.Title)
		}

	case "p":
		if t, ok := v.task(); ok {
			v.svc.CyclePriority(t.ID)
			v.reload()
		}

	case "d":
		if t, ok := v.task(); ok {
			v.targetID = t.ID
			v.mode = KanbanModeConfirmDeleteTask
		}

	// Column actions
	case "A":
		v.startInput(KanbanModeAddColumn, "", "New column...", "")

	case "x":
		if c, ok := v.column(); ok {
			v.targetID = c.ID
			v.mode = KanbanModeConfirmDeleteColumn
		}

	// Search
	case "/":
		v.mode = KanbanModeSearch
		v.textInput.SetValue(v.searchFilter)
		v.textInput.Placeholder = "Search..."
		v.textInput.Focus()

	case "esc":
		if v.searchFilter != "" {
			v.searchFilter = ""
			v.clampCursor()
			return v, status("Filter cleared")
		}
		return v, func() tea.Msg { return BackMsg{} }
	}

	return v, nil
}

func (v *KanbanView) startInput(mode KanbanMode, target, placeholder, value string) {
	v.mode = mode
	v.targetID = target
	v.textInput.SetValue(value)
	v.textInput.Placeholder = placeholder
	v.textInput.Focus()
	v.textInput.CursorEnd()
}

func (v *KanbanView) endInput() {
	v.mode = KanbanModeNormal
	v.targetID = ""
	v.textInput.Blur()
}

// handleInputMode handles keys while adding or editing
func (v KanbanView) handleInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		text := strings.TrimSpace(v.textInput.Value())
		if text == "" {
			return v, nil
		}
		mode, target := v.mode, v.targetID
		v.endInput()

		switch mode {
		case KanbanModeAddTask:
			c, ok := v.column()
			if !ok {
				return v, nil
			}
			t, ok := v.svc.AddTask(board.TaskInput{ColumnID: c.ID, Title: text})
			v.reload()
			if ok {
				v.searchFilter = ""
				v.focusTask(t.ID)
			}
		case KanbanModeAddColumn:
			c, ok := v.svc.AddColumn(v.boardID, text)
			v.reload()
			if ok {
				v.currentColumn = len(v.columns) - 1
				v.clampCursor()
				return v, status(fmt.Sprintf("Added column %s", c.Title))
			}
		case KanbanModeEdit:
			v.svc.UpdateTask(target, board.TaskPatch{Title: &text})
			v.reload()
		}
		return v, nil

	case "esc":
		v.endInput()
		return v, nil
	}

	var cmd tea.Cmd
	v.textInput, cmd = v.textInput.Update(msg)
	return v, cmd
}

// handleSearchMode handles keys in search mode
func (v KanbanView) handleSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		v.searchFilter = strings.TrimSpace(v.textInput.Value())
		v.mode = KanbanModeNormal
		v.textInput.Blur()
		v.cursorRow = 0
		v.columnScroll = make(map[string]int)
		return v, nil
	}

	var cmd tea.Cmd
	v.textInput, cmd = v.textInput.Update(msg)
	return v, cmd
}

// handleConfirmDeleteMode handles keys in delete confirmation mode
func (v KanbanView) handleConfirmDeleteMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		mode, id := v.mode, v.targetID
		v.mode = KanbanModeNormal
		v.targetID = ""
		if mode == KanbanModeConfirmDeleteColumn {
			v.svc.DeleteColumn(id)
		} else {
			v.svc.DeleteTask(id)
		}
		v.reload()
	case "n", "N", "esc":
		v.mode = KanbanModeNormal
		v.targetID = ""
	}
	return v, nil
}

// moveTaskAcross moves the selected task into the neighbouring column,
// landing at the cursor row of the target column
func (v KanbanView) moveTaskAcross(direction int) (tea.Model, tea.Cmd) {
	if v.searchFilter != "" {
		return v, status("Clear the filter to move tasks")
	}
	t, ok := v.task()
	if !ok {
		return v, nil
	}
	next := v.currentColumn + direction
	if next < 0 || next >= len(v.columns) {
		return v, nil
	}
	target := v.columns[next]
	index := min(v.cursorRow, len(v.tasks[target.ID]))

	if v.svc.MoveTask(t.ID, target.ID, index) {
		v.reload()
		v.currentColumn = next
		v.focusTask(t.ID)
	}
	return v, nil
}

// reorderTask moves the selected task one slot within its column
func (v KanbanView) reorderTask(direction int) (tea.Model, tea.Cmd) {
	if v.searchFilter != "" {
		return v, status("Clear the filter to move tasks")
	}
	t, ok := v.task()
	if !ok {
		return v, nil
	}
	index := v.cursorRow + direction
	if index < 0 || index >= len(v.tasks[t.ColumnID]) {
		return v, nil
	}
	if v.svc.ReorderTask(t.ColumnID, t.ID, index) {
		v.reload()
		v.focusTask(t.ID)
	}
	return v, nil
}

// moveColumn shifts the selected column left or right within the board
func (v KanbanView) moveColumn(direction int) (tea.Model, tea.Cmd) {
	c, ok := v.column()
	if !ok {
		return v, nil
	}
	index := v.currentColumn + direction
	if index < 0 || index >= len(v.columns) {
		return v, nil
	}
	if v.svc.MoveColumn(c.ID, index) {
		v.reload()
		v.currentColumn = index
		v.clampCursor()
	}
	return v, nil
}

// focusTask puts the cursor on taskID if it is visible
func (v *KanbanView) focusTask(taskID string) {
	for ci := range v.columns {
		for ri, t := range v.visibleTasks(ci) {
			if t.ID == taskID {
				v.currentColumn = ci
				v.cursorRow = ri
				v.ensureCursorVisible()
				return
			}
		}
	}
}

func (v KanbanView) column() (model.Column, bool) {
	if v.currentColumn < 0 || v.currentColumn >= len(v.columns) {
		return model.Column{}, false
	}
	return v.columns[v.currentColumn], true
}

func (v KanbanView) task() (model.Task, bool) {
	tasks := v.visibleTasks(v.currentColumn)
	if v.cursorRow < 0 || v.cursorRow >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[v.cursorRow], true
}

// visibleTasks returns tasks for a column after applying the search filter
func (v KanbanView) visibleTasks(colIndex int) []model.Task {
	if colIndex < 0 || colIndex >= len(v.columns) {
		return nil
	}
	tasks := v.tasks[v.columns[colIndex].ID]
	if v.searchFilter == "" {
		return tasks
	}

	needle := strings.ToLower(v.searchFilter)
	var filtered []model.Task
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), needle) ||
			strings.Contains(strings.ToLower(t.Description), needle) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// clampCursor ensures cursor is valid for current column
func (v *KanbanView) clampCursor() {
	n := len(v.visibleTasks(v.currentColumn))
	if v.cursorRow >= n {
		v.cursorRow = max(n-1, 0)
	}
	v.ensureCursorVisible()
}

// ensureCursorVisible adjusts scroll to keep cursor in view
func (v *KanbanView) ensureCursorVisible() {
	c, ok := v.column()
	if !ok {
		return
	}
	visible := v.visibleItemCount()
	scroll := v.columnScroll[c.ID]
	if v.cursorRow >= scroll+visible {
		scroll = v.cursorRow - visible + 1
	}
	if v.cursorRow < scroll {
		scroll = v.cursorRow
	}
	v.columnScroll[c.ID] = scroll
}

// visibleItemCount returns how many cards fit in the column height
func (v KanbanView) visibleItemCount() int {
	// header row, borders, scroll indicators and the footer hint
	available := (v.height - 7) / 2
	if available < 1 {
		return 1
	}
	return available
}

// columnWindow returns the range of columns that fit the terminal width,
// shifted so the current column is always on screen
func (v KanbanView) columnWindow() (start, end, width int) {
	n := len(v.columns)
	if n == 0 {
		return 0, 0, minColumnWidth
	}
	fit := max((v.width-2)/minColumnWidth, 1)
	if fit > n {
		fit = n
	}
	start = 0
	if v.currentColumn >= fit {
		start = v.currentColumn - fit + 1
	}
	width = max((v.width-2)/fit, minColumnWidth) - 2
	return start, start + fit, width
}

// View renders the kanban board
func (v KanbanView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}

	t := theme.Current.Theme
	styles := theme.Current.Styles

	if v.title == "" {
		return styles.Placeholder.Render("Board not found. Press esc to go back.")
	}

	start, end, colWidth := v.columnWindow()
	visible := v.visibleItemCount()
	now := v.now()

	var cols []string
	for i := start; i < end; i++ {
		c := v.columns[i]
		tasks := v.visibleTasks(i)
		active := i == v.currentColumn

		header := fmt.Sprintf("%s (%d)", c.Title, len(tasks))
		if total := len(v.tasks[c.ID]); total != len(tasks) {
			header = fmt.Sprintf("%s (%d/%d)", c.Title, len(tasks), total)
		}
		headerStyle := styles.ColumnTitle.Width(colWidth - 2)
		if active {
			headerStyle = headerStyle.Foreground(t.ColumnActive)
		}

		items := []string{headerStyle.Render(header)}

		scroll := v.columnScroll[c.ID]
		from := min(scroll, len(tasks))
		to := min(scroll+visible, len(tasks))

		if scroll > 0 {
			items = append(items, lipgloss.NewStyle().
				Foreground(t.Subtle).
				Width(colWidth-2).
				Align(lipgloss.Center).
				Render(fmt.Sprintf("↑ %d more", scroll)))
		}

		for j := from; j < to; j++ {
			items = append(items, v.renderCard(tasks[j], colWidth-2, active && j == v.cursorRow, now))
		}

		if to < len(tasks) {
			items = append(items, lipgloss.NewStyle().
				Foreground(t.Subtle).
				Width(colWidth-2).
				Align(lipgloss.Center).
				Render(fmt.Sprintf("↓ %d more", len(tasks)-to)))
		}
		if len(tasks) == 0 {
			items = append(items, lipgloss.NewStyle().Foreground(t.Subtle).Italic(true).Render("(empty)"))
		}

		cs := styles.Column
		if active {
			cs = styles.ColumnFocused
		}
		cols = append(cols, cs.Width(colWidth).Height(v.height-3).Render(strings.Join(items, "\n")))
	}

	var body string
	if len(cols) == 0 {
		body = styles.Placeholder.Render("This board has no columns. Press A to add one.")
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	}

	heading := v.title
	if len(v.columns) > end-start {
		heading += fmt.Sprintf("  [%d-%d/%d]", start+1, end, len(v.columns))
	}
	title := styles.Title.Render(heading)

	return lipgloss.JoinVertical(lipgloss.Left, title, body, v.renderFooter())
}

// renderCard renders a single task card: priority, title, then a meta line
// with labels, due date and checklist progress
func (v KanbanView) renderCard(task model.Task, width int, selected bool, now time.Time) string {
	t := theme.Current.Theme
	styles := theme.Current.Styles

	style := styles.Card.Width(width)
	switch {
	case selected:
		style = styles.CardSelected.Width(width)
	case task.IsOverdue(now):
		style = styles.CardOverdue.Width(width)
	}

	var glyph string
	switch task.Priority {
	case model.PriorityHigh:
		glyph = "▲"
	case model.PriorityLow:
		glyph = "▽"
	default:
		glyph = "●"
	}
	prio := lipgloss.NewStyle().Foreground(t.PriorityColor(task.Priority)).Render(glyph)

	title := task.Title
	if limit := width - 4; limit > 3 && len([]rune(title)) > limit {
		title = string([]rune(title)[:limit-3]) + "..."
	}

	var meta []string
	for _, l := range task.Labels {
		if model.IsColorLabel(l) {
			meta = append(meta, lipgloss.NewStyle().Foreground(lipgloss.Color(l)).Render("●"))
		} else {
			meta = append(meta, styles.Label.Render(l))
		}
	}
	if task.DueDate != nil {
		due := styles.DueDate
		if task.IsOverdue(now) {
			due = due.Foreground(t.Error)
		}
		meta = append(meta, due.Render(task.DueDate.Format("Jan 2")))
	}
	if len(task.Checklist) > 0 {
		meta = append(meta, lipgloss.NewStyle().Foreground(t.Subtle).
			Render(fmt.Sprintf("☑ %d%%", task.ChecklistProgress())))
	}

	content := prio + " " + title
	if len(meta) > 0 {
		content += "\n  " + strings.Join(meta, " ")
	}
	return style.Render(content)
}

func (v KanbanView) renderFooter() string {
	t := theme.Current.Theme

	inputStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(0, 1).
		Width(max(v.width-4, 20))
	confirmStyle := lipgloss.NewStyle().Foreground(t.Error).Bold(true)

	switch v.mode {
	case KanbanModeAddTask:
		return inputStyle.Render("Add task: " + v.textInput.View())
	case KanbanModeAddColumn:
		return inputStyle.Render("Add column: " + v.textInput.View())
	case KanbanModeEdit:
		return inputStyle.Render("Edit: " + v.textInput.View())
	case KanbanModeSearch:
		return inputStyle.Render("Search: " + v.textInput.View())
	case KanbanModeConfirmDeleteTask:
		title := ""
		if task, ok := v.task(); ok {
			title = task.Title
		}
		return confirmStyle.Render(fmt.Sprintf("Delete '%s'? (y/n)", title))
	case KanbanModeConfirmDeleteColumn:
		title := ""
		if c, ok := v.column(); ok {
			title = c.Title
		}
		return confirmStyle.Render(fmt.Sprintf("Delete column '%s' and its tasks? (y/n)", title))
	}

	if v.searchFilter != "" {
		return lipgloss.NewStyle().Foreground(t.Info).Render(fmt.Sprintf("[Search: %s] ", v.searchFilter)) +
			lipgloss.NewStyle().Foreground(t.Subtle).Render("esc: clear")
	}
	return ""
}

// IsInputMode returns whether the view is in input mode
func (v KanbanView) IsInputMode() bool {
	return v.mode != KanbanModeNormal
}
