package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/leadboard/internal/board"
	"github.com/dori/leadboard/internal/model"
	"github.com/dori/leadboard/internal/ui/theme"
)

// BoardsMode represents the current input mode of the boards list
type BoardsMode int

const (
	BoardsModeNormal BoardsMode = iota
	BoardsModeAdd
	BoardsModeRename
	BoardsModeConfirmDelete
)

// BoardsView lists the boards of the document
type BoardsView struct {
	svc    *board.Service
	width  int
	height int

	boards []model.Board
	cursor int

	mode      BoardsMode
	textInput textinput.Model
	targetID  string
}

// NewBoardsView creates a new boards view
func NewBoardsView(svc *board.Service) BoardsView {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 128

	v := BoardsView{
		svc:       svc,
		textInput: ti,
	}
	v.reload()
	return v
}

// Init initializes the boards view
func (v BoardsView) Init() tea.Cmd {
	return nil
}

// SetSize sets the view dimensions
func (v BoardsView) SetSize(width, height int) BoardsView {
	v.width = width
	v.height = height
	return v
}

// Refresh re-reads the boards from the service
func (v BoardsView) Refresh() BoardsView {
	v.reload()
	return v
}

func (v *BoardsView) reload() {
	v.boards = v.svc.Boards()
	if v.cursor >= len(v.boards) {
		v.cursor = max(len(v.boards)-1, 0)
	}
}

// Selected returns the board under the cursor
func (v BoardsView) Selected() (model.Board, bool) {
	if v.cursor < 0 || v.cursor >= len(v.boards) {
		return model.Board{}, false
	}
	return v.boards[v.cursor], true
}

// Update handles messages
func (v BoardsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if v.mode == BoardsModeAdd || v.mode == BoardsModeRename {
			var cmd tea.Cmd
			v.textInput, cmd = v.textInput.Update(msg)
			return v, cmd
		}
		return v, nil
	}

	switch v.mode {
	case BoardsModeAdd, BoardsModeRename:
		return v.handleInputMode(keyMsg)
	case BoardsModeConfirmDelete:
		return v.handleConfirmDeleteMode(keyMsg)
	default:
		return v.handleNormalMode(keyMsg)
	}
}

func (v BoardsView) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if v.cursor < len(v.boards)-1 {
			v.cursor++
		}
	case "k", "up":
		if v.cursor > 0 {
			v.cursor--
		}
	case "g":
		v.cursor = 0
	case "G":
		v.cursor = max(len(v.boards)-1, 0)

	case "enter":
		if b, ok := v.Selected(); ok {
			return v, func() tea.Msg { return OpenBoardMsg{BoardID: b.ID} }
		}

	case "a":
		v.mode = BoardsModeAdd
		v.textInput.SetValue("")
		v.textInput.Placeholder = board.DefaultBoardTitle
		v.textInput.Focus()

	case "r":
		if b, ok := v.Selected(); ok {
			v.mode = BoardsModeRename
			v.targetID = b.ID
			v.textInput.SetValue(b.Title)
			v.textInput.Placeholder = ""
			v.textInput.Focus()
			v.textInput.CursorEnd()
		}

	case "f":
		if b, ok := v.Selected(); ok {
			fav := !b.IsFavorite
			v.svc.UpdateBoard(b.ID, board.BoardPatch{IsFavorite: &fav})
			v.reload()
			v.follow(b.ID)
		}

	case "z":
		if b, ok := v.Selected(); ok {
			archived := !b.IsArchived
			v.svc.UpdateBoard(b.ID, board.BoardPatch{IsArchived: &archived})
			v.reload()
			if archived {
				return v, status(fmt.Sprintf("Archived %s", b.Title))
			}
			return v, status(fmt.Sprintf("Restored %s", b.Title))
		}

	case "d":
		if b, ok := v.Selected(); ok {
			v.targetID = b.ID
			v.mode = BoardsModeConfirmDelete
		}
	}
	return v, nil
}

func (v BoardsView) handleInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		title := strings.TrimSpace(v.textInput.Value())
		mode, id := v.mode, v.targetID
		v.mode = BoardsModeNormal
		v.targetID = ""
		v.textInput.Blur()

		if mode == BoardsModeAdd {
			b := v.svc.AddBoard(board.BoardInput{Title: title})
			v.reload()
			v.follow(b.ID)
			return v, status(fmt.Sprintf("Created %s", b.Title))
		}
		if title != "" {
			v.svc.UpdateBoard(id, board.BoardPatch{Title: &title})
			v.reload()
		}
		return v, nil

	case "esc":
		v.mode = BoardsModeNormal
		v.targetID = ""
		v.textInput.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.textInput, cmd = v.textInput.Update(msg)
	return v, cmd
}

func (v BoardsView) handleConfirmDeleteMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id := v.targetID
		v.mode = BoardsModeNormal
		v.targetID = ""
		if v.svc.DeleteBoard(id) {
			v.reload()
			return v, status("Board deleted")
		}
	case "n", "N", "esc":
		v.mode = BoardsModeNormal
		v.targetID = ""
	}
	return v, nil
}

// follow moves the cursor onto board id after a reorder of the list
func (v *BoardsView) follow(id string) {
	for i, b := range v.boards {
		if b.ID == id {
			v.cursor = i
			return
		}
	}
}

// View renders the boards list
func (v BoardsView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}

	t := theme.Current.Theme
	styles := theme.Current.Styles

	var lines []string
	lines = append(lines, styles.Title.Render("Boards"))
	lines = append(lines, "")

	if len(v.boards) == 0 {
		lines = append(lines, styles.Placeholder.Render("No boards yet. Press a to create one."))
	}

	for i, b := range v.boards {
		marker := "  "
		if b.IsFavorite {
			marker = lipgloss.NewStyle().Foreground(t.Favorite).Render("★ ")
		}
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(b.Color)).Render("■")

		cols := v.svc.Columns(b.ID)
		tasks := 0
		for _, c := range cols {
			tasks += len(v.svc.Tasks(c.ID))
		}
		meta := styles.Subtitle.Render(fmt.Sprintf("  %d columns · %d tasks", len(cols), tasks))

		style := styles.BoardNormal
		switch {
		case i == v.cursor:
			style = styles.BoardSelected
		case b.IsArchived:
			style = styles.BoardArchived
		}
		title := b.Title
		if b.IsArchived {
			title += " (archived)"
		}
		lines = append(lines, marker+swatch+" "+style.Render(title)+meta)
	}

	content := strings.Join(lines, "\n")

	inputStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(0, 1).
		Width(max(v.width-4, 20))

	var footer string
	switch v.mode {
	case BoardsModeAdd:
		footer = inputStyle.Render("New board: " + v.textInput.View())
	case BoardsModeRename:
		footer = inputStyle.Render("Rename: " + v.textInput.View())
	case BoardsModeConfirmDelete:
		title := ""
		if b, ok := v.Selected(); ok {
			title = b.Title
		}
		footer = lipgloss.NewStyle().Foreground(t.Error).Bold(true).
			Render(fmt.Sprintf("Delete '%s' with all its columns and tasks? (y/n)", title))
	}
	if footer == "" {
		return content
	}
	return lipgloss.JoinVertical(lipgloss.Left, content, "", footer)
}

// IsInputMode returns whether the view is capturing keystrokes
func (v BoardsView) IsInputMode() bool {
	return v.mode != BoardsModeNormal
}

func status(s string) tea.Cmd {
	return func() tea.Msg { return statusMsg(s) }
}
