package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the application
type KeyMap struct {
	// Navigation
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Open  key.Binding
	Back  key.Binding

	// Ordering
	MoveTaskLeft  key.Binding
	MoveTaskRight key.Binding
	MoveTaskUp    key.Binding
	MoveTaskDown  key.Binding
	MoveColLeft   key.Binding
	MoveColRight  key.Binding

	// Task actions
	AddTask      key.Binding
	EditTask     key.Binding
	Priority     key.Binding
	DeleteTask   key.Binding
	AddColumn    key.Binding
	DeleteColumn key.Binding

	// Board actions
	AddBoard key.Binding
	Rename   key.Binding
	Favorite key.Binding
	Archive  key.Binding

	// General
	Help       key.Binding
	ThemeCycle key.Binding
	Revert     key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "column left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "column right"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open board"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),

		MoveTaskLeft: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "task to left column"),
		),
		MoveTaskRight: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "task to right column"),
		),
		MoveTaskUp: key.NewBinding(
			key.WithKeys("K"),
			key.WithHelp("K", "task up"),
		),
		MoveTaskDown: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J", "task down"),
		),
		MoveColLeft: key.NewBinding(
			key.WithKeys("<"),
			key.WithHelp("<", "column left"),
		),
		MoveColRight: key.NewBinding(
			key.WithKeys(">"),
			key.WithHelp(">", "column right"),
		),

		AddTask: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add task"),
		),
		EditTask: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit title"),
		),
		Priority: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "cycle priority"),
		),
		DeleteTask: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		AddColumn: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "add column"),
		),
		DeleteColumn: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "delete column"),
		),

		AddBoard: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add board"),
		),
		Rename: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rename"),
		),
		Favorite: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "favorite"),
		),
		Archive: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "archive"),
		),

		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		ThemeCycle: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "theme"),
		),
		Revert: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "revert last save"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns short help bindings (for status bar)
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns full help bindings (for help view)
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Open, k.Back},
		{k.MoveTaskLeft, k.MoveTaskRight, k.MoveTaskUp, k.MoveTaskDown, k.MoveColLeft, k.MoveColRight},
		{k.AddTask, k.EditTask, k.Priority, k.DeleteTask, k.AddColumn, k.DeleteColumn},
		{k.AddBoard, k.Rename, k.Favorite, k.Archive},
		{k.Help, k.ThemeCycle, k.Revert, k.Quit},
	}
}
