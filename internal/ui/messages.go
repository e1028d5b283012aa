package ui

// View represents the current active view
type View int

const (
	ViewBoards View = iota
	ViewBoard
	ViewHelp
)

// String returns the display name for a view
func (v View) String() string {
	switch v {
	case ViewBoards:
		return "Boards"
	case ViewBoard:
		return "Board"
	case ViewHelp:
		return "Help"
	default:
		return "Unknown"
	}
}

// ErrorMsg contains an error to display
type ErrorMsg struct {
	Err error
}

// StatusMsg contains a status message to display
type StatusMsg struct {
	Message string
}

// SaveFailedMsg is sent by the autosaver when a save did not reach the store.
// The in-memory board is unaffected.
type SaveFailedMsg struct {
	Err error
}

// SavedMsg reports the revision written by the autosaver
type SavedMsg struct {
	Revision int64
}

// ThemeChangedMsg indicates the theme was changed
type ThemeChangedMsg struct {
	ThemeName string
}

// RefreshMsg asks the views to re-read the service after the whole document
// was swapped, as a revert does
type RefreshMsg struct {
	Message string
}
