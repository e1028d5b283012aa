package views

// OpenBoardMsg asks the root model to show a board
type OpenBoardMsg struct {
	BoardID string
}

// BackMsg asks the root model to return to the boards list
type BackMsg struct{}

// statusMsg is surfaced by the root model's status line
type statusMsg string

// Status returns the text of a view status message, if msg is one
func Status(msg any) (string, bool) {
	s, ok := msg.(statusMsg)
	return string(s), ok
}
