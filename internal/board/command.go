package board

import (
	"github.com/dori/leadboard/internal/model"
)

// ElementType names what a drag gesture picked up
type ElementType string

const (
	ElementColumn ElementType = "column"
	ElementTask   ElementType = "task"
)

// Move is the tuple a drag interaction hands to the board: the element that
// was dropped, the container it was dropped into, and the index it landed at.
// For columns the container is a board; for tasks it is a column.
type Move struct {
	ElementID         string      `json:"elementId"`
	ElementType       ElementType `json:"elementType"`
	TargetContainerID string      `json:"targetContainerId"`
	TargetIndex       int         `json:"targetIndex"`
}

// Apply returns the document that results from m. Columns cannot change
// boards, so a column dropped into a board other than its own is a no-op, as
// is any move naming an unknown element or container.
func Apply(doc model.Document, m Move, policy IndexPolicy) (model.Document, bool) {
	switch m.ElementType {
	case ElementColumn:
		col, ok := doc.FindColumn(m.ElementID)
		if !ok || col.BoardID != m.TargetContainerID {
			return doc, false
		}
		return ReorderColumns(doc, m.TargetContainerID, m.ElementID, m.TargetIndex, policy)
	case ElementTask:
		return MoveTask(doc, m.ElementID, m.TargetContainerID, m.TargetIndex, policy)
	default:
		return doc, false
	}
}
