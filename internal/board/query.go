package board

import (
	"github.com/dori/leadboard/internal/model"
)

// ColumnsOf returns copies of boardID's columns in display order. Order values
// on the copies are renumbered 0..N-1 so readers never see drift even if the
// stored document carries gaps or duplicates.
func ColumnsOf(doc model.Document, boardID string) []model.Column {
	seq := columnSequence(doc.Columns, boardID)
	out := make([]model.Column, 0, len(seq))
	for i, id := range seq {
		c, _ := doc.FindColumn(id)
		col := *c
		col.Order = i
		out = append(out, col)
	}
	return out
}

// TasksOf returns copies of columnID's tasks in display order, renumbered like
// ColumnsOf
func TasksOf(doc model.Document, columnID string) []model.Task {
	seq := taskSequence(doc.Tasks, columnID)
	out := make([]model.Task, 0, len(seq))
	for i, id := range seq {
		t, _ := doc.FindTask(id)
		task := t.Clone()
		task.Order = i
		out = append(out, task)
	}
	return out
}

// FirstColumn returns the lowest-ordered column of boardID
func FirstColumn(doc model.Document, boardID string) (model.Column, bool) {
	cols := ColumnsOf(doc, boardID)
	if len(cols) == 0 {
		return model.Column{}, false
	}
	return cols[0], true
}
