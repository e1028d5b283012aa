package board

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/dori/leadboard/internal/model"
)

// IndexPolicy decides what happens to a target index outside the list bounds
type IndexPolicy int

const (
	// IndexClamp pulls the index into [0, length]; past-the-end appends
	IndexClamp IndexPolicy = iota
	// IndexStrict turns an out-of-range index into a no-op
	IndexStrict
)

// ParseIndexPolicy maps a config value to a policy
func ParseIndexPolicy(s string) (IndexPolicy, error) {
	switch s {
	case "", "clamp":
		return IndexClamp, nil
	case "strict":
		return IndexStrict, nil
	default:
		return IndexClamp, fmt.Errorf("unknown index policy %q", s)
	}
}

func (p IndexPolicy) String() string {
	if p == IndexStrict {
		return "strict"
	}
	return "clamp"
}

// resolve maps target into [0, max] or reports false under IndexStrict
func (p IndexPolicy) resolve(target, max int) (int, bool) {
	if target >= 0 && target <= max {
		return target, true
	}
	if p == IndexStrict {
		return 0, false
	}
	if target < 0 {
		return 0, true
	}
	return max, true
}

// ReorderColumns moves columnID to target within boardID and renumbers the
// board's columns 0..N-1. Columns of other boards are untouched. An unknown
// column, or one that belongs to another board, leaves doc unchanged.
func ReorderColumns(doc model.Document, boardID, columnID string, target int, policy IndexPolicy) (model.Document, bool) {
	seq := columnSequence(doc.Columns, boardID)
	from := slices.Index(seq, columnID)
	if from < 0 {
		return doc, false
	}
	to, ok := policy.resolve(target, len(seq)-1)
	if !ok {
		return doc, false
	}
	seq = splice(seq, from, to)

	doc.Columns = renumberColumns(doc.Columns, seq)
	return doc, true
}

// ReorderTasks moves taskID to target within columnID and renumbers the
// column's tasks 0..N-1
func ReorderTasks(doc model.Document, columnID, taskID string, target int, policy IndexPolicy) (model.Document, bool) {
	seq := taskSequence(doc.Tasks, columnID)
	from := slices.Index(seq, taskID)
	if from < 0 {
		return doc, false
	}
	to, ok := policy.resolve(target, len(seq)-1)
	if !ok {
		return doc, false
	}
	seq = splice(seq, from, to)

	doc.Tasks = renumberTasks(doc.Tasks, map[string][]string{columnID: seq})
	return doc, true
}

// MoveTask moves taskID into targetColumnID at target. When the task already
// lives in targetColumnID this is ReorderTasks. Otherwise the source column is
// renumbered without the task and the target column is renumbered with it, and
// both land in a single replacement of doc.Tasks.
func MoveTask(doc model.Document, taskID, targetColumnID string, target int, policy IndexPolicy) (model.Document, bool) {
	task, ok := doc.FindTask(taskID)
	if !ok {
		return doc, false
	}
	if _, ok := doc.FindColumn(targetColumnID); !ok {
		return doc, false
	}
	sourceColumnID := task.ColumnID
	if sourceColumnID == targetColumnID {
		return ReorderTasks(doc, targetColumnID, taskID, target, policy)
	}

	source := taskSequence(doc.Tasks, sourceColumnID)
	source = slices.DeleteFunc(source, func(id string) bool { return id == taskID })

	dest := taskSequence(doc.Tasks, targetColumnID)
	to, ok := policy.resolve(target, len(dest))
	if !ok {
		return doc, false
	}
	dest = slices.Insert(dest, to, taskID)

	tasks := renumberTasks(doc.Tasks, map[string][]string{
		sourceColumnID: source,
		targetColumnID: dest,
	})
	for i := range tasks {
		if tasks[i].ID == taskID {
			tasks[i].ColumnID = targetColumnID
			break
		}
	}
	doc.Tasks = tasks
	return doc, true
}

// Normalize renumbers every sibling set densely, using the current order as
// the sort key and flat position as the tie-break. It reports whether any
// order value changed.
func Normalize(doc model.Document) (model.Document, bool) {
	changed := false

	boards := map[string][]string{}
	for _, c := range doc.Columns {
		if _, seen := boards[c.BoardID]; !seen {
			boards[c.BoardID] = columnSequence(doc.Columns, c.BoardID)
		}
	}
	columns := slices.Clone(doc.Columns)
	for _, seq := range boards {
		columns = renumberColumns(columns, seq)
	}
	for i := range columns {
		if columns[i].Order != doc.Columns[i].Order {
			changed = true
		}
	}

	groups := map[string][]string{}
	for _, t := range doc.Tasks {
		if _, seen := groups[t.ColumnID]; !seen {
			groups[t.ColumnID] = taskSequence(doc.Tasks, t.ColumnID)
		}
	}
	tasks := renumberTasks(doc.Tasks, groups)
	for i := range tasks {
		if tasks[i].Order != doc.Tasks[i].Order {
			changed = true
		}
	}

	if !changed {
		return doc, false
	}
	doc.Columns = columns
	doc.Tasks = tasks
	return doc, true
}

// CheckOrder returns an error describing the first sibling set whose order
// values are not exactly 0..N-1
func CheckOrder(doc model.Document) error {
	byBoard := map[string][]int{}
	for _, c := range doc.Columns {
		byBoard[c.BoardID] = append(byBoard[c.BoardID], c.Order)
	}
	for boardID, orders := range byBoard {
		if !dense(orders) {
			return fmt.Errorf("columns of board %s have non-dense order %v", boardID, orders)
		}
	}

	byColumn := map[string][]int{}
	for _, t := range doc.Tasks {
		byColumn[t.ColumnID] = append(byColumn[t.ColumnID], t.Order)
	}
	for columnID, orders := range byColumn {
		if !dense(orders) {
			return fmt.Errorf("tasks of column %s have non-dense order %v", columnID, orders)
		}
	}
	return nil
}

func dense(orders []int) bool {
	sorted := slices.Clone(orders)
	slices.Sort(sorted)
	for i, o := range sorted {
		if o != i {
			return false
		}
	}
	return true
}

// splice removes the element at from and reinserts it at to
func splice(seq []string, from, to int) []string {
	out := slices.Clone(seq)
	id := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, id)
}

// columnSequence returns the ids of boardID's columns sorted by order
func columnSequence(columns []model.Column, boardID string) []string {
	type pos struct {
		id    string
		order int
	}
	var items []pos
	for _, c := range columns {
		if c.BoardID == boardID {
			items = append(items, pos{c.ID, c.Order})
		}
	}
	slices.SortStableFunc(items, func(a, b pos) int { return cmp.Compare(a.order, b.order) })

	ids := make([]string, len(items))
	for i, p := range items {
		ids[i] = p.id
	}
	return ids
}

// taskSequence returns the ids of columnID's tasks sorted by order
func taskSequence(tasks []model.Task, columnID string) []string {
	type pos struct {
		id    string
		order int
	}
	var items []pos
	for _, t := range tasks {
		if t.ColumnID == columnID {
			items = append(items, pos{t.ID, t.Order})
		}
	}
	slices.SortStableFunc(items, func(a, b pos) int { return cmp.Compare(a.order, b.order) })

	ids := make([]string, len(items))
	for i, p := range items {
		ids[i] = p.id
	}
	return ids
}

// renumberColumns returns a copy of columns where every id in seq gets its
// sequence position as order. Flat positions are preserved.
func renumberColumns(columns []model.Column, seq []string) []model.Column {
	index := make(map[string]int, len(seq))
	for i, id := range seq {
		index[id] = i
	}
	out := slices.Clone(columns)
	for i := range out {
		if o, ok := index[out[i].ID]; ok {
			out[i].Order = o
		}
	}
	return out
}

// renumberTasks is renumberColumns for tasks, over several sibling sets
func renumberTasks(tasks []model.Task, seqs map[string][]string) []model.Task {
	index := make(map[string]int)
	for _, seq := range seqs {
		for i, id := range seq {
			index[id] = i
		}
	}
	out := slices.Clone(tasks)
	for i := range out {
		if o, ok := index[out[i].ID]; ok {
			out[i].Order = o
		}
	}
	return out
}
