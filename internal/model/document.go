package model

// Document is the serialized CRM state: flat collections tied together by
// boardId/columnId back-references
type Document struct {
	Boards  []Board  `json:"boards"`
	Columns []Column `json:"columns"`
	Tasks   []Task   `json:"tasks"`
}

// Clone returns a deep copy of the document so callers can hold a snapshot
// without aliasing the live state
func (d Document) Clone() Document {
	out := Document{
		Boards:  cloneSlice(d.Boards),
		Columns: cloneSlice(d.Columns),
	}
	if d.Tasks != nil {
		out.Tasks = make([]Task, len(d.Tasks))
		for i, t := range d.Tasks {
			out.Tasks[i] = t.Clone()
		}
	}
	return out
}

// Clone returns a copy of the task with its own slices and pointers
func (t Task) Clone() Task {
	c := t
	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	if t.ResponsibleID != nil {
		r := *t.ResponsibleID
		c.ResponsibleID = &r
	}
	c.Labels = cloneSlice(t.Labels)
	c.Checklist = cloneSlice(t.Checklist)
	c.Comments = cloneSlice(t.Comments)
	c.Attachments = cloneSlice(t.Attachments)
	return c
}

// cloneSlice copies s, keeping nil and empty distinct
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

// FindBoard returns the board with the given id
func (d *Document) FindBoard(id string) (*Board, bool) {
	for i := range d.Boards {
		if d.Boards[i].ID == id {
			return &d.Boards[i], true
		}
	}
	return nil, false
}

// FindColumn returns the column with the given id
func (d *Document) FindColumn(id string) (*Column, bool) {
	for i := range d.Columns {
		if d.Columns[i].ID == id {
			return &d.Columns[i], true
		}
	}
	return nil, false
}

// FindTask returns the task with the given id
func (d *Document) FindTask(id string) (*Task, bool) {
	for i := range d.Tasks {
		if d.Tasks[i].ID == id {
			return &d.Tasks[i], true
		}
	}
	return nil, false
}
