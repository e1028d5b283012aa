package board

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dori/leadboard/internal/logging"
	"github.com/dori/leadboard/internal/model"
)

const (
	DefaultBoardTitle = "Novo Quadro"
	DefaultBoardColor = "#94D1B4"
)

// Service owns the CRM document and is the only writer to it. Every mutation
// works on a private copy that replaces the live document in one step, so
// readers never observe a half-applied move.
type Service struct {
	mu     sync.RWMutex
	doc    model.Document
	now    Clock
	newID  IDFunc
	policy IndexPolicy
	log    logrus.FieldLogger

	onChange []func(model.Document)
	onLead   []func(model.Task)
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the time source
func WithClock(c Clock) Option {
	return func(s *Service) { s.now = c }
}

// WithIDs overrides the identifier generator
func WithIDs(f IDFunc) Option {
	return func(s *Service) { s.newID = f }
}

// WithIndexPolicy sets how out-of-range move targets are handled
func WithIndexPolicy(p IndexPolicy) Option {
	return func(s *Service) { s.policy = p }
}

// WithLogger sets the logger
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) { s.log = l }
}

// OnChange registers a listener that receives a snapshot after every
// successful mutation. Listeners run while the writer lock is held and must
// not block; hand the snapshot off to another goroutine for slow work.
func OnChange(fn func(model.Document)) Option {
	return func(s *Service) { s.onChange = append(s.onChange, fn) }
}

// OnLead registers a listener for tasks created through lead intake
func OnLead(fn func(model.Task)) Option {
	return func(s *Service) { s.onLead = append(s.onLead, fn) }
}

// NewService creates a service around doc. Order drift in doc is normalized
// before the service starts serving queries.
func NewService(doc model.Document, opts ...Option) *Service {
	s := &Service{
		now:   time.Now,
		newID: NewID,
		log:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := CheckOrder(doc); err != nil {
		s.log.WithError(err).Warn("normalizing document order")
		doc, _ = Normalize(doc)
	}
	s.doc = doc.Clone()
	return s
}

// mutate runs fn against a copy of the document and installs the copy when fn
// reports a change
func (s *Service) mutate(op string, fn func(doc *model.Document) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.Clone()
	if !fn(&next) {
		s.log.WithField("op", op).Debug("no-op")
		return false
	}
	s.doc = next
	s.log.WithField("op", op).Debug("applied")

	if len(s.onChange) > 0 {
		snapshot := next.Clone()
		for _, l := range s.onChange {
			l(snapshot)
		}
	}
	return true
}

// Snapshot returns a deep copy of the current document
func (s *Service) Snapshot() model.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Replace swaps in a whole document (import, restore). The document is
// normalized first.
func (s *Service) Replace(doc model.Document) {
	doc, _ = Normalize(doc)
	s.mutate("replace", func(d *model.Document) bool {
		*d = doc.Clone()
		return true
	})
}

// Reset installs doc without notifying change listeners. Use it for a
// document that already matches what is stored.
func (s *Service) Reset(doc model.Document) {
	doc, _ = Normalize(doc)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc.Clone()
}

// Policy returns the index policy in effect
func (s *Service) Policy() IndexPolicy {
	return s.policy
}

// Queries

// Boards returns all boards, favorites first, otherwise in creation order
func (s *Service) Boards() []model.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Clone(s.doc.Boards)
	slices.SortStableFunc(out, func(a, b model.Board) int {
		switch {
		case a.IsFavorite == b.IsFavorite:
			return 0
		case a.IsFavorite:
			return -1
		default:
			return 1
		}
	})
	return out
}

// Board returns a board by id
func (s *Service) Board(id string) (model.Board, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.doc.FindBoard(id)
	if !ok {
		return model.Board{}, false
	}
	return *b, true
}

// Column returns a column by id
func (s *Service) Column(id string) (model.Column, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.doc.FindColumn(id)
	if !ok {
		return model.Column{}, false
	}
	return *c, true
}

// Task returns a task by id
func (s *Service) Task(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.doc.FindTask(id)
	if !ok {
		return model.Task{}, false
	}
	return t.Clone(), true
}

// Columns returns boardID's columns in order
func (s *Service) Columns(boardID string) []model.Column {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ColumnsOf(s.doc, boardID)
}

// Tasks returns columnID's tasks in order
func (s *Service) Tasks(columnID string) []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return TasksOf(s.doc, columnID)
}

// Boards

// BoardInput holds the fields for a new board
type BoardInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
	IsFavorite  bool   `json:"isFavorite"`
}

// BoardPatch holds optional board field updates
type BoardPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	IsFavorite  *bool   `json:"isFavorite,omitempty"`
	IsArchived  *bool   `json:"isArchived,omitempty"`
}

// AddBoard creates a board
func (s *Service) AddBoard(in BoardInput) model.Board {
	now := s.now()
	b := model.Board{
		ID:          s.newID(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Color:       in.Color,
		IsFavorite:  in.IsFavorite,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if b.Title == "" {
		b.Title = DefaultBoardTitle
	}
	if b.Color == "" {
		b.Color = DefaultBoardColor
	}

	s.mutate("add_board", func(d *model.Document) bool {
		d.Boards = append(d.Boards, b)
		return true
	})
	return b
}

// UpdateBoard applies p to board id
func (s *Service) UpdateBoard(id string, p BoardPatch) (model.Board, bool) {
	var out model.Board
	ok := s.mutate("update_board", func(d *model.Document) bool {
		b, ok := d.FindBoard(id)
		if !ok {
			return false
		}
		if p.Title != nil {
			b.Title = *p.Title
		}
		if p.Description != nil {
			b.Description = *p.Description
		}
		if p.Color != nil {
			b.Color = *p.Color
		}
		if p.IsFavorite != nil {
			b.IsFavorite = *p.IsFavorite
		}
		if p.IsArchived != nil {
			b.IsArchived = *p.IsArchived
		}
		b.UpdatedAt = s.now()
		out = *b
		return true
	})
	return out, ok
}

// DeleteBoard removes a board, its columns and their tasks
func (s *Service) DeleteBoard(id string) bool {
	return s.mutate("delete_board", func(d *model.Document) bool {
		if _, ok := d.FindBoard(id); !ok {
			return false
		}
		removed := map[string]bool{}
		for _, c := range d.Columns {
			if c.BoardID == id {
				removed[c.ID] = true
			}
		}
		d.Boards = slices.DeleteFunc(d.Boards, func(b model.Board) bool { return b.ID == id })
		d.Columns = slices.DeleteFunc(d.Columns, func(c model.Column) bool { return removed[c.ID] })
		d.Tasks = slices.DeleteFunc(d.Tasks, func(t model.Task) bool { return removed[t.ColumnID] })
		return true
	})
}

// Columns

// ColumnPatch holds optional column field updates
type ColumnPatch struct {
	Title  *string `json:"title,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// AddColumn appends a column to the end of boardID
func (s *Service) AddColumn(boardID, title string) (model.Column, bool) {
	var out model.Column
	ok := s.mutate("add_column", func(d *model.Document) bool {
		if _, ok := d.FindBoard(boardID); !ok {
			return false
		}
		now := s.now()
		out = model.Column{
			ID:        s.newID(),
			BoardID:   boardID,
			Title:     strings.TrimSpace(title),
			Order:     len(columnSequence(d.Columns, boardID)),
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		d.Columns = append(d.Columns, out)
		return true
	})
	return out, ok
}

// UpdateColumn applies p to column id
func (s *Service) UpdateColumn(id string, p ColumnPatch) (model.Column, bool) {
	var out model.Column
	ok := s.mutate("update_column", func(d *model.Document) bool {
		c, ok := d.FindColumn(id)
		if !ok {
			return false
		}
		if p.Title != nil {
			c.Title = *p.Title
		}
		if p.Active != nil {
			c.Active = *p.Active
		}
		c.UpdatedAt = s.now()
		out = *c
		return true
	})
	return out, ok
}

// DeleteColumn removes a column and its tasks, then renumbers the remaining
// columns of the board
func (s *Service) DeleteColumn(id string) bool {
	return s.mutate("delete_column", func(d *model.Document) bool {
		c, ok := d.FindColumn(id)
		if !ok {
			return false
		}
		boardID := c.BoardID
		d.Columns = slices.DeleteFunc(d.Columns, func(c model.Column) bool { return c.ID == id })
		d.Tasks = slices.DeleteFunc(d.Tasks, func(t model.Task) bool { return t.ColumnID == id })
		d.Columns = renumberColumns(d.Columns, columnSequence(d.Columns, boardID))
		return true
	})
}

// MoveColumn moves a column to index within its own board
func (s *Service) MoveColumn(columnID string, index int) bool {
	return s.mutate("move_column", func(d *model.Document) bool {
		c, ok := d.FindColumn(columnID)
		if !ok {
			return false
		}
		next, ok := ReorderColumns(*d, c.BoardID, columnID, index, s.policy)
		*d = next
		return ok
	})
}

// ReorderColumns moves columnID to index within boardID
func (s *Service) ReorderColumns(boardID, columnID string, index int) bool {
	return s.mutate("reorder_columns", func(d *model.Document) bool {
		next, ok := ReorderColumns(*d, boardID, columnID, index, s.policy)
		*d = next
		return ok
	})
}

// Tasks

// TaskInput holds the fields for a new task
type TaskInput struct {
	ColumnID      string                `json:"columnId"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Priority      model.Priority        `json:"priority"`
	DueDate       *time.Time            `json:"dueDate,omitempty"`
	Labels        []string              `json:"labels"`
	Checklist     []model.ChecklistItem `json:"checklist"`
	ResponsibleID *string               `json:"responsibleId,omitempty"`
}

// TaskPatch holds optional task field updates. Column membership and order
// are not patchable; use MoveTask.
type TaskPatch struct {
	Title            *string         `json:"title,omitempty"`
	Description      *string         `json:"description,omitempty"`
	Priority         *model.Priority `json:"priority,omitempty"`
	DueDate          *time.Time      `json:"dueDate,omitempty"`
	ClearDueDate     bool            `json:"clearDueDate,omitempty"`
	Labels           *[]string       `json:"labels,omitempty"`
	ResponsibleID    *string         `json:"responsibleId,omitempty"`
	ClearResponsible bool            `json:"clearResponsible,omitempty"`
}

// AddTask appends a task to the end of its column. A missing column or an
// empty title is a no-op.
func (s *Service) AddTask(in TaskInput) (model.Task, bool) {
	var out model.Task
	ok := s.mutate("add_task", func(d *model.Document) bool {
		t, ok := s.newTask(d, in)
		if !ok {
			return false
		}
		d.Tasks = append(d.Tasks, t)
		out = t.Clone()
		return true
	})
	return out, ok
}

func (s *Service) newTask(d *model.Document, in TaskInput) (model.Task, bool) {
	title := strings.TrimSpace(in.Title)
	if in.ColumnID == "" || title == "" {
		return model.Task{}, false
	}
	if _, ok := d.FindColumn(in.ColumnID); !ok {
		return model.Task{}, false
	}

	priority := in.Priority
	if !priority.Valid() {
		priority = model.PriorityMedium
	}
	labels := make([]string, 0, len(in.Labels))
	for _, l := range in.Labels {
		if l = model.NormalizeLabel(l); l != "" && !slices.Contains(labels, l) {
			labels = append(labels, l)
		}
	}
	checklist := make([]model.ChecklistItem, 0, len(in.Checklist))
	for _, item := range in.Checklist {
		if item.ID == "" {
			item.ID = s.newID()
		}
		checklist = append(checklist, item)
	}

	now := s.now()
	t := model.Task{
		ID:            s.newID(),
		ColumnID:      in.ColumnID,
		Title:         title,
		Description:   in.Description,
		Priority:      priority,
		DueDate:       in.DueDate,
		Labels:        labels,
		Checklist:     checklist,
		Comments:      []model.Comment{},
		Attachments:   []model.Attachment{},
		ResponsibleID: in.ResponsibleID,
		Order:         len(taskSequence(d.Tasks, in.ColumnID)),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return t.Clone(), true
}

// UpdateTask applies p to task id
func (s *Service) UpdateTask(id string, p TaskPatch) (model.Task, bool) {
	return s.editTask("update_task", id, func(t *model.Task) bool {
		if p.Title != nil {
			title := strings.TrimSpace(*p.Title)
			if title == "" {
				return false
			}
			t.Title = title
		}
		if p.Description != nil {
			t.Description = *p.Description
		}
		if p.Priority != nil {
			if !p.Priority.Valid() {
				return false
			}
			t.Priority = *p.Priority
		}
		switch {
		case p.ClearDueDate:
			t.DueDate = nil
		case p.DueDate != nil:
			due := *p.DueDate
			t.DueDate = &due
		}
		if p.Labels != nil {
			t.Labels = []string{}
			for _, l := range *p.Labels {
				if l = model.NormalizeLabel(l); l != "" && !slices.Contains(t.Labels, l) {
					t.Labels = append(t.Labels, l)
				}
			}
		}
		switch {
		case p.ClearResponsible:
			t.ResponsibleID = nil
		case p.ResponsibleID != nil:
			r := *p.ResponsibleID
			t.ResponsibleID = &r
		}
		return true
	})
}

// editTask runs fn on task id and stamps UpdatedAt when fn accepts the edit
func (s *Service) editTask(op, id string, fn func(t *model.Task) bool) (model.Task, bool) {
	var out model.Task
	ok := s.mutate(op, func(d *model.Document) bool {
		t, ok := d.FindTask(id)
		if !ok {
			return false
		}
		if !fn(t) {
			return false
		}
		t.UpdatedAt = s.now()
		out = t.Clone()
		return true
	})
	return out, ok
}

// DeleteTask removes a task and renumbers its column
func (s *Service) DeleteTask(id string) bool {
	return s.mutate("delete_task", func(d *model.Document) bool {
		t, ok := d.FindTask(id)
		if !ok {
			return false
		}
		columnID := t.ColumnID
		d.Tasks = slices.DeleteFunc(d.Tasks, func(t model.Task) bool { return t.ID == id })
		d.Tasks = renumberTasks(d.Tasks, map[string][]string{
			columnID: taskSequence(d.Tasks, columnID),
		})
		return true
	})
}

// ReorderTask moves taskID to index within columnID
func (s *Service) ReorderTask(columnID, taskID string, index int) bool {
	return s.mutate("reorder_task", func(d *model.Document) bool {
		next, ok := ReorderTasks(*d, columnID, taskID, index, s.policy)
		*d = next
		return ok
	})
}

// MoveTask moves taskID into targetColumnID at index. A task that changes
// column gets a fresh UpdatedAt.
func (s *Service) MoveTask(taskID, targetColumnID string, index int) bool {
	return s.Apply(Move{
		ElementID:         taskID,
		ElementType:       ElementTask,
		TargetContainerID: targetColumnID,
		TargetIndex:       index,
	})
}

// Apply executes a drag-and-drop move
func (s *Service) Apply(m Move) bool {
	return s.mutate("move_"+string(m.ElementType), func(d *model.Document) bool {
		var before string
		if m.ElementType == ElementTask {
			if t, ok := d.FindTask(m.ElementID); ok {
				before = t.ColumnID
			}
		}
		next, ok := Apply(*d, m, s.policy)
		if !ok {
			return false
		}
		*d = next
		if m.ElementType == ElementTask && before != m.TargetContainerID {
			if t, ok := d.FindTask(m.ElementID); ok {
				t.UpdatedAt = s.now()
			}
		}
		return true
	})
}
