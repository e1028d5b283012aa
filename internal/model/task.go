package model

import (
	"time"
)

// Priority represents task priority level
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Next returns the priority that follows p when cycling low → medium → high
func (p Priority) Next() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityLow
	}
}

// ChecklistItem is one line of a task checklist
type ChecklistItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Comment is a note left on a task
type Comment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	CreatedAt time.Time `json:"createdAt"`
}

// Attachment references an uploaded file
type Attachment struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// Task is a lead or unit of work inside exactly one column
type Task struct {
	ID            string          `json:"id"`
	ColumnID      string          `json:"columnId"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Priority      Priority        `json:"priority"`
	DueDate       *time.Time      `json:"dueDate,omitempty"`
	Labels        []string        `json:"labels"`
	Checklist     []ChecklistItem `json:"checklist"`
	Comments      []Comment       `json:"comments"`
	Attachments   []Attachment    `json:"attachments"`
	ResponsibleID *string         `json:"responsibleId,omitempty"`
	Order         int             `json:"order"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// IsOverdue returns true if the task is past its due date
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	return now.After(*t.DueDate)
}

// ChecklistProgress returns the completed percentage (0-100) of the checklist.
// An empty checklist reports 0.
func (t *Task) ChecklistProgress() int {
	if len(t.Checklist) == 0 {
		return 0
	}
	done := 0
	for _, item := range t.Checklist {
		if item.Completed {
			done++
		}
	}
	return done * 100 / len(t.Checklist)
}

// HasLabel reports whether the task carries the given label
func (t *Task) HasLabel(label string) bool {
	label = NormalizeLabel(label)
	for _, l := range t.Labels {
		if NormalizeLabel(l) == label {
			return true
		}
	}
	return false
}
