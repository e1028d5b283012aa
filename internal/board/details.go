package board

import (
	"slices"
	"strings"

	"github.com/dori/leadboard/internal/model"
)

// CyclePriority advances a task's priority low → medium → high → low
func (s *Service) CyclePriority(taskID string) (model.Task, bool) {
	return s.editTask("cycle_priority", taskID, func(t *model.Task) bool {
		t.Priority = t.Priority.Next()
		return true
	})
}

// ToggleLabel adds label to the task, or removes it when already present
func (s *Service) ToggleLabel(taskID, label string) (model.Task, bool) {
	label = model.NormalizeLabel(label)
	if label == "" {
		return model.Task{}, false
	}
	return s.editTask("toggle_label", taskID, func(t *model.Task) bool {
		if t.HasLabel(label) {
			t.Labels = slices.DeleteFunc(t.Labels, func(l string) bool {
				return model.NormalizeLabel(l) == label
			})
			return true
		}
		t.Labels = append(t.Labels, label)
		return true
	})
}

// AddChecklistItem appends an unchecked item
func (s *Service) AddChecklistItem(taskID, text string) (model.Task, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Task{}, false
	}
	return s.editTask("add_checklist_item", taskID, func(t *model.Task) bool {
		t.Checklist = append(t.Checklist, model.ChecklistItem{ID: s.newID(), Text: text})
		return true
	})
}

// ToggleChecklistItem flips the completed flag of one item
func (s *Service) ToggleChecklistItem(taskID, itemID string) (model.Task, bool) {
	return s.editTask("toggle_checklist_item", taskID, func(t *model.Task) bool {
		for i := range t.Checklist {
			if t.Checklist[i].ID == itemID {
				t.Checklist[i].Completed = !t.Checklist[i].Completed
				return true
			}
		}
		return false
	})
}

// RemoveChecklistItem drops one item
func (s *Service) RemoveChecklistItem(taskID, itemID string) (model.Task, bool) {
	return s.editTask("remove_checklist_item", taskID, func(t *model.Task) bool {
		n := len(t.Checklist)
		t.Checklist = slices.DeleteFunc(t.Checklist, func(i model.ChecklistItem) bool { return i.ID == itemID })
		return len(t.Checklist) != n
	})
}

// AddComment records a comment by the given author
func (s *Service) AddComment(taskID, userID, userName, text string) (model.Task, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Task{}, false
	}
	return s.editTask("add_comment", taskID, func(t *model.Task) bool {
		t.Comments = append(t.Comments, model.Comment{
			ID:        s.newID(),
			Text:      text,
			UserID:    userID,
			UserName:  userName,
			CreatedAt: s.now(),
		})
		return true
	})
}

// AddAttachment records a file reference on the task
func (s *Service) AddAttachment(taskID, name, url, mimeType string) (model.Task, bool) {
	if url == "" {
		return model.Task{}, false
	}
	return s.editTask("add_attachment", taskID, func(t *model.Task) bool {
		t.Attachments = append(t.Attachments, model.Attachment{
			ID:        s.newID(),
			Name:      name,
			URL:       url,
			Type:      mimeType,
			CreatedAt: s.now(),
		})
		return true
	})
}

// RemoveAttachment drops an attachment
func (s *Service) RemoveAttachment(taskID, attachmentID string) (model.Task, bool) {
	return s.editTask("remove_attachment", taskID, func(t *model.Task) bool {
		n := len(t.Attachments)
		t.Attachments = slices.DeleteFunc(t.Attachments, func(a model.Attachment) bool { return a.ID == attachmentID })
		return len(t.Attachments) != n
	})
}
