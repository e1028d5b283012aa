package board

import (
	"fmt"
	"strings"

	"github.com/dori/leadboard/internal/model"
)

// Contact is what the public contact form submits
type Contact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// IntakeColumn returns the column new leads land in: the first column of the
// first board whose title mentions "lead", or of the first board otherwise
func IntakeColumn(doc model.Document) (model.Column, bool) {
	if len(doc.Boards) == 0 {
		return model.Column{}, false
	}
	target := doc.Boards[0]
	for _, b := range doc.Boards {
		if strings.Contains(strings.ToLower(b.Title), "lead") {
			target = b
			break
		}
	}
	return FirstColumn(doc, target.ID)
}

// AddLead creates a task in the intake column and notifies lead listeners.
// in.ColumnID is ignored.
func (s *Service) AddLead(in TaskInput) (model.Task, bool) {
	var out model.Task
	ok := s.mutate("add_lead", func(d *model.Document) bool {
		col, ok := IntakeColumn(*d)
		if !ok {
			s.log.Warn("no board or column to receive lead")
			return false
		}
		in.ColumnID = col.ID
		t, ok := s.newTask(d, in)
		if !ok {
			return false
		}
		d.Tasks = append(d.Tasks, t)
		out = t.Clone()
		return true
	})
	if !ok {
		return out, false
	}

	s.log.WithField("task_id", out.ID).Info("new lead")
	for _, l := range s.onLead {
		l(out.Clone())
	}
	return out, true
}

// AddLeadFromContact turns a contact form submission into a lead
func (s *Service) AddLeadFromContact(c Contact) (model.Task, bool) {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return model.Task{}, false
	}
	return s.AddLead(TaskInput{
		Title:       "Contato: " + name,
		Description: ContactDescription(c),
		Priority:    model.PriorityMedium,
		Labels:      []string{model.LeadLabel},
	})
}

// ContactDescription renders the markdown body of a contact lead
func ContactDescription(c Contact) string {
	return fmt.Sprintf("**Nome:** %s\n**Email:** %s\n**Telefone:** %s\n\n**Mensagem:**\n%s",
		strings.TrimSpace(c.Name), strings.TrimSpace(c.Email), strings.TrimSpace(c.Phone), c.Message)
}
