package board

import (
	"time"

	"github.com/dori/leadboard/internal/model"
)

// Seed returns the document a fresh store starts with: one favorite leads
// board with three columns and an example contact
func Seed(now time.Time) model.Document {
	column := func(id, title string, order int) model.Column {
		return model.Column{
			ID:        id,
			BoardID:   "leads-board",
			Title:     title,
			Order:     order,
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	return model.Document{
		Boards: []model.Board{{
			ID:          "leads-board",
			Title:       "Gestão de Leads",
			Description: "Acompanhamento de contatos do site",
			Color:       DefaultBoardColor,
			IsFavorite:  true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}},
		Columns: []model.Column{
			column("col-new", "Novos Contatos", 0),
			column("col-progress", "Em Atendimento", 1),
			column("col-done", "Concluído", 2),
		},
		Tasks: []model.Task{{
			ID:          "task-example",
			ColumnID:    "col-new",
			Title:       "Contato Exemplo",
			Description: "Interessado na Sala 1.\nEmail: exemplo@email.com",
			Priority:    model.PriorityMedium,
			Labels:      []string{"#AFD9FF"},
			Checklist:   []model.ChecklistItem{},
			Comments:    []model.Comment{},
			Attachments: []model.Attachment{},
			Order:       0,
			CreatedAt:   now,
			UpdatedAt:   now,
		}},
	}
}
