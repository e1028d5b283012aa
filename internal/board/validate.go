package board

import (
	"fmt"

	"github.com/dori/leadboard/internal/model"
)

// CheckReferences reports duplicate ids and columns or tasks whose parent
// does not exist. Order drift is not an error here; Normalize fixes it.
func CheckReferences(doc model.Document) error {
	seen := map[string]string{}
	claim := func(kind, id string) error {
		if id == "" {
			return fmt.Errorf("%s with empty id", kind)
		}
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("duplicate id %s (%s and %s)", id, prev, kind)
		}
		seen[id] = kind
		return nil
	}

	boards := map[string]bool{}
	for _, b := range doc.Boards {
		if err := claim("board", b.ID); err != nil {
			return err
		}
		boards[b.ID] = true
	}
	columns := map[string]bool{}
	for _, c := range doc.Columns {
		if err := claim("column", c.ID); err != nil {
			return err
		}
		if !boards[c.BoardID] {
			return fmt.Errorf("column %s references unknown board %s", c.ID, c.BoardID)
		}
		columns[c.ID] = true
	}
	for _, t := range doc.Tasks {
		if err := claim("task", t.ID); err != nil {
			return err
		}
		if !columns[t.ColumnID] {
			return fmt.Errorf("task %s references unknown column %s", t.ID, t.ColumnID)
		}
	}
	return nil
}
