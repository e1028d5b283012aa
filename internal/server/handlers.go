package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dori/leadboard/internal/board"
	"github.com/dori/leadboard/internal/model"
)

type columnView struct {
	model.Column
	Tasks []model.Task `json:"tasks"`
}

type moveResponse struct {
	Applied bool `json:"applied"`
}

type titleRequest struct {
	Title string `json:"title"`
}

type textRequest struct {
	Text string `json:"text"`
}

func (s *Server) healthz(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (s *Server) postLead(c echo.Context) error {
	var contact board.Contact
	if err := decodeBody(c, &contact); err != nil {
		return err
	}
	if strings.TrimSpace(contact.Name) == "" {
		return c.String(http.StatusUnprocessableEntity, "name is required")
	}
	task, ok := s.svc.AddLeadFromContact(contact)
	if !ok {
		s.log.Error("lead intake has no board to land in")
		return c.String(http.StatusServiceUnavailable, "no board accepts leads")
	}
	return c.JSON(http.StatusCreated, task)
}

// Boards

func (s *Server) listBoards(c echo.Context) error {
	return c.JSON(http.StatusOK, s.svc.Boards())
}

func (s *Server) createBoard(c echo.Context) error {
	var in board.BoardInput
	if err := decodeBody(c, &in); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, s.svc.AddBoard(in))
}

func (s *Server) updateBoard(c echo.Context) error {
	var p board.BoardPatch
	if err := decodeBody(c, &p); err != nil {
		return err
	}
	b, ok := s.svc.UpdateBoard(c.Param("id"), p)
	if !ok {
		return c.String(http.StatusNotFound, "board not found")
	}
	return c.JSON(http.StatusOK, b)
}

func (s *Server) deleteBoard(c echo.Context) error {
	if !s.svc.DeleteBoard(c.Param("id")) {
		return c.String(http.StatusNotFound, "board not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// Columns

func (s *Server) boardColumns(c echo.Context) error {
	id := c.Param("id")
	if _, ok := s.svc.Board(id); !ok {
		return c.String(http.StatusNotFound, "board not found")
	}
	columns := s.svc.Columns(id)
	out := make([]columnView, 0, len(columns))
	for _, col := range columns {
		out = append(out, columnView{Column: col, Tasks: s.svc.Tasks(col.ID)})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) createColumn(c echo.Context) error {
	var in titleRequest
	if err := decodeBody(c, &in); err != nil {
		return err
	}
	col, ok := s.svc.AddColumn(c.Param("id"), in.Title)
	if !ok {
		return c.String(http.StatusNotFound, "board not found")
	}
	return c.JSON(http.StatusCreated, col)
}

func (s *Server) updateColumn(c echo.Context) error {
	var p board.ColumnPatch
	if err := decodeBody(c, &p); err != nil {
		return err
	}
	col, ok := s.svc.UpdateColumn(c.Param("id"), p)
	if !ok {
		return c.String(http.StatusNotFound, "column not found")
	}
	return c.JSON(http.StatusOK, col)
}

func (s *Server) deleteColumn(c echo.Context) error {
	if !s.svc.DeleteColumn(c.Param("id")) {
		return c.String(http.StatusNotFound, "column not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// Tasks

func (s *Server) createTask(c echo.Context) error {
	var in board.TaskInput
	if err := decodeBody(c, &in); err != nil {
		return err
	}
	in.ColumnID = c.Param("id")
	if _, ok := s.svc.Column(in.ColumnID); !ok {
		return c.String(http.StatusNotFound, "column not found")
	}
	task, ok := s.svc.AddTask(in)
	if !ok {
		return c.String(http.StatusUnprocessableEntity, "title is required")
	}
	return c.JSON(http.StatusCreated, task)
}

func (s *Server) getTask(c echo.Context) error {
	task, ok := s.svc.Task(c.Param("id"))
	if !ok {
		return c.String(http.StatusNotFound, "task not found")
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) updateTask(c echo.Context) error {
	var p board.TaskPatch
	if err := decodeBody(c, &p); err != nil {
		return err
	}
	id := c.Param("id")
	if _, ok := s.svc.Task(id); !ok {
		return c.String(http.StatusNotFound, "task not found")
	}
	task, ok := s.svc.UpdateTask(id, p)
	if !ok {
		return c.String(http.StatusUnprocessableEntity, "invalid task update")
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) deleteTask(c echo.Context) error {
	if !s.svc.DeleteTask(c.Param("id")) {
		return c.String(http.StatusNotFound, "task not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) addComment(c echo.Context) error {
	var in textRequest
	if err := decodeBody(c, &in); err != nil {
		return err
	}
	id := c.Param("id")
	if _, ok := s.svc.Task(id); !ok {
		return c.String(http.StatusNotFound, "task not found")
	}
	who := identityFrom(c)
	task, ok := s.svc.AddComment(id, who.UserID, who.Name, in.Text)
	if !ok {
		return c.String(http.StatusUnprocessableEntity, "text is required")
	}
	return c.JSON(http.StatusCreated, task)
}

func (s *Server) addChecklistItem(c echo.Context) error {
	var in textRequest
	if err := decodeBody(c, &in); err != nil {
		return err
	}
	id := c.Param("id")
	if _, ok := s.svc.Task(id); !ok {
		return c.String(http.StatusNotFound, "task not found")
	}
	task, ok := s.svc.AddChecklistItem(id, in.Text)
	if !ok {
		return c.String(http.StatusUnprocessableEntity, "text is required")
	}
	return c.JSON(http.StatusCreated, task)
}

// move applies a drag-and-drop tuple. Unknown element or container ids are
// 404; a move the index policy refuses is 422.
func (s *Server) move(c echo.Context) error {
	var m board.Move
	if err := decodeBody(c, &m); err != nil {
		return err
	}

	switch m.ElementType {
	case board.ElementColumn:
		col, ok := s.svc.Column(m.ElementID)
		if !ok {
			return c.String(http.StatusNotFound, "column not found")
		}
		if col.BoardID != m.TargetContainerID {
			return c.String(http.StatusUnprocessableEntity, "columns can only move within their board")
		}
	case board.ElementTask:
		if _, ok := s.svc.Task(m.ElementID); !ok {
			return c.String(http.StatusNotFound, "task not found")
		}
		if _, ok := s.svc.Column(m.TargetContainerID); !ok {
			return c.String(http.StatusNotFound, "column not found")
		}
	default:
		return c.String(http.StatusBadRequest, "unknown element type")
	}

	if !s.svc.Apply(m) {
		return c.String(http.StatusUnprocessableEntity, "target index out of range")
	}
	return c.JSON(http.StatusOK, moveResponse{Applied: true})
}
