package views

import (
	"slices"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dori/leadboard/internal/board"
	"github.com/dori/leadboard/internal/model"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func press(t *testing.T, v KanbanView, keys ...tea.KeyMsg) (KanbanView, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var m tea.Model
		m, cmd = v.Update(k)
		v = m.(KanbanView)
	}
	return v, cmd
}

func typeText(v KanbanView, s string) KanbanView {
	for _, r := range s {
		m, _ := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		v = m.(KanbanView)
	}
	return v
}

func seededKanban(t *testing.T) (KanbanView, *board.Service) {
	t.Helper()
	svc := board.NewService(board.Seed(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	v := NewKanbanView(svc).SetSize(160, 40).Open("leads-board")
	return v, svc
}

func taskIDs(svc *board.Service, columnID string) []string {
	var ids []string
	for _, t := range svc.Tasks(columnID) {
		ids = append(ids, t.ID)
	}
	return ids
}

func TestKanbanAddTaskAppendsToColumn(t *testing.T) {
	v, svc := seededKanban(t)

	v, _ = press(t, v, runes("a"))
	if !v.IsInputMode() {
		t.Fatal("expected input mode after a")
	}
	v = typeText(v, "Bob")
	v, _ = press(t, v, enter)

	tasks := svc.Tasks("col-new")
	if len(tasks) != 2 || tasks[1].Title != "Bob" || tasks[1].Order != 1 {
		t.Fatalf("tasks = %+v", tasks)
	}
	if v.IsInputMode() {
		t.Error("still in input mode")
	}
	if got, _ := v.task(); got.ID != tasks[1].ID {
		t.Errorf("cursor on %q, want the new task", got.Title)
	}
}

func TestKanbanMoveTaskAcrossColumns(t *testing.T) {
	v, svc := seededKanban(t)

	v, _ = press(t, v, runes("L"))
	if ids := taskIDs(svc, "col-progress"); !slices.Equal(ids, []string{"task-example"}) {
		t.Fatalf("col-progress = %v", ids)
	}
	if len(svc.Tasks("col-new")) != 0 {
		t.Fatal("task still in col-new")
	}
	if v.currentColumn != 1 {
		t.Errorf("currentColumn = %d, want cursor to follow the task", v.currentColumn)
	}

	// Leftmost column: H is a no-op
	v, _ = press(t, v, runes("H"), runes("H"))
	if ids := taskIDs(svc, "col-new"); !slices.Equal(ids, []string{"task-example"}) {
		t.Fatalf("col-new = %v", ids)
	}
	if v.currentColumn != 0 {
		t.Errorf("currentColumn = %d", v.currentColumn)
	}
}

func TestKanbanMoveLandsAtCursorRow(t *testing.T) {
	v, svc := seededKanban(t)
	svc.AddTask(board.TaskInput{ColumnID: "col-progress", Title: "P1"})
	svc.AddTask(board.TaskInput{ColumnID: "col-progress", Title: "P2"})
	svc.AddTask(board.TaskInput{ColumnID: "col-new", Title: "N2"})
	v = v.Refresh()

	// second task of col-new goes to row 1 of col-progress
	v, _ = press(t, v, runes("j"), runes("L"))
	tasks := svc.Tasks("col-progress")
	if len(tasks) != 3 || tasks[1].Title != "N2" {
		t.Fatalf("col-progress = %+v", tasks)
	}
	for i, task := range tasks {
		if task.Order != i {
			t.Errorf("%s order = %d, want %d", task.Title, task.Order, i)
		}
	}
	if got, _ := v.task(); got.Title != "N2" {
		t.Errorf("cursor on %q", got.Title)
	}
}

func TestKanbanReorderWithinColumn(t *testing.T) {
	v, svc := seededKanban(t)
	second, _ := svc.AddTask(board.TaskInput{ColumnID: "col-new", Title: "Second"})
	v = v.Refresh()

	v, _ = press(t, v, runes("J"))
	if ids := taskIDs(svc, "col-new"); !slices.Equal(ids, []string{second.ID, "task-example"}) {
		t.Fatalf("after J = %v", ids)
	}
	if v.cursorRow != 1 {
		t.Errorf("cursorRow = %d", v.cursorRow)
	}

	// already last
	press(t, v, runes("J"))
	if ids := taskIDs(svc, "col-new"); !slices.Equal(ids, []string{second.ID, "task-example"}) {
		t.Fatalf("after second J = %v", ids)
	}

	v, _ = press(t, v, runes("K"))
	if ids := taskIDs(svc, "col-new"); !slices.Equal(ids, []string{"task-example", second.ID}) {
		t.Fatalf("after K = %v", ids)
	}
}

func TestKanbanMoveColumn(t *testing.T) {
	v, svc := seededKanban(t)

	v, _ = press(t, v, runes(">"))
	var got []string
	for _, c := range svc.Columns("leads-board") {
		got = append(got, c.ID)
	}
	if !slices.Equal(got, []string{"col-progress", "col-new", "col-done"}) {
		t.Fatalf("columns = %v", got)
	}
	if c, _ := v.column(); c.ID != "col-new" {
		t.Errorf("focused column %q", c.ID)
	}
}

func TestKanbanDeleteNeedsConfirmation(t *testing.T) {
	v, svc := seededKanban(t)

	v, _ = press(t, v, runes("d"), runes("n"))
	if len(svc.Tasks("col-new")) != 1 {
		t.Fatal("task deleted without confirmation")
	}
	press(t, v, runes("d"), runes("y"))
	if len(svc.Tasks("col-new")) != 0 {
		t.Fatal("task not deleted")
	}
}

func TestKanbanDeleteColumn(t *testing.T) {
	v, svc := seededKanban(t)

	v, _ = press(t, v, runes("x"), runes("y"))
	cols := svc.Columns("leads-board")
	if len(cols) != 2 || cols[0].ID != "col-progress" || cols[0].Order != 0 {
		t.Fatalf("columns = %+v", cols)
	}
	if _, ok := svc.Task("task-example"); ok {
		t.Error("task of deleted column survived")
	}
	if len(v.columns) != 2 {
		t.Errorf("view shows %d columns", len(v.columns))
	}
}

func TestKanbanAddColumnAndEdit(t *testing.T) {
	v, svc := seededKanban(t)

	v, _ = press(t, v, runes("A"))
	v = typeText(v, "Lost")
	v, _ = press(t, v, enter)
	cols := svc.Columns("leads-board")
	if len(cols) != 4 || cols[3].Title != "Lost" {
		t.Fatalf("columns = %+v", cols)
	}
	if v.currentColumn != 3 {
		t.Errorf("currentColumn = %d", v.currentColumn)
	}

	v, _ = press(t, v, runes("h"), runes("h"), runes("h"), runes("e"))
	v = typeText(v, " 2")
	press(t, v, enter)
	task, _ := svc.Task("task-example")
	if task.Title != "Contato Exemplo 2" {
		t.Errorf("title = %q", task.Title)
	}
}

func TestKanbanCyclePriority(t *testing.T) {
	v, svc := seededKanban(t)
	press(t, v, runes("p"))
	task, _ := svc.Task("task-example")
	if task.Priority != model.PriorityHigh {
		t.Errorf("priority = %s", task.Priority)
	}
}

func TestKanbanSearchBlocksMoves(t *testing.T) {
	v, svc := seededKanban(t)
	svc.AddTask(board.TaskInput{ColumnID: "col-new", Title: "Maria"})
	v = v.Refresh()

	v, _ = press(t, v, runes("/"))
	v = typeText(v, "maria")
	v, _ = press(t, v, enter)
	if n := len(v.visibleTasks(0)); n != 1 {
		t.Fatalf("visible = %d", n)
	}

	v, cmd := press(t, v, runes("L"))
	if len(svc.Tasks("col-new")) != 2 {
		t.Fatal("move applied while filtered")
	}
	if cmd == nil {
		t.Fatal("expected a status command")
	}
	if _, ok := Status(cmd()); !ok {
		t.Error("expected status message")
	}

	// esc clears the filter first, then goes back
	v, _ = press(t, v, esc)
	if v.searchFilter != "" {
		t.Error("filter not cleared")
	}
	_, cmd = press(t, v, esc)
	if _, ok := cmd().(BackMsg); !ok {
		t.Error("expected BackMsg")
	}
}

func TestKanbanUnknownBoard(t *testing.T) {
	svc := board.NewService(board.Seed(time.Now()))
	v := NewKanbanView(svc).SetSize(100, 30).Open("missing")
	v, _ = press(t, v, runes("a"), runes("L"), runes("x"))
	if v.mode == KanbanModeAddTask {
		t.Error("add mode without a column")
	}
	if v.View() == "" {
		t.Error("empty render")
	}
}

func TestKanbanViewRenders(t *testing.T) {
	v, _ := seededKanban(t)
	out := v.View()
	for _, want := range []string{"Gestão de Leads", "Novos Contatos", "Contato Exemplo"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q", want)
		}
	}
}

func pressBoards(t *testing.T, v BoardsView, keys ...tea.KeyMsg) (BoardsView, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var m tea.Model
		m, cmd = v.Update(k)
		v = m.(BoardsView)
	}
	return v, cmd
}

func TestBoardsAddRenameFavorite(t *testing.T) {
	svc := board.NewService(board.Seed(time.Now()))
	v := NewBoardsView(svc).SetSize(100, 30)

	v, _ = pressBoards(t, v, runes("a"), enter)
	boards := svc.Boards()
	if len(boards) != 2 || boards[1].Title != board.DefaultBoardTitle {
		t.Fatalf("boards = %+v", boards)
	}
	if b, _ := v.Selected(); b.ID != boards[1].ID {
		t.Fatalf("cursor not on new board")
	}

	v, _ = pressBoards(t, v, runes("r"))
	for range []rune(board.DefaultBoardTitle) {
		v, _ = pressBoards(t, v, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	for _, r := range "Parcerias" {
		v, _ = pressBoards(t, v, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	v, _ = pressBoards(t, v, enter)
	if b, _ := v.Selected(); b.Title != "Parcerias" {
		t.Fatalf("title = %q", b.Title)
	}

	// favoriting moves it to the top and the cursor follows
	v, _ = pressBoards(t, v, runes("f"))
	if b, _ := v.Selected(); b.Title != "Parcerias" || !b.IsFavorite {
		t.Fatalf("selected = %+v", b)
	}
}

func TestBoardsArchiveDeleteOpen(t *testing.T) {
	svc := board.NewService(board.Seed(time.Now()))
	v := NewBoardsView(svc).SetSize(100, 30)

	v, _ = pressBoards(t, v, runes("z"))
	if b, _ := svc.Board("leads-board"); !b.IsArchived {
		t.Fatal("not archived")
	}

	_, cmd := pressBoards(t, v, enter)
	if msg, ok := cmd().(OpenBoardMsg); !ok || msg.BoardID != "leads-board" {
		t.Fatalf("open cmd = %#v", msg)
	}

	v, _ = pressBoards(t, v, runes("d"), esc)
	if len(svc.Boards()) != 1 {
		t.Fatal("deleted without confirmation")
	}
	v, _ = pressBoards(t, v, runes("d"), runes("y"))
	if len(svc.Boards()) != 0 || len(svc.Columns("leads-board")) != 0 {
		t.Fatal("board not deleted with its columns")
	}
	if v.View() == "" {
		t.Error("empty render")
	}
}
