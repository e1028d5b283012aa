package board

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dori/leadboard/internal/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func sequentialIDs() IDFunc {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestService(t *testing.T, doc model.Document, opts ...Option) (*Service, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clock.Now), WithIDs(sequentialIDs())}, opts...)
	return NewService(doc, opts...), clock
}

func TestLeadsScenario(t *testing.T) {
	s, _ := newTestService(t, model.Document{})

	b := s.AddBoard(BoardInput{Title: "Leads"})
	newCol, _ := s.AddColumn(b.ID, "New")
	progress, _ := s.AddColumn(b.ID, "InProgress")
	done, _ := s.AddColumn(b.ID, "Done")
	if newCol.Order != 0 || progress.Order != 1 || done.Order != 2 {
		t.Fatalf("column orders = %d %d %d", newCol.Order, progress.Order, done.Order)
	}

	alice, ok := s.AddTask(TaskInput{ColumnID: newCol.ID, Title: "Alice"})
	if !ok || alice.Order != 0 {
		t.Fatalf("Alice = %+v, ok %v", alice, ok)
	}
	bob, ok := s.AddTask(TaskInput{ColumnID: newCol.ID, Title: "Bob"})
	if !ok || bob.Order != 1 {
		t.Fatalf("Bob = %+v, ok %v", bob, ok)
	}

	if !s.MoveTask(alice.ID, progress.ID, 0) {
		t.Fatal("move failed")
	}

	gotNew := s.Tasks(newCol.ID)
	if len(gotNew) != 1 || gotNew[0].ID != bob.ID || gotNew[0].Order != 0 {
		t.Errorf("New = %+v", gotNew)
	}
	gotProgress := s.Tasks(progress.ID)
	if len(gotProgress) != 1 || gotProgress[0].ID != alice.ID || gotProgress[0].Order != 0 {
		t.Errorf("InProgress = %+v", gotProgress)
	}

	stored, _ := s.Task(bob.ID)
	if stored.Order != 0 {
		t.Errorf("stored Bob order = %d, want 0", stored.Order)
	}
}

func TestAddDefaults(t *testing.T) {
	s, _ := newTestService(t, model.Document{})

	b := s.AddBoard(BoardInput{Title: "  "})
	if b.Title != DefaultBoardTitle || b.Color != DefaultBoardColor {
		t.Errorf("board defaults = %q %q", b.Title, b.Color)
	}
	if b.ID == "" || b.CreatedAt.IsZero() || !b.CreatedAt.Equal(b.UpdatedAt) {
		t.Errorf("board stamps = %+v", b)
	}

	col, _ := s.AddColumn(b.ID, "Inbox")
	task, ok := s.AddTask(TaskInput{ColumnID: col.ID, Title: "Call", Priority: "urgent", Labels: []string{"#afd9ff", "#AFD9FF", ""}})
	if !ok {
		t.Fatal("AddTask failed")
	}
	if task.Priority != model.PriorityMedium {
		t.Errorf("priority = %q, want medium", task.Priority)
	}
	if !reflect.DeepEqual(task.Labels, []string{"#AFD9FF"}) {
		t.Errorf("labels = %v", task.Labels)
	}
	if task.Checklist == nil || task.Comments == nil || task.Attachments == nil {
		t.Error("collections should be empty, not nil")
	}
}

func TestAddTaskRejectsMissingColumnOrTitle(t *testing.T) {
	s, _ := newTestService(t, Seed(time.Now()))
	before := s.Snapshot()

	if _, ok := s.AddTask(TaskInput{ColumnID: "col-new", Title: "   "}); ok {
		t.Error("empty title should be rejected")
	}
	if _, ok := s.AddTask(TaskInput{ColumnID: "missing", Title: "x"}); ok {
		t.Error("missing column should be rejected")
	}
	if _, ok := s.AddColumn("missing", "x"); ok {
		t.Error("missing board should be rejected")
	}
	if !reflect.DeepEqual(before, s.Snapshot()) {
		t.Error("rejected adds changed the document")
	}
}

func TestUpdateStampsUpdatedAt(t *testing.T) {
	s, _ := newTestService(t, Seed(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))

	before, _ := s.Task("task-example")
	title := "Renamed"
	after, ok := s.UpdateTask("task-example", TaskPatch{Title: &title})
	if !ok {
		t.Fatal("update failed")
	}
	if after.Title != "Renamed" || !after.UpdatedAt.After(before.UpdatedAt) {
		t.Errorf("after = %+v", after)
	}
	if !after.CreatedAt.Equal(before.CreatedAt) {
		t.Error("CreatedAt changed on update")
	}

	fav := false
	b, ok := s.UpdateBoard("leads-board", BoardPatch{IsFavorite: &fav})
	if !ok || b.IsFavorite || !b.UpdatedAt.After(b.CreatedAt) {
		t.Errorf("board = %+v", b)
	}

	bad := model.Priority("urgent")
	if _, ok := s.UpdateTask("task-example", TaskPatch{Priority: &bad}); ok {
		t.Error("invalid priority should be rejected")
	}
	if _, ok := s.UpdateTask("missing", TaskPatch{Title: &title}); ok {
		t.Error("unknown task should be a no-op")
	}
}

func TestDeleteBoardCascades(t *testing.T) {
	s, _ := newTestService(t, Seed(time.Now()))
	other := s.AddBoard(BoardInput{Title: "Parcerias"})
	otherCol, _ := s.AddColumn(other.ID, "Prospects")
	otherTask, _ := s.AddTask(TaskInput{ColumnID: otherCol.ID, Title: "Cafe"})
	s.AddTask(TaskInput{ColumnID: "col-progress", Title: "Bruno"})

	if !s.DeleteBoard("leads-board") {
		t.Fatal("delete failed")
	}

	doc := s.Snapshot()
	if len(doc.Boards) != 1 || doc.Boards[0].ID != other.ID {
		t.Errorf("boards = %+v", doc.Boards)
	}
	if len(doc.Columns) != 1 || doc.Columns[0].ID != otherCol.ID {
		t.Errorf("columns = %+v", doc.Columns)
	}
	if len(doc.Tasks) != 1 || doc.Tasks[0].ID != otherTask.ID {
		t.Errorf("tasks = %+v", doc.Tasks)
	}
	if s.DeleteBoard("leads-board") {
		t.Error("second delete should be a no-op")
	}
}

func TestDeleteRenumbersSiblings(t *testing.T) {
	s, _ := newTestService(t, Seed(time.Now()))
	s.AddTask(TaskInput{ColumnID: "col-new", Title: "Second"})
	third, _ := s.AddTask(TaskInput{ColumnID: "col-new", Title: "Third"})

	if !s.DeleteTask("task-example") {
		t.Fatal("delete task failed")
	}
	if !s.DeleteColumn("col-progress") {
		t.Fatal("delete column failed")
	}

	doc := s.Snapshot()
	if err := CheckOrder(doc); err != nil {
		t.Fatal(err)
	}
	stored, _ := doc.FindTask(third.ID)
	if stored.Order != 1 {
		t.Errorf("third order = %d, want 1", stored.Order)
	}
	done, _ := doc.FindColumn("col-done")
	if done.Order != 1 {
		t.Errorf("done column order = %d, want 1", done.Order)
	}
}

func TestDeleteColumnRemovesItsTasks(t *testing.T) {
	s, _ := newTestService(t, Seed(time.Now()))
	if !s.DeleteColumn("col-new") {
		t.Fatal("delete failed")
	}
	if _, ok := s.Task("task-example"); ok {
		t.Error("task of deleted column survived")
	}
}

func TestMoveStampsOnlyCrossColumnMoves(t *testing.T) {
	s, _ := newTestService(t, Seed(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	second, _ := s.AddTask(TaskInput{ColumnID: "col-new", Title: "Second"})

	before := s.Snapshot()
	if !s.ReorderTask("col-new", second.ID, 1) {
		t.Fatal("reorder failed")
	}
	if !reflect.DeepEqual(before, s.Snapshot()) {
		t.Error("same-index reorder changed the document")
	}

	if !s.MoveTask(second.ID, "col-done", 0) {
		t.Fatal("move failed")
	}
	moved, _ := s.Task(second.ID)
	if moved.ColumnID != "col-done" || !moved.UpdatedAt.After(second.UpdatedAt) {
		t.Errorf("moved = %+v", moved)
	}
}

func TestMoveColumn(t *testing.T) {
	s, _ := newTestService(t, Seed(time.Now()))
	if !s.MoveColumn("col-done", 0) {
		t.Fatal("move failed")
	}
	var got []string
	for _, c := range s.Columns("leads-board") {
		got = append(got, c.ID)
	}
	want := []string{"col-done", "col-new", "col-progress"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("columns = %v, want %v", got, want)
	}
	if s.MoveColumn("missing", 0) {
		t.Error("unknown column should be a no-op")
	}
}

func TestReorderColumns(t *testing.T) {
	doc := model.Document{
		Boards: []model.Board{{ID: "b1"}, {ID: "b2"}},
		Columns: []model.Column{
			{ID: "A", BoardID: "b1", Order: 0},
			{ID: "B", BoardID: "b1", Order: 1},
			{ID: "C", BoardID: "b1", Order: 2},
			{ID: "D", BoardID: "b1", Order: 3},
			{ID: "E", BoardID: "b2", Order: 0},
		},
	}
	changes := 0
	s, _ := newTestService(t, doc, OnChange(func(model.Document) { changes++ }))

	columnIDs := func(boardID string) []string {
		var ids []string
		for _, c := range s.Columns(boardID) {
			ids = append(ids, c.ID)
		}
		return ids
	}

	if !s.ReorderColumns("b1", "C", 0) {
		t.Fatal("reorder failed")
	}
	if got, want := columnIDs("b1"), []string{"C", "A", "B", "D"}; !reflect.DeepEqual(got, want) {
		t.Errorf("columns = %v, want %v", got, want)
	}
	for i, c := range s.Columns("b1") {
		if c.Order != i {
			t.Errorf("column %s order = %d, want %d", c.ID, c.Order, i)
		}
	}
	if changes != 1 {
		t.Fatalf("listener calls = %d, want 1", changes)
	}

	if s.ReorderColumns("b1", "E", 0) {
		t.Error("column of another board should be a no-op")
	}
	if s.ReorderColumns("b1", "missing", 0) {
		t.Error("unknown column should be a no-op")
	}
	if changes != 1 {
		t.Errorf("no-op notified listeners, calls = %d", changes)
	}
	if got, want := columnIDs("b2"), []string{"E"}; !reflect.DeepEqual(got, want) {
		t.Errorf("b2 columns = %v, want %v", got, want)
	}
}

func TestStrictPolicyRejectsOutOfRange(t *testing.T) {
	s, _ := newTestService(t, Seed(time.Now()), WithIndexPolicy(IndexStrict))
	if s.MoveTask("task-example", "col-done", 3) {
		t.Error("out-of-range move should be rejected under strict policy")
	}
	if !s.MoveTask("task-example", "col-done", 0) {
		t.Error("in-range move should apply")
	}
}

func TestOnChangeReceivesSnapshots(t *testing.T) {
	var got []model.Document
	s, _ := newTestService(t, Seed(time.Now()), OnChange(func(d model.Document) {
		got = append(got, d)
	}))

	s.MoveTask("missing", "col-done", 0)
	if len(got) != 0 {
		t.Fatalf("no-op notified listeners %d times", len(got))
	}

	s.MoveTask("task-example", "col-done", 0)
	if len(got) != 1 {
		t.Fatalf("listener calls = %d, want 1", len(got))
	}
	if task, _ := got[0].FindTask("task-example"); task.ColumnID != "col-done" {
		t.Error("snapshot does not reflect the move")
	}

	got[0].Tasks[0].Title = "tampered"
	if task, _ := s.Task("task-example"); task.Title == "tampered" {
		t.Error("snapshot aliases live state")
	}
}

func TestAddLeadFromContact(t *testing.T) {
	var leads []model.Task
	doc := Seed(time.Now())
	doc.Boards = append([]model.Board{{ID: "misc", Title: "Misc"}}, doc.Boards...)
	doc.Columns = append(doc.Columns, model.Column{ID: "misc-col", BoardID: "misc"})

	s, _ := newTestService(t, doc, OnLead(func(task model.Task) { leads = append(leads, task) }))

	task, ok := s.AddLeadFromContact(Contact{Name: " Ana ", Email: "ana@example.com", Phone: "555", Message: "Sala 2"})
	if !ok {
		t.Fatal("lead not created")
	}
	if task.ColumnID != "col-new" {
		t.Errorf("lead landed in %s, want col-new", task.ColumnID)
	}
	if task.Title != "Contato: Ana" || task.Order != 1 {
		t.Errorf("task = %+v", task)
	}
	if !strings.Contains(task.Description, "**Email:** ana@example.com") {
		t.Errorf("description = %q", task.Description)
	}
	if !task.HasLabel(model.LeadLabel) {
		t.Error("lead label missing")
	}
	if len(leads) != 1 || leads[0].ID != task.ID {
		t.Errorf("lead listener got %v", leads)
	}

	if _, ok := s.AddLeadFromContact(Contact{Email: "x@y"}); ok {
		t.Error("contact without a name should be rejected")
	}
}

func TestAddLeadFallsBackToFirstBoard(t *testing.T) {
	doc := model.Document{
		Boards:  []model.Board{{ID: "b", Title: "Vendas"}},
		Columns: []model.Column{{ID: "second", BoardID: "b", Order: 1}, {ID: "first", BoardID: "b", Order: 0}},
	}
	s, _ := newTestService(t, doc)
	task, ok := s.AddLead(TaskInput{Title: "Lead", ColumnID: "second"})
	if !ok || task.ColumnID != "first" {
		t.Errorf("task = %+v, ok %v", task, ok)
	}

	empty, _ := newTestService(t, model.Document{})
	if _, ok := empty.AddLead(TaskInput{Title: "Lead"}); ok {
		t.Error("lead without any board should be rejected")
	}
}

func TestTaskDetails(t *testing.T) {
	s, _ := newTestService(t, Seed(time.Now()))

	task, ok := s.AddChecklistItem("task-example", "Enviar proposta")
	if !ok || len(task.Checklist) != 1 {
		t.Fatalf("checklist = %+v", task.Checklist)
	}
	item := task.Checklist[0].ID

	task, _ = s.ToggleChecklistItem("task-example", item)
	if task.ChecklistProgress() != 100 {
		t.Errorf("progress = %d", task.ChecklistProgress())
	}
	if _, ok := s.ToggleChecklistItem("task-example", "nope"); ok {
		t.Error("unknown checklist item should be a no-op")
	}

	task, _ = s.AddComment("task-example", "u1", "Marina", "Ligou de volta")
	if len(task.Comments) != 1 || task.Comments[0].UserName != "Marina" {
		t.Errorf("comments = %+v", task.Comments)
	}

	task, _ = s.AddAttachment("task-example", "planta.pdf", "https://example.com/planta.pdf", "application/pdf")
	if len(task.Attachments) != 1 {
		t.Fatalf("attachments = %+v", task.Attachments)
	}
	task, _ = s.RemoveAttachment("task-example", task.Attachments[0].ID)
	if len(task.Attachments) != 0 {
		t.Errorf("attachment not removed")
	}

	task, _ = s.ToggleLabel("task-example", "#afd9ff")
	if task.HasLabel("#AFD9FF") {
		t.Error("existing label should be toggled off")
	}
	task, _ = s.ToggleLabel("task-example", "#94D1B4")
	if !task.HasLabel("#94D1B4") {
		t.Error("new label should be toggled on")
	}

	task, _ = s.CyclePriority("task-example")
	if task.Priority != model.PriorityHigh {
		t.Errorf("priority = %s, want high", task.Priority)
	}

	task, _ = s.RemoveChecklistItem("task-example", item)
	if len(task.Checklist) != 0 {
		t.Error("checklist item not removed")
	}
}

func TestNewServiceNormalizesDrift(t *testing.T) {
	doc := Seed(time.Now())
	doc.Columns[0].Order = 7
	s, _ := newTestService(t, doc)
	if err := CheckOrder(s.Snapshot()); err != nil {
		t.Fatal(err)
	}
}

func TestReplaceNormalizes(t *testing.T) {
	s, _ := newTestService(t, model.Document{})
	doc := Seed(time.Now())
	doc.Columns[2].Order = 9
	s.Replace(doc)
	if err := CheckOrder(s.Snapshot()); err != nil {
		t.Fatal(err)
	}
	if len(s.Boards()) != 1 {
		t.Errorf("boards = %d", len(s.Boards()))
	}
}

func TestBoardsFavoritesFirst(t *testing.T) {
	s, _ := newTestService(t, model.Document{})
	s.AddBoard(BoardInput{Title: "one"})
	s.AddBoard(BoardInput{Title: "two", IsFavorite: true})
	s.AddBoard(BoardInput{Title: "three"})

	var got []string
	for _, b := range s.Boards() {
		got = append(got, b.Title)
	}
	if want := []string{"two", "one", "three"}; !reflect.DeepEqual(got, want) {
		t.Errorf("boards = %v, want %v", got, want)
	}
}

func TestConcurrentMovesStayDense(t *testing.T) {
	s, _ := newTestService(t, Seed(time.Now()))
	for i := 0; i < 10; i++ {
		s.AddTask(TaskInput{ColumnID: "col-new", Title: fmt.Sprintf("lead %d", i)})
	}
	ids := []string{}
	for _, task := range s.Tasks("col-new") {
		ids = append(ids, task.ID)
	}
	columns := []string{"col-new", "col-progress", "col-done"}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s.MoveTask(ids[(w+i)%len(ids)], columns[(w*i)%len(columns)], i%4)
				_ = s.Columns("leads-board")
			}
		}(w)
	}
	wg.Wait()

	if err := CheckOrder(s.Snapshot()); err != nil {
		t.Fatal(err)
	}
}

func TestResetDoesNotNotify(t *testing.T) {
	calls := 0
	s, _ := newTestService(t, model.Document{}, OnChange(func(model.Document) { calls++ }))
	s.Reset(Seed(time.Now()))
	if calls != 0 {
		t.Errorf("Reset notified listeners %d times", calls)
	}
	if _, ok := s.Board("leads-board"); !ok {
		t.Error("Reset did not install the document")
	}
}
