package app

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dori/leadboard/internal/board"
	"github.com/dori/leadboard/internal/config"
	"github.com/dori/leadboard/internal/db"
	"github.com/dori/leadboard/internal/model"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.DataDir = dir
	cfg.DBPath = filepath.Join(dir, "test.db")
	cfg.Notifications = false
	return cfg
}

func TestNewSeedsEmptyStore(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	if _, ok := a.Service.Board("leads-board"); !ok {
		t.Fatal("seed board missing")
	}
	stored, err := a.DB.Load(context.Background(), cfg.DocumentKey)
	if err != nil || stored == nil {
		t.Fatalf("seed not persisted: %v, %v", stored, err)
	}
}

func TestMutationsPersistAcrossRestart(t *testing.T) {
	cfg := testConfig(t)

	a, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	lead, ok := a.Service.AddLeadFromContact(board.Contact{Name: "Ana", Email: "ana@example.com"})
	if !ok {
		t.Fatal("lead not created")
	}
	if !a.Service.MoveTask(lead.ID, "col-progress", 0) {
		t.Fatal("move failed")
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	b, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer b.Close()

	got, ok := b.Service.Task(lead.ID)
	if !ok {
		t.Fatal("lead lost across restart")
	}
	if got.ColumnID != "col-progress" || got.Order != 0 {
		t.Errorf("lead = %+v", got)
	}
}

func TestSecondInstanceIsLockedOut(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	if b, err := New(cfg, nil); err == nil {
		b.Close()
		t.Fatal("expected the second instance to fail")
	}
}

func TestRestore(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()
	ctx := context.Background()

	a.Service.AddBoard(board.BoardInput{Title: "Parcerias"})
	if err := a.Autosaver.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if len(a.Service.Boards()) != 2 {
		t.Fatalf("boards = %d, want 2", len(a.Service.Boards()))
	}

	revs, err := a.History(ctx, 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(revs) != 2 || revs[1].Revision != 1 {
		t.Fatalf("history = %+v", revs)
	}

	rev, err := a.Restore(ctx, 1)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if rev != 3 {
		t.Errorf("restored as revision %d, want 3", rev)
	}
	if len(a.Service.Boards()) != 1 {
		t.Errorf("boards after restore = %d, want 1", len(a.Service.Boards()))
	}
}

func TestImport(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	bad := model.Document{Tasks: []model.Task{{ID: "t", ColumnID: "nowhere"}}}
	if err := a.Import(bad); err == nil {
		t.Error("expected orphan task to be rejected")
	}

	doc := model.Document{
		Boards:  []model.Board{{ID: "b", Title: "Imported"}},
		Columns: []model.Column{{ID: "c", BoardID: "b", Order: 4}},
	}
	if err := a.Import(doc); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	col, ok := a.Service.Column("c")
	if !ok || col.Order != 0 {
		t.Errorf("imported column = %+v, %v", col, ok)
	}
	if err := a.Autosaver.Flush(context.Background()); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	stored, err := a.DB.Load(context.Background(), cfg.DocumentKey)
	if err != nil || len(stored.Boards) != 1 || stored.Boards[0].Title != "Imported" {
		t.Errorf("stored = %+v, %v", stored, err)
	}
}

func TestNewRejectsDuplicateStoredIDs(t *testing.T) {
	cfg := testConfig(t)

	store, err := db.Open(cfg.DBPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	doc := model.Document{
		Boards: []model.Board{{ID: "b1", Title: "Leads"}},
		Columns: []model.Column{
			{ID: "A", BoardID: "b1", Title: "first", Order: 0},
			{ID: "A", BoardID: "b1", Title: "second", Order: 1},
		},
	}
	if _, err := store.Save(context.Background(), cfg.DocumentKey, doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	store.Close()

	a, err := New(cfg, nil)
	if err == nil {
		a.Close()
		t.Fatal("expected duplicate ids to be rejected")
	}
	if !strings.Contains(err.Error(), "duplicate id A") {
		t.Errorf("error = %v", err)
	}
}

func TestInvalidIndexPolicy(t *testing.T) {
	cfg := testConfig(t)
	cfg.IndexPolicy = "loose"
	if _, err := New(cfg, nil); err == nil {
		t.Fatal("expected an error")
	}
}
