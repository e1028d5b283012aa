package db

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/dori/leadboard/internal/model"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleDocument(title string) model.Document {
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	due := now.Add(48 * time.Hour)
	return model.Document{
		Boards: []model.Board{{ID: "b1", Title: title, Color: "#94D1B4", IsFavorite: true, CreatedAt: now, UpdatedAt: now}},
		Columns: []model.Column{
			{ID: "c1", BoardID: "b1", Title: "Novos", Order: 0, Active: true, CreatedAt: now, UpdatedAt: now},
			{ID: "c2", BoardID: "b1", Title: "Feitos", Order: 1, Active: true, CreatedAt: now, UpdatedAt: now},
		},
		Tasks: []model.Task{{
			ID:          "t1",
			ColumnID:    "c1",
			Title:       "Contato: Ana",
			Priority:    model.PriorityHigh,
			DueDate:     &due,
			Labels:      []string{"#2F4F6F"},
			Checklist:   []model.ChecklistItem{{ID: "i1", Text: "Ligar", Completed: true}},
			Comments:    []model.Comment{},
			Attachments: []model.Attachment{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}},
	}
}

func TestLoadMissingReturnsNil(t *testing.T) {
	db := openTestDB(t)

	doc, err := db.Load(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if doc != nil {
		t.Fatalf("expected nil document, got %+v", doc)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	want := sampleDocument("Leads")

	rev, err := db.Save(ctx, "crm", want)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if rev != 1 {
		t.Errorf("first revision = %d, want 1", rev)
	}

	got, err := db.Load(ctx, "crm")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got == nil {
		t.Fatal("document missing after save")
	}
	if got.Tasks[0].DueDate == nil || !got.Tasks[0].DueDate.Equal(*want.Tasks[0].DueDate) {
		t.Errorf("due date = %v", got.Tasks[0].DueDate)
	}
	// time.Time loses its monotonic reading and location pointer on a round
	// trip; compare the re-encoded bodies instead
	wantBody, _ := EncodeDocument(want)
	gotBody, _ := EncodeDocument(*got)
	if string(wantBody) != string(gotBody) {
		t.Errorf("round trip mismatch:\n got %s\nwant %s", gotBody, wantBody)
	}
}

func TestSaveIncrementsRevisionAndTrimsHistory(t *testing.T) {
	db := openTestDB(t)
	db.SetHistoryLimit(3)
	ctx := context.Background()

	var rev int64
	for i := 0; i < 5; i++ {
		var err error
		rev, err = db.Save(ctx, "crm", sampleDocument("v"+string(rune('0'+i))))
		if err != nil {
			t.Fatalf("Save %d failed: %v", i, err)
		}
	}
	if rev != 5 {
		t.Errorf("revision = %d, want 5", rev)
	}

	current, err := db.Revision(ctx, "crm")
	if err != nil || current != 5 {
		t.Errorf("Revision = %d, %v", current, err)
	}

	revs, err := db.History(ctx, "crm", 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	var got []int64
	for _, r := range revs {
		got = append(got, r.Revision)
		if r.Size == 0 || r.SavedAt.IsZero() {
			t.Errorf("revision %d missing metadata: %+v", r.Revision, r)
		}
	}
	if want := []int64{5, 4, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("history = %v, want %v", got, want)
	}

	limited, err := db.History(ctx, "crm", 1)
	if err != nil || len(limited) != 1 || limited[0].Revision != 5 {
		t.Errorf("limited history = %+v, %v", limited, err)
	}
}

func TestHistoryDisabled(t *testing.T) {
	db := openTestDB(t)
	db.SetHistoryLimit(0)
	ctx := context.Background()

	if _, err := db.Save(ctx, "crm", sampleDocument("Leads")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	revs, err := db.History(ctx, "crm", 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(revs) != 0 {
		t.Errorf("history = %+v, want none", revs)
	}
}

func TestRestore(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.Save(ctx, "crm", sampleDocument("first")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := db.Save(ctx, "crm", sampleDocument("second")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	doc, rev, err := db.Restore(ctx, "crm", 1)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if rev != 3 {
		t.Errorf("restored revision = %d, want 3", rev)
	}
	if doc.Boards[0].Title != "first" {
		t.Errorf("restored title = %q", doc.Boards[0].Title)
	}

	current, err := db.Load(ctx, "crm")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if current.Boards[0].Title != "first" {
		t.Errorf("current title = %q, want first", current.Boards[0].Title)
	}

	_, _, err = db.Restore(ctx, "crm", 42)
	if !errors.Is(err, ErrRevisionNotFound) {
		t.Errorf("Restore of unknown revision: %v", err)
	}
}

func TestReopenKeepsDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if _, err := db.Save(ctx, "crm", sampleDocument("Leads")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer db.Close()

	doc, err := db.Load(ctx, "crm")
	if err != nil || doc == nil {
		t.Fatalf("Load after reopen = %v, %v", doc, err)
	}
	if doc.Boards[0].Title != "Leads" {
		t.Errorf("title = %q", doc.Boards[0].Title)
	}
}

// TestConcurrentSavesNoDeadlock guards the single-connection pool: Save and
// Restore run their reads inside the transaction instead of going back to
// the pool, which would block forever with SetMaxOpenConns(1).
func TestConcurrentSavesNoDeadlock(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.Save(ctx, "crm", sampleDocument("base")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	done := make(chan bool, 1)
	go func() {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if i%2 == 0 {
					if _, _, err := db.Restore(ctx, "crm", 1); err != nil {
						t.Errorf("Restore failed: %v", err)
					}
					return
				}
				if _, err := db.Save(ctx, "crm", sampleDocument("concurrent")); err != nil {
					t.Errorf("Save failed: %v", err)
				}
				if _, err := db.History(ctx, "crm", 0); err != nil {
					t.Errorf("History failed: %v", err)
				}
			}(i)
		}
		wg.Wait()
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Test timed out - possible deadlock detected")
	}

	rev, err := db.Revision(ctx, "crm")
	if err != nil {
		t.Fatalf("Revision failed: %v", err)
	}
	if rev != 9 {
		t.Errorf("revision = %d, want 9", rev)
	}
}
