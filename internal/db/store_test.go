package db

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenAndClose(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	if store.DB() == nil {
		t.Fatal("DB() returned nil")
	}
}

func TestInsertAndFindFolder(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()
	q := store.Queries()

	now := Now()
	if err := q.InsertFolder(ctx, InsertFolderParams{
		ID: "f1", Title: "Documents", ParentID: "",
		CreatedTime: now, UpdatedTime: now, UserCreatedTime: now, UserUpdatedTime: now,
	}); err != nil {
		t.Fatalf("InsertFolder() error = %v", err)
	}

	got, err := q.FindFolder(ctx, "", "Documents")
	if err != nil {
		t.Fatalf("FindFolder() error = %v", err)
	}
	if got.ID != "f1" {
		t.Errorf("FindFolder().ID = %q, want f1", got.ID)
	}
}

func TestFindFolderPrefersLatestUserUpdatedTime(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()
	q := store.Queries()

	if err := q.InsertFolder(ctx, InsertFolderParams{
		ID: "old", Title: "Notes", ParentID: "",
		CreatedTime: 100, UpdatedTime: 100, UserCreatedTime: 100, UserUpdatedTime: 100,
	}); err != nil {
		t.Fatal(err)
	}
	if err := q.InsertFolder(ctx, InsertFolderParams{
		ID: "new", Title: "Notes", ParentID: "",
		CreatedTime: 200, UpdatedTime: 200, UserCreatedTime: 200, UserUpdatedTime: 200,
	}); err != nil {
		t.Fatal(err)
	}

	got, err := q.FindFolder(ctx, "", "Notes")
	if err != nil {
		t.Fatalf("FindFolder() error = %v", err)
	}
	if got.ID != "new" {
		t.Errorf("FindFolder().ID = %q, want new (latest user_updated_time)", got.ID)
	}
}

func TestUpdateNoteBodyTargetsLatestRowOnly(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()
	q := store.Queries()

	if err := q.InsertNote(ctx, InsertNoteParams{
		ID: "dup-old", Title: "x.md", ParentID: "", Body: "old body",
		CreatedTime: 100, UpdatedTime: 100, UserCreatedTime: 100, UserUpdatedTime: 100,
	}); err != nil {
		t.Fatal(err)
	}
	if err := q.InsertNote(ctx, InsertNoteParams{
		ID: "dup-new", Title: "x.md", ParentID: "", Body: "new body",
		CreatedTime: 200, UpdatedTime: 200, UserCreatedTime: 200, UserUpdatedTime: 200,
	}); err != nil {
		t.Fatal(err)
	}

	n, err := q.UpdateNoteBody(ctx, "", "x.md", "updated", 300)
	if err != nil {
		t.Fatalf("UpdateNoteBody() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("UpdateNoteBody() rows affected = %d, want 1", n)
	}

	var oldBody string
	if err := store.DB().QueryRowContext(ctx, "SELECT body FROM notes WHERE id = ?", "dup-old").Scan(&oldBody); err != nil {
		t.Fatal(err)
	}
	if oldBody != "old body" {
		t.Errorf("older duplicate body = %q, want unchanged %q", oldBody, "old body")
	}

	got, err := q.FindNote(ctx, "", "x.md")
	if err != nil {
		t.Fatalf("FindNote() error = %v", err)
	}
	if got.Body != "updated" {
		t.Errorf("FindNote().Body = %q, want updated", got.Body)
	}
}

func TestCountChildren(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()
	q := store.Queries()

	now := Now()
	if err := q.InsertFolder(ctx, InsertFolderParams{ID: "parent", Title: "P", ParentID: "", CreatedTime: now, UpdatedTime: now, UserCreatedTime: now, UserUpdatedTime: now}); err != nil {
		t.Fatal(err)
	}
	folders, notes, err := q.CountChildren(ctx, "parent")
	if err != nil {
		t.Fatalf("CountChildren() error = %v", err)
	}
	if folders != 0 || notes != 0 {
		t.Fatalf("CountChildren() = (%d, %d), want (0, 0)", folders, notes)
	}

	if err := q.InsertNote(ctx, InsertNoteParams{ID: "n1", Title: "a.md", ParentID: "parent", CreatedTime: now, UpdatedTime: now, UserCreatedTime: now, UserUpdatedTime: now}); err != nil {
		t.Fatal(err)
	}
	folders, notes, err = q.CountChildren(ctx, "parent")
	if err != nil {
		t.Fatalf("CountChildren() error = %v", err)
	}
	if folders != 0 || notes != 1 {
		t.Fatalf("CountChildren() = (%d, %d), want (0, 1)", folders, notes)
	}
}
