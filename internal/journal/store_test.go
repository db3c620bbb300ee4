package journal_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"subfetch/internal/journal"
	"subfetch/internal/subtitles"
)

func openStore(t *testing.T) (*journal.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state", "journal.db")
	store, err := journal.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestAppendAndRecent(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	first := &journal.Entry{
		SessionID:   "session-1",
		Mode:        "name",
		Query:       "Inception",
		FileName:    "Inception.2010.srt",
		Language:    "Portuguese (BR)",
		Rating:      subtitles.Rated(9),
		DownloadURL: "https://example.com/dl/1.gz",
		SavedPath:   "/tmp/Inception.2010.srt",
		Bytes:       4096,
	}
	if err := store.Append(ctx, first); err != nil {
		t.Fatalf("Append first: %v", err)
	}
	if first.ID == "" || first.CreatedAt.IsZero() || first.Status != journal.StatusSucceeded {
		t.Fatalf("expected defaults assigned, got %+v", first)
	}

	second := &journal.Entry{
		SessionID:   "session-1",
		Mode:        "fingerprint",
		Query:       "000000000001c000",
		SourcePath:  "/movies/heat.mkv",
		FileName:    "Heat.srt",
		DownloadURL: "https://example.com/dl/2.gz",
		Error:       "transport failure",
		CreatedAt:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("x", 3600)),
	}
	if err := store.Append(ctx, second); err != nil {
		t.Fatalf("Append second: %v", err)
	}
	if second.Status != journal.StatusFailed {
		t.Fatalf("expected failed status for entry with error, got %q", second.Status)
	}

	entries, err := store.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != second.ID || entries[1].ID != first.ID {
		t.Fatalf("expected newest first, got %q then %q", entries[0].ID, entries[1].ID)
	}
	got := entries[0]
	if got.SourcePath != "/movies/heat.mkv" || got.Rating != nil || got.Error != "transport failure" {
		t.Fatalf("unexpected failed entry: %+v", got)
	}
	if !got.CreatedAt.Equal(second.CreatedAt) || got.CreatedAt.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp preserved, got %s", got.CreatedAt)
	}
	if entries[1].Rating == nil || *entries[1].Rating != 9 || entries[1].Bytes != 4096 {
		t.Fatalf("unexpected succeeded entry: %+v", entries[1])
	}

	limited, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent limited: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != second.ID {
		t.Fatalf("expected only newest entry, got %+v", limited)
	}
}

func TestSessionAndClear(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	for _, session := range []string{"a", "b", "a"} {
		entry := &journal.Entry{SessionID: session, Mode: "name", Query: "q", FileName: "f.srt", DownloadURL: "u"}
		if err := store.Append(ctx, entry); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	entries, err := store.Session(ctx, "a")
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries for session a, got %d", len(entries))
	}

	removed, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}
	remaining, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected empty journal, got %d", len(remaining))
	}
}

func TestAppendRejectsIncompleteEntries(t *testing.T) {
	store, _ := openStore(t)
	if err := store.Append(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil entry")
	}
	if err := store.Append(context.Background(), &journal.Entry{FileName: "x.srt"}); err == nil {
		t.Fatal("expected error for missing download url")
	}
}

func TestAppendKeepsFailedEntryWithoutURL(t *testing.T) {
	store, _ := openStore(t)
	entry := &journal.Entry{SessionID: "s", Mode: "name", Query: "Heat", FileName: "Heat.srt", Error: "empty download url"}
	if err := store.Append(context.Background(), entry); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if entry.Status != journal.StatusFailed {
		t.Fatalf("expected failed status, got %q", entry.Status)
	}
	entries, err := store.Session(context.Background(), "s")
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if len(entries) != 1 || entries[0].DownloadURL != "" || entries[0].Error != "empty download url" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	store, path := openStore(t)
	entry := &journal.Entry{SessionID: "s", Mode: "name", Query: "q", FileName: "f.srt", DownloadURL: "u"}
	if err := store.Append(context.Background(), entry); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := journal.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	entries, err := reopened.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != entry.ID {
		t.Fatalf("expected persisted entry, got %+v", entries)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	store, path := openStore(t)
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := journal.Open(path); !errors.Is(err, journal.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := journal.Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
