package main

import (
	"context"

	"subfetch/internal/config"
	"subfetch/internal/journal"
	"subfetch/internal/workflow"
)

// journalRecorder persists workflow download attempts.
type journalRecorder struct {
	store *journal.Store
}

func newJournalRecorder(store *journal.Store) *journalRecorder {
	return &journalRecorder{store: store}
}

func openJournalStore(cfg *config.Config) (*journal.Store, error) {
	return journal.Open(cfg.Journal.Path)
}

func (r *journalRecorder) Record(ctx context.Context, record workflow.DownloadRecord) error {
	return r.store.Append(ctx, entryFromRecord(record))
}

func entryFromRecord(record workflow.DownloadRecord) *journal.Entry {
	entry := &journal.Entry{
		SessionID:   record.SessionID,
		Mode:        record.Query.Mode.String(),
		Query:       record.Query.String(),
		SourcePath:  record.Query.Source,
		FileName:    record.Candidate.FileName,
		Language:    record.Candidate.Language,
		Rating:      record.Candidate.Rating,
		DownloadURL: record.Candidate.DownloadURL,
		SavedPath:   record.Path,
		Bytes:       int64(record.Bytes),
		Status:      journal.StatusSucceeded,
		CreatedAt:   record.At,
	}
	if record.Err != nil {
		entry.Status = journal.StatusFailed
		entry.Error = record.Err.Error()
	}
	return entry
}
