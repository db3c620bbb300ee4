package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const entryColumns = `id, session_id, mode, query, source_path, file_name, language, rating,
    download_url, saved_path, bytes, status, error_message, created_at`

// Store persists download entries in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the journal database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("journal path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append inserts entry, assigning an ID and timestamp when they are unset.
func (s *Store) Append(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return errors.New("entry is nil")
	}
	if entry.Status == "" {
		entry.Status = StatusSucceeded
		if entry.Error != "" {
			entry.Status = StatusFailed
		}
	}
	// Failed attempts are kept even when the candidate carried no link.
	if entry.Status == StatusSucceeded &&
		(strings.TrimSpace(entry.FileName) == "" || strings.TrimSpace(entry.DownloadURL) == "") {
		return errors.New("successful entry requires file name and download url")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC()

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO downloads (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.SessionID,
		entry.Mode,
		entry.Query,
		nullableString(entry.SourcePath),
		entry.FileName,
		nullableString(entry.Language),
		nullableFloat(entry.Rating),
		entry.DownloadURL,
		nullableString(entry.SavedPath),
		entry.Bytes,
		string(entry.Status),
		nullableString(entry.Error),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert download entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A non-positive limit
// returns every entry.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM downloads ORDER BY seq DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryEntries(ctx, query, args...)
}

// Session returns the entries recorded by one session in insertion order.
func (s *Store) Session(ctx context.Context, sessionID string) ([]Entry, error) {
	return s.queryEntries(ctx,
		`SELECT `+entryColumns+` FROM downloads WHERE session_id = ? ORDER BY seq`,
		sessionID,
	)
}

// Clear removes every entry and reports how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM downloads`)
	if err != nil {
		return 0, fmt.Errorf("clear journal: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var (
		entry                                Entry
		sourcePath, language, savedPath, msg sql.NullString
		rating                               sql.NullFloat64
		status, createdAt                    string
	)
	if err := row.Scan(
		&entry.ID,
		&entry.SessionID,
		&entry.Mode,
		&entry.Query,
		&sourcePath,
		&entry.FileName,
		&language,
		&rating,
		&entry.DownloadURL,
		&savedPath,
		&entry.Bytes,
		&status,
		&msg,
		&createdAt,
	); err != nil {
		return Entry{}, fmt.Errorf("scan journal entry: %w", err)
	}
	entry.SourcePath = sourcePath.String
	entry.Language = language.String
	entry.SavedPath = savedPath.String
	entry.Error = msg.String
	entry.Status = Status(status)
	if rating.Valid {
		value := rating.Float64
		entry.Rating = &value
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Entry{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	entry.CreatedAt = ts
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}
