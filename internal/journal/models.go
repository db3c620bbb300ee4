package journal

import "time"

// Status records whether a download attempt produced a file.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Entry is one recorded download attempt.
type Entry struct {
	ID          string
	SessionID   string
	Mode        string
	Query       string
	SourcePath  string
	FileName    string
	Language    string
	Rating      *float64
	DownloadURL string
	SavedPath   string
	Bytes       int64
	Status      Status
	Error       string
	CreatedAt   time.Time
}
