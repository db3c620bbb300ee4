package workflow

import (
	"context"
	"errors"
	"time"

	"subfetch/internal/media"
	"subfetch/internal/moviehash"
	"subfetch/internal/subtitles"
)

var (
	// ErrInvalidInput marks operator input outside the offered choices. It is
	// always recovered by prompting again.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks a branch that found no media files or no subtitles.
	ErrNotFound = errors.New("not found")
	// ErrEmptyQuery marks a title search attempted with blank text.
	ErrEmptyQuery = errors.New("empty query")
	// ErrNoSelection marks a media pick cancelled by the operator.
	ErrNoSelection = errors.New("no media file selected")
)

// State names a step of the session state machine.
type State string

const (
	StateChooseMode State = "choose_mode"
	StateObtainKey  State = "obtain_key"
	StateFetch      State = "fetch"
	StateEmpty      State = "empty"
	StateRank       State = "rank"
	StatePick       State = "pick"
	StateCancelled  State = "cancelled"
	StateDownload   State = "download"
	StateContinue   State = "continue"
	StateTerminal   State = "terminal"
)

// Mode selects how the session identifies the movie.
type Mode int

const (
	ModeName Mode = iota + 1
	ModeFingerprint
)

func (m Mode) String() string {
	switch m {
	case ModeName:
		return "name"
	case ModeFingerprint:
		return "fingerprint"
	default:
		return "unknown"
	}
}

// QueryKey is the search key for one fetch: a title in ModeName or a movie
// hash in ModeFingerprint. Source records the media file it came from, if any.
type QueryKey struct {
	Mode   Mode
	Title  string
	Hash   moviehash.Hash
	Source string
}

// String renders the key the way it is sent to the index.
func (k QueryKey) String() string {
	if k.Mode == ModeFingerprint {
		return k.Hash.String()
	}
	return k.Title
}

// Outcome summarizes how a session ended.
type Outcome string

const (
	// OutcomeCompleted means the operator finished the download loop.
	OutcomeCompleted Outcome = "completed"
	// OutcomeCancelled means the operator chose 0 at the selection prompt.
	OutcomeCancelled Outcome = "cancelled"
	// OutcomeNotFound means no media files or no subtitles were found.
	OutcomeNotFound Outcome = "not_found"
	// OutcomeAborted means the branch stopped before a search could run, or
	// the console or context ended the session.
	OutcomeAborted Outcome = "aborted"
)

// DownloadRecord is one download attempt within a session.
type DownloadRecord struct {
	SessionID string
	Query     QueryKey
	Candidate subtitles.Candidate
	Path      string
	Bytes     int
	Err       error
	At        time.Time
}

// Succeeded reports whether the subtitle was written.
func (r DownloadRecord) Succeeded() bool {
	return r.Err == nil
}

// Result describes a finished session.
type Result struct {
	SessionID  string
	Outcome    Outcome
	Query      QueryKey
	Candidates subtitles.RankedList
	Downloads  []DownloadRecord
	// Reason explains OutcomeNotFound and OutcomeAborted.
	Reason error
}

// Notice classifies operator-facing messages.
type Notice int

const (
	NoticeInfo Notice = iota
	NoticeSuccess
	NoticeWarn
	NoticeError
)

// Console is the operator conversation. Prompt blocks for one line of input.
type Console interface {
	Prompt(ctx context.Context, message string) (string, error)
	Notify(kind Notice, message string)
	ShowMedia(files []media.File)
	ShowCandidates(list subtitles.RankedList)
}

// Index searches for and fetches subtitles.
type Index interface {
	SearchByName(ctx context.Context, title string) ([]subtitles.Candidate, error)
	SearchByHash(ctx context.Context, hash moviehash.Hash) ([]subtitles.Candidate, error)
	Fetch(ctx context.Context, candidate subtitles.Candidate) ([]byte, error)
}

// MediaFinder discovers video files beneath a root directory.
type MediaFinder interface {
	Find(root string) ([]media.File, error)
}

// Saver stores a downloaded subtitle and returns its path.
type Saver interface {
	Save(candidate subtitles.Candidate, data []byte) (string, error)
}

// Recorder receives every download attempt. Failures are logged and ignored.
type Recorder interface {
	Record(ctx context.Context, record DownloadRecord) error
}

// Hasher fingerprints a media file.
type Hasher func(path string) (moviehash.Hash, error)
