package subtitles

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"subfetch/internal/logging"
	"subfetch/internal/textutil"
)

// ErrWrite reports a failure storing a downloaded subtitle.
var ErrWrite = errors.New("subtitle write failed")

// Writer stores subtitle payloads in a directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter returns a Writer rooted at dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logging.NewComponentLogger(logger, "writer")}
}

// Dir returns the target directory.
func (w *Writer) Dir() string {
	return w.dir
}

// TargetName returns the file name a candidate is saved under: its own file
// name stripped of any directory part and unsafe characters. Candidates
// without a usable name fall back to the movie name plus format.
func TargetName(candidate Candidate) string {
	name := strings.ReplaceAll(candidate.FileName, "\\", "/")
	if name = textutil.SanitizeFileName(filepath.Base(name)); name != "" {
		return name
	}
	format := textutil.SanitizeToken(candidate.Format)
	if format == "unknown" {
		format = "srt"
	}
	return textutil.SanitizeToken(candidate.MovieName) + "." + format
}

// Save writes data for candidate and returns the written path. An existing
// file of the same name is replaced.
func (w *Writer) Save(candidate Candidate, data []byte) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create download dir: %v", ErrWrite, err)
	}
	path := filepath.Join(w.dir, TargetName(candidate))
	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrWrite, path, err)
	}
	w.logger.Debug("subtitle written", logging.String("path", path), logging.Int("bytes", len(data)))
	return path, nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".subfetch-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
