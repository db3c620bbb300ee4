package media

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"subfetch/internal/logging"
)

// ErrUnreadable reports that the discovery root could not be read.
var ErrUnreadable = errors.New("media directory unreadable")

// File is one discovered video file.
type File struct {
	Path string
	Size int64
}

// Name returns the file's base name.
func (f File) Name() string {
	return filepath.Base(f.Path)
}

// Title returns the base name with its extension stripped, suitable as a
// search title.
func (f File) Title() string {
	return TitleFromPath(f.Path)
}

// TitleFromPath strips directory and extension from path. Leading dots are
// part of the name, so ".mkv" keeps its whole base name as the title.
func TitleFromPath(path string) string {
	base := filepath.Base(path)
	name := strings.TrimLeft(base, ".")
	return strings.TrimSpace(base[:len(base)-len(filepath.Ext(name))])
}

// Finder walks directories for files whose extension is on the allow-list.
type Finder struct {
	extensions map[string]struct{}
	logger     *slog.Logger
}

// NewFinder builds a Finder for the given extensions. Extensions are matched
// case-insensitively and may be given with or without a leading dot.
func NewFinder(extensions []string, logger *slog.Logger) *Finder {
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		normalized := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
		if normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}
	return &Finder{
		extensions: allowed,
		logger:     logging.NewComponentLogger(logger, "media"),
	}
}

// Matches reports whether path carries an allowed extension.
func (f *Finder) Matches(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return false
	}
	_, ok := f.extensions[ext]
	return ok
}

// Find returns every matching regular file under root in walk order.
func (f *Finder) Find(root string) ([]File, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		root = "."
	}

	var files []File
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			logging.WarnWithContext(f.logger, "skipping unreadable path", "media_walk_skip",
				logging.String("path", path),
				logging.Error(walkErr),
				logging.String(logging.FieldErrorHint, "check directory permissions"),
				logging.String(logging.FieldImpact, "files below this path are not offered"),
			)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() || !f.Matches(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			f.logger.Debug("stat failed for media file", logging.String("path", path), logging.Error(err))
			return nil
		}
		files = append(files, File{Path: path, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, root, err)
	}

	f.logger.Debug("media discovery completed",
		logging.String("root", root),
		logging.Int("files", len(files)),
	)
	return files, nil
}
