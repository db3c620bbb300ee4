package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"subfetch/internal/logging"
	"subfetch/internal/media"
	"subfetch/internal/moviehash"
	"subfetch/internal/subtitles"
)

const (
	nameSourceTyped = 1
	nameSourceFile  = 2
)

func (s *Session) chooseMode(ctx context.Context, r *run) (State, error) {
	choice, err := s.readChoice(ctx, "Search by: (1) Movie name (2) Movie hash: ", 1, 2)
	if err != nil {
		return StateTerminal, err
	}
	r.mode = Mode(choice)
	logging.WithContext(ctx, s.logger).Debug("identification mode chosen", logging.String("mode", r.mode.String()))
	return StateObtainKey, nil
}

func (s *Session) obtainKey(ctx context.Context, r *run) (State, error) {
	if r.mode == ModeFingerprint {
		return s.obtainHash(ctx, r)
	}

	source, err := s.readChoice(ctx, "Name source: (1) Type the movie name (2) Use a video file name: ", nameSourceTyped, nameSourceFile)
	if err != nil {
		return StateTerminal, err
	}

	var title, origin string
	if source == nameSourceTyped {
		line, err := s.console.Prompt(ctx, "Movie name: ")
		if err != nil {
			return StateTerminal, fmt.Errorf("read movie name: %w", err)
		}
		title = strings.TrimSpace(line)
	} else {
		file, next, err := s.pickMedia(ctx, r)
		if err != nil || next != "" {
			return next, err
		}
		title = file.Title()
		origin = file.Path
	}

	if title == "" {
		s.console.Notify(NoticeWarn, "The movie name cannot be empty.")
		return r.finish(OutcomeAborted, ErrEmptyQuery), nil
	}
	r.key = QueryKey{Mode: ModeName, Title: title, Source: origin}
	return StateFetch, nil
}

func (s *Session) obtainHash(ctx context.Context, r *run) (State, error) {
	file, next, err := s.pickMedia(ctx, r)
	if err != nil || next != "" {
		return next, err
	}

	hash, err := s.hasher(file.Path)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "movie hash failed", "moviehash_failed",
			logging.String("path", file.Path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "pick a complete video file of at least 128 KiB"),
			logging.String(logging.FieldImpact, "hash search skipped"),
		)
		s.console.Notify(NoticeError, hashFailureMessage(file, err))
		return r.finish(OutcomeAborted, err), nil
	}

	logging.WithContext(ctx, s.logger).Info("movie hash computed",
		logging.String("path", file.Path),
		logging.Int64("size_bytes", file.Size),
		logging.Hash("hash", uint64(hash)),
	)
	s.console.Notify(NoticeInfo, fmt.Sprintf("Movie hash for %s: %s", file.Name(), hash))
	r.key = QueryKey{Mode: ModeFingerprint, Hash: hash, Source: file.Path}
	return StateFetch, nil
}

func hashFailureMessage(file media.File, err error) string {
	switch {
	case errors.Is(err, moviehash.ErrTooSmall):
		return fmt.Sprintf("%s is too small to hash (%s, needs at least %s).",
			file.Name(), humanize.IBytes(uint64(file.Size)), humanize.IBytes(moviehash.MinSize))
	case errors.Is(err, moviehash.ErrUnreadable):
		return fmt.Sprintf("Could not read %s to compute its hash.", file.Name())
	default:
		return fmt.Sprintf("Could not compute the hash of %s.", file.Name())
	}
}

// pickMedia lists discovered media and lets the operator pick one. A non-empty
// State means the branch ended and the caller should transition to it.
func (s *Session) pickMedia(ctx context.Context, r *run) (media.File, State, error) {
	files, err := s.finder.Find(s.mediaRoot)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "media discovery failed", "media_discovery_failed",
			logging.String("root", s.mediaRoot),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the directory exists and is readable"),
			logging.String(logging.FieldImpact, "no media file can be offered"),
		)
		s.console.Notify(NoticeError, fmt.Sprintf("Could not read the directory %s.", s.mediaRoot))
		return media.File{}, r.finish(OutcomeAborted, err), nil
	}
	if len(files) == 0 {
		s.console.Notify(NoticeWarn, fmt.Sprintf("No video files found in %s.", s.mediaRoot))
		return media.File{}, r.finish(OutcomeNotFound, fmt.Errorf("%w: no video files in %s", ErrNotFound, s.mediaRoot)), nil
	}

	s.console.ShowMedia(files)
	choice, err := s.readChoice(ctx, fmt.Sprintf("Choose a video file (0-%d): ", len(files)), 0, len(files))
	if err != nil {
		return media.File{}, StateTerminal, err
	}
	if choice == 0 {
		s.console.Notify(NoticeInfo, "No video file selected.")
		return media.File{}, r.finish(OutcomeAborted, ErrNoSelection), nil
	}
	return files[choice-1], "", nil
}

func (s *Session) fetch(ctx context.Context, r *run) (State, error) {
	r.result.Query = r.key
	logger := logging.WithContext(ctx, s.logger)

	var (
		candidates []subtitles.Candidate
		err        error
	)
	switch r.key.Mode {
	case ModeFingerprint:
		candidates, err = s.index.SearchByHash(ctx, r.key.Hash)
	default:
		candidates, err = s.index.SearchByName(ctx, r.key.Title)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return StateTerminal, ctxErr
		}
		logging.WarnWithContext(logger, "subtitle search failed", "index_search_failed",
			logging.String("mode", r.key.Mode.String()),
			logging.String("query", r.key.String()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check network access and the index base_url"),
			logging.String(logging.FieldImpact, "no candidates to offer"),
		)
		r.fetchErr = err
		return StateEmpty, nil
	}
	if len(candidates) == 0 {
		return StateEmpty, nil
	}

	logger.Debug("candidates fetched", logging.Int("count", len(candidates)))
	r.fetched = candidates
	return StateRank, nil
}

func (s *Session) empty(r *run) State {
	if r.fetchErr != nil {
		s.console.Notify(NoticeError, "The subtitle search failed. No subtitles found.")
		return r.finish(OutcomeNotFound, fmt.Errorf("%w: %w", ErrNotFound, r.fetchErr))
	}
	s.console.Notify(NoticeWarn, "No subtitles found.")
	return r.finish(OutcomeNotFound, fmt.Errorf("%w: no subtitles for %q", ErrNotFound, r.key.String()))
}

func (s *Session) rank(r *run) State {
	r.list = subtitles.Rank(r.fetched)
	r.result.Candidates = r.list
	s.console.ShowCandidates(r.list)
	return StatePick
}

func (s *Session) pick(ctx context.Context, r *run) (State, error) {
	n := r.list.Len()
	choice, err := s.readChoice(ctx, fmt.Sprintf("Choose a number (0-%d): ", n), 0, n)
	if err != nil {
		return StateTerminal, err
	}
	if choice == 0 {
		return StateCancelled, nil
	}
	r.selection = choice
	return StateDownload, nil
}

func (s *Session) download(ctx context.Context, r *run) State {
	candidate, _ := r.list.Pick(r.selection)
	logger := logging.WithContext(ctx, s.logger)
	record := DownloadRecord{
		SessionID: s.id,
		Query:     r.key,
		Candidate: candidate,
		At:        time.Now().UTC(),
	}

	data, err := s.index.Fetch(ctx, candidate)
	if err == nil {
		record.Bytes = len(data)
		record.Path, err = s.saver.Save(candidate, data)
	}
	record.Err = err

	if err != nil {
		logging.WarnWithContext(logger, "subtitle download failed", "subtitle_download_failed",
			logging.String("file_name", candidate.FileName),
			logging.Int("selection", r.selection),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "pick another candidate or retry later"),
			logging.String(logging.FieldImpact, "subtitle not saved"),
		)
		s.console.Notify(NoticeError, fmt.Sprintf("Download failed for %s: %v", candidate.FileName, err))
	} else {
		attrs := []logging.Attr{
			logging.String("file_name", candidate.FileName),
			logging.String("path", record.Path),
			logging.Int("bytes", record.Bytes),
		}
		if candidate.HasRating() {
			attrs = append(attrs, logging.Float64("rating", *candidate.Rating))
		}
		logger.Info("subtitle downloaded", logging.Args(attrs...)...)
		s.console.Notify(NoticeSuccess, fmt.Sprintf("Subtitle downloaded: %s (%s)", record.Path, humanize.Bytes(uint64(record.Bytes))))
	}

	r.result.Downloads = append(r.result.Downloads, record)
	if s.recorder != nil {
		if recErr := s.recorder.Record(ctx, record); recErr != nil {
			logging.WarnWithContext(logger, "download journal write failed", "journal_write_failed",
				logging.Error(recErr),
				logging.String(logging.FieldErrorHint, "check journal.path permissions"),
				logging.String(logging.FieldImpact, "download missing from history"),
			)
		}
	}
	return StateContinue
}

func (s *Session) askContinue(ctx context.Context, r *run) (State, error) {
	answer, err := s.console.Prompt(ctx, "Keep downloading? (y/n): ")
	if err != nil {
		return StateTerminal, fmt.Errorf("read continue answer: %w", err)
	}
	if isYes(answer) {
		return StatePick, nil
	}
	return r.finish(OutcomeCompleted, nil), nil
}
