package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subfetch/internal/logging"
	"subfetch/internal/media"
	"subfetch/internal/moviehash"
	"subfetch/internal/subtitles"
	"subfetch/internal/testsupport"
)

type notice struct {
	kind    Notice
	message string
}

// scriptedConsole replays canned answers and records everything shown.
type scriptedConsole struct {
	inputs     []string
	prompts    []string
	notices    []notice
	media      [][]media.File
	candidates []subtitles.RankedList
}

func newScriptedConsole(inputs ...string) *scriptedConsole {
	return &scriptedConsole{inputs: inputs}
}

func (c *scriptedConsole) Prompt(_ context.Context, message string) (string, error) {
	c.prompts = append(c.prompts, message)
	if len(c.inputs) == 0 {
		return "", io.EOF
	}
	next := c.inputs[0]
	c.inputs = c.inputs[1:]
	return next, nil
}

func (c *scriptedConsole) Notify(kind Notice, message string) {
	c.notices = append(c.notices, notice{kind: kind, message: message})
}

func (c *scriptedConsole) ShowMedia(files []media.File) {
	c.media = append(c.media, files)
}

func (c *scriptedConsole) ShowCandidates(list subtitles.RankedList) {
	c.candidates = append(c.candidates, list)
}

func (c *scriptedConsole) noticeContaining(fragment string) bool {
	for _, n := range c.notices {
		if strings.Contains(n.message, fragment) {
			return true
		}
	}
	return false
}

func (c *scriptedConsole) countNotices(fragment string) int {
	count := 0
	for _, n := range c.notices {
		if strings.Contains(n.message, fragment) {
			count++
		}
	}
	return count
}

type fakeIndex struct {
	results      []subtitles.Candidate
	searchErr    error
	fetchErrs    map[string]error
	titles       []string
	hashes       []moviehash.Hash
	fetched      []string
	payloadByURL map[string]string
}

func (f *fakeIndex) SearchByName(_ context.Context, title string) ([]subtitles.Candidate, error) {
	f.titles = append(f.titles, title)
	return f.results, f.searchErr
}

func (f *fakeIndex) SearchByHash(_ context.Context, hash moviehash.Hash) ([]subtitles.Candidate, error) {
	f.hashes = append(f.hashes, hash)
	return f.results, f.searchErr
}

func (f *fakeIndex) Fetch(_ context.Context, candidate subtitles.Candidate) ([]byte, error) {
	f.fetched = append(f.fetched, candidate.DownloadURL)
	if err := f.fetchErrs[candidate.DownloadURL]; err != nil {
		return nil, err
	}
	if payload, ok := f.payloadByURL[candidate.DownloadURL]; ok {
		return []byte(payload), nil
	}
	return []byte("payload for " + candidate.FileName), nil
}

type fakeFinder struct {
	files []media.File
	err   error
	roots []string
}

func (f *fakeFinder) Find(root string) ([]media.File, error) {
	f.roots = append(f.roots, root)
	return f.files, f.err
}

type recorderFunc func(context.Context, DownloadRecord) error

func (fn recorderFunc) Record(ctx context.Context, record DownloadRecord) error {
	return fn(ctx, record)
}

type harness struct {
	console  *scriptedConsole
	index    *fakeIndex
	finder   MediaFinder
	dir      string
	hasher   Hasher
	recorder Recorder
	logger   *slog.Logger
}

func newHarness(t *testing.T, inputs ...string) *harness {
	t.Helper()
	return &harness{
		console: newScriptedConsole(inputs...),
		index:   &fakeIndex{},
		finder:  &fakeFinder{},
		dir:     t.TempDir(),
		logger:  logging.NewNop(),
	}
}

func (h *harness) run(t *testing.T) (Result, error) {
	t.Helper()
	session, err := New(Options{
		Console:   h.console,
		Index:     h.index,
		Finder:    h.finder,
		Saver:     subtitles.NewWriter(h.dir, logging.NewNop()),
		Hasher:    h.hasher,
		Recorder:  h.recorder,
		MediaRoot: "/media/root",
		SessionID: "test-session",
		Logger:    h.logger,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return session.Run(context.Background())
}

func inceptionResults() []subtitles.Candidate {
	return []subtitles.Candidate{
		{FileName: "Inception.seven.srt", Language: "Portuguese (BR)", Rating: subtitles.Rated(7), DownloadURL: "/dl/seven"},
		{FileName: "Inception.nine.first.srt", Language: "Portuguese (BR)", Rating: subtitles.Rated(9), DownloadURL: "/dl/nine-first"},
		{FileName: "Inception.nine.second.srt", Language: "Portuguese (BR)", Rating: subtitles.Rated(9), DownloadURL: "/dl/nine-second"},
	}
}

func TestInceptionTitleSearchDownloadsSecondDisplayed(t *testing.T) {
	h := newHarness(t, "1", "1", "Inception", "2", "n")
	h.index.results = inceptionResults()

	result, err := h.run(t)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Outcome != OutcomeCompleted {
		t.Fatalf("unexpected outcome %s (%v)", result.Outcome, result.Reason)
	}
	if len(h.index.titles) != 1 || h.index.titles[0] != "Inception" {
		t.Fatalf("unexpected title searches: %v", h.index.titles)
	}
	if result.Query.Mode != ModeName || result.Query.Title != "Inception" {
		t.Fatalf("unexpected query %+v", result.Query)
	}

	if len(h.console.candidates) != 1 {
		t.Fatalf("expected ranked list shown once, got %d", len(h.console.candidates))
	}
	var shown []string
	for _, c := range h.console.candidates[0] {
		shown = append(shown, c.FileName)
	}
	want := "Inception.nine.first.srt,Inception.nine.second.srt,Inception.seven.srt"
	if strings.Join(shown, ",") != want {
		t.Fatalf("unexpected ranked order %v", shown)
	}

	// Selection 2 is the second displayed row: the later of the two 9-rated candidates.
	if len(h.index.fetched) != 1 || h.index.fetched[0] != "/dl/nine-second" {
		t.Fatalf("unexpected fetch: %v", h.index.fetched)
	}
	path := filepath.Join(h.dir, "Inception.nine.second.srt")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected subtitle written: %v", err)
	}
	if string(data) != "payload for Inception.nine.second.srt" {
		t.Fatalf("unexpected payload %q", data)
	}
	if len(result.Downloads) != 1 || result.Downloads[0].Path != path || !result.Downloads[0].Succeeded() {
		t.Fatalf("unexpected download records: %+v", result.Downloads)
	}
	if result.Downloads[0].SessionID != "test-session" {
		t.Fatalf("expected session id on record, got %q", result.Downloads[0].SessionID)
	}
	if got := h.console.prompts[3]; got != "Choose a number (0-3): " {
		t.Fatalf("unexpected selection prompt %q", got)
	}
}

func TestInvalidSelectionsRepromptAndZeroCancels(t *testing.T) {
	h := newHarness(t, "3", "abc", "1", "", "9", "1", "Inception", "4", "-1", "two", "0")
	h.index.results = inceptionResults()

	result, err := h.run(t)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Outcome != OutcomeCancelled {
		t.Fatalf("unexpected outcome %s", result.Outcome)
	}
	if len(h.index.fetched) != 0 {
		t.Fatalf("cancel must not download, fetched %v", h.index.fetched)
	}
	if len(result.Downloads) != 0 {
		t.Fatalf("unexpected downloads %v", result.Downloads)
	}
	if got := h.console.countNotices("Invalid choice."); got != 4 {
		t.Fatalf("expected 4 out-of-range notices, got %d: %+v", got, h.console.notices)
	}
	if got := h.console.countNotices("Invalid input."); got != 3 {
		t.Fatalf("expected 3 non-numeric notices, got %d: %+v", got, h.console.notices)
	}
	if !h.console.noticeContaining("Operation cancelled.") {
		t.Fatal("expected cancellation notice")
	}
	if len(h.console.inputs) != 0 {
		t.Fatalf("unconsumed inputs: %v", h.console.inputs)
	}
}

func TestFingerprintWithoutMediaIsNotFound(t *testing.T) {
	h := newHarness(t, "2")
	h.index.results = inceptionResults()

	result, err := h.run(t)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Outcome != OutcomeNotFound || !errors.Is(result.Reason, ErrNotFound) {
		t.Fatalf("expected not found, got %s (%v)", result.Outcome, result.Reason)
	}
	if len(h.console.prompts) != 1 {
		t.Fatalf("expected only the mode prompt, got %v", h.console.prompts)
	}
	if len(h.console.candidates) != 0 || len(h.index.hashes) != 0 {
		t.Fatal("no search or selection expected")
	}
	if !h.console.noticeContaining("No video files found in /media/root.") {
		t.Fatalf("expected none-found notice, got %+v", h.console.notices)
	}
}

func TestEmptyTitleAbortsBeforeSearch(t *testing.T) {
	h := newHarness(t, "1", "1", "   ")

	result, err := h.run(t)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Outcome != OutcomeAborted || !errors.Is(result.Reason, ErrEmptyQuery) {
		t.Fatalf("expected aborted empty query, got %s (%v)", result.Outcome, result.Reason)
	}
	if len(h.index.titles) != 0 {
		t.Fatalf("empty title must not be searched: %v", h.index.titles)
	}
}

func TestDownloadFailureStillAsksToContinue(t *testing.T) {
	h := newHarness(t, "1", "1", "Inception", "1", "y", "2", "no")
	h.index.results = inceptionResults()
	h.index.fetchErrs = map[string]error{"/dl/nine-first": errors.New("connection reset")}

	var recorded []DownloadRecord
	h.recorder = recorderFunc(func(_ context.Context, record DownloadRecord) error {
		recorded = append(recorded, record)
		return errors.New("journal offline")
	})

	result, err := h.run(t)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Outcome != OutcomeCompleted {
		t.Fatalf("unexpected outcome %s", result.Outcome)
	}
	if len(result.Downloads) != 2 {
		t.Fatalf("expected two attempts, got %d", len(result.Downloads))
	}
	if result.Downloads[0].Succeeded() || !result.Downloads[1].Succeeded() {
		t.Fatalf("unexpected attempt results: %+v", result.Downloads)
	}
	if !h.console.noticeContaining("Download failed for Inception.nine.first.srt") {
		t.Fatalf("expected failure notice, got %+v", h.console.notices)
	}
	if len(recorded) != 2 {
		t.Fatalf("expected recorder to see both attempts despite its errors, got %d", len(recorded))
	}
	if got := h.console.prompts[len(h.console.prompts)-1]; got != "Keep downloading? (y/n): " {
		t.Fatalf("unexpected final prompt %q", got)
	}
	if len(h.console.candidates) != 1 {
		t.Fatal("the same ranked list should be reused without re-rendering")
	}
}

func TestDownloadLogsCandidateRating(t *testing.T) {
	h := newHarness(t, "1", "1", "Inception", "1", "n")
	h.index.results = inceptionResults()
	var buf bytes.Buffer
	h.logger = slog.New(slog.NewJSONHandler(&buf, nil))

	if _, err := h.run(t); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var found bool
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var record map[string]any
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("decode record %q: %v", line, err)
		}
		if record["msg"] != "subtitle downloaded" {
			continue
		}
		found = true
		if record["file_name"] != "Inception.nine.first.srt" || record["rating"] != float64(9) {
			t.Fatalf("unexpected download record: %v", record)
		}
	}
	if !found {
		t.Fatalf("expected subtitle downloaded record, got %q", buf.String())
	}
}

func TestFingerprintSearchUsesComputedHash(t *testing.T) {
	root := t.TempDir()
	paths := testsupport.WriteFiles(t, root, moviehash.MinSize, "Heat.1995.mkv")
	h := newHarness(t, "2", "1", "0")
	h.finder = media.NewFinder([]string{"mkv"}, logging.NewNop())
	h.index.results = inceptionResults()

	session, err := New(Options{
		Console:   h.console,
		Index:     h.index,
		Finder:    h.finder,
		Saver:     subtitles.NewWriter(h.dir, nil),
		MediaRoot: root,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := session.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Outcome != OutcomeCancelled {
		t.Fatalf("unexpected outcome %s", result.Outcome)
	}
	if len(h.index.hashes) != 1 || h.index.hashes[0].String() != "9090909090928000" {
		t.Fatalf("unexpected hash searches: %v", h.index.hashes)
	}
	if result.Query.Mode != ModeFingerprint || result.Query.Source != paths[0] {
		t.Fatalf("unexpected query %+v", result.Query)
	}
	if len(h.console.media) != 1 || len(h.console.media[0]) != 1 {
		t.Fatalf("expected one media listing, got %v", h.console.media)
	}
	if session.ID() == "" || result.SessionID != session.ID() {
		t.Fatalf("expected generated session id, got %q / %q", session.ID(), result.SessionID)
	}
}

func TestNameFromMediaFileStripsExtension(t *testing.T) {
	h := newHarness(t, "1", "2", "5", "2", "0")
	h.finder = &fakeFinder{files: []media.File{
		{Path: "/media/root/Alien.1979.avi", Size: 10},
		{Path: "/media/root/sub/Heat.1995.mkv", Size: 20},
	}}
	h.index.results = inceptionResults()

	result, err := h.run(t)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(h.index.titles) != 1 || h.index.titles[0] != "Heat.1995" {
		t.Fatalf("unexpected titles: %v", h.index.titles)
	}
	if result.Query.Source != "/media/root/sub/Heat.1995.mkv" {
		t.Fatalf("unexpected query source %q", result.Query.Source)
	}
	if h.console.prompts[2] != "Choose a video file (0-2): " {
		t.Fatalf("unexpected media prompt %q", h.console.prompts[2])
	}
}

func TestMediaPickZeroAborts(t *testing.T) {
	h := newHarness(t, "2", "0")
	h.finder = &fakeFinder{files: []media.File{{Path: "/media/root/a.mp4"}}}

	result, err := h.run(t)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Outcome != OutcomeAborted || !errors.Is(result.Reason, ErrNoSelection) {
		t.Fatalf("unexpected result %s (%v)", result.Outcome, result.Reason)
	}
	if len(h.index.hashes) != 0 {
		t.Fatal("no hash search expected")
	}
}

func TestMediaDiscoveryFailureAborts(t *testing.T) {
	h := newHarness(t, "2")
	h.finder = &fakeFinder{err: fmt.Errorf("%w: permission denied", media.ErrUnreadable)}

	result, err := h.run(t)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Outcome != OutcomeAborted || !errors.Is(result.Reason, media.ErrUnreadable) {
		t.Fatalf("unexpected result %s (%v)", result.Outcome, result.Reason)
	}
}

func TestHashFailuresAbortBranch(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{"too small", moviehash.ErrTooSmall, "too small to hash"},
		{"unreadable", moviehash.ErrUnreadable, "Could not read"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "2", "1")
			h.finder = &fakeFinder{files: []media.File{{Path: "/media/root/tiny.mp4", Size: 1024}}}
			h.hasher = func(string) (moviehash.Hash, error) {
				return 0, fmt.Errorf("%w: synthetic", tt.err)
			}

			result, err := h.run(t)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if result.Outcome != OutcomeAborted || !errors.Is(result.Reason, tt.err) {
				t.Fatalf("unexpected result %s (%v)", result.Outcome, result.Reason)
			}
			if !h.console.noticeContaining(tt.message) {
				t.Fatalf("expected notice containing %q, got %+v", tt.message, h.console.notices)
			}
			if len(h.index.hashes) != 0 {
				t.Fatal("no search expected after hash failure")
			}
		})
	}
}

func TestSearchFailuresEndAsNotFound(t *testing.T) {
	t.Run("zero results", func(t *testing.T) {
		h := newHarness(t, "1", "1", "Nothing")
		result, err := h.run(t)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if result.Outcome != OutcomeNotFound || !errors.Is(result.Reason, ErrNotFound) {
			t.Fatalf("unexpected result %s (%v)", result.Outcome, result.Reason)
		}
		if !h.console.noticeContaining("No subtitles found.") {
			t.Fatalf("expected no-results notice, got %+v", h.console.notices)
		}
	})
	t.Run("transport failure", func(t *testing.T) {
		transportErr := errors.New("dial tcp: connection refused")
		h := newHarness(t, "1", "1", "Inception")
		h.index.searchErr = transportErr
		result, err := h.run(t)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if result.Outcome != OutcomeNotFound || !errors.Is(result.Reason, transportErr) {
			t.Fatalf("unexpected result %s (%v)", result.Outcome, result.Reason)
		}
		if len(h.console.candidates) != 0 {
			t.Fatal("nothing should be presented")
		}
	})
}

func TestConsoleClosedEndsSession(t *testing.T) {
	h := newHarness(t, "1")
	result, err := h.run(t)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF error, got %v", err)
	}
	if result.Outcome != OutcomeAborted {
		t.Fatalf("unexpected outcome %s", result.Outcome)
	}
}

func TestRunHonoursCancelledContext(t *testing.T) {
	h := newHarness(t, "1", "1", "Inception")
	session, err := New(Options{Console: h.console, Index: h.index, Finder: h.finder, Saver: subtitles.NewWriter(h.dir, nil)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := session.Run(ctx)
	if !errors.Is(err, context.Canceled) || result.Outcome != OutcomeAborted {
		t.Fatalf("expected cancellation, got %s / %v", result.Outcome, err)
	}
	if len(h.console.prompts) != 0 {
		t.Fatal("no prompt expected on a cancelled context")
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	console := newScriptedConsole()
	index := &fakeIndex{}
	finder := &fakeFinder{}
	saver := subtitles.NewWriter(t.TempDir(), nil)
	tests := []Options{
		{Index: index, Finder: finder, Saver: saver},
		{Console: console, Finder: finder, Saver: saver},
		{Console: console, Index: index, Saver: saver},
		{Console: console, Index: index, Finder: finder},
	}
	for i, opts := range tests {
		if _, err := New(opts); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}
