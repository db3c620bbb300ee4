package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"subfetch/internal/logging"
	"subfetch/internal/moviehash"
	"subfetch/internal/subtitles"
)

// Options wires a Session to its collaborators. Console, Index, Finder and
// Saver are required.
type Options struct {
	Console  Console
	Index    Index
	Finder   MediaFinder
	Saver    Saver
	Hasher   Hasher
	Recorder Recorder
	// MediaRoot is the directory searched for video files.
	MediaRoot string
	SessionID string
	Logger    *slog.Logger
}

// Session is one interactive run. It is not safe for concurrent use.
type Session struct {
	console   Console
	index     Index
	finder    MediaFinder
	saver     Saver
	hasher    Hasher
	recorder  Recorder
	mediaRoot string
	id        string
	logger    *slog.Logger
}

// New validates opts and returns a Session ready to Run.
func New(opts Options) (*Session, error) {
	switch {
	case opts.Console == nil:
		return nil, errors.New("workflow: console is required")
	case opts.Index == nil:
		return nil, errors.New("workflow: index is required")
	case opts.Finder == nil:
		return nil, errors.New("workflow: media finder is required")
	case opts.Saver == nil:
		return nil, errors.New("workflow: saver is required")
	}
	hasher := opts.Hasher
	if hasher == nil {
		hasher = moviehash.Compute
	}
	root := strings.TrimSpace(opts.MediaRoot)
	if root == "" {
		root = "."
	}
	id := strings.TrimSpace(opts.SessionID)
	if id == "" {
		id = uuid.NewString()
	}
	return &Session{
		console:   opts.Console,
		index:     opts.Index,
		finder:    opts.Finder,
		saver:     opts.Saver,
		hasher:    hasher,
		recorder:  opts.Recorder,
		mediaRoot: root,
		id:        id,
		logger:    logging.WithSession(logging.NewComponentLogger(opts.Logger, "workflow"), id),
	}, nil
}

// ID returns the session identifier attached to logs and journal rows.
func (s *Session) ID() string {
	return s.id
}

// run carries the mutable state of one Run call.
type run struct {
	result    Result
	mode      Mode
	key       QueryKey
	fetched   []subtitles.Candidate
	list      subtitles.RankedList
	selection int
	fetchErr  error
}

func (r *run) finish(outcome Outcome, reason error) State {
	r.result.Outcome = outcome
	r.result.Reason = reason
	return StateTerminal
}

// Run drives the conversation until a terminal state. Branch failures are
// reported to the operator and reflected in Result.Outcome; the returned
// error is non-nil only when the console fails or ctx is cancelled.
func (s *Session) Run(ctx context.Context) (Result, error) {
	r := &run{result: Result{SessionID: s.id}}
	s.logger.Info("session started", logging.String("media_root", s.mediaRoot))

	state := StateChooseMode
	for state != StateTerminal {
		if err := ctx.Err(); err != nil {
			r.finish(OutcomeAborted, err)
			return r.result, err
		}
		stateCtx := logging.WithState(ctx, string(state))
		logging.WithContext(stateCtx, s.logger).Debug("state entered")

		next, err := s.step(stateCtx, r, state)
		if err != nil {
			r.finish(OutcomeAborted, err)
			logging.WithContext(stateCtx, s.logger).Info("session ended early", logging.Error(err))
			return r.result, err
		}
		state = next
	}

	attrs := []logging.Attr{
		logging.String("outcome", string(r.result.Outcome)),
		logging.Int("candidates", r.result.Candidates.Len()),
		logging.Int("downloads", len(r.result.Downloads)),
	}
	if r.result.Reason != nil {
		attrs = append(attrs, logging.String("reason", r.result.Reason.Error()))
	}
	s.logger.Info("session finished", logging.Args(attrs...)...)
	return r.result, nil
}

func (s *Session) step(ctx context.Context, r *run, state State) (State, error) {
	switch state {
	case StateChooseMode:
		return s.chooseMode(ctx, r)
	case StateObtainKey:
		return s.obtainKey(ctx, r)
	case StateFetch:
		return s.fetch(ctx, r)
	case StateEmpty:
		return s.empty(r), nil
	case StateRank:
		return s.rank(r), nil
	case StatePick:
		return s.pick(ctx, r)
	case StateCancelled:
		s.console.Notify(NoticeInfo, "Operation cancelled.")
		return r.finish(OutcomeCancelled, nil), nil
	case StateDownload:
		return s.download(ctx, r), nil
	case StateContinue:
		return s.askContinue(ctx, r)
	default:
		return StateTerminal, fmt.Errorf("workflow: unknown state %q", state)
	}
}
