package subtitles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"subfetch/internal/logging"
	"subfetch/internal/moviehash"
	"subfetch/internal/subtitles/opensubtitles"
)

const maxLoggedCandidates = 6

// Service searches the index and fetches subtitle payloads.
type Service struct {
	client *opensubtitles.Client
	logger *slog.Logger
}

// NewService wraps an index client.
func NewService(client *opensubtitles.Client, logger *slog.Logger) *Service {
	return &Service{
		client: client,
		logger: logging.NewComponentLogger(logger, "subtitles"),
	}
}

// SearchByName returns the index candidates for a title in arrival order.
func (s *Service) SearchByName(ctx context.Context, title string) ([]Candidate, error) {
	if s == nil || s.client == nil {
		return nil, errors.New("subtitles: service unavailable")
	}
	start := time.Now()
	subs, err := s.client.SearchByName(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("search by name %q: %w", title, err)
	}
	candidates := s.convert(subs)
	s.logCandidates("title", title, candidates, time.Since(start))
	return candidates, nil
}

// SearchByHash returns the index candidates for a movie hash in arrival order.
func (s *Service) SearchByHash(ctx context.Context, hash moviehash.Hash) ([]Candidate, error) {
	if s == nil || s.client == nil {
		return nil, errors.New("subtitles: service unavailable")
	}
	start := time.Now()
	subs, err := s.client.SearchByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("search by hash %s: %w", hash, err)
	}
	candidates := s.convert(subs)
	s.logCandidates("hash", hash.String(), candidates, time.Since(start))
	return candidates, nil
}

// Fetch downloads the payload for a candidate.
func (s *Service) Fetch(ctx context.Context, candidate Candidate) ([]byte, error) {
	if s == nil || s.client == nil {
		return nil, errors.New("subtitles: service unavailable")
	}
	result, err := s.client.Download(ctx, candidate.DownloadURL)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", candidate.FileName, err)
	}
	s.logger.Debug("subtitle payload fetched",
		logging.String("file_name", candidate.FileName),
		logging.String("url", result.DownloadURL),
		logging.Int("bytes", len(result.Data)),
		logging.Bool("decompressed", result.Decompressed),
	)
	return result.Data, nil
}

func (s *Service) convert(subs []opensubtitles.Subtitle) []Candidate {
	candidates := make([]Candidate, 0, len(subs))
	for _, sub := range subs {
		candidates = append(candidates, candidateFromOpenSubtitles(sub))
	}
	return candidates
}

func (s *Service) logCandidates(kind, key string, candidates []Candidate, elapsed time.Duration) {
	s.logger.Info("index search completed",
		logging.String("query_kind", kind),
		logging.String("query", key),
		logging.String("language", s.client.Language()),
		logging.Int("results", len(candidates)),
		logging.Duration("elapsed", elapsed),
	)
	if !s.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for i, c := range candidates {
		if i >= maxLoggedCandidates {
			s.logger.Debug("additional candidates omitted", logging.Int("omitted", len(candidates)-i))
			break
		}
		s.logger.Debug("index candidate",
			logging.Int("position", i+1),
			logging.String("file_name", c.FileName),
			logging.String("language", c.Language),
			logging.String("rating", c.RatingLabel()),
		)
	}
}
