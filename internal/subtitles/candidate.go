package subtitles

import (
	"strconv"

	"subfetch/internal/subtitles/opensubtitles"
)

// Candidate is one subtitle offered by the index for a query.
type Candidate struct {
	FileName    string
	Language    string
	LanguageTag string
	// Rating is nil when the index reported none.
	Rating      *float64
	DownloadURL string
	MovieName   string
	Format      string
	Downloads   int64
}

// HasRating reports whether the index supplied a rating.
func (c Candidate) HasRating() bool {
	return c.Rating != nil
}

// RatingLabel renders the rating for display, or "N/A" when absent.
func (c Candidate) RatingLabel() string {
	if c.Rating == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*c.Rating, 'f', 1, 64)
}

// Rated returns a rating pointer for literal construction.
func Rated(value float64) *float64 {
	return &value
}

func candidateFromOpenSubtitles(sub opensubtitles.Subtitle) Candidate {
	return Candidate{
		FileName:    sub.FileName,
		Language:    sub.LanguageName,
		LanguageTag: sub.LanguageTag,
		Rating:      sub.Rating,
		DownloadURL: sub.DownloadLink,
		MovieName:   sub.MovieName,
		Format:      sub.Format,
		Downloads:   sub.Downloads,
	}
}
