package opensubtitles

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/unicode/norm"

	"subfetch/internal/moviehash"
)

const (
	defaultBaseURL     = "https://rest.opensubtitles.org/search"
	defaultUserAgent   = "TemporaryUserAgent"
	defaultLanguage    = "pob"
	defaultHTTPTimeout = 45 * time.Second

	// anySizeSegment disables the index's byte-size filter on hash searches.
	anySizeSegment = "moviebytesize-0"
)

// ErrTransport classifies every failure talking to the index.
var ErrTransport = errors.New("opensubtitles: transport failure")

// maxPayloadBytes caps a downloaded subtitle, both as sent and decompressed.
var maxPayloadBytes int64 = 8 << 20

// ProgressFunc returns a writer that observes downloaded bytes. total is -1
// when the server did not announce a length.
type ProgressFunc func(label string, total int64) io.WriteCloser

// Config describes the OpenSubtitles client configuration.
type Config struct {
	BaseURL    string
	UserAgent  string
	Language   string
	HTTPClient *http.Client
	Timeout    time.Duration
	Progress   ProgressFunc
}

// Client wraps the legacy OpenSubtitles REST index.
type Client struct {
	userAgent string
	language  string
	baseURL   *url.URL
	http      *http.Client
	progress  ProgressFunc
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	language := strings.TrimSpace(cfg.Language)
	if language == "" {
		language = defaultLanguage
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("opensubtitles: parse base url: %w", err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("opensubtitles: base url %q must be absolute", base)
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		userAgent: userAgent,
		language:  language,
		baseURL:   baseURL,
		http:      client,
		progress:  cfg.Progress,
	}, nil
}

// Language returns the subtitle language tag sent with every search.
func (c *Client) Language() string {
	return c.language
}

// Subtitle is one record returned by the index.
type Subtitle struct {
	FileName     string
	LanguageName string
	LanguageTag  string
	Rating       *float64
	DownloadLink string
	MovieName    string
	Format       string
	Downloads    int64
}

// DownloadResult captures the downloaded subtitle payload.
type DownloadResult struct {
	Data         []byte
	DownloadURL  string
	Decompressed bool
}

// SearchByName queries the index for subtitles matching a title.
func (c *Client) SearchByName(ctx context.Context, title string) ([]Subtitle, error) {
	if c == nil {
		return nil, errors.New("opensubtitles: client is nil")
	}
	title = norm.NFC.String(strings.TrimSpace(title))
	if title == "" {
		return nil, errors.New("opensubtitles: empty title")
	}
	return c.search(ctx, "query-"+url.PathEscape(title))
}

// SearchByHash queries the index for subtitles keyed on a movie hash.
func (c *Client) SearchByHash(ctx context.Context, hash moviehash.Hash) ([]Subtitle, error) {
	if c == nil {
		return nil, errors.New("opensubtitles: client is nil")
	}
	return c.search(ctx, anySizeSegment, "moviehash-"+hash.String())
}

func (c *Client) search(ctx context.Context, segments ...string) ([]Subtitle, error) {
	segments = append(segments, "sublanguageid-"+url.PathEscape(c.language))
	endpoint := c.baseURL.String() + "/" + strings.Join(segments, "/")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("opensubtitles: build search request: %w", err)
	}
	c.applyHeaders(httpReq)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: search request failed: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: search failed (%s): %s", ErrTransport, resp.Status, strings.TrimSpace(string(body)))
	}

	var payload []searchRecord
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", ErrTransport, err)
	}

	subtitles := make([]Subtitle, 0, len(payload))
	for _, entry := range payload {
		subtitles = append(subtitles, entry.subtitle())
	}
	return subtitles, nil
}

// Download fetches the payload behind a record's download link. Gzip
// payloads are decompressed.
func (c *Client) Download(ctx context.Context, link string) (DownloadResult, error) {
	if c == nil {
		return DownloadResult{}, errors.New("opensubtitles: client is nil")
	}
	link = strings.TrimSpace(link)
	if link == "" {
		return DownloadResult{}, fmt.Errorf("%w: download link is empty", ErrTransport)
	}
	downloadURL, err := c.baseURL.Parse(link)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("%w: parse download url: %v", ErrTransport, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL.String(), nil)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("opensubtitles: build download request: %w", err)
	}
	c.applyHeaders(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("%w: download request failed: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return DownloadResult{}, fmt.Errorf("%w: download failed (%s): %s", ErrTransport, resp.Status, strings.TrimSpace(string(body)))
	}

	var body io.Reader = resp.Body
	if c.progress != nil {
		bar := c.progress(path.Base(downloadURL.Path), resp.ContentLength)
		defer bar.Close()
		body = io.TeeReader(resp.Body, bar)
	}
	data, err := readLimited(body)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("%w: read subtitle data: %v", ErrTransport, err)
	}

	result := DownloadResult{Data: data, DownloadURL: downloadURL.String()}
	if isGzip(data) {
		plain, err := gunzip(data)
		if err != nil {
			return DownloadResult{}, fmt.Errorf("%w: decompress subtitle data: %v", ErrTransport, err)
		}
		result.Data = plain
		result.Decompressed = true
	}
	return result, nil
}

func (c *Client) applyHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
}

func isGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}

func gunzip(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return readLimited(reader)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxPayloadBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxPayloadBytes {
		return nil, fmt.Errorf("payload exceeds %d bytes", maxPayloadBytes)
	}
	return data, nil
}
