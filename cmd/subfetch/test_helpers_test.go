package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/pelletier/go-toml/v2"

	"subfetch/internal/config"
	"subfetch/internal/testsupport"
)

const inceptionResults = `[
  {"SubFileName":"Inception.720p.srt","LanguageName":"Portuguese (BR)","ISO639":"pb","SubRating":"7.0","SubDownloadLink":"/dl/720p.gz","MovieName":"Inception","SubFormat":"srt"},
  {"SubFileName":"Inception.1080p.srt","LanguageName":"Portuguese (BR)","ISO639":"pb","SubRating":"9.0","SubDownloadLink":"/dl/1080p.gz","MovieName":"Inception","SubFormat":"srt"},
  {"SubFileName":"Inception.BluRay.srt","LanguageName":"Portuguese (BR)","ISO639":"pb","SubRating":"9.0","SubDownloadLink":"/dl/bluray.gz","MovieName":"Inception","SubFormat":"srt"}
]`

const subtitleBody = "1\n00:00:01,000 --> 00:00:03,000\nVocê está esperando um trem.\n"

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	server     *httptest.Server

	mu       sync.Mutex
	requests []string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	env := &cliTestEnv{}
	env.server = httptest.NewServer(http.HandlerFunc(env.serveIndex))
	t.Cleanup(env.server.Close)

	t.Setenv("HOME", t.TempDir())
	t.Setenv("SUBFETCH_USER_AGENT", "")
	opts = append([]testsupport.ConfigOption{testsupport.WithIndexURL(env.server.URL + "/search")}, opts...)
	env.cfg = testsupport.NewConfig(t, opts...)
	env.configPath = filepath.Join(testsupport.BaseDir(env.cfg), "config.toml")
	writeTestConfig(t, env.configPath, env.cfg)
	return env
}

func (e *cliTestEnv) serveIndex(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	e.requests = append(e.requests, r.URL.Path)
	e.mu.Unlock()
	switch {
	case r.URL.Path == "/search/query-Inception/sublanguageid-pob":
		_, _ = io.WriteString(w, inceptionResults)
	case strings.HasPrefix(r.URL.Path, "/search/"):
		_, _ = io.WriteString(w, "[]")
	case strings.HasPrefix(r.URL.Path, "/dl/"):
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		_, _ = io.WriteString(zw, subtitleBody)
		_ = zw.Close()
		_, _ = w.Write(buf.Bytes())
	default:
		http.NotFound(w, r)
	}
}

func (e *cliTestEnv) requestPaths() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.requests...)
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
