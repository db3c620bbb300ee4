package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"subfetch/internal/config"
	"subfetch/internal/logging"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")

	logger, err := logging.NewFromConfig(&cfg, false)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Debug("hidden at info")
	logger.Info("session started", logging.String("mode", "title"))

	content := readLog(t, cfg.LogFilePath())
	if strings.Contains(content, "hidden at info") {
		t.Fatalf("debug record should be filtered, got %q", content)
	}
	if !strings.Contains(content, "session started") || !strings.Contains(content, "- mode: title") {
		t.Fatalf("expected info record with fields, got %q", content)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	if content := readLog(t, logPath); strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")

	if content := readLog(t, logPath); !strings.Contains(content, ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleHeaderCarriesComponentAndState(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "header.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := logging.WithState(context.Background(), "fetch")
	component := logging.NewComponentLogger(logger, "workflow")
	logging.WithContext(ctx, component).Info("search completed", logging.Int("results", 3))

	content := readLog(t, logPath)
	if !strings.Contains(content, "INFO [workflow] (fetch) – search completed") {
		t.Fatalf("unexpected header: %q", content)
	}
	if !strings.Contains(content, "    - results: 3") {
		t.Fatalf("expected indented field, got %q", content)
	}
}

func TestNewJSONLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("json message", logging.Hash("hash", 0x18379ac9af039390))

	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, logPath))), &record); err != nil {
		t.Fatalf("decode json record: %v", err)
	}
	if record["level"] != "info" || record["msg"] != "json message" {
		t.Fatalf("unexpected record: %v", record)
	}
	if record["hash"] != "18379ac9af039390" {
		t.Fatalf("unexpected hash field: %v", record["hash"])
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "level.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "invalid", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected debug disabled")
	}
	if !logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("expected info enabled")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	logging.WarnWithContext(logger, "download failed", "subtitle_download_failed",
		logging.String(logging.FieldErrorHint, "retry later"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record[logging.FieldEventType] != "subtitle_download_failed" {
		t.Fatalf("unexpected event_type: %v", record[logging.FieldEventType])
	}
	if record[logging.FieldErrorHint] != "retry later" {
		t.Fatalf("explicit hint should win, got %v", record[logging.FieldErrorHint])
	}
	if record[logging.FieldImpact] == nil {
		t.Fatal("expected default impact")
	}
}

func TestErrorWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	logging.ErrorWithContext(logger, "search session failed", "session_failed",
		logging.Duration("elapsed", 1500*time.Millisecond),
		logging.Float64("rating", 7.5),
		logging.Int64("size_bytes", 1<<40),
	)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record["level"] != "ERROR" {
		t.Fatalf("unexpected level: %v", record["level"])
	}
	if record[logging.FieldEventType] != "session_failed" {
		t.Fatalf("unexpected event_type: %v", record[logging.FieldEventType])
	}
	if record[logging.FieldErrorHint] != "check logs for details" {
		t.Fatalf("expected default hint, got %v", record[logging.FieldErrorHint])
	}
	if record["elapsed"] != float64(1500*time.Millisecond) || record["rating"] != 7.5 || record["size_bytes"] != float64(1<<40) {
		t.Fatalf("unexpected typed fields: %v", record)
	}
}

func TestErrorWithContextNilLogger(t *testing.T) {
	logging.ErrorWithContext(nil, "ignored", "session_failed")
}

func TestStateFromContext(t *testing.T) {
	if _, ok := logging.StateFromContext(context.Background()); ok {
		t.Fatal("expected no state on empty context")
	}
	ctx := logging.WithState(context.Background(), "pick")
	if state, ok := logging.StateFromContext(ctx); !ok || state != "pick" {
		t.Fatalf("unexpected state %q ok=%v", state, ok)
	}
}
