package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediaorg/internal/config"
	"mediaorg/internal/logging"
	"mediaorg/internal/services"
)

func TestConsoleLoggerFormatsSubjectAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithPhase(services.WithRunID(context.Background(), "0123456789abcdef"), "plan")
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "planner"))
	logger.Info("file planned", logging.String("target", "/t/2019/a b.jpg"), logging.Int("size", 42))

	out := buf.String()
	for _, want := range []string{
		"INFO [planner 01234567/plan] file planned",
		`target="/t/2019/a b.jpg"`,
		"size=42",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("console output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", out)
	}
}

func TestJSONLoggerUsesShortKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("probe", logging.Error(errors.New("boom")), logging.Bytes("bytes", 2048))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode json log: %v (%s)", err, buf.String())
	}
	if record["level"] != "debug" {
		t.Fatalf("level = %v", record["level"])
	}
	if _, ok := record["ts"]; !ok {
		t.Fatal("missing ts")
	}
	if record["error"] != "boom" {
		t.Fatalf("error = %v", record["error"])
	}
	if record["bytes"] != "2.0 kB" {
		t.Fatalf("bytes = %v", record["bytes"])
	}
	if src, _ := record["source"].(string); !strings.Contains(src, "logger_test.go:") {
		t.Fatalf("source = %v", record["source"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Level = "warn"

	var console bytes.Buffer
	logger, err := logging.NewFromConfig(&cfg, &console)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("suppressed")
	logging.WarnWithContext(logger, "unreadable directory", "directory_access")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), "suppressed") || strings.Contains(console.String(), "suppressed") {
		t.Fatal("info record should be filtered at warn level")
	}
	for _, want := range []string{`"event_type":"directory_access"`, `"error_hint"`, `"impact"`} {
		if !strings.Contains(string(content), want) {
			t.Fatalf("log file missing %s: %s", want, content)
		}
	}
	if !strings.Contains(console.String(), "WARN unreadable directory event_type=directory_access") {
		t.Fatalf("console output = %q", console.String())
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("nop logger should not be enabled")
	}
	logging.WarnWithContext(nil, "ignored", "noop")
}
