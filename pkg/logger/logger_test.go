package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}

	if err := Init(WithFormat("xml")); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
	if err := Init(WithLevel("loud")); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}

func TestLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithFormat(FormatJSON), WithWriter(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	Get().Info(context.Background(), "pipeline run", String("run_id", "abc"), Int("messages", 3))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if line["msg"] != "pipeline run" || line["run_id"] != "abc" {
		t.Errorf("unexpected fields: %v", line)
	}
	if src, _ := line["source"].(string); !strings.Contains(src, "logger_test.go") {
		t.Errorf("source should point at the caller, got %q", src)
	}
}

func TestLoggerFileFanout(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "carelog.log")
	if err := Init(WithWriter(&buf), WithFile(path)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	Named("app").Warn(context.Background(), "queue full")
	if err := Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}

	if !strings.Contains(buf.String(), "queue full") {
		t.Errorf("primary output missing message: %q", buf.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"queue full"`) {
		t.Errorf("log file missing JSON message: %q", data)
	}

	// release the file before TempDir cleanup
	if err := Init(WithWriter(&buf)); err != nil {
		t.Fatalf("reinit: %v", err)
	}
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithWriter(&buf), WithLevel("warn")); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = SetLevelString("info") }()

	Get().Info(context.Background(), "hidden")
	Get().Debug(context.Background(), "hidden too")
	Get().Error(context.Background(), "shown", Error(os.ErrNotExist))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info and debug should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("error should be logged: %q", out)
	}
}

func TestLoggerFatal(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithFormat(FormatJSON), WithWriter(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	code := -1
	exit = func(c int) { code = c }
	defer func() { exit = os.Exit }()

	Get().Fatal(context.Background(), "replay failed", String("run", "r1"))

	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("fatal entry is not JSON: %v", err)
	}
	if entry["level"] != "ERROR" || entry["msg"] != "replay failed" || entry["run"] != "r1" {
		t.Fatalf("unexpected fatal entry: %v", entry)
	}
}
