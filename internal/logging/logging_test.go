package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewDefaultsToWarn(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Options{}, &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("shown", "key", "todos")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "key=todos") {
		t.Errorf("warn missing: %s", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Level: "debug", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Debug("fetch", "user", 3)

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("not JSON: %v (%s)", err, buf.String())
	}
	if line["msg"] != "fetch" {
		t.Errorf("msg: got %v", line["msg"])
	}
}

func TestFileDestination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	logger, closer, err := New(Options{Level: "error", File: path}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Error("boom")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), "boom") {
		t.Errorf("log file: %s", b)
	}
}

func TestInvalidOptions(t *testing.T) {
	if _, _, err := New(Options{Level: "loud"}, nil); err == nil {
		t.Errorf("expected error for unknown level")
	}
	if _, _, err := New(Options{Format: "xml"}, nil); err == nil {
		t.Errorf("expected error for unknown format")
	}
}
