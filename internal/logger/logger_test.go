package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	log := New(WithJSON(true), WithWriter(&buf))

	log.Info("ingestion complete", "files", 3)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v\noutput: %s", err, buf.String())
	}
	if record["msg"] != "ingestion complete" {
		t.Errorf("unexpected msg: %v", record["msg"])
	}
	if record["files"] != float64(3) {
		t.Errorf("attribute not recorded: %v", record["files"])
	}
}

func TestNewPrettyLogger(t *testing.T) {
	var buf bytes.Buffer
	log := New(WithWriter(&buf))

	log.Info("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("message missing from output: %q", buf.String())
	}
}

func TestDebugLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(WithWriter(&buf))
	log.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug must be filtered at default level, got %q", buf.String())
	}

	buf.Reset()
	log = New(WithDebug(true), WithWriter(&buf))
	log.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("debug message missing with WithDebug: %q", buf.String())
	}
}
