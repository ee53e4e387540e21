// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package rtlog

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestLoggerWritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{inner: slog.New(slog.NewJSONHandler(&buf, nil))}

	l.Info("started", "thread", 3)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output was not valid JSON: %v", err)
	}
	if record["msg"] != "started" {
		t.Fatalf("msg = %v, want %q", record["msg"], "started")
	}
	if record["thread"] != float64(3) {
		t.Fatalf("thread = %v, want 3", record["thread"])
	}
}

func TestWithAttachesPersistentFields(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{inner: slog.New(slog.NewJSONHandler(&buf, nil))}
	scoped := l.With("module", "gc")

	scoped.Warn("threshold hit")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output was not valid JSON: %v", err)
	}
	if record["module"] != "gc" {
		t.Fatalf("module = %v, want gc", record["module"])
	}
}
