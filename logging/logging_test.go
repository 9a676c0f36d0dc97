package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewWritesJSONToNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New(&buf, false)

	logger.Debug("hidden")
	logger.Info("visible", "upc", "abc")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "visible" || entry["upc"] != "abc" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNewVerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, level := New(&buf, true)

	logger.Debug("details")
	if buf.Len() == 0 {
		t.Fatalf("debug output missing at level %v", level.Level())
	}
}
