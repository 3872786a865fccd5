package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: HumanFormat, Level: WarnLevel, Output: &buf})

	logger.Debug("hidden", nil)
	logger.Info("hidden", nil)
	logger.Warn("shown", nil)
	logger.Error("shown too", nil)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("filtered levels were written: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "shown too") {
		t.Errorf("enabled levels missing: %q", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: JSONFormat, Level: InfoLevel, Output: &buf})

	logger.Info("indexed", map[string]interface{}{"files": 3})

	var entry struct {
		Level   string                 `json:"level"`
		Message string                 `json:"message"`
		Fields  map[string]interface{} `json:"fields"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry.Level != "info" || entry.Message != "indexed" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Fields["files"] != float64(3) {
		t.Errorf("fields = %v", entry.Fields)
	}
}

func TestHumanFieldsSorted(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: HumanFormat, Level: InfoLevel, Output: &buf})

	logger.Info("msg", map[string]interface{}{"b": 2, "a": 1})

	out := buf.String()
	if strings.Index(out, "a=1") > strings.Index(out, "b=2") {
		t.Errorf("fields not sorted: %q", out)
	}
}
