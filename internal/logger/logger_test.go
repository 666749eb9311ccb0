package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", "auto", false)
	log.Info().Str("component", "test").Msg("hello")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("auto format without a terminal should write JSON: %v (%q)", err, buf.String())
	}
	if entry["message"] != "hello" || entry["component"] != "test" {
		t.Fatalf("entry = %v", entry)
	}
}

func TestNewPretty(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", "auto", true)
	log.Info().Msg("hello")

	if json.Valid(buf.Bytes()) {
		t.Fatalf("auto format on a terminal should be pretty, got %q", buf.String())
	}
}

func TestNewBadLevel(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "loud", "json", false)
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Fatalf("global level = %s, want info", zerolog.GlobalLevel())
	}
}
