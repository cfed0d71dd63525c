package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetupWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	SetupWriter(&buf, "debug", "json")
	defer SetupWriter(&bytes.Buffer{}, "info", "text")

	logrus.WithField("slug", "acme-poster").Debug("rendered")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json log line, got %q: %v", buf.String(), err)
	}
	if entry["slug"] != "acme-poster" || entry["msg"] != "rendered" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestSetupWriterUnknownLevel(t *testing.T) {
	SetupWriter(&bytes.Buffer{}, "chatty", "text")
	if logrus.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected info level fallback, got %v", logrus.GetLevel())
	}
}
