package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLogger_IncludesStackAndServiceOnError(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "test-service")
	log.Error().Stack().Err(errors.New("boom")).Msg("something failed")

	var payload map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &payload); err != nil {
		t.Fatalf("invalid json log: %v\n%s", err, buf.String())
	}
	if svc, ok := payload["service"].(string); !ok || svc != "test-service" {
		t.Fatalf("expected service=\"test-service\", got %v", payload["service"])
	}
	if lvl, ok := payload["level"].(string); !ok || lvl != "error" {
		t.Fatalf("expected level=\"error\", got %v", payload["level"])
	}
	if _, ok := payload["stack"]; !ok {
		t.Fatalf("expected stack field in error log: %s", buf.String())
	}
}

func TestNewConsole_Level(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsole(&buf, false)
	l.Debug().Msg("hidden")
	l.Info().Msg("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output: %q", out)
	}

	buf.Reset()
	dl := NewConsole(&buf, true)
	dl.Debug().Msg("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Fatalf("debug not enabled: %q", buf.String())
	}
}
