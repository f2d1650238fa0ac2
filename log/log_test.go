package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLogger_Make_DefaultConfiguration(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf)

	if logger.Level() != DefaultLevel {
		t.Errorf("expected default level %v, got %v", DefaultLevel, logger.Level())
	}

	if logger.Format() != DefaultFormat {
		t.Errorf("expected default format %v, got %v", DefaultFormat, logger.Format())
	}

	if logger.caller {
		t.Error("expected caller disabled by default")
	}
}

func TestLogger_ZeroValue_Discards(t *testing.T) {
	var logger Logger

	logger.Info("nothing")
	logger.TraceContext(t.Context(), "nothing")

	if logger.Enabled(t.Context(), LevelError) {
		t.Error("zero value logger should not be enabled")
	}

	if logger.With(slog.String("k", "v")).Logger != nil {
		t.Error("With on zero value logger should stay zero")
	}
}

func TestLogger_WithLevel_FiltersMessages(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelTrace), WithPretty(false))
	logger.Trace("trace message")

	if !strings.Contains(buf.String(), "trace message") {
		t.Error("trace message not logged after setting level to Trace")
	}

	if !strings.Contains(buf.String(), "TRACE") {
		t.Errorf("expected TRACE level name, got: %s", buf.String())
	}

	buf.Reset()

	logger = Make(&buf, WithLevel(LevelError), WithPretty(false))
	logger.Info("info message")

	if buf.Len() > 0 {
		t.Error("info message logged when level is Error")
	}

	logger.Error("error message")

	if !strings.Contains(buf.String(), "error message") {
		t.Error("error message not logged at Error level")
	}
}

func TestLogger_WithCaller_IncludesSource(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithCaller(true), WithFormat(FormatJSON), WithPretty(false)).
		Info("test message")

	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("caller info not pointing at the test file: %s", buf.String())
	}

	buf.Reset()

	Make(&buf, WithCaller(false), WithFormat(FormatJSON), WithPretty(false)).
		Info("test message")

	if strings.Contains(buf.String(), "source") {
		t.Error("caller info included when disabled")
	}
}

func TestLogger_WithFormat_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatJSON), WithPretty(false))
	logger.Info("test message", slog.String("key", "value"))

	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}

	if result["msg"] != "test message" {
		t.Errorf("expected msg=test message, got %v", result["msg"])
	}

	if result["key"] != "value" {
		t.Errorf("expected key=value, got %v", result["key"])
	}
}

func TestLogger_Pretty_Text(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatText), WithPretty(true), WithTimeLayout("none"))
	logger = logger.With(slog.String("session", "abc"))
	logger.WithGroup("ignored").Info("unused")

	buf.Reset()
	logger.Warn("pretty message", slog.Int("line", 3), slog.Group("tok", slog.String("kind", "Word")))

	output := buf.String()

	for _, want := range []string{"WARN", "pretty message", "session=abc", "line=3", "tok.kind=Word"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got: %s", want, output)
		}
	}
}

func TestLogger_Pretty_JSON_Indented(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatJSON), WithPretty(true))
	logger.Info("indented", slog.String("key", "value"))

	if strings.Count(buf.String(), "\n") < 3 {
		t.Errorf("expected multi-line JSON, got: %s", buf.String())
	}

	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("pretty JSON is not valid JSON: %v", err)
	}
}

func TestLogger_Wrap_KeepsOriginal(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithLevel(LevelWarn))
	wrapped := base.Wrap(WithLevel(LevelDebug))

	if base.Level() != LevelWarn {
		t.Errorf("base level changed to %v", base.Level())
	}

	if wrapped.Level() != LevelDebug {
		t.Errorf("wrapped level is %v", wrapped.Level())
	}
}
