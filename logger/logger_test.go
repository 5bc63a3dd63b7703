package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func newBufferLogger(level string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: level, Format: "json"}, "test-svc", &buf)
	return l, &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m); err != nil {
		t.Fatalf("invalid log line %q: %v", buf.String(), err)
	}
	return m
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	l := New(&Config{Level: "invalid-level", Format: "json", Output: "discard"}, "test")
	if l.Zerolog().GetLevel() != zerolog.InfoLevel {
		t.Errorf("expected info fallback, got %s", l.Zerolog().GetLevel())
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_OUTPUT", "discard")

	l := NewFromEnv("env-svc")
	if l.Zerolog().GetLevel() != zerolog.DebugLevel {
		t.Errorf("expected debug level, got %s", l.Zerolog().GetLevel())
	}
}

func TestJSONOutput(t *testing.T) {
	l, buf := newBufferLogger("debug")
	l.Debug("request issued", RequestFields("GET", "https://api.example.com/todos/1"))

	m := decodeLine(t, buf)
	if m["message"] != "request issued" {
		t.Errorf("unexpected message %v", m["message"])
	}
	if m["method"] != "GET" || m["uri"] != "https://api.example.com/todos/1" {
		t.Errorf("missing request fields: %v", m)
	}
	if m["service"] != "test-svc" {
		t.Errorf("missing service field: %v", m)
	}
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newBufferLogger("warn")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info must be filtered at warn level, got %q", buf.String())
	}
	l.Error("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected error line, got %q", buf.String())
	}
}

func TestWithComponent(t *testing.T) {
	l, buf := newBufferLogger("info")
	l.WithComponent("restclient").Info("x")
	if decodeLine(t, buf)[FieldComponent] != "restclient" {
		t.Errorf("expected component field, got %q", buf.String())
	}
}

func TestWithContext_RequestID(t *testing.T) {
	l, buf := newBufferLogger("info")
	ctx := ContextWithRequestID(context.Background(), "req-42")
	l.WithContext(ctx).Info("x")
	if decodeLine(t, buf)[FieldRequestID] != "req-42" {
		t.Errorf("expected request id, got %q", buf.String())
	}
}

func TestWithContext_Empty(t *testing.T) {
	l, buf := newBufferLogger("info")
	l.WithContext(context.Background()).Info("x")
	m := decodeLine(t, buf)
	if _, ok := m[FieldRequestID]; ok {
		t.Error("no request id expected")
	}
	if _, ok := m[FieldTraceID]; ok {
		t.Error("no trace id expected")
	}
}

func TestWithFieldsAndError(t *testing.T) {
	l, buf := newBufferLogger("info")
	l.WithFields(Fields("client", "todos")).WithError(errors.New("boom")).Info("x")
	m := decodeLine(t, buf)
	if m["client"] != "todos" || m["error"] != "boom" {
		t.Errorf("unexpected fields %v", m)
	}
}

func TestNop(t *testing.T) {
	Nop().Error("nothing")
}

func TestGlobalLogger(t *testing.T) {
	prev := globalLogger
	defer func() { globalLogger = prev }()

	l, buf := newBufferLogger("info")
	SetGlobalLogger(l)
	Info("global")
	if !strings.Contains(buf.String(), "global") {
		t.Errorf("expected global logger output, got %q", buf.String())
	}
	WithComponent("c").Warn("w")
	if !strings.Contains(buf.String(), `"component":"c"`) {
		t.Errorf("expected component output, got %q", buf.String())
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" || cfg.Format != "console" || cfg.Output != "stdout" || !cfg.Timestamp {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "debug", Format: "json"}, false},
		{"pretty", Config{Level: "info", Format: FormatPretty}, false},
		{"bad level", Config{Level: "loud", Format: "json"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestFields(t *testing.T) {
	m := Fields("a", 1, "b", "two", 3, "ignored", "dangling")
	if m["a"] != 1 || m["b"] != "two" || len(m) != 2 {
		t.Errorf("unexpected fields %v", m)
	}
}

func TestMergeHelpers(t *testing.T) {
	m := MergeWithDuration(MergeWithError(nil, errors.New("e")), 1500*time.Millisecond)
	if m[FieldError] != "e" || m[FieldDuration] != int64(1500) {
		t.Errorf("unexpected merge result %v", m)
	}
}

func TestRegisterAndGet(t *testing.T) {
	l, _ := newBufferLogger("info")
	Register("todos", l)
	t.Cleanup(func() { Unregister("todos") })

	if Get("todos") != l {
		t.Error("expected registered logger")
	}
	if got := Names(); len(got) != 1 || got[0] != "todos" {
		t.Errorf("expected [todos], got %v", got)
	}
}

func TestGet_FallbackTagsClient(t *testing.T) {
	l, buf := newBufferLogger("info")
	prev := GetGlobalLogger()
	SetGlobalLogger(l)
	t.Cleanup(func() { SetGlobalLogger(prev) })

	Get("users").Info("issued")
	entry := decodeLine(t, buf)
	if entry[FieldClient] != "users" {
		t.Errorf("expected client=users, got %v", entry[FieldClient])
	}
}
