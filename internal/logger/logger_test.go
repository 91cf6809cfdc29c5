package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func decode(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(b), &m); err != nil {
		t.Fatalf("decode %q: %v", b, err)
	}
	return m
}

func TestBuild_FieldsAndContext(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "debug", Service: "vakufmap", Component: "api"}, &buf)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	ctx := WithSessionID(WithRequestID(context.Background(), "req-1"), "s-1")
	FromContext(ctx, &zl).Info().Msg("hello")

	m := decode(t, buf.Bytes())
	for k, want := range map[string]string{
		"msg": "hello", "service": "vakufmap", "component": "api",
		"request_id": "req-1", "session_id": "s-1", "level": "info",
	} {
		if m[k] != want {
			t.Fatalf("%s=%v want %q", k, m[k], want)
		}
	}
	if _, ok := m["timestamp"]; !ok {
		t.Fatal("missing timestamp")
	}
}

func TestWithRequestID_GeneratesWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{}, &buf)
	FromContext(WithRequestID(context.Background(), ""), &zl).Info().Msg("x")
	if id, _ := decode(t, buf.Bytes())["request_id"].(string); len(id) != 16 {
		t.Fatalf("request_id=%q want 16 hex chars", id)
	}
}

func TestNewSlog_Bridge(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "info"}, &buf)

	log := NewSlog(&zl).With("component", "store").WithGroup("cache")
	log.Debug("dropped")
	if buf.Len() != 0 {
		t.Fatalf("debug written at info level: %s", buf.String())
	}

	log.Warn("slow", "op", "get", "took", 2*time.Second, "err", errors.New("boom"))
	m := decode(t, buf.Bytes())
	if m["level"] != "warn" || m["component"] != "store" {
		t.Fatalf("unexpected record: %v", m)
	}
	if m["cache.op"] != "get" || m["cache.err"] != "boom" {
		t.Fatalf("group keys not prefixed: %v", m)
	}
	if _, ok := m["cache.took"]; !ok {
		t.Fatalf("duration missing: %v", m)
	}
}
