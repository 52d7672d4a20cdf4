package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

func TestWriter_NilWithoutFile(t *testing.T) {
	if w := (Config{}).Writer(); w != nil {
		t.Fatalf("expected nil writer when File is empty, got %T", w)
	}
}

func TestWriter_Defaults(t *testing.T) {
	w := Config{File: "x.log"}.Writer()
	l, ok := w.(*lj.Logger)
	if !ok {
		t.Fatalf("expected *lumberjack.Logger, got %T", w)
	}
	if l.MaxSize != DefaultMaxSizeMB || l.MaxBackups != DefaultMaxBackups || l.MaxAge != DefaultMaxAgeDays {
		t.Fatalf("defaults not applied: %+v", l)
	}
	w = Config{File: "x.log", MaxSizeMB: 1, MaxBackups: 9, MaxAgeDays: 2, Compress: true}.Writer()
	l = w.(*lj.Logger)
	if l.MaxSize != 1 || l.MaxBackups != 9 || l.MaxAge != 2 || !l.Compress {
		t.Fatalf("explicit values not applied: %+v", l)
	}
}

func TestNew_DiscardByDefault(t *testing.T) {
	var stderr bytes.Buffer
	log, closer := New(Config{}, &stderr)
	defer func() { _ = closer.Close() }()
	log.Error("should vanish")
	if stderr.Len() != 0 {
		t.Fatalf("default logger must not write, got %q", stderr.String())
	}
}

func TestNew_FileReceivesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wrapper.log")
	log, closer := New(Config{File: path}, nil)
	log.Info("launched", "command", "echo", "pid", 42)
	log.Debug("filtered at info level")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one record, got %d: %q", len(lines), b)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("record is not JSON: %v", err)
	}
	if rec["msg"] != "launched" || rec["command"] != "echo" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestNew_DebugToStderrAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wrapper.log")
	var stderr bytes.Buffer
	log, closer := New(Config{File: path, Debug: true}, &stderr)
	log.With("token", "t1").Debug("spawned")
	_ = closer.Close()

	out := stderr.String()
	if !strings.Contains(out, "DEBUG") || !strings.Contains(out, "spawned") || !strings.Contains(out, "token=t1") {
		t.Fatalf("unexpected stderr output: %q", out)
	}
	if strings.Contains(out, "time=") {
		t.Fatalf("time attribute should be dropped: %q", out)
	}
	b, _ := os.ReadFile(path)
	if !strings.Contains(string(b), `"token":"t1"`) {
		t.Fatalf("file did not receive debug record: %q", b)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
