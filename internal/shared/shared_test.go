package shared

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLogger(t *testing.T) {
	t.Run("buffers get the text formatter", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello", "artist", "air")

		if !strings.Contains(buf.String(), "hello") || !strings.Contains(buf.String(), "artist=air") {
			t.Errorf("unexpected log line %q", buf.String())
		}
	})

	t.Run("non-terminal files get logfmt", func(t *testing.T) {
		f, err := os.Create(filepath.Join(t.TempDir(), "log.txt"))
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()

		if formatterFor(f) != log.LogfmtFormatter {
			t.Error("expected logfmt for a regular file")
		}
		if IsTerminal(f) {
			t.Error("a regular file is not a terminal")
		}
		if IsTerminal(&bytes.Buffer{}) {
			t.Error("a buffer is not a terminal")
		}
	})

	t.Run("SetLogLevel and WithLogger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.DebugLevel)

		WithLogger(logger, "run", 7).Debug("step")
		if !strings.Contains(buf.String(), "run=7") {
			t.Errorf("expected child fields in %q", buf.String())
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if len(a) != 36 || a == b {
		t.Errorf("expected distinct UUIDs, got %q and %q", a, b)
	}

	state, err := GenerateState()
	if err != nil || state == "" {
		t.Errorf("GenerateState() = %q, %v", state, err)
	}
}

func TestMarshalJSON(t *testing.T) {
	v := map[string]string{"name": "Simon & Garfunkel"}

	compact, err := MarshalJSON(v, false)
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if string(compact) != `{"name":"Simon & Garfunkel"}`+"\n" {
		t.Errorf("unexpected compact output %q", compact)
	}

	pretty, err := MarshalJSON(v, true)
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if !strings.Contains(string(pretty), "\n  \"name\"") {
		t.Errorf("expected two-space indent, got %q", pretty)
	}

	if _, err := MarshalJSON(make(chan int), false); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestBrowserCommand(t *testing.T) {
	tests := []struct {
		goos string
		want string
	}{
		{"darwin", "open"},
		{"linux", "xdg-open"},
		{"freebsd", "xdg-open"},
		{"windows", "rundll32"},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			cmd := browserCommand(tt.goos, "https://example.com")
			if cmd == nil {
				t.Fatal("expected a command")
			}
			if filepath.Base(cmd.Args[0]) != tt.want {
				t.Errorf("expected %s, got %v", tt.want, cmd.Args)
			}
			if cmd.Args[len(cmd.Args)-1] != "https://example.com" {
				t.Errorf("expected url as last argument, got %v", cmd.Args)
			}
		})
	}

	t.Run("unsupported platform", func(t *testing.T) {
		if browserCommand("plan9", "https://example.com") != nil {
			t.Error("expected nil command")
		}

		orig := getRuntime
		getRuntime = func() string { return "plan9" }
		defer func() { getRuntime = orig }()

		if err := OpenBrowser("https://example.com"); err == nil {
			t.Error("expected error on unsupported platform")
		}
	})
}

func TestRunLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locks", "tagsync.lock")

	first, err := AcquireRunLock(path)
	if err != nil {
		t.Fatalf("AcquireRunLock failed: %v", err)
	}
	if first.Path() != path {
		t.Errorf("expected path %s, got %s", path, first.Path())
	}

	if _, err := AcquireRunLock(path); !errors.Is(err, ErrLocked) {
		t.Errorf("expected ErrLocked while held, got %v", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if err := first.Release(); err != nil {
		t.Errorf("second Release should be a no-op, got %v", err)
	}

	second, err := AcquireRunLock(path)
	if err != nil {
		t.Fatalf("expected lock to be free after release: %v", err)
	}
	second.Release()

	if _, err := AcquireRunLock(""); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for empty path, got %v", err)
	}

	var nilLock *RunLock
	if err := nilLock.Release(); err != nil {
		t.Errorf("nil lock Release should be a no-op, got %v", err)
	}
}
