package logging

import (
	"os"
	"strings"
	"sync"
	"testing"
)

// setupTestDir points the package at a temp log directory and resets the
// global session state so each test starts clean.
func setupTestDir(t *testing.T) {
	t.Helper()

	logDir = t.TempDir()
	initErr = nil
	initOnce = sync.Once{}
	initOnce.Do(func() {}) // consume so initLogDirectory keeps the temp dir
	sessionID = ""
	sessionIDOnce = sync.Once{}

	t.Cleanup(func() {
		initOnce = sync.Once{}
		sessionID = ""
		sessionIDOnce = sync.Once{}
	})
}

func TestNewLogger(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test-component")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	if logger.component != "test-component" {
		t.Errorf("Expected component test-component, got %s", logger.component)
	}
	if logger.LogPath() == "" {
		t.Error("Expected a log path, got empty string")
	}
	if logger.SessionID() == "" {
		t.Error("Expected a session ID, got empty string")
	}
}

func TestLoggerWritesLevels(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("memory")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	logger.Debugf("debug %d", 1)
	logger.Infof("info %s", "message")
	logger.Warnf("warn")
	logger.Errorf("error: %v", os.ErrNotExist)
	logger.Close()

	data, err := os.ReadFile(logger.LogPath())
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	content := string(data)

	for _, want := range []string{"[DEBUG] debug 1", "[INFO] info message", "[WARN] warn", "[ERROR] error:", "[memory]"} {
		if !strings.Contains(content, want) {
			t.Errorf("Expected log to contain %q, got:\n%s", want, content)
		}
	}
}

func TestSharedSessionID(t *testing.T) {
	setupTestDir(t)

	a, err := NewLogger("a")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer a.Close()

	b, err := NewLogger("b")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer b.Close()

	if a.SessionID() != b.SessionID() {
		t.Errorf("Expected shared session ID, got %s and %s", a.SessionID(), b.SessionID())
	}
	if a.LogPath() != b.LogPath() {
		t.Errorf("Expected components to share one log file, got %s and %s", a.LogPath(), b.LogPath())
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("close")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	if err := logger.Close(); err != nil {
		t.Errorf("First close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Second close failed: %v", err)
	}
}
