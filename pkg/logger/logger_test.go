package logger

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewDefaultsToStdout(t *testing.T) {
	// Output left unset must not be treated as a file path.
	l, err := New(&Config{Level: "error", Format: "console"})
	if err != nil {
		t.Fatalf("New with empty output: %v", err)
	}
	if l == nil {
		t.Fatal("New returned nil logger")
	}
}

func TestNewExplicitOutputs(t *testing.T) {
	for _, out := range []string{"stdout", "stderr"} {
		if _, err := New(&Config{Level: "info", Format: "json", Output: out}); err != nil {
			t.Fatalf("New output %q: %v", out, err)
		}
	}
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	if _, err := New(&Config{Level: "info", Format: "json", Output: path}); err != nil {
		t.Fatalf("New file output: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("log file not created: %v", err)
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud", Format: "json"}); err == nil {
		t.Fatal("invalid level accepted")
	}
}
