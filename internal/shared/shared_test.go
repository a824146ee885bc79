package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLogger(t *testing.T) {
	t.Run("Defaults To Stderr", func(t *testing.T) {
		if logger := NewLogger(nil); logger == nil {
			t.Fatal("expected logger to be created")
		}
	})

	t.Run("Writes To Given Writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Error("boom")

		if buf.Len() == 0 {
			t.Error("expected log output in buffer")
		}
	})
}

func TestNewFileLogger(t *testing.T) {
	t.Run("Creates Parent Directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "nested", "app.log")

		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("failed to create file logger: %v", err)
		}

		logger.Error("boom")

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("log file should exist: %v", err)
		}
		if info.Size() == 0 {
			t.Error("expected log output in file")
		}
	})
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	child := WithLogger(logger, "component", "test")
	if child == nil {
		t.Fatal("expected child logger")
	}

	child.Error("boom")
	if !bytes.Contains(buf.Bytes(), []byte("component")) {
		t.Error("expected key-value pair in log output")
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	SetLogLevel(logger, log.ErrorLevel)
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Error("info line should be suppressed at error level")
	}

	logger.Error("shown")
	if buf.Len() == 0 {
		t.Error("error line should be written")
	}
}

func TestGenerateID(t *testing.T) {
	first := GenerateID()
	second := GenerateID()

	if len(first) != 36 {
		t.Errorf("expected UUID length 36, got %d", len(first))
	}
	if first == second {
		t.Error("expected unique IDs")
	}
}
