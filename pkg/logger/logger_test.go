package logger

import (
	"path/filepath"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	Init(Options{Level: InfoLevel, Format: "text"})
	log := Get()
	if log == nil {
		t.Fatal("Logger is nil")
	}
}

func TestLoggerLevels(t *testing.T) {
	Init(Options{Level: DebugLevel, Format: "text"})
	log := Get()
	log.Debug("debug")
	log.Info("info")
	log.Warn("warn")
	log.Error("error")
}

func TestLoggerWith(t *testing.T) {
	Init(Options{Level: InfoLevel, Format: "text"})
	log := Get().With("key", "value")
	log.Info("message")
}

func TestLoggerFormats(t *testing.T) {
	for _, format := range []string{"text", "json"} {
		Init(Options{Level: InfoLevel, Format: format})
		log := Get()
		if log == nil {
			t.Errorf("Logger nil for format %s", format)
		}
	}
}

func TestLoggerFileOutput(t *testing.T) {
	file := filepath.Join(t.TempDir(), "pantrypal.log")
	Init(Options{Level: InfoLevel, Format: "json", File: file, MaxSizeMB: 1})
	log := Get()
	log.Info("written to file")
}
