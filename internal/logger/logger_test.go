package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	tests := []struct {
		name      string
		debug     bool
		wantDebug bool
	}{
		{name: "normal mode drops debug", debug: false, wantDebug: false},
		{name: "debug mode keeps debug", debug: true, wantDebug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Init(Config{Debug: tt.debug, ConfigDir: configDir, Extra: &buf}); err != nil {
				t.Fatalf("Failed to initialize logger: %v", err)
			}
			t.Cleanup(func() { Logger = nil })

			if _, err := os.Stat(filepath.Dir(LogPath(configDir))); err != nil {
				t.Errorf("Log directory was not created: %v", err)
			}

			Debug("debug line", "store", "habits")
			Warn("warn line")

			out := buf.String()
			if got := strings.Contains(out, "debug line"); got != tt.wantDebug {
				t.Errorf("debug line present = %v, want %v", got, tt.wantDebug)
			}
			if !strings.Contains(out, "warn line") {
				t.Error("expected warn line in output")
			}
		})
	}
}

func TestHelpersBeforeInit(t *testing.T) {
	Logger = nil
	Debug("ignored")
	Info("ignored")
	Warn("ignored")
	Error("ignored")
	if With("k", "v") != nil {
		t.Error("expected nil child logger before Init")
	}
}
