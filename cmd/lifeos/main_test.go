package main

import (
	"testing"

	"github.com/alecthomas/kong"
)

func TestDebugFlagAndCommandCoexist(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantCmd   string
		wantDebug bool
	}{
		{name: "debug command", args: []string{"debug", "path"}, wantCmd: "debug path"},
		{name: "debug flag", args: []string{"--debug", "doctor"}, wantCmd: "doctor", wantDebug: true},
		{name: "both", args: []string{"--debug", "debug", "path"}, wantCmd: "debug path", wantDebug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser, err := kong.New(&CLI, parserOptions()...)
			if err != nil {
				t.Fatalf("kong.New failed: %v", err)
			}
			kctx, err := parser.Parse(tt.args)
			if err != nil {
				t.Fatalf("Parse(%v) failed: %v", tt.args, err)
			}
			if kctx.Command() != tt.wantCmd {
				t.Errorf("Command() = %q, want %q", kctx.Command(), tt.wantCmd)
			}
			if CLI.Debug != tt.wantDebug {
				t.Errorf("Debug = %v, want %v", CLI.Debug, tt.wantDebug)
			}
		})
	}
}
