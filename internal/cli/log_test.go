package cli

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel).Info("built report", "nodes", 4)

	line := buf.String()
	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(line) {
		t.Errorf("line lacks the short timestamp: %q", line)
	}
	if !strings.Contains(line, "built report") || !strings.Contains(line, "nodes=4") {
		t.Errorf("line = %q", line)
	}
}

func TestSetLogLevel(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		wantDbg bool
	}{
		{"info hides debug", log.InfoLevel, false},
		{"debug shows debug", log.DebugLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			c := New(&buf, LogInfo)
			c.SetLogLevel(tt.level)
			c.Logger.Debug("watching directory")

			if got := buf.Len() > 0; got != tt.wantDbg {
				t.Errorf("debug output = %v, want %v", got, tt.wantDbg)
			}
		})
	}
}

func TestVerboseFlagEnablesDebug(t *testing.T) {
	newTestEnv(t)
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"-v", "cache", "path"})
	root.SetOut(&bytes.Buffer{})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if c.Logger.GetLevel() != log.DebugLevel {
		t.Errorf("level after -v = %v", c.Logger.GetLevel())
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Rebuilt report")

	if !regexp.MustCompile(`Rebuilt report \(\d+(\.\d+)?m?s\)`).MatchString(buf.String()) {
		t.Errorf("progress output = %q", buf.String())
	}
}
