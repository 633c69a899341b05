package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestDebug_OnlyWhenVerbose(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer SetVerbose(false)

	SetVerbose(false)
	Debug("hidden %d", 1)
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}

	SetVerbose(true)
	Debug("visible %d", 2)
	if !strings.Contains(buf.String(), "[DEBUG] visible 2") {
		t.Errorf("expected debug line, got %q", buf.String())
	}
}

func TestError_AlwaysPrinted(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	SetVerbose(false)
	Error("boom: %v", "cause")
	if !strings.Contains(buf.String(), "[ERROR] boom: cause") {
		t.Errorf("expected error line, got %q", buf.String())
	}
}

func TestIsVerbose(t *testing.T) {
	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be enabled")
	}
	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be disabled")
	}
}

func TestSection(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer SetVerbose(false)

	SetVerbose(true)
	Section("Routing")
	if !strings.Contains(buf.String(), "=== Routing ===") {
		t.Errorf("expected section header, got %q", buf.String())
	}
}
