package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T, name string) (*Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	SetOutput(buf)
	t.Cleanup(func() { SetOutput(os.Stderr) })
	return ForService(name), buf
}

func TestLinePrefix(t *testing.T) {
	SetGlobalDebug(false)

	l, buf := newTestLogger(t, "prefix_test")
	l.Infof("indexed %d hacks", 3)

	out := buf.String()
	if !strings.Contains(out, "INFO [prefix_test>] indexed 3 hacks") {
		t.Fatalf("unexpected line: %q", out)
	}
}

func TestLevels(t *testing.T) {
	l, buf := newTestLogger(t, "levels_test")

	l.Warnf("slow backend")
	l.Errorf("backend down")

	out := buf.String()
	for _, want := range []string{"WARN [levels_test>] slow backend", "ERROR [levels_test>] backend down"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

func TestDebugPerService(t *testing.T) {
	SetGlobalDebug(false)

	const name = "debug_service_specific"
	DisableDebugFor(name)
	l, buf := newTestLogger(t, name)

	l.Debugf("should not appear")
	if strings.Contains(buf.String(), "should not appear") {
		t.Fatalf("debug message appeared while debug disabled")
	}

	EnableDebugFor(name)
	defer DisableDebugFor(name)

	l.Debugf("visible now")
	if !strings.Contains(buf.String(), "visible now") {
		t.Fatalf("expected debug message after enabling it; got: %q", buf.String())
	}
	if DebugEnabledFor("some_other_service") {
		t.Fatalf("per-service debug leaked to another service")
	}
}

func TestDebugGlobal(t *testing.T) {
	SetGlobalDebug(false)

	const name = "debug_service_global"
	DisableDebugFor(name)
	l, buf := newTestLogger(t, name)

	l.Debugf("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("debug message appeared while global debug disabled")
	}

	SetGlobalDebug(true)
	defer SetGlobalDebug(false)

	l.Debugf("global visible")
	if !strings.Contains(buf.String(), "global visible") {
		t.Fatalf("expected debug message after enabling global debug; got: %q", buf.String())
	}
}

func TestSetOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "hackfinder.log")
	if err := SetOutputFile(path); err != nil {
		t.Fatalf("SetOutputFile: %v", err)
	}
	t.Cleanup(func() { SetOutput(os.Stderr) })

	ForService("file_test").Infof("to the file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "[file_test>] to the file") {
		t.Fatalf("log file content: %q", data)
	}
}
