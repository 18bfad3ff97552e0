package logger

import (
	"bytes"
	"fmt"
	"os"
	"runtime"
	"strings"
	"testing"
)

func newTestLogger(buf *bytes.Buffer, level LogLevel) *Logger {
	return New(Config{Level: level, Output: buf, ShowTime: false, Colorize: false})
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, WARN)

	l.Debugf("debug %d", 1)
	l.Infof("info %d", 2)
	l.Warnf("warn %d", 3)
	l.Errorf("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Errorf("Expected DEBUG and INFO to be filtered, got %q", out)
	}
	if !strings.Contains(out, "[WARN] warn 3") {
		t.Errorf("Expected WARN line, got %q", out)
	}
	if !strings.Contains(out, "[ERROR] error 4") {
		t.Errorf("Expected ERROR line, got %q", out)
	}
}

func TestWithPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, DEBUG).With("library").With("json")

	l.Infof("loaded %d sounds", 3)

	if got := strings.TrimSpace(buf.String()); got != "[INFO] [library] [json] loaded 3 sounds" {
		t.Errorf("Unexpected line %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
		ok   bool
	}{
		{"debug", DEBUG, true},
		{" Warning ", WARN, true},
		{"ERROR", ERROR, true},
		{"fatal", FATAL, true},
		{"verbose", INFO, false},
		{"", INFO, false},
	}

	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestColorize(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: INFO, Output: &buf, Colorize: true})

	l.Error("boom")

	if !strings.Contains(buf.String(), colorPurple+"[ERROR]"+colorReset) {
		t.Errorf("Expected colourised level, got %q", buf.String())
	}
}

// here returns "logger_test.go:<line>" for the line after the call.
func here(t *testing.T) string {
	t.Helper()
	_, _, line, _ := runtime.Caller(1)
	return fmt.Sprintf("logger_test.go:%d", line+1)
}

func TestShowCallerReportsCallSite(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: DEBUG, Output: &buf, ShowCaller: true})

	tests := []struct {
		name string
		emit func() string
	}{
		{"Info", func() string {
			want := here(t)
			l.Info("plain")
			return want
		}},
		{"Infof", func() string {
			want := here(t)
			l.Infof("formatted %d", 1)
			return want
		}},
		{"Errorf", func() string {
			want := here(t)
			l.Errorf("failed %s", "x")
			return want
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			want := tt.emit()
			if !strings.Contains(buf.String(), want) {
				t.Errorf("Expected caller %s, got %q", want, buf.String())
			}
		})
	}
}

func TestPackageLevelShowCaller(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetShowCaller(true)
	SetLevel(DEBUG)
	t.Cleanup(func() {
		SetOutput(os.Stdout)
		SetShowCaller(false)
		SetLevel(INFO)
	})

	want := here(t)
	Warnf("disk at %d%%", 90)

	if !strings.Contains(buf.String(), want) {
		t.Errorf("Expected caller %s, got %q", want, buf.String())
	}
}
