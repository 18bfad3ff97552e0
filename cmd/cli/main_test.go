//go:build !js && !wasm

package main

import (
	"bytes"
	"context"
	"flag"
	"path/filepath"
	"strings"
	"testing"

	"github.com/himanishpuri/EarMark/internal/testaudio"
	"github.com/himanishpuri/EarMark/pkg/earmark"
	"github.com/himanishpuri/EarMark/pkg/earmark/audio"
)

func TestParseWithPath(t *testing.T) {
	tests := []struct {
		args  []string
		path  string
		name  string
		owner string
	}{
		{[]string{"bell.wav", "--name", "bell", "--owner", "u1"}, "bell.wav", "bell", "u1"},
		{[]string{"--name", "bell", "bell.wav", "--owner", "u1"}, "bell.wav", "bell", "u1"},
		{[]string{"--name=bell", "--owner=u1", "bell.wav"}, "bell.wav", "bell", "u1"},
		{[]string{"--name", "bell"}, "", "bell", ""},
	}

	for _, tt := range tests {
		fs := flag.NewFlagSet("teach", flag.ContinueOnError)
		name := fs.String("name", "", "")
		owner := fs.String("owner", "", "")

		path, err := parseWithPath(fs, tt.args)
		if err != nil {
			t.Fatalf("parseWithPath(%v) failed: %v", tt.args, err)
		}
		if path != tt.path || *name != tt.name || *owner != tt.owner {
			t.Errorf("parseWithPath(%v) = (%q, %q, %q), want (%q, %q, %q)",
				tt.args, path, *name, *owner, tt.path, tt.name, tt.owner)
		}
	}
}

func TestParseWithPathExtraArgs(t *testing.T) {
	fs := flag.NewFlagSet("identify", flag.ContinueOnError)
	if _, err := parseWithPath(fs, []string{"a.wav", "b.wav"}); err == nil {
		t.Error("Expected error for two positional arguments")
	}
}

func TestInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bell.wav")
	if err := audio.WriteWav(path, testaudio.Doorbell(1), testaudio.SampleRate); err != nil {
		t.Fatalf("WriteWav failed: %v", err)
	}

	var out bytes.Buffer
	if err := handleInspect([]string{path, "--frames", "3"}, &out); err != nil {
		t.Fatalf("handleInspect failed: %v", err)
	}

	text := out.String()
	if !strings.Contains(text, "22 frames") {
		t.Errorf("Expected frame count in header, got %q", text)
	}
	if !strings.Contains(text, "spectralCentroid") || !strings.Contains(text, "peakHz") {
		t.Error("Expected feature names in table header")
	}
	// header line, column line, three frames
	if lines := strings.Count(strings.TrimSpace(text), "\n") + 1; lines != 6 {
		t.Errorf("Expected 6 lines, got %d:\n%s", lines, text)
	}
}

func TestPeakFrequency(t *testing.T) {
	// 4 bins over a 4000 Hz nyquist, strongest at bin 2.
	if got := peakFrequency([]float64{0, 1, 5, 2}, 8000); got != 2000 {
		t.Errorf("Expected peak at 2000 Hz, got %f", got)
	}
	if got := peakFrequency(nil, 8000); got != 0 {
		t.Errorf("Expected 0 for empty spectrum, got %f", got)
	}
}

func TestListAndDelete(t *testing.T) {
	backend = earmark.BackendJSON
	dbPath = filepath.Join(t.TempDir(), "library.json")
	tempDir = t.TempDir()

	svc, err := createService()
	if err != nil {
		t.Fatalf("createService failed: %v", err)
	}
	id, err := svc.TeachSamples(context.Background(), testaudio.Doorbell(1), testaudio.SampleRate, "front door", "u1")
	if err != nil {
		t.Fatalf("TeachSamples failed: %v", err)
	}
	svc.Close()

	var out bytes.Buffer
	if err := handleList([]string{"--owner", "u1"}, &out); err != nil {
		t.Fatalf("handleList failed: %v", err)
	}
	if !strings.Contains(out.String(), id) || !strings.Contains(out.String(), "front door") {
		t.Errorf("Expected sound in listing, got %q", out.String())
	}

	out.Reset()
	if err := handleDelete([]string{id}, &out); err != nil {
		t.Fatalf("handleDelete failed: %v", err)
	}

	out.Reset()
	handleList(nil, &out)
	if !strings.Contains(out.String(), "No sounds") {
		t.Errorf("Expected empty listing after delete, got %q", out.String())
	}

	if err := handleDelete([]string{id}, &out); err == nil {
		t.Error("Expected error deleting a missing sound")
	}
}

func TestTeachRequiresFlags(t *testing.T) {
	if err := handleTeach([]string{"bell.wav", "--name", "bell"}, &bytes.Buffer{}); err == nil {
		t.Error("Expected error without --owner")
	}
}
