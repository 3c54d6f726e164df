// SPDX-License-Identifier: EPL-2.0

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ik5/audlab/internal/audiotest"
)

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := os.WriteFile(path, audiotest.SineWAV16(16000, 0.25, 440, 0.7), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_OneShot(t *testing.T) {
	t.Setenv("AUDLAB_TEMP_DIR", t.TempDir())

	dir := t.TempDir()
	opts := options{
		in:     writeInput(t),
		rate:   8000,
		bits:   6,
		out:    filepath.Join(dir, "out.wav"),
		plots:  filepath.Join(dir, "plots"),
		format: "svg",
	}

	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), opts, &stdout, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	out := stdout.String()
	for _, want := range []string{
		"source:    tone.wav, wav, 16000 Hz, 1 ch",
		"target:    8000 Hz, 6-bit",
		"size:      1500 bytes",
		"PCM_U8",
		"warning:   6-bit samples stored in a 8-bit",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}

	wav, err := os.ReadFile(opts.out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(wav, []byte("RIFF")) {
		t.Error("output is not a RIFF file")
	}

	for _, name := range []string{"overview.svg", "markers.svg", "zoom.svg"} {
		data, err := os.ReadFile(filepath.Join(opts.plots, name))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Contains(data, []byte("<svg")) {
			t.Errorf("%s is not an SVG document", name)
		}
	}
}

func TestRun_KeepsSourceRate(t *testing.T) {
	t.Setenv("AUDLAB_TEMP_DIR", t.TempDir())

	var stdout bytes.Buffer
	err := run(context.Background(), options{in: writeInput(t), rate: 0, bits: 16}, &stdout, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(stdout.String(), "target:    16000 Hz, 16-bit") {
		t.Errorf("unexpected report:\n%s", stdout.String())
	}
}

func TestRun_WhatIfLabelledOnce(t *testing.T) {
	t.Setenv("AUDLAB_TEMP_DIR", t.TempDir())
	t.Setenv("AUDLAB_COMPARE_CHANNELS", "2")

	var stdout bytes.Buffer
	err := run(context.Background(), options{in: writeInput(t), rate: 8000, bits: 8}, &stdout, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	out := stdout.String()
	if !strings.Contains(out, "what if:   ") {
		t.Fatalf("report has no what-if line:\n%s", out)
	}
	if n := strings.Count(out, "illustrative"); n != 1 {
		t.Errorf("illustrative appears %d times, want 1:\n%s", n, out)
	}
}

func TestRun_Errors(t *testing.T) {
	t.Setenv("AUDLAB_TEMP_DIR", t.TempDir())

	tests := []struct {
		name string
		opts options
	}{
		{"missing input", options{in: filepath.Join(t.TempDir(), "nope.wav"), rate: 8000, bits: 8}},
		{"bad bit depth", options{in: writeInput(t), rate: 8000, bits: 1}},
		{"bad figure format", options{in: writeInput(t), rate: 8000, bits: 8, plots: t.TempDir(), format: "bmp"}},
		{"bad config", options{in: writeInput(t), rate: 8000, bits: 8, configPath: filepath.Join(t.TempDir(), "missing.json")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(context.Background(), tt.opts, &bytes.Buffer{}, &bytes.Buffer{}); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
