package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const siteReport = `title: Daily Monitoring Report
fields:
  - {label: File Number, value: FN-7}
  - {label: Project Name, value: North Pipeline, full_width: true}
  - {label: Date, value: "2024-05-01"}
sections:
  - title: Summary
    body: |
      Crew on site at 07:00.
      - Silt fence inspected
`

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    options
		wantErr bool
	}{
		{
			name: "defaults",
			args: []string{"report.yaml"},
			want: options{contentPath: "report.yaml", configPath: "fieldreport.yaml"},
		},
		{
			name: "all flags",
			args: []string{"-config", "c.yaml", "-out", "pdfs", "-deterministic", "-v", "r.yaml"},
			want: options{contentPath: "r.yaml", configPath: "c.yaml", outDir: "pdfs", deterministic: true, verbose: true},
		},
		{
			name: "stdout",
			args: []string{"-out", "-", "r.yaml"},
			want: options{contentPath: "r.yaml", configPath: "fieldreport.yaml", outDir: "-", stdout: true},
		},
		{name: "no content", args: nil, wantErr: true},
		{name: "two contents", args: []string{"a.yaml", "b.yaml"}, wantErr: true},
		{name: "unknown flag", args: []string{"-pages", "3", "r.yaml"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFlags(tt.args, io.Discard)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFlags(%q) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("parseFlags(%q) = %+v, want %+v", tt.args, got, tt.want)
			}
		})
	}
}

func TestCLIExitCodes(t *testing.T) {
	dir := t.TempDir()
	noConfig := filepath.Join(dir, "missing.yaml")
	tests := []struct {
		name   string
		args   []string
		code   int
		stderr string
	}{
		{"usage", nil, 2, "Usage: fieldreport"},
		{"bad flag", []string{"-nope", "r.yaml"}, 2, "flag provided but not defined"},
		{"help", []string{"-h"}, 0, "Usage: fieldreport"},
		{"missing content", []string{"-config", noConfig, filepath.Join(dir, "absent.yaml")}, 1, "fieldreport:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			if code := cli(tt.args, &stderr); code != tt.code {
				t.Fatalf("exit code = %d, want %d (stderr %q)", code, tt.code, stderr.String())
			}
			if !strings.Contains(stderr.String(), tt.stderr) {
				t.Fatalf("stderr %q missing %q", stderr.String(), tt.stderr)
			}
		})
	}
}

func TestRunRefusesTerminal(t *testing.T) {
	prev := stdoutIsTerminal
	stdoutIsTerminal = func() bool { return true }
	t.Cleanup(func() { stdoutIsTerminal = prev })

	var stderr bytes.Buffer
	code := cli([]string{"-out", "-", "report.yaml"}, &stderr)
	if code != 1 || !strings.Contains(stderr.String(), "terminal") {
		t.Fatalf("code = %d, stderr = %q; want a terminal refusal", code, stderr.String())
	}
}

func TestRunWritesFile(t *testing.T) {
	dir := t.TempDir()
	content := filepath.Join(dir, "report.yaml")
	if err := os.WriteFile(content, []byte(siteReport), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out")
	if err := os.Mkdir(out, 0o755); err != nil {
		t.Fatal(err)
	}

	var stderr bytes.Buffer
	opts := options{contentPath: content, configPath: filepath.Join(dir, "none.yaml"), outDir: out, deterministic: true}
	if err := run(opts, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(out, "FN-7_North_Pipeline_2024-05-01.pdf"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-1.7")) {
		t.Fatalf("output is not a PDF")
	}
	if !strings.Contains(stderr.String(), "wrote FN-7_North_Pipeline_2024-05-01.pdf (1 pages)") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}
