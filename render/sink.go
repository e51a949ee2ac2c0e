package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Artifact is a finished report: complete PDF bytes and a suggested name.
type Artifact struct {
	Name  string
	Data  []byte
	Pages int
}

// Sink receives finished artifacts. It is never handed partial output.
type Sink interface {
	Save(ctx context.Context, a *Artifact) error
}

// FileSink writes artifacts into Dir. The file appears atomically: data is
// written to a temporary file in the same directory and renamed into place.
type FileSink struct {
	Dir string
}

func (s FileSink) Save(ctx context.Context, a *Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".fieldreport-*.pdf")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(a.Data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", a.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", a.Name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, filepath.Base(a.Name))); err != nil {
		return fmt.Errorf("save %s: %w", a.Name, err)
	}
	return nil
}

// WriterSink streams artifacts to W, typically stdout.
type WriterSink struct {
	W io.Writer
}

func (s WriterSink) Save(_ context.Context, a *Artifact) error {
	_, err := s.W.Write(a.Data)
	return err
}
