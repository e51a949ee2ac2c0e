package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var errNoImage = errors.New("no image reference")

// AssetResolver maps a named asset, such as the report logo, to a path the
// ImageSource can load.
type AssetResolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}

// DirAssets resolves names to files inside Dir.
type DirAssets struct {
	Dir string
}

func (a DirAssets) Resolve(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" {
		return "", fmt.Errorf("asset name is empty")
	}
	path := filepath.Join(a.Dir, filepath.Clean("/"+name))
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("resolve asset %q: %w", name, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("resolve asset %q: is a directory", name)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path, nil
}

// noAssets resolves nothing; the header falls back to its text logo.
type noAssets struct{}

func (noAssets) Resolve(context.Context, string) (string, error) {
	return "", errors.New("no asset resolver configured")
}
