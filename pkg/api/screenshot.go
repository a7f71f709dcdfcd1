package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// FileScreenshotSink implements browser.ScreenshotSink by writing captured
// PNGs to a directory on disk, keyed by a content hash of the source URL so
// repeated captures of the same page overwrite rather than accumulate.
type FileScreenshotSink struct {
	dir string
}

// NewFileScreenshotSink constructs a sink rooted at dir. dir must already
// exist; the caller is responsible for creating it.
func NewFileScreenshotSink(dir string) *FileScreenshotSink {
	return &FileScreenshotSink{dir: dir}
}

// Store writes png to <dir>/<sha256(url)>.png and returns that path as the
// asset's screenshot_ref.
func (f *FileScreenshotSink) Store(ctx context.Context, url string, png []byte) (string, error) {
	sum := sha256.Sum256([]byte(url))
	name := hex.EncodeToString(sum[:]) + ".png"
	path := filepath.Join(f.dir, name)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", fmt.Errorf("api: write screenshot: %w", err)
	}
	return path, nil
}
