package api

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileScreenshotSink_Store(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileScreenshotSink(dir)

	ref, err := sink.Store(context.Background(), "https://example.com/page", []byte("fake-png-bytes"))
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(ref) || filepath.Dir(ref) == dir)

	contents, err := os.ReadFile(ref)
	require.NoError(t, err)
	assert.Equal(t, "fake-png-bytes", string(contents))
}

func TestFileScreenshotSink_Store_SameURLOverwrites(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileScreenshotSink(dir)

	ref1, err := sink.Store(context.Background(), "https://example.com/page", []byte("first"))
	require.NoError(t, err)
	ref2, err := sink.Store(context.Background(), "https://example.com/page", []byte("second"))
	require.NoError(t, err)

	assert.Equal(t, ref1, ref2)
	contents, err := os.ReadFile(ref2)
	require.NoError(t, err)
	assert.Equal(t, "second", string(contents))
}
