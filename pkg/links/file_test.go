package links

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dorkwright/pkg/errors"
)

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "links.txt")

	content := "https://example.com/a.pdf\n\n  \nhttps://example.com/b.zip\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	urls, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/a.pdf", "https://example.com/b.zip"}, urls)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
	assert.Equal(t, errors.KindInput, errors.KindOf(err))
	assert.True(t, errors.IsFatal(err))
}

func TestReadFileEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n\n"), 0644))

	_, err := ReadFile(path)
	require.Error(t, err)
	assert.Equal(t, errors.KindInput, errors.KindOf(err))
}

func TestWriteFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	urls := []string{"https://a.example/x.pdf", "https://b.example/y.csv"}
	require.NoError(t, WriteFile(path, urls))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, urls, got)
}
