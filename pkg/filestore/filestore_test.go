package filestore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")

	_, err := New(dir, 1024)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSave_WritesFileAndReturnsURL(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := New(dir, 1024)
	require.NoError(t, err)

	url, err := store.Save("photo.jpg", 5, strings.NewReader("hello"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	content, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}

func TestSave_RejectsOversizedByDeclaredSize(t *testing.T) {
	store, err := New(t.TempDir(), 4)
	require.NoError(t, err)

	_, err = store.Save("photo.jpg", 5, strings.NewReader("hello"))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestSave_RejectsOversizedByActualSize(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := New(dir, 4)
	require.NoError(t, err)

	// Заявленный размер врет, фактическое содержимое больше потолка
	_, err = store.Save("photo.jpg", 3, strings.NewReader("hello"))
	assert.ErrorIs(t, err, ErrTooLarge)

	// Недописанный файл не должен остаться в каталоге
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}
