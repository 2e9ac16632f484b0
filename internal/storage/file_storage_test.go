package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUpload_SizeLimit(t *testing.T) {
	assert.NoError(t, ValidateUpload("application/pdf", MaxUploadSize))
	assert.ErrorIs(t, ValidateUpload("application/pdf", MaxUploadSize+1), ErrFileTooLarge)
	assert.ErrorIs(t, ValidateUpload("application/pdf", 15*1024*1024), ErrFileTooLarge)
}

func TestValidateUpload_MimeAllowList(t *testing.T) {
	allowed := []string{
		"application/pdf",
		"image/jpeg",
		"image/png",
		"image/gif",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"text/plain",
	}
	for _, m := range allowed {
		assert.NoError(t, ValidateUpload(m, 1024), m)
	}

	blocked := []string{"application/x-sh", "text/html", "application/octet-stream", ""}
	for _, m := range blocked {
		assert.ErrorIs(t, ValidateUpload(m, 1024), ErrMimeNotAllowed, m)
	}
}

func TestValidateUpload_StripsParameters(t *testing.T) {
	assert.NoError(t, ValidateUpload("text/plain; charset=utf-8", 1024))
	assert.NoError(t, ValidateUpload("Application/PDF", 1024))
}

func TestSave_ShardsAndKeepsExtension(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	path, err := storage.Save("report.pdf", strings.NewReader("content"))
	require.NoError(t, err)

	// Relative path shaped <2-char shard>/<uuid>.pdf
	parts := strings.Split(filepath.ToSlash(path), "/")
	require.Len(t, parts, 2)
	assert.Len(t, parts[0], 2)
	assert.True(t, strings.HasSuffix(parts[1], ".pdf"))
	assert.True(t, strings.HasPrefix(parts[1], parts[0]))

	data, err := os.ReadFile(filepath.Join(tempDir, path))
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

func TestSave_UniqueNames(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	path1, err := storage.Save("doc.pdf", strings.NewReader("a"))
	require.NoError(t, err)
	path2, err := storage.Save("doc.pdf", strings.NewReader("b"))
	require.NoError(t, err)

	assert.NotEqual(t, path1, path2)
}

func TestGet_RoundTrip(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	path, err := storage.Save("doc.txt", strings.NewReader("hello"))
	require.NoError(t, err)

	reader, err := storage.Get(path)
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestGet_NotFound(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	_, err = storage.Get("ab/missing.pdf")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestGet_PathTraversal(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	cases := []string{
		"../etc/passwd",
		"../../etc/passwd",
		"subdir/../../../etc/passwd",
		"/etc/passwd",
	}
	for _, p := range cases {
		_, err := storage.Get(p)
		assert.ErrorIs(t, err, ErrPathTraversal, p)
	}
}

func TestDelete_RemovesFile(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	path, err := storage.Save("doc.txt", strings.NewReader("bye"))
	require.NoError(t, err)

	require.NoError(t, storage.Delete(path))

	_, err = os.Stat(filepath.Join(tempDir, path))
	assert.True(t, os.IsNotExist(err))
}

func TestDelete_MissingFileIsNoError(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	assert.NoError(t, storage.Delete("ab/already-gone.pdf"))
}
