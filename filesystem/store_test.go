package filesystem_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/filedrop"
	"github.com/sagarc03/filedrop/filesystem"
)

func newStore(t *testing.T) (*filesystem.Store, string) {
	t.Helper()
	tempDir := t.TempDir()
	root, err := os.OpenRoot(tempDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })
	return filesystem.NewFileStorage(root), tempDir
}

func entries(t *testing.T, dir string) []string {
	t.Helper()
	des, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(des))
	for _, de := range des {
		names = append(names, de.Name())
	}
	return names
}

func TestStore_Get_Success(t *testing.T) {
	store, tempDir := newStore(t)

	content := []byte("test content")
	err := os.WriteFile(filepath.Join(tempDir, "test.txt"), content, 0o644)
	require.NoError(t, err)

	result, err := store.Get(context.Background(), "test.txt")
	require.NoError(t, err)
	defer func() { _ = result.Close() }()

	assert.Equal(t, "test.txt", result.Name)
	assert.Equal(t, int64(len(content)), result.Size)

	readContent, err := io.ReadAll(result.Content)
	assert.NoError(t, err)
	assert.Equal(t, content, readContent)
}

func TestStore_Get_ContextCanceled(t *testing.T) {
	store, _ := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := store.Get(ctx, "test.txt")

	assert.Equal(t, context.Canceled, err)
	assert.Nil(t, result.Content)
}

func TestStore_Get_NotFound(t *testing.T) {
	store, _ := newStore(t)

	result, err := store.Get(context.Background(), "nonexistent.txt")

	assert.ErrorIs(t, err, filedrop.ErrNotFound)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Nil(t, result.Content)
}

func TestStore_Get_Directory(t *testing.T) {
	store, tempDir := newStore(t)
	require.NoError(t, os.Mkdir(filepath.Join(tempDir, "sub"), 0o755))

	_, err := store.Get(context.Background(), "sub")

	assert.ErrorIs(t, err, filedrop.ErrNotFound)
}

func TestStore_Get_EscapeRoot(t *testing.T) {
	parent := t.TempDir()
	storageDir := filepath.Join(parent, "storage")
	require.NoError(t, os.Mkdir(storageDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(parent, "secret.txt"), []byte("secret"), 0o644))

	root, err := os.OpenRoot(storageDir)
	require.NoError(t, err)
	defer func() { _ = root.Close() }()
	store := filesystem.NewFileStorage(root)

	_, err = store.Get(context.Background(), "../secret.txt")

	assert.ErrorIs(t, err, filedrop.ErrNotFound)
}

func TestStore_Write_Success(t *testing.T) {
	store, tempDir := newStore(t)

	result, err := store.Write(context.Background(), "test.txt", bytes.NewReader([]byte("test content")))

	require.NoError(t, err)
	assert.Equal(t, int64(12), result.BytesWritten)
	assert.Equal(t, 64, len(result.Checksum)) // SHA256 hex length

	data, err := os.ReadFile(filepath.Join(tempDir, "test.txt"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("test content"), data)
	assert.Equal(t, []string{"test.txt"}, entries(t, tempDir))
}

func TestStore_Write_EmptyContent(t *testing.T) {
	store, tempDir := newStore(t)

	result, err := store.Write(context.Background(), "empty.txt", bytes.NewReader(nil))

	require.NoError(t, err)
	assert.Equal(t, int64(0), result.BytesWritten)

	info, err := os.Stat(filepath.Join(tempDir, "empty.txt"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())
}

func TestStore_Write_ContextCanceledBefore(t *testing.T) {
	store, tempDir := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := store.Write(ctx, "test.txt", bytes.NewReader([]byte("test")))

	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, int64(0), result.BytesWritten)
	assert.Empty(t, entries(t, tempDir))
}

func TestStore_Write_ContextCanceledDuringCopy(t *testing.T) {
	store, tempDir := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())

	slowReader := &slowReader{
		data:   []byte("test content"),
		cancel: cancel,
	}

	result, err := store.Write(ctx, "test.txt", slowReader)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), result.BytesWritten)
	assert.Empty(t, result.Checksum)
	assert.Empty(t, entries(t, tempDir), "temp file must be removed")
}

func TestStore_Write_ReaderError(t *testing.T) {
	store, tempDir := newStore(t)
	readErr := errors.New("body too large")

	_, err := store.Write(context.Background(), "test.txt", io.MultiReader(
		bytes.NewReader([]byte("partial")),
		&failingReader{err: readErr},
	))

	assert.ErrorIs(t, err, readErr)
	assert.Empty(t, entries(t, tempDir), "no partial file may remain")
}

type slowReader struct {
	data   []byte
	pos    int
	cancel context.CancelFunc
}

func (r *slowReader) Read(p []byte) (n int, err error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	r.cancel()
	n = copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

type failingReader struct {
	err error
}

func (r *failingReader) Read(_ []byte) (int, error) {
	return 0, r.err
}

func TestStore_Write_ChecksumConsistency(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	first, err := store.Write(ctx, "a.txt", bytes.NewReader([]byte("same content")))
	require.NoError(t, err)
	second, err := store.Write(ctx, "b.txt", bytes.NewReader([]byte("same content")))
	require.NoError(t, err)
	third, err := store.Write(ctx, "c.txt", bytes.NewReader([]byte("other content")))
	require.NoError(t, err)

	assert.Equal(t, first.Checksum, second.Checksum)
	assert.NotEqual(t, first.Checksum, third.Checksum)
}

func TestStore_Write_LargeFile(t *testing.T) {
	store, tempDir := newStore(t)

	content := bytes.Repeat([]byte("0123456789abcdef"), 1<<16) // 1 MiB

	result, err := store.Write(context.Background(), "large.bin", bytes.NewReader(content))

	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), result.BytesWritten)

	info, err := os.Stat(filepath.Join(tempDir, "large.bin"))
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), info.Size())
}

func TestStore_Integration_WriteRead(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	content := []byte("%PDF-1.4...")

	_, err := store.Write(ctx, "0123456789AB-report.pdf", bytes.NewReader(content))
	require.NoError(t, err)

	obj, err := store.Get(ctx, "0123456789AB-report.pdf")
	require.NoError(t, err)
	defer func() { _ = obj.Close() }()

	got, err := io.ReadAll(obj.Content)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestStore_ConcurrentWrites(t *testing.T) {
	store, tempDir := newStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("file-%d.txt", i)
			_, err := store.Write(ctx, name, bytes.NewReader([]byte(name)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, entries(t, tempDir), 20)
	for i := range 20 {
		name := fmt.Sprintf("file-%d.txt", i)
		data, err := os.ReadFile(filepath.Join(tempDir, name))
		require.NoError(t, err)
		assert.Equal(t, name, string(data))
	}
}
