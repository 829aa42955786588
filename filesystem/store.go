// Package filesystem provides the file system storage backend for filedrop.
// All operations are confined to an os.Root, so names can never resolve
// outside the storage directory. Writes are atomic: content goes to a temp
// file which is synced and renamed into place only once fully written.
package filesystem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/sagarc03/filedrop"
)

// Store provides file system storage operations.
type Store struct {
	root   *os.Root
	logger *slog.Logger
}

// NewFileStorage creates a new Store with the given root directory.
// The root provides sandboxed file operations preventing path traversal.
func NewFileStorage(root *os.Root) *Store {
	return &Store{root: root, logger: slog.New(slog.DiscardHandler)}
}

// WithLogger returns a copy of the Store that reports cleanup problems to logger.
func (s *Store) WithLogger(logger *slog.Logger) *Store {
	c := *s
	c.logger = logger
	return &c
}

// Get opens a file for reading. Any failure to open or stat the file is
// reported as filedrop.ErrNotFound, wrapped together with the cause.
func (s *Store) Get(ctx context.Context, name string) (filedrop.Object, error) {
	if err := ctx.Err(); err != nil {
		return filedrop.Object{}, err
	}

	f, err := s.root.Open(name)
	if err != nil {
		return filedrop.Object{}, fmt.Errorf("open %s: %w: %w", name, filedrop.ErrNotFound, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return filedrop.Object{}, fmt.Errorf("stat %s: %w: %w", name, filedrop.ErrNotFound, err)
	}

	if !info.Mode().IsRegular() {
		_ = f.Close()
		return filedrop.Object{}, fmt.Errorf("open %s: %w: not a regular file", name, filedrop.ErrNotFound)
	}

	return filedrop.Object{Name: name, Size: info.Size(), Content: f}, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Write atomically writes content to name using a temp file and rename.
// It returns the number of bytes written and a SHA256 checksum of the content.
// On any failure, including context cancellation or a reader error from a
// size-limited body, the temp file is removed and name is left untouched.
func (s *Store) Write(ctx context.Context, name string, content io.Reader) (filedrop.SaveResult, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return filedrop.SaveResult{}, ctxErr
	}

	tmpFile := tmpFileName()
	t, createErr := s.root.Create(tmpFile)
	if createErr != nil {
		return filedrop.SaveResult{}, fmt.Errorf("could not open temp file: %w", createErr)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			s.logger.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil {
				s.logger.Warn("failed to remove tmp file", "file", tmpFile, "err", rmErr)
			}
		}
	}()

	h := sha256.New()
	w := io.MultiWriter(h, t)

	fileSizeBytes, err := io.Copy(w, &ctxReader{ctx: ctx, r: content})
	if err != nil {
		return filedrop.SaveResult{}, fmt.Errorf("could not copy file contents: %w", err)
	}

	err = t.Sync()
	if err != nil {
		return filedrop.SaveResult{}, fmt.Errorf("could not sync written file: %w", err)
	}

	if renameErr := s.root.Rename(tmpFile, name); renameErr != nil {
		return filedrop.SaveResult{}, fmt.Errorf("failed to rename file: %w", renameErr)
	}

	success = true

	return filedrop.SaveResult{
		BytesWritten: fileSizeBytes,
		Checksum:     hex.EncodeToString(h.Sum(nil)),
	}, nil
}

func tmpFileName() string {
	return fmt.Sprintf(".t%s", uuid.New().String())
}
