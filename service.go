package filedrop

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// FileStorage defines the interface for physical file storage operations.
//
// All methods accept a context for cancellation. Implementations should
// respect context cancellation during long-running copies.
type FileStorage interface {
	// Get opens a stored file for reading.
	//
	// Returns:
	//   - Object: the open file and its size; the caller must close it
	//   - error: ErrNotFound if the file is missing or cannot be opened
	Get(ctx context.Context, name string) (Object, error)

	// Write stores content under name.
	//
	// Implementations should:
	//   - Write atomically (e.g., temp file then rename) so that readers never
	//     observe a partial file
	//   - Remove partial data when the copy fails or the context is cancelled
	//   - Return an accurate byte count
	Write(ctx context.Context, name string, content io.Reader) (SaveResult, error)
}

// NameGenerator turns a requested name into a storage name.
type NameGenerator func(requested string) string

type DropService struct {
	storage  FileStorage
	logger   *slog.Logger
	generate NameGenerator
}

// ServiceOption configures a DropService.
type ServiceOption func(*DropService)

// WithNameGenerator replaces GenerateStorageName, mostly for tests.
func WithNameGenerator(g NameGenerator) ServiceOption {
	return func(s *DropService) {
		s.generate = g
	}
}

func NewDropService(storage FileStorage, logger *slog.Logger, opts ...ServiceOption) (*DropService, error) {
	if storage == nil {
		return nil, fmt.Errorf("new drop service: storage is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &DropService{
		storage:  storage,
		logger:   logger,
		generate: GenerateStorageName,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Upload writes content under a freshly generated storage name derived from
// requested. The storage name is unique per call with overwhelming
// probability, so existing files are never checked for or overwritten.
//
// Error types returned:
//   - ErrInvalidName: requested fails IsValidName
//   - context.Canceled or context.DeadlineExceeded: context was cancelled
//   - Wrapped storage errors: issues writing to storage
func (s *DropService) Upload(ctx context.Context, requested string, content io.Reader) (UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return UploadResult{}, fmt.Errorf("upload: %w", err)
	}

	if !IsValidName(requested) {
		return UploadResult{}, fmt.Errorf("upload %q: %w", requested, ErrInvalidName)
	}

	storageName := s.generate(requested)

	saved, err := s.storage.Write(ctx, storageName, content)
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload %s: %w", storageName, err)
	}

	s.logger.Info("upload completed",
		"requested", requested,
		"storage_name", storageName,
		"bytes", saved.BytesWritten,
		"sha256", saved.Checksum,
	)

	return UploadResult{
		RequestedName: requested,
		StorageName:   storageName,
		SizeBytes:     saved.BytesWritten,
		Checksum:      saved.Checksum,
	}, nil
}

// Download opens the stored file with the exact storage name. Names that fail
// IsValidStorageName are reported as ErrInvalidName without touching storage.
func (s *DropService) Download(ctx context.Context, storageName string) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, fmt.Errorf("download: %w", err)
	}

	if !IsValidStorageName(storageName) {
		return Object{}, fmt.Errorf("download %q: %w", storageName, ErrInvalidName)
	}

	obj, err := s.storage.Get(ctx, storageName)
	if err != nil {
		return Object{}, fmt.Errorf("download %s: %w", storageName, err)
	}

	return obj, nil
}
