package filedrop

import (
	"io"
)

// SaveResult is what a FileStorage reports after a successful write.
type SaveResult struct {
	BytesWritten int64
	Checksum     string
}

// UploadResult describes a file accepted by DropService.Upload.
type UploadResult struct {
	RequestedName string `json:"requested_name"`
	StorageName   string `json:"storage_name"`
	SizeBytes     int64  `json:"size_bytes"`
	Checksum      string `json:"sha256"`
}

// Object is an open stored file. The caller must close it.
type Object struct {
	Name    string
	Size    int64
	Content io.ReadCloser
}

// Close releases the underlying content reader.
func (o Object) Close() error {
	if o.Content == nil {
		return nil
	}
	return o.Content.Close()
}
