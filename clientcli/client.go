package clientcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sagarc03/filedrop"
)

// DefaultTimeout is the default HTTP client timeout. It bounds whole
// transfers, so it is generous.
const DefaultTimeout = 10 * time.Minute

// Client performs operations against a filedrop server.
type Client struct {
	server     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		server:     strings.TrimSuffix(cfg.Server, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Server returns the normalized server URL.
func (c *Client) Server() string {
	return c.server
}

// Upload sends a local file to the server.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) (*UploadResult, error) {
	if opts.LocalPath == "" {
		return nil, fmt.Errorf("upload: %w", ErrEmptyPath)
	}

	name := opts.Name
	if name == "" {
		name = filepath.Base(opts.LocalPath)
	}
	if !filedrop.IsValidName(name) {
		return nil, fmt.Errorf("upload %q: %w", name, ErrInvalidName)
	}

	file, err := os.Open(opts.LocalPath) //#nosec G304 -- LocalPath is user-provided input
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("upload %s: not a regular file", opts.LocalPath)
	}

	// The file streams as the body; nothing is buffered in memory.
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.server+"/"+url.PathEscape(name), file)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/octet-stream")
	req.ContentLength = info.Size()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, parseServerError(resp.StatusCode, body)
	}

	var meta serverUploadResponse
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &UploadResult{
		LocalPath:     opts.LocalPath,
		RequestedName: meta.RequestedName,
		StorageName:   meta.StorageName,
		URL:           meta.URL,
		Size:          meta.SizeBytes,
		Checksum:      meta.Checksum,
	}, nil
}

// Download fetches a stored file.
// If opts.LocalPath is "-", the content is returned via the io.ReadCloser and must be closed by the caller.
// Otherwise, the content is written to the file and the io.ReadCloser is nil.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, io.ReadCloser, error) {
	if opts.StorageName == "" {
		return nil, nil, fmt.Errorf("download: %w", ErrEmptyPath)
	}

	target, storageName, err := c.downloadTarget(opts.StorageName)
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, nil, parseServerError(resp.StatusCode, body)
	}

	result := &DownloadResult{
		StorageName: storageName,
		Size:        resp.ContentLength,
	}

	if opts.LocalPath == "-" {
		result.LocalPath = "-"
		return result, resp.Body, nil
	}

	localPath := opts.LocalPath
	if localPath == "" {
		localPath = LocalName(storageName)
	}
	result.LocalPath = localPath

	written, err := writeLocalFile(localPath, resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, nil, err
	}

	result.Size = written
	return result, nil, nil
}

// downloadTarget resolves a storage name or a full download URL into the
// request URL and the bare storage name.
func (c *Client) downloadTarget(ref string) (target, storageName string, err error) {
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		if !filedrop.IsValidStorageName(ref) {
			return "", "", fmt.Errorf("download %q: %w", ref, ErrInvalidName)
		}
		return c.server + "/get/" + url.PathEscape(ref), ref, nil
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", "", fmt.Errorf("parse url: %w", err)
	}

	dir, name := path.Split(u.Path)
	if dir != "/get/" || !filedrop.IsValidStorageName(name) {
		return "", "", fmt.Errorf("download %q: %w", ref, ErrInvalidName)
	}
	return u.String(), name, nil
}

// LocalName returns the file name a download is saved under when no local
// path is given: the client-supplied part of the storage name.
func LocalName(storageName string) string {
	if _, requested, ok := filedrop.SplitStorageName(storageName); ok {
		return requested
	}
	return storageName
}

// writeLocalFile copies r into a temp file next to localPath and renames it
// into place once complete.
func writeLocalFile(localPath string, r io.Reader) (int64, error) {
	dir := filepath.Dir(localPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return 0, fmt.Errorf("create directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(localPath)+".*")
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}
	tmpName := tmp.Name()

	written, err := io.Copy(tmp, r)
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("write file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("close file: %w", err)
	}

	if err := os.Rename(tmpName, localPath); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("rename file: %w", err)
	}

	return written, nil
}

// parseServerError wraps a non-success response.
func parseServerError(statusCode int, body []byte) error {
	return &APIError{
		StatusCode: statusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Body
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// IsNotFound returns true if the error is a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrNotFound is returned when the file does not exist or downloads are disabled (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrBadName is returned when the server rejects the file name (400).
	ErrBadName = &APIError{StatusCode: http.StatusBadRequest}

	// ErrForbidden is returned when the server does not accept uploads (403).
	ErrForbidden = &APIError{StatusCode: http.StatusForbidden}

	// ErrTooLarge is returned when the file exceeds the server's size limit (413).
	ErrTooLarge = &APIError{StatusCode: http.StatusRequestEntityTooLarge}
)
