package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// BannerRule is the 80-character rule framing the retrieval command.
const BannerRule = "===--------------------------------------------------------------------------==="

// Plain-text response bodies. None of them carry internal detail.
const (
	msgUploadFailed      = "Error: Failed to upload file.\n"
	msgTooLarge          = "Error: File too large.\n"
	msgInvalidName       = "Error: Invalid file name.\n"
	msgUploadsProhibited = "New file uploads are prohibited.\n"
	msgNotFound          = "Not found.\n"
)

// DownloadURL returns the public URL for a stored file.
func DownloadURL(publicHost, storageName string) string {
	return "http://" + publicHost + "/get/" + url.PathEscape(storageName)
}

// Banner returns the upload reply: a ready-to-run curl command framed by rules.
func Banner(publicHost, storageName string) string {
	return fmt.Sprintf("\n\n%s\n\ncurl -O %s\n\n%s\n\n",
		BannerRule,
		DownloadURL(publicHost, storageName),
		BannerRule,
	)
}

// UsageHint returns the reply for the root route.
func UsageHint(publicHost string) string {
	return fmt.Sprintf("Use `curl -T <file> http://%s/` to upload files.\n", publicHost)
}

// WriteText writes a plain-text response
func WriteText(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, body)
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
