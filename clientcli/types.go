package clientcli

// UploadOptions configures an upload operation.
type UploadOptions struct {
	LocalPath string
	Name      string // optional, defaults to the base name of LocalPath
}

// UploadResult represents the result of uploading a file.
type UploadResult struct {
	LocalPath     string `json:"local_path"`
	RequestedName string `json:"requested_name"`
	StorageName   string `json:"storage_name"`
	URL           string `json:"url,omitempty"`
	Size          int64  `json:"size_bytes"`
	Checksum      string `json:"sha256,omitempty"`
}

// DownloadOptions configures a download operation.
type DownloadOptions struct {
	StorageName string // storage name or full download URL
	LocalPath   string // empty = derive from storage name, "-" = stdout
}

// DownloadResult represents the result of downloading a file.
type DownloadResult struct {
	StorageName string `json:"storage_name"`
	LocalPath   string `json:"local_path"`
	Size        int64  `json:"size_bytes"`
}

// serverUploadResponse mirrors the JSON reply to an upload.
type serverUploadResponse struct {
	RequestedName string `json:"requested_name"`
	StorageName   string `json:"storage_name"`
	SizeBytes     int64  `json:"size_bytes"`
	Checksum      string `json:"sha256"`
	URL           string `json:"url"`
}
