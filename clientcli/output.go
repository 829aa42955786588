package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
)

// Formatter formats results for output.
type Formatter interface {
	FormatUpload(w io.Writer, result *UploadResult) error
	FormatDownload(w io.Writer, result *DownloadResult) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text. In quiet mode only the value a
// script needs is printed: the download URL after an upload, nothing after a
// download.
type HumanFormatter struct {
	Quiet bool
}

// FormatUpload formats an upload result as human-readable text.
func (f *HumanFormatter) FormatUpload(w io.Writer, r *UploadResult) error {
	if f.Quiet {
		if r.URL != "" {
			_, _ = fmt.Fprintln(w, r.URL)
		} else {
			_, _ = fmt.Fprintln(w, r.StorageName)
		}
		return nil
	}

	_, _ = fmt.Fprintf(w, "Uploaded: %s -> %s (%s)\n", r.LocalPath, r.StorageName, formatSize(r.Size))
	if r.URL != "" {
		_, _ = fmt.Fprintf(w, "  curl -O %s\n", r.URL)
	}
	if r.Checksum != "" {
		_, _ = fmt.Fprintf(w, "  SHA256: %s\n", r.Checksum)
	}
	return nil
}

// FormatDownload formats a download result as human-readable text.
func (f *HumanFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	if f.Quiet {
		return nil
	}
	if result.LocalPath == "-" {
		_, _ = fmt.Fprintf(w, "Downloaded: %s (%s)\n", result.StorageName, formatSize(result.Size))
	} else {
		_, _ = fmt.Fprintf(w, "Downloaded: %s -> %s (%s)\n", result.StorageName, result.LocalPath, formatSize(result.Size))
	}
	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// FormatProfileList formats a list of profiles as human-readable text.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	maxNameLen := 4 // "NAME"
	for i := range profiles {
		maxNameLen = max(maxNameLen, len(profiles[i].Name))
	}
	maxNameLen = min(maxNameLen, 20)

	_, _ = fmt.Fprintf(w, "  %-*s  %s\n", maxNameLen, "NAME", "SERVER")
	_, _ = fmt.Fprintf(w, "  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", 30))

	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}

		name := p.Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s %-*s  %s\n", marker, maxNameLen, name, p.Server)
	}

	return nil
}

// FormatProfileShow formats a single profile as human-readable text.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error {
	_, _ = fmt.Fprintf(w, "Name:   %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Server: %s\n", profile.Server)
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatUpload formats an upload result as JSON.
func (f *JSONFormatter) FormatUpload(w io.Writer, result *UploadResult) error {
	return writeJSON(w, result)
}

// FormatDownload formats a download result as JSON.
func (f *JSONFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	return writeJSON(w, result)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

type jsonProfile struct {
	Name    string `json:"name"`
	Server  string `json:"server"`
	Default bool   `json:"default"`
}

// FormatProfileList formats a list of profiles as JSON.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	output := struct {
		Profiles []jsonProfile `json:"profiles"`
	}{
		Profiles: make([]jsonProfile, len(profiles)),
	}

	for i := range profiles {
		output.Profiles[i] = jsonProfile{
			Name:    profiles[i].Name,
			Server:  profiles[i].Server,
			Default: profiles[i].Name == defaultName,
		}
	}

	return writeJSON(w, output)
}

// FormatProfileShow formats a single profile as JSON.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error {
	return writeJSON(w, jsonProfile{
		Name:    profile.Name,
		Server:  profile.Server,
		Default: isDefault,
	})
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSize formats bytes as human-readable size. Unknown sizes are negative.
func formatSize(bytes int64) string {
	if bytes < 0 {
		return "unknown size"
	}
	return humanize.IBytes(uint64(bytes))
}
