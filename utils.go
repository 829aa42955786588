package filedrop

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxStorageNameLength is the longest filename most filesystems accept.
const MaxStorageNameLength = 255

// MaxNameLength bounds requested names so that the storage name
// (token, hyphen and requested name) fits MaxStorageNameLength.
const MaxNameLength = MaxStorageNameLength - TokenLength - 1

// IsValidName validates that a requested or storage name is a single, safe
// filename. It checks that the name:
//   - is not empty, "." or ".."
//   - is at most MaxNameLength bytes
//   - does not contain path separators (/ or \)
//   - is valid UTF-8
//   - does not contain null bytes, control characters (< 0x20) or DEL (0x7f)
//
// Returns true if the name is valid, false otherwise.
func IsValidName(name string) bool {
	return isSafeFilename(name, MaxNameLength)
}

// IsValidStorageName applies the IsValidName rules to a name read back from a
// download request, allowing for the token prefix in the length limit.
// Generated names start with the token, so dot names are rejected; the store
// keeps its in-progress temp files under them.
func IsValidStorageName(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return isSafeFilename(name, MaxStorageNameLength)
}

func isSafeFilename(name string, maxLen int) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}

	if len(name) > maxLen {
		return false
	}

	if strings.ContainsAny(name, `/\`) {
		return false
	}

	if !utf8.ValidString(name) {
		return false
	}

	for _, r := range name {
		if r == 0 || r < 0x20 || r == 0x7f || (unicode.IsSpace(r) && r != ' ') {
			return false
		}
	}

	return true
}
