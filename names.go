package filedrop

import (
	"strings"

	"github.com/google/uuid"
)

// TokenLength is the number of characters in the random prefix of a storage name.
const TokenLength = 12

// NewToken returns a random TokenLength-character token taken from an
// uppercased UUIDv4 with hyphens removed.
func NewToken() string {
	hex := strings.ReplaceAll(strings.ToUpper(uuid.New().String()), "-", "")
	return hex[:TokenLength]
}

// GenerateStorageName prefixes requested with a fresh random token.
// The requested name is not validated here; see IsValidName.
func GenerateStorageName(requested string) string {
	return NewToken() + "-" + requested
}

// SplitStorageName returns the token and requested name of a storage name.
// ok is false when name does not carry a well-formed token prefix.
func SplitStorageName(name string) (token, requested string, ok bool) {
	if len(name) < TokenLength+2 || name[TokenLength] != '-' {
		return "", "", false
	}

	token = name[:TokenLength]
	for _, r := range token {
		if !(r >= '0' && r <= '9') && !(r >= 'A' && r <= 'F') {
			return "", "", false
		}
	}

	return token, name[TokenLength+1:], true
}
