package filedrop_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/filedrop"
)

var tokenPattern = regexp.MustCompile(`^[0-9A-F]{12}$`)

func TestNewToken(t *testing.T) {
	token := filedrop.NewToken()

	assert.Len(t, token, filedrop.TokenLength)
	assert.Regexp(t, tokenPattern, token)
}

func TestGenerateStorageName(t *testing.T) {
	names := []string{"report.pdf", "a", ".bashrc", "annual report.pdf", "世界.txt"}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			got := filedrop.GenerateStorageName(name)

			assert.True(t, strings.HasSuffix(got, "-"+name))
			assert.Len(t, got, filedrop.TokenLength+1+len(name))
			assert.Regexp(t, tokenPattern, got[:filedrop.TokenLength])
		})
	}
}

func TestGenerateStorageName_Distinct(t *testing.T) {
	seen := make(map[string]struct{}, 1000)

	for range 1000 {
		name := filedrop.GenerateStorageName("report.pdf")
		_, dup := seen[name]
		require.False(t, dup, "duplicate storage name %s", name)
		seen[name] = struct{}{}
	}
}

func TestSplitStorageName(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		token     string
		requested string
		ok        bool
	}{
		{name: "generated", input: "0123456789AB-report.pdf", token: "0123456789AB", requested: "report.pdf", ok: true},
		{name: "requested with hyphens", input: "ABCDEF012345-a-b-c", token: "ABCDEF012345", requested: "a-b-c", ok: true},
		{name: "lowercase token", input: "abcdef012345-report.pdf", ok: false},
		{name: "short token", input: "ABCDEF-report.pdf", ok: false},
		{name: "missing separator", input: "ABCDEF012345report.pdf", ok: false},
		{name: "empty requested", input: "ABCDEF012345-", ok: false},
		{name: "plain name", input: "report.pdf", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, requested, ok := filedrop.SplitStorageName(tt.input)

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
			assert.Equal(t, tt.requested, requested)
		})
	}
}

func TestSplitStorageName_RoundTrip(t *testing.T) {
	name := filedrop.GenerateStorageName("report.pdf")

	token, requested, ok := filedrop.SplitStorageName(name)

	require.True(t, ok)
	assert.Equal(t, name[:filedrop.TokenLength], token)
	assert.Equal(t, "report.pdf", requested)
}
