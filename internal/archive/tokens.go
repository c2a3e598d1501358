package archive

import (
	"bytes"
	"maps"
	"slices"
)

// Token markers replaced inside packaged text resources.
const (
	TokenIdentifier = "@__identifier__@"
	TokenYear       = "@__year__@"
)

// Tokens maps a marker to its replacement.
type Tokens map[string]string

// StandardTokens returns the identifier ("<library id>-<version>") and
// copyright year tokens.
func StandardTokens(libraryID, version, copyrightYear string) Tokens {
	return Tokens{
		TokenIdentifier: libraryID + "-" + version,
		TokenYear:       copyrightYear,
	}
}

// Apply replaces every marker in data. Markers are ASCII, so replacement
// works on raw bytes whatever the text encoding. Binary content (any NUL
// byte) is returned unchanged.
func (t Tokens) Apply(data []byte) []byte {
	if len(t) == 0 || bytes.IndexByte(data, 0) >= 0 {
		return data
	}
	for _, k := range slices.Sorted(maps.Keys(t)) {
		data = bytes.ReplaceAll(data, []byte(k), []byte(t[k]))
	}
	return data
}

// Remaining reports which markers still occur in data.
func (t Tokens) Remaining(data []byte) []string {
	var out []string
	for _, k := range slices.Sorted(maps.Keys(t)) {
		if bytes.Contains(data, []byte(k)) {
			out = append(out, k)
		}
	}
	return out
}
