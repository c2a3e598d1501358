// Package manifest holds the ordered, immutable archive manifest attributes and
// their META-INF/MANIFEST.MF encoding.
package manifest

import (
	"bytes"
	"iter"
	"slices"
	"strings"
	"unicode/utf8"

	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
)

// Path is the manifest location inside an archive.
const Path = "META-INF/MANIFEST.MF"

// maxLineBytes is the manifest line limit, excluding the line terminator.
const maxLineBytes = 72

// Attribute is one manifest entry.
type Attribute struct {
	Key   string
	Value string
}

// Attributes is an ordered key/value mapping with unique keys.
type Attributes struct {
	entries []Attribute
}

// New builds attributes from entries in order. Keys must be unique, non-empty
// and free of ':' and whitespace; values must not contain line breaks.
func New(entries ...Attribute) (*Attributes, error) {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.Key == "" || strings.ContainsAny(e.Key, ": \t\r\n") {
			return nil, errors.ValidationError("invalid manifest key").WithContext("key", e.Key).Build()
		}
		if strings.ContainsAny(e.Value, "\r\n\x00") {
			return nil, errors.ValidationError("manifest value contains line break").WithContext("key", e.Key).Build()
		}
		if _, dup := seen[e.Key]; dup {
			return nil, errors.ValidationError("duplicate manifest key").WithContext("key", e.Key).Build()
		}
		seen[e.Key] = struct{}{}
	}
	return &Attributes{entries: slices.Clone(entries)}, nil
}

// Len returns the number of entries.
func (a *Attributes) Len() int { return len(a.entries) }

// Get returns the value for key.
func (a *Attributes) Get(key string) (string, bool) {
	for _, e := range a.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Keys returns the keys in order.
func (a *Attributes) Keys() []string {
	keys := make([]string, len(a.entries))
	for i, e := range a.entries {
		keys[i] = e.Key
	}
	return keys
}

// All yields entries in order.
func (a *Attributes) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, e := range a.entries {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

// Equal reports whether both hold the same entries in the same order.
func (a *Attributes) Equal(other *Attributes) bool {
	if a == nil || other == nil {
		return a == other
	}
	return slices.Equal(a.entries, other.entries)
}

// Encode renders the main section of MANIFEST.MF. Manifest-Version is always
// first, lines end in CRLF and are wrapped at 72 bytes without splitting a
// UTF-8 sequence.
func (a *Attributes) Encode() []byte {
	var buf bytes.Buffer
	writeLine(&buf, "Manifest-Version: 1.0")
	for _, e := range a.entries {
		if e.Key == "Manifest-Version" {
			continue
		}
		writeLine(&buf, e.Key+": "+e.Value)
	}
	buf.WriteString("\r\n")
	return buf.Bytes()
}

func writeLine(buf *bytes.Buffer, line string) {
	limit := maxLineBytes
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		buf.WriteString(line[:cut])
		buf.WriteString("\r\n ")
		line = line[cut:]
		limit = maxLineBytes - 1
	}
	buf.WriteString(line)
	buf.WriteString("\r\n")
}

// Decode parses a main section produced by Encode. It is used to read back
// manifests from built archives.
func Decode(data []byte) (*Attributes, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	var logical []string
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			break
		}
		if strings.HasPrefix(line, " ") && len(logical) > 0 {
			logical[len(logical)-1] += line[1:]
			continue
		}
		logical = append(logical, line)
	}
	entries := make([]Attribute, 0, len(logical))
	for _, l := range logical {
		key, value, ok := strings.Cut(l, ": ")
		if !ok {
			return nil, errors.ValidationError("malformed manifest line").WithContext("line", l).Build()
		}
		entries = append(entries, Attribute{Key: key, Value: value})
	}
	return New(entries...)
}
