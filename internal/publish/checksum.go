package publish

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"hash"
	"io"
	"os"

	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
)

// Checksum extensions written next to every uploaded file.
var checksumExts = []string{".md5", ".sha1"}

// WriteChecksums writes path+".md5" and path+".sha1" and returns their names.
func WriteChecksums(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.FileSystemError("cannot open file for checksum").WithContext("path", path).WithCause(err).Build()
	}
	defer f.Close()

	hashes := []hash.Hash{md5.New(), sha1.New()} //nolint:gosec // Maven checksum sidecars
	if _, err := io.Copy(io.MultiWriter(hashes[0], hashes[1]), f); err != nil {
		return nil, errors.FileSystemError("cannot read file for checksum").WithContext("path", path).WithCause(err).Build()
	}
	out := make([]string, 0, len(hashes))
	for i, h := range hashes {
		name := path + checksumExts[i]
		if err := os.WriteFile(name, []byte(hex.EncodeToString(h.Sum(nil))), 0o644); err != nil {
			return nil, errors.FileSystemError("cannot write checksum").WithContext("path", name).WithCause(err).Build()
		}
		out = append(out, name)
	}
	return out, nil
}
