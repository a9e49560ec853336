// Package fingerprint computes content hashes used as dedup keys.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"captionsearch/config"
)

// ErrRead is returned when the input stream cannot be read to completion.
var ErrRead = errors.New("fingerprint: read failed")

// Reader hashes r incrementally and returns the lowercase hex SHA-256 digest.
func Reader(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, config.FingerprintChunkSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRead, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// File hashes the file at path.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRead, err)
	}
	defer f.Close()
	return Reader(f)
}
