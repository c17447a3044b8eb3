// Package digest computes content digests for deduplication and
// content-identity checks.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

const chunkSize = 1024 * 1024

// File computes the sha256 hex digest of a file's bytes.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Equal reports whether two files have identical content.
func Equal(a, b string) (bool, error) {
	da, err := File(a)
	if err != nil {
		return false, err
	}
	db, err := File(b)
	if err != nil {
		return false, err
	}
	return da == db, nil
}
