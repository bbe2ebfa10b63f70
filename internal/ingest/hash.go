package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// hashChunkSize is the read granularity while digesting. The resulting hash
// does not depend on it.
const hashChunkSize = 64 * 1024

// HashFile streams the file through SHA-256 and returns the hex digest.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &HashError{Path: path, Err: err}
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, hashChunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", &HashError{Path: path, Err: err}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
