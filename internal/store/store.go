package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ContentStore maps content hashes to blob locations under a single root
// directory. Blobs are sharded by the first two hex characters of the hash to
// bound directory fan-out.
type ContentStore struct {
	root string
}

// New creates a ContentStore rooted at the given directory. No I/O happens
// until EnsureRoot or Place is called.
func New(root string) *ContentStore {
	return &ContentStore{root: root}
}

// Root returns the configured root directory.
func (s *ContentStore) Root() string {
	return s.root
}

// StoragePath computes the blob location for a hash and extension. It is a
// pure function: same inputs, same path, no I/O. Hashes shorter than two
// characters shard into a directory named after the whole hash.
func (s *ContentStore) StoragePath(hash, extension string) string {
	shard := hash
	if len(hash) >= 2 {
		shard = hash[:2]
	}
	return filepath.Join(s.root, shard, hash+extension)
}

// EnsureRoot creates the root directory tree if it does not exist.
func (s *ContentStore) EnsureRoot() error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return &RootError{Path: s.root, Err: err}
	}
	return nil
}

// Place copies the file at source into the store under the location computed
// from hash and extension, creating the shard directory on demand. The copy
// goes through a temporary file in the shard directory, so a failure never
// damages a blob already present at the destination. Returns the stored path.
func (s *ContentStore) Place(source, hash, extension string) (string, error) {
	dest := s.StoragePath(hash, extension)

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", &RootError{Path: filepath.Dir(dest), Err: err}
	}

	if err := copyFile(source, dest); err != nil {
		return "", &CopyError{Source: source, Dest: dest, Err: err}
	}

	return dest, nil
}

// Remove deletes a blob. A missing blob is not an error.
func (s *ContentStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove blob %s: %w", path, err)
	}
	return nil
}

func copyFile(source, dest string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".place-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
