package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"imagevault/internal/catalog"
)

// acceptedExtensions is the set of image formats the pipeline takes in. The
// check is extension-based only, no content sniffing.
var acceptedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// AcceptsExtension reports whether the pipeline ingests files with the given
// extension (leading dot, any case).
func AcceptsExtension(ext string) bool {
	return acceptedExtensions[strings.ToLower(ext)]
}

// Catalog is the index the pipeline writes to.
type Catalog interface {
	ExistsByHash(hash string) (bool, error)
	Insert(filename, path string, size int64, hash string) (int64, error)
}

// Store is the blob store the pipeline copies into.
type Store interface {
	EnsureRoot() error
	Place(source, hash, extension string) (string, error)
	Remove(path string) error
}

// Result reports the outcome of one ingestion.
type Result struct {
	Deduplicated bool   `json:"deduplicated"`
	ImageID      int64  `json:"image_id,omitempty"`
	FileSize     int64  `json:"file_size"`
	Message      string `json:"message"`
}

// Pipeline ingests image files: validate, hash, dedup-check, copy into the
// store, index in the catalog. The copy happens before the insert; when the
// insert fails the just-placed blob is deleted again so no orphan survives
// an ordinary error path.
type Pipeline struct {
	catalog Catalog
	store   Store
	log     zerolog.Logger
}

// New builds a Pipeline over the given catalog and store.
func New(catalog Catalog, store Store, log zerolog.Logger) *Pipeline {
	return &Pipeline{catalog: catalog, store: store, log: log}
}

// Ingest runs the full pipeline for the file at source. Byte-identical
// content that is already cataloged yields a Deduplicated result without any
// filesystem write or new row.
func (p *Pipeline) Ingest(source string) (*Result, error) {
	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, source)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrSourceNotFound, source)
	}

	extension := strings.ToLower(filepath.Ext(source))
	if !acceptedExtensions[extension] {
		return nil, &UnsupportedFormatError{Path: source, Extension: extension}
	}

	hash, err := HashFile(source)
	if err != nil {
		return nil, err
	}

	filename := filepath.Base(source)
	size := info.Size()

	exists, err := p.catalog.ExistsByHash(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate: %w", err)
	}
	if exists {
		p.log.Debug().Str("file", filename).Str("hash", hash).Msg("duplicate content, skipping")
		return &Result{
			Deduplicated: true,
			FileSize:     size,
			Message:      fmt.Sprintf("file %q already exists, skipped", filename),
		}, nil
	}

	if err := p.store.EnsureRoot(); err != nil {
		return nil, err
	}

	storedPath, err := p.store.Place(source, hash, extension)
	if err != nil {
		return nil, err
	}

	id, err := p.catalog.Insert(filename, storedPath, size, hash)
	if err != nil {
		if errors.Is(err, catalog.ErrDuplicateHash) {
			// Lost a race against another ingest of the same content. The
			// blob at storedPath now backs the winner's record, so it stays.
			return &Result{
				Deduplicated: true,
				FileSize:     size,
				Message:      fmt.Sprintf("file %q already exists, skipped", filename),
			}, nil
		}
		if rmErr := p.store.Remove(storedPath); rmErr != nil {
			p.log.Error().Err(rmErr).Str("path", storedPath).
				Msg("failed to clean up blob after insert failure")
		}
		return nil, fmt.Errorf("failed to index %s: %w", filename, err)
	}

	p.log.Info().Str("file", filename).Int64("id", id).Int64("size", size).Msg("image ingested")

	return &Result{
		ImageID:  id,
		FileSize: size,
		Message:  fmt.Sprintf("file %q ingested", filename),
	}, nil
}
