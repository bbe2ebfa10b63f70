package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"imagevault/internal/catalog"
	"imagevault/internal/model"
)

// Library owns the mutating operations that touch the catalog and the
// filesystem together: renames, description edits and deletes.
type Library struct {
	catalog *catalog.Catalog
	log     zerolog.Logger
}

// New builds a Library over the given catalog.
func New(cat *catalog.Catalog, log zerolog.Logger) *Library {
	return &Library{catalog: cat, log: log}
}

// UpdateRequest carries the optional fields of an image update. Nil means
// leave unchanged.
type UpdateRequest struct {
	Filename    *string
	Description *string
}

// UpdateImage applies a rename and/or description change to one record.
// The caller-supplied filename keeps the record's original extension: a new
// name containing a dot is split at the last dot and the supplied extension
// discarded. Both sub-updates land in one catalog transaction; when the
// transaction fails after the blob was renamed on disk, the rename is undone.
func (l *Library) UpdateImage(id int64, req UpdateRequest) error {
	current, err := l.catalog.GetByID(id)
	if err != nil {
		return err
	}

	var upd catalog.ImageUpdate
	var renamedFrom, renamedTo string

	if req.Filename != nil {
		finalName, err := l.resolveFilename(current, *req.Filename)
		if err != nil {
			return err
		}

		newPath := filepath.Join(filepath.Dir(current.Path), finalName)
		if _, statErr := os.Stat(current.Path); statErr == nil {
			if err := os.Rename(current.Path, newPath); err != nil {
				return fmt.Errorf("failed to rename file: %w", err)
			}
			renamedFrom, renamedTo = current.Path, newPath
		} else {
			// The catalog row is updated anyway; the divergence is already
			// there and hiding it behind an error would not repair it.
			l.log.Warn().Int64("id", id).Str("path", current.Path).
				Msg("backing file missing, renaming catalog record only")
		}

		upd.Filename = &finalName
		upd.Path = &newPath
	}

	if req.Description != nil {
		trimmed := strings.TrimSpace(*req.Description)
		if trimmed == "" {
			upd.ClearDescription = true
		} else {
			upd.Description = &trimmed
		}
	}

	if err := l.catalog.ApplyUpdate(id, upd); err != nil {
		if renamedFrom != "" {
			if undoErr := os.Rename(renamedTo, renamedFrom); undoErr != nil {
				l.log.Error().Err(undoErr).Str("path", renamedTo).
					Msg("failed to undo file rename after catalog error")
			}
		}
		return err
	}

	return nil
}

// resolveFilename validates the requested name and reattaches the record's
// original extension.
func (l *Library) resolveFilename(current *model.Image, requested string) (string, error) {
	trimmed := strings.TrimSpace(requested)
	if trimmed == "" {
		return "", ErrInvalidFilename
	}

	extension := filepath.Ext(current.Path)

	base := trimmed
	if idx := strings.LastIndex(trimmed, "."); idx > 0 {
		base = trimmed[:idx]
	}
	finalName := base + extension

	inUse, err := l.catalog.FilenameInUse(finalName, current.ID)
	if err != nil {
		return "", err
	}
	if inUse {
		return "", &NameConflictError{Name: finalName}
	}

	return finalName, nil
}

// DeleteImage removes the catalog row and then the backing blob. A blob that
// is already gone is not an error.
func (l *Library) DeleteImage(id int64) error {
	current, err := l.catalog.GetByID(id)
	if err != nil {
		return err
	}

	if err := l.catalog.Delete(id); err != nil {
		return err
	}

	if err := os.Remove(current.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", current.Path, err)
	}

	l.log.Info().Int64("id", id).Str("file", current.Filename).Msg("image deleted")
	return nil
}

// SweepReport lists inconsistencies between the catalog and the blob store.
type SweepReport struct {
	OrphanBlobs  []string `json:"orphan_blobs"`
	DanglingRows []string `json:"dangling_rows"`
}

// Sweep walks the store root and compares it against the catalog. It only
// reports: orphan blobs can appear after a crash between copy and insert,
// dangling rows after external file removal. Nothing is deleted.
func (l *Library) Sweep(root string) (*SweepReport, error) {
	paths, err := l.catalog.AllPaths()
	if err != nil {
		return nil, err
	}

	cataloged := make(map[string]bool, len(paths))
	report := &SweepReport{}
	for _, p := range paths {
		cataloged[p] = true
		if _, err := os.Stat(p); err != nil {
			report.DanglingRows = append(report.DanglingRows, p)
			l.log.Warn().Str("path", p).Msg("catalog row has no backing file")
		}
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			if os.IsNotExist(walkErr) {
				return nil
			}
			return walkErr
		}
		if d.IsDir() || cataloged[path] {
			return nil
		}
		report.OrphanBlobs = append(report.OrphanBlobs, path)
		l.log.Warn().Str("path", path).Msg("blob has no catalog row")
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk store root: %w", err)
	}

	return report, nil
}
