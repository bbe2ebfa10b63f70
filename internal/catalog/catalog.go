package catalog

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"imagevault/internal/model"
)

// Catalog is the SQLite-backed image index. SQLite serializes writers on its
// own; the RWMutex on top keeps the single connection from interleaving
// multi-statement operations.
type Catalog struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates or opens the catalog database at dbPath and applies the
// schema.
func Open(dbPath string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	c := &Catalog{db: db}

	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return c, nil
}

// migrate creates the images table and supporting indexes if absent.
func (c *Catalog) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS images (
		id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL,
		path TEXT NOT NULL UNIQUE,
		thumbnail_path TEXT,
		size INTEGER NOT NULL DEFAULT 0,
		hash TEXT NOT NULL UNIQUE,
		description TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_images_filename ON images(filename);
	CREATE INDEX IF NOT EXISTS idx_images_created_at ON images(created_at);
	`

	_, err := c.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

const imageColumns = `id, filename, path, thumbnail_path, size, hash, description, created_at, updated_at`

// Insert adds a new image record and returns its id. Violating the hash or
// path uniqueness constraint yields ErrDuplicateHash or ErrDuplicatePath.
func (c *Catalog) Insert(filename, path string, size int64, hash string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result, err := c.db.Exec(`
		INSERT INTO images (filename, path, size, hash, updated_at)
		VALUES (?, ?, ?, ?, datetime('now'))
	`, filename, path, size, hash)
	if err != nil {
		return 0, constraintError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

// ExistsByHash reports whether a record with the given content hash exists.
func (c *Catalog) ExistsByHash(hash string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var count int
	err := c.db.QueryRow(`SELECT COUNT(*) FROM images WHERE hash = ?`, hash).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check hash existence: %w", err)
	}
	return count > 0, nil
}

// FilenameInUse reports whether a record other than excludeID already uses
// the given filename.
func (c *Catalog) FilenameInUse(filename string, excludeID int64) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var count int
	err := c.db.QueryRow(`
		SELECT COUNT(*) FROM images WHERE filename = ? AND id != ?
	`, filename, excludeID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check filename: %w", err)
	}
	return count > 0, nil
}

// GetByID retrieves one record or ErrNotFound.
func (c *Catalog) GetByID(id int64) (*model.Image, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	row := c.db.QueryRow(`SELECT `+imageColumns+` FROM images WHERE id = ?`, id)
	img, err := scanImage(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get image %d: %w", id, err)
	}
	return img, nil
}

// GetAll returns every record, newest first.
func (c *Catalog) GetAll() ([]model.Image, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.db.Query(`
		SELECT ` + imageColumns + ` FROM images
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}
	defer rows.Close()

	return collectImages(rows)
}

// Search returns records whose filename or description contains term,
// newest first. A blank term is equivalent to GetAll.
func (c *Catalog) Search(term string) ([]model.Image, error) {
	if strings.TrimSpace(term) == "" {
		return c.GetAll()
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	pattern := "%" + term + "%"
	rows, err := c.db.Query(`
		SELECT `+imageColumns+` FROM images
		WHERE filename LIKE ? OR description LIKE ?
		ORDER BY created_at DESC, id DESC
	`, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search images: %w", err)
	}
	defer rows.Close()

	return collectImages(rows)
}

// ImageUpdate describes a partial update applied in one transaction. A nil
// field is left untouched. ClearDescription wins over Description.
type ImageUpdate struct {
	Filename         *string
	Path             *string
	Description      *string
	ClearDescription bool
}

// ApplyUpdate applies the update atomically, stamping updated_at. Both the
// filename/path pair and the description land together or not at all.
func (c *Catalog) ApplyUpdate(id int64, upd ImageUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if upd.Filename != nil {
		if upd.Path == nil {
			return fmt.Errorf("filename update requires a path")
		}
		res, err := tx.Exec(`
			UPDATE images SET filename = ?, path = ?, updated_at = datetime('now')
			WHERE id = ?
		`, *upd.Filename, *upd.Path, id)
		if err != nil {
			return constraintError(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
	}

	if upd.ClearDescription || upd.Description != nil {
		var desc interface{}
		if !upd.ClearDescription {
			desc = *upd.Description
		}
		res, err := tx.Exec(`
			UPDATE images SET description = ?, updated_at = datetime('now')
			WHERE id = ?
		`, desc, id)
		if err != nil {
			return fmt.Errorf("failed to update description: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateFilenameAndPath renames a record, stamping updated_at.
func (c *Catalog) UpdateFilenameAndPath(id int64, filename, path string) error {
	return c.ApplyUpdate(id, ImageUpdate{Filename: &filename, Path: &path})
}

// UpdateDescription sets or clears (nil) the description, stamping
// updated_at.
func (c *Catalog) UpdateDescription(id int64, description *string) error {
	if description == nil {
		return c.ApplyUpdate(id, ImageUpdate{ClearDescription: true})
	}
	return c.ApplyUpdate(id, ImageUpdate{Description: description})
}

// Delete removes a record. The backing file is the caller's responsibility.
func (c *Catalog) Delete(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, err := c.db.Exec(`DELETE FROM images WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete image %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AllPaths returns the stored path of every record, for consistency checks.
func (c *Catalog) AllPaths() ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.db.Query(`SELECT path FROM images`)
	if err != nil {
		return nil, fmt.Errorf("failed to query paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// Stats returns totals over the whole catalog.
func (c *Catalog) Stats() (*model.Stats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := &model.Stats{}
	err := c.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(size), 0) FROM images
	`).Scan(&stats.TotalImages, &stats.TotalSizeBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanImage(row rowScanner) (*model.Image, error) {
	var img model.Image
	var thumbnail, description sql.NullString

	err := row.Scan(&img.ID, &img.Filename, &img.Path, &thumbnail, &img.Size,
		&img.Hash, &description, &img.CreatedAt, &img.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if thumbnail.Valid {
		img.ThumbnailPath = &thumbnail.String
	}
	if description.Valid {
		img.Description = &description.String
	}
	return &img, nil
}

func collectImages(rows *sql.Rows) ([]model.Image, error) {
	var images []model.Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, *img)
	}
	return images, rows.Err()
}
