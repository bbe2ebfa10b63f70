package model

import "time"

// Image is a catalog record describing one stored image blob. The hash
// uniquely identifies the content; the path points at the blob on disk.
type Image struct {
	ID            int64     `json:"id"`
	Filename      string    `json:"filename"`
	Path          string    `json:"path"`
	Size          int64     `json:"size"`
	Hash          string    `json:"hash"`
	ThumbnailPath *string   `json:"thumbnail_path"`
	Description   *string   `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Stats summarizes the catalog contents.
type Stats struct {
	TotalImages    int64 `json:"total_images"`
	TotalSizeBytes int64 `json:"total_size_bytes"`
}
