package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"imagevault/internal/catalog"
	"imagevault/internal/ingest"
	"imagevault/internal/logger"
	"imagevault/internal/store"
)

func main() {
	sourceDir := flag.String("dir", ".", "Directory to scan for images")
	dbPath := flag.String("db", filepath.Join("data", "imagevault.db"), "Catalog database path")
	imagesDir := flag.String("images", "images", "Content store root")
	flag.Parse()

	fmt.Printf("Ingesting images from %s into %s\n", *sourceDir, *imagesDir)

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0o755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	cat, err := catalog.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open catalog: %v", err)
	}
	defer cat.Close()

	pipeline := ingest.New(cat, store.New(*imagesDir), logger.Nop())

	var stored, deduplicated, skipped int
	err = filepath.WalkDir(*sourceDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !ingest.AcceptsExtension(filepath.Ext(path)) {
			return nil
		}

		result, err := pipeline.Ingest(path)
		if err != nil {
			log.Printf("Skipping %s: %v", path, err)
			skipped++
			return nil
		}
		if result.Deduplicated {
			deduplicated++
		} else {
			stored++
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to walk %s: %v", *sourceDir, err)
	}

	fmt.Printf("Done: %d stored, %d duplicates skipped, %d errors\n", stored, deduplicated, skipped)

	if stats, err := cat.Stats(); err == nil {
		fmt.Printf("Catalog now holds %d images (%d bytes)\n", stats.TotalImages, stats.TotalSizeBytes)
	}
}
