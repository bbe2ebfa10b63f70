package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagevault/internal/catalog"
	"imagevault/internal/logger"
)

type testEnv struct {
	library *Library
	catalog *catalog.Catalog
	rootDir string
}

func setupTestLibrary(t *testing.T) *testEnv {
	t.Helper()

	tempDir := t.TempDir()
	cat, err := catalog.Open(filepath.Join(tempDir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })

	return &testEnv{
		library: New(cat, logger.Nop()),
		catalog: cat,
		rootDir: tempDir,
	}
}

// addImage creates a blob on disk and its catalog row.
func (e *testEnv) addImage(t *testing.T, filename, hash string, content []byte) int64 {
	t.Helper()

	path := filepath.Join(e.rootDir, filename)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	id, err := e.catalog.Insert(filename, path, int64(len(content)), hash)
	require.NoError(t, err)
	return id
}

func strPtr(s string) *string { return &s }

func TestUpdateImage_RenameKeepsOriginalExtension(t *testing.T) {
	env := setupTestLibrary(t)
	id := env.addImage(t, "cat.png", "h1", []byte("pixels"))

	// The requested .jpg extension is discarded for the record's own.
	err := env.library.UpdateImage(id, UpdateRequest{Filename: strPtr("dog.jpg")})
	require.NoError(t, err)

	img, err := env.catalog.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, "dog.png", img.Filename)
	assert.Equal(t, filepath.Join(env.rootDir, "dog.png"), img.Path)

	data, err := os.ReadFile(img.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("pixels"), data)

	_, err = os.Stat(filepath.Join(env.rootDir, "cat.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestUpdateImage_RenameWithoutExtension(t *testing.T) {
	env := setupTestLibrary(t)
	id := env.addImage(t, "cat.png", "h1", []byte("pixels"))

	require.NoError(t, env.library.UpdateImage(id, UpdateRequest{Filename: strPtr("kitten")}))

	img, err := env.catalog.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, "kitten.png", img.Filename)
}

func TestUpdateImage_BlankFilename(t *testing.T) {
	env := setupTestLibrary(t)
	id := env.addImage(t, "cat.png", "h1", []byte("pixels"))

	err := env.library.UpdateImage(id, UpdateRequest{Filename: strPtr("   ")})
	assert.ErrorIs(t, err, ErrInvalidFilename)

	// Nothing changed.
	img, err := env.catalog.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, "cat.png", img.Filename)
}

func TestUpdateImage_NameConflict(t *testing.T) {
	env := setupTestLibrary(t)
	id1 := env.addImage(t, "first.png", "h1", []byte("one"))
	id2 := env.addImage(t, "second.png", "h2", []byte("two"))

	err := env.library.UpdateImage(id2, UpdateRequest{Filename: strPtr("first")})
	require.Error(t, err)

	var conflict *NameConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "first.png", conflict.Name)

	// Both records and both files are untouched.
	img1, err := env.catalog.GetByID(id1)
	require.NoError(t, err)
	img2, err := env.catalog.GetByID(id2)
	require.NoError(t, err)
	assert.Equal(t, "first.png", img1.Filename)
	assert.Equal(t, "second.png", img2.Filename)

	_, err = os.Stat(img1.Path)
	assert.NoError(t, err)
	_, err = os.Stat(img2.Path)
	assert.NoError(t, err)
}

func TestUpdateImage_RenameToOwnName(t *testing.T) {
	env := setupTestLibrary(t)
	id := env.addImage(t, "cat.png", "h1", []byte("pixels"))

	// A record never conflicts with its own filename.
	require.NoError(t, env.library.UpdateImage(id, UpdateRequest{Filename: strPtr("cat")}))

	img, err := env.catalog.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, "cat.png", img.Filename)
}

func TestUpdateImage_SetDescription(t *testing.T) {
	env := setupTestLibrary(t)
	id := env.addImage(t, "cat.png", "h1", []byte("pixels"))

	err := env.library.UpdateImage(id, UpdateRequest{Description: strPtr("  a cat  ")})
	require.NoError(t, err)

	img, err := env.catalog.GetByID(id)
	require.NoError(t, err)
	require.NotNil(t, img.Description)
	assert.Equal(t, "a cat", *img.Description)
}

func TestUpdateImage_BlankDescriptionClears(t *testing.T) {
	env := setupTestLibrary(t)
	id := env.addImage(t, "cat.png", "h1", []byte("pixels"))

	require.NoError(t, env.library.UpdateImage(id, UpdateRequest{Description: strPtr("text")}))
	require.NoError(t, env.library.UpdateImage(id, UpdateRequest{Description: strPtr("   ")}))

	img, err := env.catalog.GetByID(id)
	require.NoError(t, err)
	assert.Nil(t, img.Description)
}

func TestUpdateImage_RenameAndDescribeTogether(t *testing.T) {
	env := setupTestLibrary(t)
	id := env.addImage(t, "cat.png", "h1", []byte("pixels"))

	err := env.library.UpdateImage(id, UpdateRequest{
		Filename:    strPtr("feline"),
		Description: strPtr("updated"),
	})
	require.NoError(t, err)

	img, err := env.catalog.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, "feline.png", img.Filename)
	require.NotNil(t, img.Description)
	assert.Equal(t, "updated", *img.Description)
}

func TestUpdateImage_MissingBackingFile(t *testing.T) {
	env := setupTestLibrary(t)
	id := env.addImage(t, "cat.png", "h1", []byte("pixels"))

	img, err := env.catalog.GetByID(id)
	require.NoError(t, err)
	require.NoError(t, os.Remove(img.Path))

	// The rename still lands in the catalog; the divergence is only logged.
	require.NoError(t, env.library.UpdateImage(id, UpdateRequest{Filename: strPtr("ghost")}))

	img, err = env.catalog.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, "ghost.png", img.Filename)
}

func TestUpdateImage_NotFound(t *testing.T) {
	env := setupTestLibrary(t)

	err := env.library.UpdateImage(404, UpdateRequest{Filename: strPtr("x")})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestDeleteImage(t *testing.T) {
	env := setupTestLibrary(t)
	id := env.addImage(t, "cat.png", "h1", []byte("pixels"))

	img, err := env.catalog.GetByID(id)
	require.NoError(t, err)

	require.NoError(t, env.library.DeleteImage(id))

	_, err = env.catalog.GetByID(id)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = os.Stat(img.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteImage_MissingBackingFile(t *testing.T) {
	env := setupTestLibrary(t)
	id := env.addImage(t, "cat.png", "h1", []byte("pixels"))

	img, err := env.catalog.GetByID(id)
	require.NoError(t, err)
	require.NoError(t, os.Remove(img.Path))

	// An already-gone blob does not block the delete.
	require.NoError(t, env.library.DeleteImage(id))

	_, err = env.catalog.GetByID(id)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestDeleteImage_NotFound(t *testing.T) {
	env := setupTestLibrary(t)

	assert.ErrorIs(t, env.library.DeleteImage(404), catalog.ErrNotFound)
}

func TestSweep(t *testing.T) {
	env := setupTestLibrary(t)
	storeRoot := filepath.Join(env.rootDir, "store")
	require.NoError(t, os.MkdirAll(filepath.Join(storeRoot, "aa"), 0o755))

	// Healthy record.
	healthy := filepath.Join(storeRoot, "aa", "good.png")
	require.NoError(t, os.WriteFile(healthy, []byte("ok"), 0o644))
	_, err := env.catalog.Insert("good.png", healthy, 2, "good")
	require.NoError(t, err)

	// Row without a file.
	dangling := filepath.Join(storeRoot, "aa", "gone.png")
	_, err = env.catalog.Insert("gone.png", dangling, 2, "gone")
	require.NoError(t, err)

	// File without a row.
	orphan := filepath.Join(storeRoot, "aa", "orphan.png")
	require.NoError(t, os.WriteFile(orphan, []byte("??"), 0o644))

	report, err := env.library.Sweep(storeRoot)
	require.NoError(t, err)
	assert.Equal(t, []string{dangling}, report.DanglingRows)
	assert.Equal(t, []string{orphan}, report.OrphanBlobs)

	// Sweep never deletes anything.
	_, err = os.Stat(orphan)
	assert.NoError(t, err)
}

func TestSweep_MissingRoot(t *testing.T) {
	env := setupTestLibrary(t)

	report, err := env.library.Sweep(filepath.Join(env.rootDir, "never-created"))
	require.NoError(t, err)
	assert.Empty(t, report.OrphanBlobs)
	assert.Empty(t, report.DanglingRows)
}
