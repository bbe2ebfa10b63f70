package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, filepath.Join(".", "data", "imagevault.db"), cfg.DatabasePath)
	assert.Equal(t, filepath.Join(".", "images"), cfg.ImagesDirectory)
	assert.True(t, cfg.AutoThumbnails)
	assert.Equal(t, 400, cfg.ThumbnailMaxWidth)
	assert.Equal(t, 400, cfg.ThumbnailMaxHeight)
	assert.Empty(t, cfg.APIPassword)
	assert.False(t, cfg.StartupSweep)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DB_PATH", "/var/lib/imagevault/catalog.db")
	t.Setenv("IMAGES_DIR", "/srv/images")
	t.Setenv("API_PASSWORD", "hunter2")
	t.Setenv("STARTUP_SWEEP", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/var/lib/imagevault/catalog.db", cfg.DatabasePath)
	assert.Equal(t, "/srv/images", cfg.ImagesDirectory)
	assert.Equal(t, "hunter2", cfg.APIPassword)
	assert.True(t, cfg.StartupSweep)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("STARTUP_SWEEP", "maybe")

	cfg := Load()

	assert.Equal(t, 3000, cfg.Port)
	assert.False(t, cfg.StartupSweep)
}
