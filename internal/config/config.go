package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings. Values come from the environment, with
// an optional .env file loaded first. The thumbnail knobs are advisory: no
// thumbnail generator ships with the server, they are only passed through to
// whatever populates thumbnail_path.
type Config struct {
	Port               int
	DatabasePath       string
	ImagesDirectory    string
	ThumbnailsDir      string
	AutoThumbnails     bool
	ThumbnailMaxWidth  int
	ThumbnailMaxHeight int
	APIPassword        string
	StartupSweep       bool
	LogLevel           string
}

// Load reads configuration from the environment.
func Load() *Config {
	// Missing .env is fine, the environment alone is enough.
	_ = godotenv.Load()

	return &Config{
		Port:               getEnvAsInt("PORT", 3000),
		DatabasePath:       getEnv("DB_PATH", filepath.Join(".", "data", "imagevault.db")),
		ImagesDirectory:    getEnv("IMAGES_DIR", filepath.Join(".", "images")),
		ThumbnailsDir:      getEnv("THUMBNAILS_DIR", filepath.Join(".", "images", "thumbnails")),
		AutoThumbnails:     getEnvAsBool("AUTO_THUMBNAILS", true),
		ThumbnailMaxWidth:  getEnvAsInt("THUMBNAIL_MAX_WIDTH", 400),
		ThumbnailMaxHeight: getEnvAsInt("THUMBNAIL_MAX_HEIGHT", 400),
		APIPassword:        getEnv("API_PASSWORD", ""),
		StartupSweep:       getEnvAsBool("STARTUP_SWEEP", false),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
