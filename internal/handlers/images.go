package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"imagevault/internal/catalog"
	"imagevault/internal/hub"
	"imagevault/internal/library"
	"imagevault/internal/model"
)

// ListImagesHandler returns every catalog record, newest first.
func ListImagesHandler(cat *catalog.Catalog, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		images, err := cat.GetAll()
		if err != nil {
			log.Error().Err(err).Msg("failed to list images")
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"images": imageList(images)})
	}
}

// SearchImagesHandler filters by the "search" query parameter. A blank term
// returns the full list.
func SearchImagesHandler(cat *catalog.Catalog, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		images, err := cat.Search(r.URL.Query().Get("search"))
		if err != nil {
			log.Error().Err(err).Msg("failed to search images")
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"images": imageList(images)})
	}
}

// GetImageHandler returns one record as JSON.
func GetImageHandler(cat *catalog.Catalog, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := imageID(w, r)
		if !ok {
			return
		}

		img, err := cat.GetByID(id)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, img)
	}
}

// GetImageFileHandler serves the raw blob with a content type derived from
// the stored extension and a day-long cache header.
func GetImageFileHandler(cat *catalog.Catalog, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := imageID(w, r)
		if !ok {
			return
		}

		img, err := cat.GetByID(id)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}

		serveBlob(w, img.Path, contentTypeForExt(filepath.Ext(img.Path)),
			"public, max-age=86400", log)
	}
}

// GetImageThumbnailHandler serves the thumbnail when one exists, falling
// back to the original blob. Thumbnails are content-derived, so the cache
// header marks them immutable.
func GetImageThumbnailHandler(cat *catalog.Catalog, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := imageID(w, r)
		if !ok {
			return
		}

		img, err := cat.GetByID(id)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}

		path := img.Path
		if img.ThumbnailPath != nil && *img.ThumbnailPath != "" {
			path = *img.ThumbnailPath
		}

		serveBlob(w, path, contentTypeForExt(filepath.Ext(path)),
			"public, max-age=31536000, immutable", log)
	}
}

// updateImageRequest is the PUT body. Both fields are optional and
// independent.
type updateImageRequest struct {
	Filename    *string `json:"filename"`
	Description *string `json:"description"`
}

// UpdateImageHandler renames an image and/or edits its description.
func UpdateImageHandler(lib *library.Library, events *hub.Hub, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := imageID(w, r)
		if !ok {
			return
		}

		var req updateImageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success": false,
				"error":   "invalid request body",
			})
			return
		}

		err := lib.UpdateImage(id, library.UpdateRequest{
			Filename:    req.Filename,
			Description: req.Description,
		})
		if err != nil {
			log.Error().Err(err).Int64("id", id).Msg("failed to update image")
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success": false,
				"error":   err.Error(),
			})
			return
		}

		events.Notify("updated", id, "")
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// DeleteImageHandler removes the catalog row and the backing file.
func DeleteImageHandler(lib *library.Library, events *hub.Hub, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := imageID(w, r)
		if !ok {
			return
		}

		if err := lib.DeleteImage(id); err != nil {
			log.Error().Err(err).Int64("id", id).Msg("failed to delete image")
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		events.Notify("deleted", id, "")
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func imageID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, errors.New("invalid image id"))
		return 0, false
	}
	return id, true
}

func serveBlob(w http.ResponseWriter, path, contentType, cacheControl string, log zerolog.Logger) {
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, errors.New("file not found"))
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to read blob")
		writeError(w, http.StatusInternalServerError, errors.New("failed to read file"))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", cacheControl)
	w.Write(data)
}

// imageList keeps the JSON array non-null for empty catalogs.
func imageList(images []model.Image) []model.Image {
	if images == nil {
		return []model.Image{}
	}
	return images
}
