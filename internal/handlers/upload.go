package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"imagevault/internal/hub"
	"imagevault/internal/ingest"
	"imagevault/internal/metrics"
)

// maxUploadMemory bounds how much of a multipart body is buffered in memory.
const maxUploadMemory = 32 << 20

// UploadImageHandler ingests a multipart "file" upload. The body is spooled
// to a temp file carrying the original filename so the pipeline sees the
// same inputs as a local ingest.
func UploadImageHandler(pipeline *ingest.Pipeline, events *hub.Hub, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid multipart body"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("missing file field"))
			return
		}
		defer file.Close()

		filename := filepath.Base(header.Filename)
		if filename == "" || filename == "." {
			writeError(w, http.StatusBadRequest, errors.New("missing filename"))
			return
		}

		ext := filepath.Ext(filename)
		if !ingest.AcceptsExtension(ext) {
			metrics.ObserveIngest("error")
			writeError(w, http.StatusBadRequest,
				&ingest.UnsupportedFormatError{Path: filename, Extension: strings.ToLower(ext)})
			return
		}

		tmpDir, err := os.MkdirTemp("", "imagevault-upload-")
		if err != nil {
			writeError(w, http.StatusInternalServerError, errors.New("failed to spool upload"))
			return
		}
		defer os.RemoveAll(tmpDir)

		tmpPath := filepath.Join(tmpDir, filename)
		tmp, err := os.Create(tmpPath)
		if err != nil {
			writeError(w, http.StatusInternalServerError, errors.New("failed to spool upload"))
			return
		}
		if _, err := io.Copy(tmp, file); err != nil {
			tmp.Close()
			writeError(w, http.StatusInternalServerError, errors.New("failed to spool upload"))
			return
		}
		tmp.Close()

		result, err := pipeline.Ingest(tmpPath)
		if err != nil {
			metrics.ObserveIngest("error")
			log.Error().Err(err).Str("file", filename).Msg("upload ingest failed")
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		if result.Deduplicated {
			metrics.ObserveIngest("deduplicated")
		} else {
			metrics.ObserveIngest("stored")
			events.Notify("ingested", result.ImageID, filename)
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":      true,
			"deduplicated": result.Deduplicated,
			"image_id":     result.ImageID,
			"file_size":    result.FileSize,
			"message":      result.Message,
		})
	}
}
