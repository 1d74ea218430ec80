package server

import (
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"nutrisnap-backend/internal/shared/server/respond"
	"nutrisnap-backend/internal/shared/storage/object"
	"nutrisnap-backend/internal/shared/telemetry"
)

func mediaHandler(store object.ObjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimPrefix(c.Param("key"), "/")
		rc, err := store.Open(c.Request.Context(), key)
		if err != nil {
			switch {
			case errors.Is(err, fs.ErrNotExist), errors.Is(err, object.ErrInvalidKey):
				respond.Error(c, http.StatusNotFound, "not_found", "image not found", nil)
			default:
				respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read image", nil)
			}
			return
		}
		defer rc.Close()

		contentType := mime.TypeByExtension(path.Ext(key))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.Header("Content-Type", contentType)
		c.Header("Cache-Control", "public, max-age=31536000, immutable")
		c.Status(http.StatusOK)
		if _, err := io.Copy(c.Writer, rc); err != nil {
			telemetry.Warn("media.copy_failed", map[string]any{"key": key, "error": err})
		}
	}
}
