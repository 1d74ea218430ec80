package pipeline

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"nutrisnap-backend/internal/recent"
	"nutrisnap-backend/internal/shared/server/middleware"
	"nutrisnap-backend/internal/shared/server/respond"
)

const maxImageSize = 10 << 20 // 10MB

// Handler exposes the scan pipeline and the caller's recency cache.
type Handler struct {
	Pipeline *Pipeline
	Caches   recent.Resolver
}

func NewHandler(p *Pipeline, caches recent.Resolver) *Handler {
	return &Handler{Pipeline: p, Caches: caches}
}

// RegisterRoutes attaches scan and cache routes. scanMiddleware runs only on POST /scans.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, scanMiddleware ...gin.HandlerFunc) {
	rg.POST("/scans", append(scanMiddleware, h.scan)...)
	rg.GET("/cache", h.listCache)
	rg.DELETE("/cache", h.clearCache)
}

func (h *Handler) scan(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "image exceeds 10MB", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	res, err := h.Pipeline.Run(c.Request.Context(), userID, Image{
		Data:        data,
		ContentType: fileHeader.Header.Get("Content-Type"),
		FileName:    fileHeader.Filename,
	})
	if res.Outcome != "" {
		c.Set(middleware.OutcomeKey, string(res.Outcome))
	}
	if res.MealID != "" {
		c.Set(middleware.MealIDKey, res.MealID)
	}

	switch {
	case err == nil && res.Outcome == OutcomeSkipped:
		respond.JSON(c, http.StatusOK, gin.H{"saved": false, "outcome": res.Outcome})
	case err == nil:
		respond.Created(c, gin.H{
			"mealId":   res.MealID,
			"saved":    true,
			"outcome":  res.Outcome,
			"imageUrl": res.ImageURL,
			"analysis": res.Analysis,
		})
	case errors.Is(err, ErrPersist):
		respond.JSON(c, http.StatusOK, gin.H{
			"saved":    false,
			"outcome":  res.Outcome,
			"imageUrl": res.ImageURL,
			"analysis": res.Analysis,
			"error": respond.ErrorBody{
				Code:    "save_failed",
				Message: "analysis completed but the meal could not be saved",
			},
		})
	case errors.Is(err, ErrUpload):
		respond.Error(c, http.StatusBadGateway, "upload_failed", "failed to upload image", nil)
	case errors.Is(err, ErrInvalidResponse):
		respond.Error(c, http.StatusBadGateway, "invalid_analysis_response", "analysis service returned an invalid response", nil)
	case errors.Is(err, ErrAnalysis):
		respond.Error(c, http.StatusBadGateway, "analysis_failed", "failed to analyze image", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "scan failed", nil)
	}
}

func (h *Handler) listCache(c *gin.Context) {
	entries := h.Caches.For(middleware.UserIDFromContext(c)).List(c.Request.Context())
	respond.JSON(c, http.StatusOK, entries)
}

func (h *Handler) clearCache(c *gin.Context) {
	h.Caches.For(middleware.UserIDFromContext(c)).Clear(c.Request.Context())
	c.Status(http.StatusNoContent)
}
