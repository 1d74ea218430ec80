package meals

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nutrisnap-backend/internal/shared/server/middleware"
	"nutrisnap-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches meal history routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/meals", h.list)
	rg.GET("/meals/:id", h.get)
	rg.DELETE("/meals/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	meals, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.fail(c, err, "failed to list meals")
		return
	}

	resp := make([]gin.H, 0, len(meals))
	for _, m := range meals {
		resp = append(resp, ToResponse(m))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	meal, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to fetch meal")
		return
	}
	respond.JSON(c, http.StatusOK, ToResponse(meal))
}

func (h *Handler) delete(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.fail(c, err, "failed to delete meal")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "meal not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", message, nil)
	}
}

// ToResponse renders a meal for API clients.
func ToResponse(m Meal) gin.H {
	return gin.H{
		"id":        m.ID,
		"imageUrl":  m.ImageURL,
		"analysis":  m.Analysis,
		"createdAt": m.CreatedAt,
	}
}
