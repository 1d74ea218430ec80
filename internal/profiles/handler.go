package profiles

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"nutrisnap-backend/internal/shared/server/middleware"
	"nutrisnap-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/profile", h.get)
	rg.PUT("/profile", h.put)
}

type profileRequest struct {
	FullName           *string  `json:"fullName"`
	Age                *int     `json:"age"`
	Gender             *string  `json:"gender"`
	HeightCM           *float64 `json:"heightCm"`
	WeightKG           *float64 `json:"weightKg"`
	DietaryPreferences *string  `json:"dietaryPreferences"`
}

func (h *Handler) get(c *gin.Context) {
	if middleware.IsGuest(c) {
		respond.Error(c, http.StatusUnauthorized, "login_required", "Login required to view profile", nil)
		return
	}
	profile, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "profile not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load profile", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, profile)
}

func (h *Handler) put(c *gin.Context) {
	if middleware.IsGuest(c) {
		respond.Error(c, http.StatusUnauthorized, "login_required", "Login required to save profile", nil)
		return
	}
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	profile, err := h.Svc.Upsert(c.Request.Context(), Profile{
		ID:                 middleware.UserIDFromContext(c),
		FullName:           req.FullName,
		Age:                req.Age,
		Gender:             req.Gender,
		HeightCM:           req.HeightCM,
		WeightKG:           req.WeightKG,
		DietaryPreferences: req.DietaryPreferences,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save profile", nil)
		return
	}
	respond.JSON(c, http.StatusOK, profile)
}
