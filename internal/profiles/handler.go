package profiles

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/WilsonLimSet/CoffeeChatAI/internal/shared/server/middleware"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/shared/server/respond"
)

// Handler exposes profile endpoints.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches profile routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/profile", h.getProfile)
}

// RegisterDevRoutes attaches dev-only profile routes.
func (h *Handler) RegisterDevRoutes(rg *gin.RouterGroup) {
	rg.POST("/profiles/reset", h.resetGenerations)
}

func (h *Handler) getProfile(c *gin.Context) {
	identity := Identity{
		UserID:    middleware.UserIDFromContext(c),
		Email:     middleware.UserEmailFromContext(c),
		FullName:  middleware.UserNameFromContext(c),
		AvatarURL: middleware.UserAvatarFromContext(c),
	}

	profile, err := h.Svc.Ensure(c.Request.Context(), identity)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load profile", nil)
		return
	}
	respond.OK(c, profile)
}

func (h *Handler) resetGenerations(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if err := h.Svc.ResetGenerations(c.Request.Context(), userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "profile not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to reset usage", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"ok": true})
}
