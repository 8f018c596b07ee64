package billing

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/WilsonLimSet/CoffeeChatAI/internal/profiles"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/shared/server/respond"
)

// Handler exposes billing endpoints.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches billing routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/billing/cancel", h.cancelSubscription)
}

type cancelRequest struct {
	SubscriptionID string `json:"subscription_id"`
}

func (h *Handler) cancelSubscription(c *gin.Context) {
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SubscriptionID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "subscription_id is required", nil)
		return
	}

	if err := h.Svc.Cancel(c.Request.Context(), req.SubscriptionID); err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "subscription not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to cancel subscription", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"message": "Subscription cancelled successfully"})
}
