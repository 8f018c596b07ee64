package counter

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/WilsonLimSet/CoffeeChatAI/internal/shared/server/respond"
)

// Handler exposes the global counter endpoint.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches counter routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/counter", h.getCounter)
}

// getCounter returns the counter as a bare JSON number. Caching is disabled
// so displayed totals always reflect the latest committed value.
func (h *Handler) getCounter(c *gin.Context) {
	value, err := h.Svc.Read(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusServiceUnavailable, "counter_unavailable", "counter is temporarily unavailable", nil)
		return
	}

	header := c.Writer.Header()
	header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	header.Set("Pragma", "no-cache")
	header.Set("Expires", "0")
	c.Data(http.StatusOK, "application/json", []byte(strconv.FormatInt(value, 10)))
}
