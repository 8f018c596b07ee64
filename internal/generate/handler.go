package generate

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/WilsonLimSet/CoffeeChatAI/internal/extract"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/llm"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/profiles"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/quota"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/shared/server/middleware"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/shared/server/respond"
)

// Handler wires the generation endpoint to the pipeline service.
type Handler struct {
	Svc      *Service
	Profiles *profiles.Service
}

func NewHandler(svc *Service, profileSvc *profiles.Service) *Handler {
	return &Handler{Svc: svc, Profiles: profileSvc}
}

// RegisterRoutes attaches generation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/generate", h.generate)
}

// chunkPayload is re-emitted on every stream fragment so the client always
// holds the current parsed question list.
type chunkPayload struct {
	Text      string   `json:"text"`
	Questions []string `json:"questions"`
}

type donePayload struct {
	ID        string   `json:"id"`
	Questions []string `json:"questions"`
}

func (h *Handler) generate(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	identity := profiles.Identity{
		UserID:    middleware.UserIDFromContext(c),
		Email:     middleware.UserEmailFromContext(c),
		FullName:  middleware.UserNameFromContext(c),
		AvatarURL: middleware.UserAvatarFromContext(c),
	}
	profile, err := h.Profiles.Ensure(c.Request.Context(), identity)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load profile", nil)
		return
	}

	streaming := false
	emit := func(fragment string, questions []string) error {
		if !streaming {
			header := c.Writer.Header()
			header.Set("Content-Type", "text/event-stream")
			header.Set("Cache-Control", "no-cache")
			header.Set("Connection", "keep-alive")
			header.Set("X-Accel-Buffering", "no")
			c.Writer.WriteHeader(http.StatusOK)
			streaming = true
		}
		return writeEvent(c.Writer, "", chunkPayload{Text: fragment, Questions: questions})
	}

	outcome, err := h.Svc.Run(c.Request.Context(), profile, req, emit)
	c.Set("generationId", outcome.ID)
	c.Set("generationState", outcome.State.String())

	switch outcome.State {
	case StateDone:
		if !streaming {
			// Empty model output degrades to zero questions, not an error.
			emitHeadersOnly(c)
		}
		_ = writeEvent(c.Writer, "done", donePayload{ID: outcome.ID, Questions: outcome.Questions})
	case StateCancelled:
		// Client went away; nothing left to write.
	case StateErrored:
		status, code, message := errorResponse(err)
		if streaming {
			// Headers are gone; surface a terminal error frame instead.
			_ = writeEvent(c.Writer, "error", respond.ErrorBody{Code: code, Message: message})
			return
		}
		respond.Error(c, status, code, message, nil)
	}
}

func emitHeadersOnly(c *gin.Context) {
	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	c.Writer.WriteHeader(http.StatusOK)
}

func writeEvent(w gin.ResponseWriter, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if event != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	w.Flush()
	return nil
}

func errorResponse(err error) (int, string, string) {
	var provider *llm.ProviderError
	var service *extract.ServiceError
	switch {
	case errors.Is(err, ErrInvalidInputKind):
		return http.StatusBadRequest, "validation_error", "inputKind must be \"bio\" or \"url\""
	case errors.Is(err, ErrInputTooShort):
		return http.StatusBadRequest, "input_too_short", "Please enter at least 20 characters"
	case errors.Is(err, extract.ErrUnsupportedDomain):
		return http.StatusBadRequest, "unsupported_domain", "LinkedIn profiles cannot be scraped. Copy and paste the bio text directly instead."
	case errors.Is(err, extract.ErrEmptyContent):
		return http.StatusUnprocessableEntity, "empty_content", "No content found at that URL"
	case errors.As(err, &service):
		return http.StatusBadGateway, "extraction_failed", fmt.Sprintf("Failed to scrape profile (upstream status %d)", service.Status)
	case errors.Is(err, quota.ErrExceeded):
		return http.StatusTooManyRequests, "limit_reached", "You've reached your free limit. Upgrade to continue generating questions."
	case errors.As(err, &provider):
		return http.StatusBadGateway, "provider_error", provider.Error()
	default:
		return http.StatusInternalServerError, "internal_error", "failed to generate questions"
	}
}
