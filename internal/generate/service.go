package generate

import (
	"context"
	"errors"
	"io"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/WilsonLimSet/CoffeeChatAI/internal/counter"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/extract"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/llm"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/profiles"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/quota"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/shared/metrics"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/shared/telemetry"
)

const defaultMinBioLength = 20

// Emit delivers one fragment and the current parsed question list to the
// client. Returning an error signals the client is gone and cancels the run.
type Emit func(fragment string, questions []string) error

// Service orchestrates one generation request end to end: input resolution,
// quota check, prompt construction, streaming, parsing, and the
// post-completion usage commit.
type Service struct {
	Ledger       *quota.Ledger
	Counter      *counter.Service
	Extractor    extract.Extractor
	LLM          llm.Client
	Prompt       llm.PromptOptions
	MinBioLength int
}

// Run drives the request through the pipeline state machine. Cancellation is
// not an error: the returned Outcome carries StateCancelled and no usage is
// committed. All other non-nil errors correspond to StateErrored.
func (s *Service) Run(ctx context.Context, profile profiles.Profile, req Request, emit Emit) (Outcome, error) {
	id := uuid.NewString()
	start := time.Now()
	metrics.GenerationsStarted.Inc()

	outcome, err := s.run(ctx, id, profile, req, emit)
	outcome.ID = id

	fields := map[string]any{
		"generation_id": id,
		"user_id":       profile.ID,
		"state":         outcome.State.String(),
		"questions":     len(outcome.Questions),
		"duration_ms":   float64(time.Since(start).Microseconds()) / 1000.0,
	}
	switch outcome.State {
	case StateDone:
		metrics.GenerationsCompleted.Inc()
		metrics.GenerationDuration.Observe(time.Since(start).Seconds())
		telemetry.Info("generation.complete", fields)
	case StateCancelled:
		metrics.GenerationsCancelled.Inc()
		telemetry.Info("generation.cancelled", fields)
	default:
		metrics.GenerationsFailed.WithLabelValues(failureReason(err)).Inc()
		fields["error"] = errString(err)
		telemetry.Error("generation.failed", fields)
	}
	return outcome, err
}

func (s *Service) run(ctx context.Context, id string, profile profiles.Profile, req Request, emit Emit) (Outcome, error) {
	// ResolvingInput
	bio, err := s.resolveInput(ctx, req)
	if err != nil {
		if cancelled(ctx, err) {
			return Outcome{State: StateCancelled}, nil
		}
		return Outcome{State: StateErrored}, err
	}

	minLen := s.MinBioLength
	if minLen <= 0 {
		minLen = defaultMinBioLength
	}
	if utf8.RuneCountInString(bio) < minLen {
		return Outcome{State: StateErrored}, ErrInputTooShort
	}

	// CheckingQuota: advisory pre-check so an exhausted user never triggers a
	// model call. The authoritative mutation happens in the commit below.
	if err := s.Ledger.CheckAndReserve(profile); err != nil {
		return Outcome{State: StateErrored}, err
	}

	prompt, err := llm.BuildPrompt(bio, req.ParsedTone(), s.Prompt)
	if err != nil {
		return Outcome{State: StateErrored}, err
	}

	// Generating
	stream, err := s.LLM.StreamCompletion(ctx, prompt)
	if err != nil {
		if cancelled(ctx, err) {
			return Outcome{State: StateCancelled}, nil
		}
		return Outcome{State: StateErrored}, err
	}
	defer stream.Close()

	var parser QuestionParser
	for {
		fragment, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if cancelled(ctx, err) {
				return Outcome{State: StateCancelled}, nil
			}
			// Already-streamed partial questions stay visible to the user.
			return Outcome{State: StateErrored, Questions: parser.Questions()}, err
		}

		questions := parser.Append(fragment)
		if emit != nil {
			if err := emit(fragment, questions); err != nil {
				return Outcome{State: StateCancelled, Questions: questions}, nil
			}
		}
		if ctx.Err() != nil {
			return Outcome{State: StateCancelled, Questions: questions}, nil
		}
	}

	// Committing: bookkeeping runs even if the client disconnects right after
	// the stream finished, and its failures never revert Done — the user
	// already has their questions.
	commitCtx := context.WithoutCancel(ctx)
	if _, err := s.Ledger.Commit(commitCtx, profile); err != nil {
		telemetry.Error("generation.commit_failed", map[string]any{
			"generation_id": id,
			"user_id":       profile.ID,
			"error":         err.Error(),
		})
	}
	s.Counter.Increment(commitCtx)

	return Outcome{State: StateDone, Questions: parser.Questions()}, nil
}

func (s *Service) resolveInput(ctx context.Context, req Request) (string, error) {
	switch req.InputKind {
	case InputBio:
		return req.Text, nil
	case InputURL:
		if extract.BlockedDomain(req.Text) {
			return "", extract.ErrUnsupportedDomain
		}
		if s.Extractor == nil {
			return "", errors.New("url extraction not configured")
		}
		return s.Extractor.Extract(ctx, req.Text)
	default:
		return "", ErrInvalidInputKind
	}
}

func cancelled(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}

func failureReason(err error) string {
	var provider *llm.ProviderError
	var service *extract.ServiceError
	switch {
	case errors.Is(err, ErrInputTooShort):
		return "input_too_short"
	case errors.Is(err, ErrInvalidInputKind):
		return "invalid_input_kind"
	case errors.Is(err, extract.ErrUnsupportedDomain):
		return "unsupported_domain"
	case errors.Is(err, extract.ErrEmptyContent):
		return "empty_content"
	case errors.As(err, &service):
		return "extraction_failed"
	case errors.Is(err, quota.ErrExceeded):
		return "quota_exceeded"
	case errors.As(err, &provider):
		if provider.AuthFailure() {
			return "provider_auth"
		}
		return "provider_error"
	default:
		return "internal"
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
