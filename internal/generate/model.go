package generate

import "github.com/WilsonLimSet/CoffeeChatAI/internal/llm"

// InputKind selects how the submitted text is resolved into biography text.
type InputKind string

const (
	InputBio InputKind = "bio"
	InputURL InputKind = "url"
)

// Request is the transient per-submission payload. It is never persisted.
type Request struct {
	Tone      string    `json:"tone"`
	InputKind InputKind `json:"inputKind"`
	Text      string    `json:"text"`
}

// ParsedTone resolves the request's tone label.
func (r Request) ParsedTone() llm.Tone {
	return llm.ParseTone(r.Tone)
}

// State tracks the orchestrator's progress through one request.
type State int

const (
	StateIdle State = iota
	StateResolvingInput
	StateCheckingQuota
	StateGenerating
	StateCommitting
	StateDone
	StateErrored
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolvingInput:
		return "resolving_input"
	case StateCheckingQuota:
		return "checking_quota"
	case StateGenerating:
		return "generating"
	case StateCommitting:
		return "committing"
	case StateDone:
		return "done"
	case StateErrored:
		return "errored"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome summarizes a finished pipeline run.
type Outcome struct {
	ID        string
	State     State
	Questions []string
}
