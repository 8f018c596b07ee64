package llm

import (
	"errors"
	"fmt"
	"strings"
)

// Tone selects the conversational style of the generated questions.
type Tone string

const (
	ToneProfessional Tone = "Professional"
	ToneCasual       Tone = "Casual"
)

// ParseTone normalizes a tone label. Unknown labels default to Professional.
func ParseTone(raw string) Tone {
	if strings.EqualFold(strings.TrimSpace(raw), string(ToneCasual)) {
		return ToneCasual
	}
	return ToneProfessional
}

// PromptOptions tunes the instruction payload.
type PromptOptions struct {
	QuestionCount int
	MaxChars      int
}

func (o PromptOptions) withDefaults() PromptOptions {
	if o.QuestionCount <= 0 {
		o.QuestionCount = 3
	}
	if o.MaxChars <= 0 {
		o.MaxChars = 250
	}
	return o
}

// ErrEmptyBio is returned when the biography text is empty.
var ErrEmptyBio = errors.New("biography text is empty")

// BuildPrompt embeds the biography verbatim into the fixed instruction
// template. Pure function; the formatting rules are requested of the model,
// not enforced afterwards.
func BuildPrompt(bio string, tone Tone, opts PromptOptions) (string, error) {
	if strings.TrimSpace(bio) == "" {
		return "", ErrEmptyBio
	}
	opts = opts.withDefaults()

	styleLine := "The questions should be thoughtful and engaging."
	if tone == ToneCasual {
		styleLine = "The questions should contain humor and be slightly ridiculous."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I am a podcast host preparing to interview a person with the following biography: %q\n", bio)
	fmt.Fprintf(&b, "Based on this, generate %d %s questions that directly relate to the biography provided. ", opts.QuestionCount, strings.ToLower(string(tone)))
	b.WriteString(styleLine)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Write one question per line with no numbering or bullets, and keep each question concise and under %d characters.\n", opts.MaxChars)
	b.WriteString("If you can't come up with anything say you need a more specific bio, do not make up a person.")
	return b.String(), nil
}
