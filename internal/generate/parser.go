package generate

import "strings"

// QuestionParser projects the cumulative stream text into an ordered question
// list. It is re-run on every fragment; a trailing partial line shows up as a
// question that is revised by later fragments, so the list is only final once
// the stream ends.
type QuestionParser struct {
	buf strings.Builder
}

// Append adds a fragment to the cumulative buffer and returns the current
// projection.
func (p *QuestionParser) Append(fragment string) []string {
	p.buf.WriteString(fragment)
	return p.Questions()
}

// Questions returns the current projection of the buffer.
func (p *QuestionParser) Questions() []string {
	return SplitQuestions(p.buf.String())
}

// Text returns the accumulated raw stream text.
func (p *QuestionParser) Text() string {
	return p.buf.String()
}

// SplitQuestions splits text on newlines, trims each segment, and drops
// segments that are empty after trimming, preserving order. Purely a
// formatting projection; no semantic validation is applied.
func SplitQuestions(text string) []string {
	lines := strings.Split(text, "\n")
	questions := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			questions = append(questions, trimmed)
		}
	}
	return questions
}
