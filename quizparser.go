package vidquiz

import (
	"regexp"
	"strings"
)

// Delimiters the generator is instructed to wrap each question in.
// These are the wire format, not negotiable by the parser.
const (
	BlockStart   = "$$&"
	BlockEnd     = "&$$"
	answerMarker = "ans:"
)

var (
	ordinalPrefix = regexp.MustCompile(`^\d+\.\s*`)
	optionLine    = regexp.MustCompile(`^[a-dA-D]\)`)
)

// ParseQuizText converts the generator's free-form response into an
// ordered list of questions. The generator only approximately follows
// instructions, so the parser drops malformed blocks instead of
// failing: preamble before the first start marker is discarded, blocks
// missing their end marker are skipped whole, and a missing answer
// line leaves CorrectLabel empty. An empty result means the caller
// should fall back to showing the raw text verbatim.
func ParseQuizText(raw string) []Question {
	segments := strings.Split(raw, BlockStart)
	if len(segments) < 2 {
		return nil
	}

	var questions []Question
	for _, segment := range segments[1:] {
		end := strings.Index(segment, BlockEnd)
		if end < 0 {
			// Truncated block. Never partially parsed.
			continue
		}
		body := strings.TrimSpace(segment[:end])
		if question, ok := parseBlock(body); ok {
			questions = append(questions, question)
		}
	}

	return questions
}

// parseBlock turns one delimited block body into a question. The first
// non-empty line is the prompt, lines shaped like "a) ..." are options
// in encountered order, and an "ans:" line carries the correct label.
func parseBlock(body string) (Question, bool) {
	var lines []string
	for _, line := range strings.Split(body, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) == 0 {
		return Question{}, false
	}

	question := Question{
		Prompt: ordinalPrefix.ReplaceAllString(lines[0], ""),
	}

	for _, line := range lines[1:] {
		switch {
		case optionLine.MatchString(line):
			question.Options = append(question.Options, line)
		case len(line) >= len(answerMarker) && strings.EqualFold(line[:len(answerMarker)], answerMarker):
			question.CorrectLabel = strings.ToLower(strings.TrimSpace(line[len(answerMarker):]))
		}
	}

	return question, true
}
