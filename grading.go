package vidquiz

import "strings"

// Select locks in an answer for the question. The first call wins: a
// question that already has an answer ignores further selections, so
// the state never flips back to unanswered and a selection is never
// overwritten. Label comparison is case-insensitive.
func (q *Question) Select(label string) {
	if q.Answer != nil {
		return
	}

	normalized := strings.ToLower(strings.TrimSpace(label))
	q.Answer = &Answer{
		Label:   normalized,
		Correct: normalized != "" && normalized == strings.ToLower(q.CorrectLabel),
	}
}

// Answered reports whether a selection has been locked in.
func (q *Question) Answered() bool {
	return q.Answer != nil
}

// Score counts correct answers across a question list.
func Score(questions []Question) int {
	score := 0
	for _, q := range questions {
		if q.Answer != nil && q.Answer.Correct {
			score++
		}
	}
	return score
}
