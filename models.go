package vidquiz

import "time"

// Question represents a single parsed multiple choice question.
// Options keep their source order and full line text, label included.
type Question struct {
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectLabel string   `json:"correct_label"`
	Answer       *Answer  `json:"answer,omitempty"` // nil until a selection is locked in
}

// Answer records a locked-in selection for one question.
type Answer struct {
	Label   string `json:"label"`
	Correct bool   `json:"correct"`
}

// TranscriptSegment is one timestamped piece of a transcript as
// returned by segment-shaped sources. Segments only live inside the
// acquisition pipeline; callers always see the merged text.
type TranscriptSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start,omitempty"`
}

// Quiz represents everything produced for one video reference.
type Quiz struct {
	ID        string     `json:"id"`
	VideoID   string     `json:"video_id"`
	Reference string     `json:"reference"`
	Questions []Question `json:"questions"`
	RawText   string     `json:"raw_text,omitempty"` // shown verbatim when no blocks parsed
	CreatedAt time.Time  `json:"created_at"`
	Status    string     `json:"status"`
}

// Quiz lifecycle states as stored in the database.
const (
	StatusGenerating = "generating"
	StatusReady      = "ready"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)
