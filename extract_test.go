package vidquiz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTranscriptMarkerWindow(t *testing.T) {
	content := strings.Repeat("hello   world\n\t", 10)
	page := "Video Title\nShare\nTranscript" + content

	got := ExtractTranscript(page, ExtractorConfig{})

	assert.True(t, strings.HasPrefix(got, "hello world"))
	assert.NotContains(t, got, "  ", "whitespace runs must be collapsed")
	assert.NotContains(t, got, "\n")
	assert.NotContains(t, got, "Video Title")
}

func TestExtractTranscriptMarkerCaseInsensitive(t *testing.T) {
	page := "TRANSCRIPT " + strings.Repeat("words and more words ", 5)

	got := ExtractTranscript(page, ExtractorConfig{})

	assert.True(t, strings.HasPrefix(got, "words and more words"))
}

func TestExtractTranscriptWindowBound(t *testing.T) {
	page := "transcript" + strings.Repeat("a", 500)

	got := ExtractTranscript(page, ExtractorConfig{Window: 100, MinLength: 10})

	assert.Equal(t, strings.Repeat("a", 100), got)
}

func TestExtractTranscriptShortWindowFallsThrough(t *testing.T) {
	// Marker present but followed by too little content: the cleaned
	// window misses the minimum and the full trimmed text comes back.
	page := "  transcript: tiny  "

	got := ExtractTranscript(page, ExtractorConfig{})

	assert.Equal(t, "transcript: tiny", got)
}

func TestExtractTranscriptTimestampDensity(t *testing.T) {
	page := "  0:01 welcome back 0:45 today we cover 1:23 the finale  "

	got := ExtractTranscript(page, ExtractorConfig{})

	assert.Equal(t, page, got, "timestamp-dense text is returned unmodified")
}

func TestExtractTranscriptTooFewTimestamps(t *testing.T) {
	page := "  0:01 welcome back 0:45 that is all  "

	got := ExtractTranscript(page, ExtractorConfig{})

	assert.Equal(t, strings.TrimSpace(page), got)
}

func TestExtractTranscriptLastResortTrims(t *testing.T) {
	got := ExtractTranscript("  some unrelated page text  ", ExtractorConfig{})

	assert.Equal(t, "some unrelated page text", got)
}

func TestExtractTranscriptEmptyInput(t *testing.T) {
	assert.Equal(t, "", ExtractTranscript("", ExtractorConfig{}))
	assert.Equal(t, "", ExtractTranscript("   \n\t", ExtractorConfig{}))
}
