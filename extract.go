package vidquiz

import (
	"regexp"
	"strings"
)

// Extractor tuning knobs. Both values are empirical, not invariants.
const (
	DefaultScrapeWindow     = 100000
	DefaultMinExtractLength = 50
)

var (
	whitespaceRun  = regexp.MustCompile(`\s{2,}`)
	timestampToken = regexp.MustCompile(`\b\d{1,2}:\d{2}\b`)
)

// ExtractorConfig bounds the transcript heuristics.
type ExtractorConfig struct {
	// Window is the number of characters examined after the
	// "transcript" marker.
	Window int
	// MinLength is the minimum cleaned length for the marker heuristic
	// to count as a hit.
	MinLength int
}

func (c ExtractorConfig) withDefaults() ExtractorConfig {
	if c.Window <= 0 {
		c.Window = DefaultScrapeWindow
	}
	if c.MinLength <= 0 {
		c.MinLength = DefaultMinExtractLength
	}
	return c
}

// ExtractTranscript heuristically locates the transcript-looking part
// of a scraped page text. Heuristics are tried in order, first hit
// wins:
//
//  1. a bounded, whitespace-collapsed window after the word
//     "transcript", if long enough;
//  2. the full text unmodified when it is dense with H:MM timestamp
//     tokens (caption listings);
//  3. the trimmed full text as a last resort.
//
// It returns "" only for empty input. This is best effort; callers
// still apply the minimum transcript length check before trusting it.
func ExtractTranscript(pageText string, cfg ExtractorConfig) string {
	cfg = cfg.withDefaults()

	if strings.TrimSpace(pageText) == "" {
		return ""
	}

	if idx := strings.Index(strings.ToLower(pageText), "transcript"); idx >= 0 {
		start := idx + len("transcript")
		end := start + cfg.Window
		if end > len(pageText) {
			end = len(pageText)
		}
		cleaned := strings.TrimSpace(whitespaceRun.ReplaceAllString(pageText[start:end], " "))
		if len(cleaned) > cfg.MinLength {
			return cleaned
		}
	}

	if len(timestampToken.FindAllString(pageText, 3)) >= 3 {
		return pageText
	}

	return strings.TrimSpace(pageText)
}
