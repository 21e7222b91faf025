package vidquiz

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Transcript tuning knobs.
const (
	// DefaultMinTranscriptLength is the shortest transcript considered
	// usable. Anything shorter counts as a failed strategy attempt.
	DefaultMinTranscriptLength = 20

	// previewLimit bounds the diagnostic payload carried on an
	// acquisition error so messages never echo a whole page.
	previewLimit = 200
)

// Doer issues HTTP requests. Strategies take one instead of a concrete
// client so they can be exercised without the network.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TranscriptStrategy is one concrete method of attempting transcript
// acquisition. Strategies are substitutable and independently failable;
// the pipeline only orchestrates them.
type TranscriptStrategy interface {
	Name() string
	Fetch(ctx context.Context, reference string) (string, error)
}

// StrategyAttempt records the outcome of one failed strategy.
type StrategyAttempt struct {
	Strategy string
	Err      error
}

// AcquisitionError means every strategy was exhausted without a usable
// transcript. Preview holds a bounded slice of the last raw payload
// for diagnostics, never the full text.
type AcquisitionError struct {
	Attempts []StrategyAttempt
	Preview  string
}

func (e *AcquisitionError) Error() string {
	names := make([]string, len(e.Attempts))
	for i, attempt := range e.Attempts {
		names[i] = attempt.Strategy
	}
	msg := fmt.Sprintf("no transcript found after %d strategies (%s)", len(e.Attempts), strings.Join(names, ", "))
	if e.Preview != "" {
		msg += fmt.Sprintf(", last payload: %q", e.Preview)
	}
	return msg
}

// Pipeline tries transcript strategies in order and stops at the first
// usable result. Later strategies are more expensive or less reliable,
// so they only run when everything before them has failed.
type Pipeline struct {
	strategies []TranscriptStrategy
	minLength  int
	genLog     *GenerationLog
}

// NewPipeline creates a pipeline over the given ordered strategies.
// minLength <= 0 means DefaultMinTranscriptLength.
func NewPipeline(strategies []TranscriptStrategy, minLength int) *Pipeline {
	if minLength <= 0 {
		minLength = DefaultMinTranscriptLength
	}
	return &Pipeline{
		strategies: strategies,
		minLength:  minLength,
	}
}

// SetLog attaches a per-quiz generation log to the pipeline.
func (p *Pipeline) SetLog(genLog *GenerationLog) {
	p.genLog = genLog
}

// Acquire runs the strategy chain for a video reference and returns
// the first transcript meeting the minimum length. A strategy error
// never aborts the chain; it becomes one recorded attempt. When every
// strategy is exhausted the returned error is an *AcquisitionError.
func (p *Pipeline) Acquire(ctx context.Context, reference string) (string, error) {
	var attempts []StrategyAttempt
	var lastRaw string

	for _, strategy := range p.strategies {
		raw, err := p.attempt(ctx, strategy, reference)
		if err != nil {
			VerboseLog("Strategy %s failed: %v", strategy.Name(), err)
			if p.genLog != nil {
				p.genLog.LogStrategyAttempt(strategy.Name(), err)
			}
			attempts = append(attempts, StrategyAttempt{Strategy: strategy.Name(), Err: err})
			continue
		}

		lastRaw = raw
		transcript := strings.TrimSpace(raw)
		if len(transcript) >= p.minLength {
			VerboseLog("Strategy %s produced %d transcript characters", strategy.Name(), len(transcript))
			if p.genLog != nil {
				p.genLog.LogTranscript(strategy.Name(), len(transcript))
			}
			return transcript, nil
		}

		err = fmt.Errorf("transcript too short: %d characters", len(transcript))
		VerboseLog("Strategy %s failed: %v", strategy.Name(), err)
		if p.genLog != nil {
			p.genLog.LogStrategyAttempt(strategy.Name(), err)
		}
		attempts = append(attempts, StrategyAttempt{Strategy: strategy.Name(), Err: err})
	}

	return "", &AcquisitionError{
		Attempts: attempts,
		Preview:  preview(lastRaw),
	}
}

// attempt shields the chain from a misbehaving strategy: a panic is
// converted into one failed attempt like any other error.
func (p *Pipeline) attempt(ctx context.Context, strategy TranscriptStrategy, reference string) (raw string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("strategy panicked: %v", r)
		}
	}()
	return strategy.Fetch(ctx, reference)
}

func preview(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) > previewLimit {
		raw = raw[:previewLimit]
	}
	return raw
}
