package vidquiz

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStrategy struct {
	name   string
	text   string
	err    error
	panics bool
	calls  int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Fetch(ctx context.Context, reference string) (string, error) {
	s.calls++
	if s.panics {
		panic("strategy exploded")
	}
	return s.text, s.err
}

func TestPipelineFirstSuccessWins(t *testing.T) {
	first := &stubStrategy{name: "first", text: "a perfectly usable transcript"}
	second := &stubStrategy{name: "second", text: "should never be asked"}
	pipeline := NewPipeline([]TranscriptStrategy{first, second}, 0)

	got, err := pipeline.Acquire(context.Background(), "dQw4w9WgXcQ")

	require.NoError(t, err)
	assert.Equal(t, "a perfectly usable transcript", got)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls, "chain must stop at the first usable transcript")
}

func TestPipelineSkipsFailedStrategy(t *testing.T) {
	failing := &stubStrategy{name: "failing", err: errors.New("service unavailable")}
	working := &stubStrategy{name: "working", text: "transcript text long enough"}
	pipeline := NewPipeline([]TranscriptStrategy{failing, working}, 0)

	got, err := pipeline.Acquire(context.Background(), "dQw4w9WgXcQ")

	require.NoError(t, err)
	assert.Equal(t, "transcript text long enough", got)
	assert.Equal(t, 1, failing.calls)
}

func TestPipelineSkipsShortTranscript(t *testing.T) {
	short := &stubStrategy{name: "short", text: "tiny"}
	working := &stubStrategy{name: "working", text: "transcript text long enough"}
	pipeline := NewPipeline([]TranscriptStrategy{short, working}, 0)

	got, err := pipeline.Acquire(context.Background(), "dQw4w9WgXcQ")

	require.NoError(t, err)
	assert.Equal(t, "transcript text long enough", got)
}

func TestPipelineTrimsTranscript(t *testing.T) {
	strategy := &stubStrategy{name: "padded", text: "  transcript with padding around it  \n"}
	pipeline := NewPipeline([]TranscriptStrategy{strategy}, 0)

	got, err := pipeline.Acquire(context.Background(), "dQw4w9WgXcQ")

	require.NoError(t, err)
	assert.Equal(t, "transcript with padding around it", got)
}

func TestPipelineRecoversPanickingStrategy(t *testing.T) {
	panicking := &stubStrategy{name: "panicking", panics: true}
	working := &stubStrategy{name: "working", text: "transcript text long enough"}
	pipeline := NewPipeline([]TranscriptStrategy{panicking, working}, 0)

	got, err := pipeline.Acquire(context.Background(), "dQw4w9WgXcQ")

	require.NoError(t, err)
	assert.Equal(t, "transcript text long enough", got)
}

func TestPipelineExhaustion(t *testing.T) {
	first := &stubStrategy{name: "first", err: errors.New("no captions")}
	second := &stubStrategy{name: "second", text: "too short"}
	pipeline := NewPipeline([]TranscriptStrategy{first, second}, 0)

	_, err := pipeline.Acquire(context.Background(), "dQw4w9WgXcQ")

	require.Error(t, err)
	var acqErr *AcquisitionError
	require.ErrorAs(t, err, &acqErr)
	require.Len(t, acqErr.Attempts, 2)
	assert.Equal(t, "first", acqErr.Attempts[0].Strategy)
	assert.Equal(t, "second", acqErr.Attempts[1].Strategy)
	assert.Equal(t, "too short", acqErr.Preview, "last raw payload is kept for diagnostics")
	assert.Contains(t, err.Error(), "no transcript found")
}

func TestPipelinePreviewIsBounded(t *testing.T) {
	long := &stubStrategy{name: "long", text: strings.Repeat("x", 5000)}
	pipeline := NewPipeline([]TranscriptStrategy{long}, 10000)

	_, err := pipeline.Acquire(context.Background(), "dQw4w9WgXcQ")

	require.Error(t, err)
	var acqErr *AcquisitionError
	require.ErrorAs(t, err, &acqErr)
	assert.Len(t, acqErr.Preview, 200)
}

func TestPipelineNoStrategies(t *testing.T) {
	pipeline := NewPipeline(nil, 0)

	_, err := pipeline.Acquire(context.Background(), "dQw4w9WgXcQ")

	require.Error(t, err)
	var acqErr *AcquisitionError
	require.ErrorAs(t, err, &acqErr)
	assert.Empty(t, acqErr.Attempts)
}
