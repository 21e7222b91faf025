package vidquiz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTranscriptAPITest(t *testing.T, handler http.HandlerFunc) *TranscriptAPI {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &TranscriptAPI{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Client:  server.Client(),
	}
}

func TestTranscriptAPIStringPayload(t *testing.T) {
	api := newTranscriptAPITest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", r.URL.Query().Get("video_url"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		w.Write([]byte(`{"transcript": "never gonna give you up"}`))
	})

	got, err := api.Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ")

	require.NoError(t, err)
	assert.Equal(t, "never gonna give you up", got)
}

func TestTranscriptAPISegmentPayload(t *testing.T) {
	api := newTranscriptAPITest(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"transcript": [{"text": "never gonna", "start": 0.5}, {"text": "give you up", "start": 2.1}]}`))
	})

	got, err := api.Fetch(context.Background(), "dQw4w9WgXcQ")

	require.NoError(t, err)
	assert.Equal(t, "never gonna give you up", got)
}

func TestTranscriptAPIMixedSegmentPayload(t *testing.T) {
	// Some responses interleave bare strings with segment objects.
	api := newTranscriptAPITest(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"transcript": ["never gonna", {"text": "let you down"}]}`))
	})

	got, err := api.Fetch(context.Background(), "dQw4w9WgXcQ")

	require.NoError(t, err)
	assert.Equal(t, "never gonna let you down", got)
}

func TestTranscriptAPIErrorStatus(t *testing.T) {
	api := newTranscriptAPITest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "No transcript found"}`))
	})

	_, err := api.Fetch(context.Background(), "dQw4w9WgXcQ")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestTranscriptAPIEmptyPayload(t *testing.T) {
	api := newTranscriptAPITest(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	_, err := api.Fetch(context.Background(), "dQw4w9WgXcQ")

	require.Error(t, err)
}

func TestTranscriptAPIUnexpectedShape(t *testing.T) {
	api := newTranscriptAPITest(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"transcript": 42}`))
	})

	_, err := api.Fetch(context.Background(), "dQw4w9WgXcQ")

	require.Error(t, err)
}

func TestTranscriptAPIMissingKey(t *testing.T) {
	api := NewTranscriptAPI("", http.DefaultClient)

	_, err := api.Fetch(context.Background(), "dQw4w9WgXcQ")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")
}
