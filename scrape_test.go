package vidquiz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPageScrapeTest(t *testing.T, handler http.HandlerFunc) *PageScrape {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &PageScrape{
		ProxyURL: server.URL + "/",
		Client:   server.Client(),
	}
}

func TestPageScrapeExtractsTranscript(t *testing.T) {
	scrape := newPageScrapeTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.String(), "watch?v=dQw4w9WgXcQ")
		w.Write([]byte("Video Page\nTranscript\n" + strings.Repeat("some spoken words ", 10)))
	})

	got, err := scrape.Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "some spoken words"))
}

func TestPageScrapeResolvesReference(t *testing.T) {
	scrape := newPageScrapeTest(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := scrape.Fetch(context.Background(), "no id here")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestPageScrapeErrorStatus(t *testing.T) {
	scrape := newPageScrapeTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := scrape.Fetch(context.Background(), "dQw4w9WgXcQ")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestPageScrapeEmptyPage(t *testing.T) {
	scrape := newPageScrapeTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("   "))
	})

	_, err := scrape.Fetch(context.Background(), "dQw4w9WgXcQ")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}
