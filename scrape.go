package vidquiz

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// PageScrape fetches a plain-text rendering of the canonical video
// page through a rendering proxy and runs the transcript heuristics
// over it. Second strategy in the chain.
type PageScrape struct {
	ProxyURL string // page URL is appended to this prefix
	Client   Doer
	Config   ExtractorConfig
}

// NewPageScrape creates the scrape strategy against the public
// text-rendering proxy.
func NewPageScrape(client Doer) *PageScrape {
	return &PageScrape{
		ProxyURL: "https://r.jina.ai/",
		Client:   client,
	}
}

func (p *PageScrape) Name() string { return "page-scrape" }

func (p *PageScrape) Fetch(ctx context.Context, reference string) (string, error) {
	videoID, err := ResolveVideoID(reference)
	if err != nil {
		return "", err
	}

	target := p.ProxyURL + "https://www.youtube.com/watch?v=" + videoID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build page render request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("page render request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page render returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read page render response: %w", err)
	}

	text := ExtractTranscript(string(body), p.Config)
	if text == "" {
		return "", fmt.Errorf("rendered page was empty")
	}
	return text, nil
}
