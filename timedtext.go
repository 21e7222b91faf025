package vidquiz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Timedtext pulls captions straight from YouTube's timedtext endpoint,
// keyed by video id. Last strategy in the chain.
type Timedtext struct {
	BaseURL string
	Lang    string
	Client  Doer
}

// NewTimedtext creates the timedtext strategy for English captions.
func NewTimedtext(client Doer) *Timedtext {
	return &Timedtext{
		BaseURL: "https://www.youtube.com/api/timedtext",
		Lang:    "en",
		Client:  client,
	}
}

func (t *Timedtext) Name() string { return "timedtext" }

func (t *Timedtext) Fetch(ctx context.Context, reference string) (string, error) {
	videoID, err := ResolveVideoID(reference)
	if err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("v", videoID)
	params.Set("lang", t.Lang)
	params.Set("fmt", "json3")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build timedtext request: %w", err)
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("timedtext request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("timedtext returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read timedtext response: %w", err)
	}

	return joinTimedtext(body)
}

type timedtextResponse struct {
	Events []timedtextEvent `json:"events"`
}

type timedtextEvent struct {
	Segs []timedtextSegment `json:"segs,omitempty"`
}

type timedtextSegment struct {
	UTF8 string `json:"utf8"`
}

// joinTimedtext flattens the events/segs structure into one string.
// Events without segments (styling windows) are skipped.
func joinTimedtext(body []byte) (string, error) {
	var resp timedtextResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode timedtext response: %w", err)
	}

	var parts []string
	for _, event := range resp.Events {
		if len(event.Segs) == 0 {
			continue
		}
		var text strings.Builder
		for _, seg := range event.Segs {
			text.WriteString(seg.UTF8)
		}
		if t := strings.TrimSpace(text.String()); t != "" {
			parts = append(parts, t)
		}
	}

	return strings.Join(parts, " "), nil
}
