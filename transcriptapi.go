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

// TranscriptAPI fetches transcripts from an authenticated transcript
// service. This is the first and cheapest strategy in the chain.
type TranscriptAPI struct {
	BaseURL string
	APIKey  string
	Client  Doer
}

// NewTranscriptAPI creates the strategy against the hosted transcript
// service.
func NewTranscriptAPI(apiKey string, client Doer) *TranscriptAPI {
	return &TranscriptAPI{
		BaseURL: "https://transcriptapi.com/api/v2/youtube/transcript",
		APIKey:  apiKey,
		Client:  client,
	}
}

func (t *TranscriptAPI) Name() string { return "transcript-api" }

// Fetch sends the raw reference to the service and normalizes whatever
// payload shape comes back. Non-success statuses and empty payloads
// are strategy failures, not fatal errors.
func (t *TranscriptAPI) Fetch(ctx context.Context, reference string) (string, error) {
	if t.APIKey == "" {
		return "", fmt.Errorf("transcript api key is not set")
	}

	params := url.Values{}
	params.Set("video_url", reference)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build transcript api request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.APIKey)

	resp, err := t.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcript api request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read transcript api response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcript api returned status %d", resp.StatusCode)
	}

	return decodeTranscriptPayload(body)
}

// decodeTranscriptPayload accepts both payload shapes the service
// uses: a single transcript string, or an ordered list of segments
// where each element is either {text: ...} or a bare string. Segment
// texts are joined with single spaces in sequence order.
func decodeTranscriptPayload(body []byte) (string, error) {
	var payload struct {
		Transcript json.RawMessage `json:"transcript"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("failed to decode transcript payload: %w", err)
	}
	if len(payload.Transcript) == 0 || string(payload.Transcript) == "null" {
		return "", fmt.Errorf("transcript payload is empty")
	}

	var text string
	if err := json.Unmarshal(payload.Transcript, &text); err == nil {
		return text, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(payload.Transcript, &items); err != nil {
		return "", fmt.Errorf("unexpected transcript payload shape")
	}

	parts := make([]string, 0, len(items))
	for _, item := range items {
		var segment TranscriptSegment
		if err := json.Unmarshal(item, &segment); err == nil && segment.Text != "" {
			parts = append(parts, segment.Text)
			continue
		}
		var s string
		if err := json.Unmarshal(item, &s); err == nil && s != "" {
			parts = append(parts, s)
		}
	}

	return strings.Join(parts, " "), nil
}
