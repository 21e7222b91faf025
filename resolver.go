package vidquiz

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidReference means no video id could be extracted from the
// caller's input by any heuristic.
var ErrInvalidReference = errors.New("no video id found in reference")

var (
	videoIDExact = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	videoIDToken = regexp.MustCompile(`[A-Za-z0-9_-]{11}`)
)

// ResolveVideoID extracts the canonical 11-character video id from an
// arbitrary reference: a bare id, a share link, a watch/embed/shorts
// URL, or anything with an id-shaped token buried in it. Resolution is
// pure and idempotent; resolving an already-canonical id returns it
// unchanged.
func ResolveVideoID(reference string) (string, error) {
	ref := strings.TrimSpace(reference)
	if videoIDExact.MatchString(ref) {
		return ref, nil
	}

	// Bare "youtube.com/..." inputs still deserve a URL parse.
	raw := ref
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	// A parse failure is not fatal: the token scan below is the safety
	// net for inputs a strict parser rejects.
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		if id := videoIDFromURL(u); id != "" {
			return id, nil
		}
	}

	if id := videoIDToken.FindString(ref); id != "" {
		return id, nil
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidReference, reference)
}

func videoIDFromURL(u *url.URL) string {
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")

	segments := nonEmptySegments(u.Path)

	switch host {
	case "youtu.be":
		if len(segments) > 0 && videoIDExact.MatchString(segments[0]) {
			return segments[0]
		}
	case "youtube.com", "youtube-nocookie.com":
		if v := u.Query().Get("v"); videoIDExact.MatchString(v) {
			return v
		}
		// Covers /embed/<id> and /shorts/<id> forms.
		if len(segments) > 0 {
			last := segments[len(segments)-1]
			if videoIDExact.MatchString(last) {
				return last
			}
		}
	}

	return ""
}

func nonEmptySegments(path string) []string {
	var segments []string
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}
