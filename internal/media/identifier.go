package media

import (
	"regexp"
	"strings"
)

// DefaultHost is the site every canonical watch URL points at.
const DefaultHost = "www.youtube.com"

const (
	watchMarker = "watch?v="
	shortMarker = "youtu.be/"
)

var idShape = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// Resolve normalizes a watch URL, a short URL or a bare id into an
// Identifier pointing at DefaultHost.
func Resolve(input string) Identifier {
	return ResolveHost(input, DefaultHost)
}

// ResolveHost is Resolve with a configurable host for synthesized URLs.
//
// Resolution is permissive: nothing is validated and malformed input yields a
// best-effort pair. Results should be treated as unverified until a fetch
// succeeds.
func ResolveHost(input, host string) Identifier {
	input = strings.TrimSpace(input)
	if host == "" {
		host = DefaultHost
	}

	switch {
	case strings.Contains(input, watchMarker):
		// The watch URL is already canonical; keep it as given.
		id := input[strings.Index(input, "v=")+len("v="):]
		return Identifier{ID: cutAny(id, "&#"), URL: input}

	case strings.Contains(input, shortMarker):
		id := input[strings.Index(input, shortMarker)+len(shortMarker):]
		id = cutAny(id, "?/#")
		return Identifier{ID: id, URL: WatchURL(host, id)}

	default:
		return Identifier{ID: input, URL: WatchURL(host, input)}
	}
}

// WatchURL builds the canonical watch URL for id on host.
func WatchURL(host, id string) string {
	return "https://" + host + "/watch?v=" + id
}

// LooksLikeID reports whether id has the usual 11-character video id shape.
// It is advisory only; Resolve never rejects input.
func LooksLikeID(id string) bool {
	return idShape.MatchString(id)
}

func cutAny(s, seps string) string {
	if i := strings.IndexAny(s, seps); i != -1 {
		return s[:i]
	}
	return s
}
