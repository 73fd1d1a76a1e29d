package youtube

import (
	"regexp"
	"strings"

	"tube-pulse/domain/dto"
)

// channelIDPattern matches a raw channel id: "UC" followed by 21 id
// characters and one of the fixed trailing characters YouTube uses.
var channelIDPattern = regexp.MustCompile(`^UC[0-9A-Za-z_-]{21}[AQgw]$`)

// handlePattern matches a custom name or handle token.
var handlePattern = regexp.MustCompile(`^[0-9A-Za-z._-]{3,30}$`)

// ResolveIdentifier parses a user-supplied channel identifier. Accepted
// forms: a full channel URL (channel/UC..., c/<name>, user/<name>,
// /@handle), a bare "UC..." id or a bare handle token (with or without a
// leading @). The second return is false when nothing matches; that is a
// client-input problem, not an error.
func (c *Client) ResolveIdentifier(raw string) (dto.ResolvedIdentifier, bool) {
	return resolveIdentifier(raw)
}

func resolveIdentifier(raw string) (dto.ResolvedIdentifier, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return dto.ResolvedIdentifier{}, false
	}

	if rest, ok := stripURLPrefix(s); ok {
		return resolvePath(rest)
	}

	// Bare tokens.
	if channelIDPattern.MatchString(s) {
		return dto.ResolvedIdentifier{Kind: dto.IdentifierChannelID, Value: s}, true
	}
	if h := strings.TrimPrefix(s, "@"); handlePattern.MatchString(h) {
		return dto.ResolvedIdentifier{Kind: dto.IdentifierHandle, Value: h}, true
	}
	return dto.ResolvedIdentifier{}, false
}

// stripURLPrefix removes the scheme and youtube host from a channel URL and
// returns the remaining path. ok is false when s is not a YouTube URL.
func stripURLPrefix(s string) (string, bool) {
	for _, scheme := range []string{"https://", "http://"} {
		s = strings.TrimPrefix(s, scheme)
	}
	s = strings.TrimPrefix(s, "www.")
	for _, host := range []string{"youtube.com/", "m.youtube.com/"} {
		if rest, found := strings.CutPrefix(s, host); found {
			return rest, true
		}
	}
	return "", false
}

func resolvePath(path string) (dto.ResolvedIdentifier, bool) {
	path = strings.TrimSuffix(path, "/")
	switch {
	case strings.HasPrefix(path, "channel/"):
		id := strings.TrimPrefix(path, "channel/")
		if channelIDPattern.MatchString(id) {
			return dto.ResolvedIdentifier{Kind: dto.IdentifierChannelID, Value: id}, true
		}
	case strings.HasPrefix(path, "c/"):
		if name := strings.TrimPrefix(path, "c/"); handlePattern.MatchString(name) {
			return dto.ResolvedIdentifier{Kind: dto.IdentifierHandle, Value: name}, true
		}
	case strings.HasPrefix(path, "user/"):
		if name := strings.TrimPrefix(path, "user/"); handlePattern.MatchString(name) {
			return dto.ResolvedIdentifier{Kind: dto.IdentifierHandle, Value: name}, true
		}
	case strings.HasPrefix(path, "@"):
		if h := strings.TrimPrefix(path, "@"); handlePattern.MatchString(h) {
			return dto.ResolvedIdentifier{Kind: dto.IdentifierHandle, Value: h}, true
		}
	}
	return dto.ResolvedIdentifier{}, false
}
