package github

import (
	"fmt"
	"regexp"
	"strings"
)

// Address identifies a repository and an optional subpath within it,
// parsed from a GitHub URL. Immutable once parsed.
type Address struct {
	Owner string
	Repo  string
	Path  string // subpath within the repo, "" for the root
}

// Slug returns "owner/repo".
func (a Address) Slug() string { return a.Owner + "/" + a.Repo }

// Recognized URL shapes, tried in order; first match wins.
var addressPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://github\.com/([^/]+)/([^/]+)/?$`),           // bare repo
	regexp.MustCompile(`^https?://github\.com/([^/]+)/([^/]+)/tree/[^/]+/(.+)$`), // branch with path
	regexp.MustCompile(`^https?://github\.com/([^/]+)/([^/]+)/blob/[^/]+/(.+)$`), // file URL
	regexp.MustCompile(`^https?://github\.com/([^/]+)/([^/]+)/tree/[^/]+/?$`),    // bare branch
}

// ParseAddress parses a GitHub URL into an Address. The trailing slash is
// stripped before matching. URLs that match none of the recognized shapes
// fail with ErrInvalidAddress.
func ParseAddress(url string) (Address, error) {
	url = strings.TrimRight(strings.TrimSpace(url), "/")

	for _, pattern := range addressPatterns {
		m := pattern.FindStringSubmatch(url)
		if m == nil {
			continue
		}
		addr := Address{Owner: m[1], Repo: m[2]}
		if len(m) > 3 {
			addr.Path = m[3]
		}
		return addr, nil
	}

	return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, url)
}
