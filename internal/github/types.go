package github

// FileEntry is a single item discovered while exploring a repository.
type FileEntry struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Kind   string `json:"type"` // "file" or "dir"
	Size   int    `json:"size"`
	Depth  int    `json:"depth"`
	SHA    string `json:"-"`
	RawURL string `json:"-"`
}

// IsFile reports whether the entry is a regular file.
func (e FileEntry) IsFile() bool { return e.Kind == "file" }

// IsDir reports whether the entry is a directory.
func (e FileEntry) IsDir() bool { return e.Kind == "dir" }

// RepoMetadata summarizes a repository for prompt construction and filename
// generation.
type RepoMetadata struct {
	DefaultBranch string         `json:"default_branch"`
	SizeKB        int            `json:"size_kb"`
	Language      string         `json:"language"`
	Languages     map[string]int `json:"languages,omitempty"`
	Description   string         `json:"description,omitempty"`
}

// RateLimitSnapshot is the rate-limit state reported by a single API
// response. Advisory only; it drives nothing besides logging and the
// single retry-after-reset policy.
type RateLimitSnapshot struct {
	Limit     int
	Remaining int
	Reset     int64 // epoch seconds
}
