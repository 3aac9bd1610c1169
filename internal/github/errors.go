package github

import "errors"

// Sentinel errors for the fetch failure taxonomy. Callers classify with
// errors.Is; every returned error wraps one of these (or the underlying
// transport error for network-level failures).
var (
	// ErrInvalidAddress means the repository URL did not match any
	// recognized GitHub URL shape.
	ErrInvalidAddress = errors.New("invalid GitHub repository URL")

	// ErrNotFound maps a 404 from the API (missing repo, path, or ref).
	ErrNotFound = errors.New("repository or path not found")

	// ErrAccessDenied maps a 403 without a rate-limit signal (private
	// repository or insufficient token scope).
	ErrAccessDenied = errors.New("access denied")

	// ErrRateLimited means the call was rate limited twice: once before
	// the reset-window retry and once after.
	ErrRateLimited = errors.New("API rate limit exceeded")

	// ErrUnexpectedStatus maps any other non-2xx response.
	ErrUnexpectedStatus = errors.New("unexpected GitHub API response")

	// ErrTreeUnavailable means the recursive tree endpoint could not
	// produce a listing; callers fall back to directory-by-directory
	// exploration.
	ErrTreeUnavailable = errors.New("tree endpoint unavailable")
)
