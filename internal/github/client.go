// Package github provides the rate-limit-aware GitHub content fetcher used
// for repository exploration: directory listings, recursive file trees, raw
// file content, and repository metadata.
package github

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	gogh "github.com/google/go-github/v68/github"
)

// callTimeout bounds every individual API call.
const callTimeout = 30 * time.Second

// Client wraps the GitHub API for repository exploration.
type Client struct {
	gh *gogh.Client

	// sleep is swappable in tests; defaults to a context-aware wait.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a client. The token is optional: unauthenticated calls
// work for public repositories at a lower rate limit.
func NewClient(token string) *Client {
	gh := gogh.NewClient(&http.Client{Timeout: callTimeout})
	if token != "" {
		gh = gh.WithAuthToken(token)
	}
	return &Client{gh: gh, sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// ListDirectory lists the contents of a directory within the repository.
// A path that names a single file yields a one-element listing, matching
// the contents API behavior.
func (c *Client) ListDirectory(ctx context.Context, addr Address, path string) ([]FileEntry, error) {
	op := fmt.Sprintf("listing %s/%s", addr.Slug(), path)

	var file *gogh.RepositoryContent
	var dir []*gogh.RepositoryContent
	err := c.withRetry(ctx, op, func() error {
		var resp *gogh.Response
		var err error
		file, dir, resp, err = c.gh.Repositories.GetContents(ctx, addr.Owner, addr.Repo, path, nil)
		c.logRate(op, resp)
		return err
	})
	if err != nil {
		return nil, err
	}

	if file != nil {
		return []FileEntry{entryFromContent(file)}, nil
	}
	entries := make([]FileEntry, 0, len(dir))
	for _, item := range dir {
		entries = append(entries, entryFromContent(item))
	}
	return entries, nil
}

// GetTree returns every file and directory in the repository in a single
// call via the recursive git tree endpoint. An empty ref resolves the
// default branch with an extra metadata call; callers that already hold
// the metadata should pass meta.DefaultBranch instead. Any failure is
// reported as ErrTreeUnavailable so callers can fall back to
// directory-by-directory exploration.
func (c *Client) GetTree(ctx context.Context, addr Address, ref string) ([]FileEntry, error) {
	if ref == "" {
		meta, err := c.GetRepoMetadata(ctx, addr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTreeUnavailable, err)
		}
		ref = meta.DefaultBranch
	}

	op := fmt.Sprintf("fetching tree of %s", addr.Slug())
	var tree *gogh.Tree
	err := c.withRetry(ctx, op, func() error {
		var resp *gogh.Response
		var err error
		tree, resp, err = c.gh.Git.GetTree(ctx, addr.Owner, addr.Repo, ref, true)
		c.logRate(op, resp)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTreeUnavailable, err)
	}
	if tree.GetTruncated() {
		log.Printf("github: tree of %s is truncated by the API", addr.Slug())
	}

	entries := make([]FileEntry, 0, len(tree.Entries))
	for _, te := range tree.Entries {
		var kind string
		switch te.GetType() {
		case "blob":
			kind = "file"
		case "tree":
			kind = "dir"
		default: // submodule commits etc.
			continue
		}
		path := te.GetPath()
		entries = append(entries, FileEntry{
			Name:  baseName(path),
			Path:  path,
			Kind:  kind,
			Size:  te.GetSize(),
			Depth: strings.Count(path, "/"),
			SHA:   te.GetSHA(),
		})
	}
	return entries, nil
}

// GetFileContent fetches and decodes a file's content. Files too large for
// the contents API are fetched through the blob endpoint by SHA.
func (c *Client) GetFileContent(ctx context.Context, addr Address, path string) (string, error) {
	op := fmt.Sprintf("fetching %s/%s", addr.Slug(), path)

	var file *gogh.RepositoryContent
	err := c.withRetry(ctx, op, func() error {
		var resp *gogh.Response
		var err error
		file, _, resp, err = c.gh.Repositories.GetContents(ctx, addr.Owner, addr.Repo, path, nil)
		c.logRate(op, resp)
		return err
	})
	if err != nil {
		return "", err
	}
	if file == nil {
		return "", fmt.Errorf("%s: %w: path is a directory", op, ErrUnexpectedStatus)
	}

	content, err := file.GetContent()
	if err != nil {
		return "", fmt.Errorf("%s: decoding content: %w", op, err)
	}
	if content != "" || file.GetSize() == 0 {
		return content, nil
	}

	// Oversized file: the contents API omits the body but still reports
	// the blob SHA.
	return c.getBlobContent(ctx, addr, file.GetSHA(), op)
}

func (c *Client) getBlobContent(ctx context.Context, addr Address, sha, op string) (string, error) {
	if sha == "" {
		return "", fmt.Errorf("%s: %w: empty content and no blob SHA", op, ErrUnexpectedStatus)
	}

	var blob *gogh.Blob
	err := c.withRetry(ctx, op, func() error {
		var resp *gogh.Response
		var err error
		blob, resp, err = c.gh.Git.GetBlob(ctx, addr.Owner, addr.Repo, sha)
		c.logRate(op, resp)
		return err
	})
	if err != nil {
		return "", err
	}

	raw := blob.GetContent()
	if blob.GetEncoding() != "base64" {
		return raw, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(raw, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("%s: decoding blob: %w", op, err)
	}
	return string(decoded), nil
}

// GetRepoMetadata fetches repository-level metadata: default branch, size,
// primary language, and the language byte breakdown. The language breakdown
// is best-effort and never fails the call.
func (c *Client) GetRepoMetadata(ctx context.Context, addr Address) (*RepoMetadata, error) {
	op := fmt.Sprintf("fetching metadata of %s", addr.Slug())

	var repo *gogh.Repository
	err := c.withRetry(ctx, op, func() error {
		var resp *gogh.Response
		var err error
		repo, resp, err = c.gh.Repositories.Get(ctx, addr.Owner, addr.Repo)
		c.logRate(op, resp)
		return err
	})
	if err != nil {
		return nil, err
	}

	meta := &RepoMetadata{
		DefaultBranch: repo.GetDefaultBranch(),
		SizeKB:        repo.GetSize(),
		Language:      repo.GetLanguage(),
		Description:   repo.GetDescription(),
	}
	if meta.DefaultBranch == "" {
		meta.DefaultBranch = "main"
	}

	if langs, _, err := c.gh.Repositories.ListLanguages(ctx, addr.Owner, addr.Repo); err == nil && len(langs) > 0 {
		meta.Languages = langs
	}

	return meta, nil
}

// --- Retry and error classification ---

// withRetry runs fn, retrying exactly once after a rate-limited response by
// waiting out the reported reset window (plus one second). A second
// rate-limited response is fatal for the call; all other failures propagate
// immediately.
func (c *Client) withRetry(ctx context.Context, op string, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	wait, limited := rateLimitWait(err)
	if !limited {
		return classify(op, err)
	}

	log.Printf("github: %s rate limited, retrying in %s", op, wait.Round(time.Second))
	if serr := c.sleep(ctx, wait); serr != nil {
		return fmt.Errorf("%s: %w", op, serr)
	}

	if err = fn(); err != nil {
		if _, limited := rateLimitWait(err); limited {
			return fmt.Errorf("%s: %w after retry", op, ErrRateLimited)
		}
		return classify(op, err)
	}
	return nil
}

// rateLimitWait reports whether err carries a rate-limit signal and how
// long to wait before retrying. An already-passed reset means no wait.
func rateLimitWait(err error) (time.Duration, bool) {
	var rle *gogh.RateLimitError
	if errors.As(err, &rle) {
		wait := time.Until(rle.Rate.Reset.Time) + time.Second
		if wait < 0 {
			wait = 0
		}
		return wait, true
	}
	var arle *gogh.AbuseRateLimitError
	if errors.As(err, &arle) {
		if d := arle.GetRetryAfter(); d > 0 {
			return d, true
		}
		return time.Second, true
	}
	return 0, false
}

// classify maps an API error onto the failure taxonomy, keeping op as the
// human-readable context.
func classify(op string, err error) error {
	var er *gogh.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		switch er.Response.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		case http.StatusForbidden, http.StatusUnauthorized:
			return fmt.Errorf("%s: %w", op, ErrAccessDenied)
		default:
			return fmt.Errorf("%s: status %d: %w", op, er.Response.StatusCode, ErrUnexpectedStatus)
		}
	}
	// Network-level failure; keep the cause.
	return fmt.Errorf("%s: %w", op, err)
}

func (c *Client) logRate(op string, resp *gogh.Response) {
	if resp == nil {
		return
	}
	log.Printf("github: %s (rate %d/%d, resets %s)",
		op, resp.Rate.Remaining, resp.Rate.Limit, resp.Rate.Reset.Format(time.TimeOnly))
}

func entryFromContent(rc *gogh.RepositoryContent) FileEntry {
	return FileEntry{
		Name:   rc.GetName(),
		Path:   rc.GetPath(),
		Kind:   rc.GetType(),
		Size:   rc.GetSize(),
		SHA:    rc.GetSHA(),
		RawURL: rc.GetDownloadURL(),
	}
}

func baseName(path string) string {
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
