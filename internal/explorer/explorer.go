// Package explorer walks a remote repository's file tree and produces the
// candidate file list handed to AI prioritization.
//
// The single-call recursive tree endpoint is preferred; when it is
// unavailable the explorer falls back to bounded-depth directory-by-directory
// listing. Both paths apply the same directory-skip and code-file filters.
package explorer

import (
	"context"
	"errors"
	"log"
	"path"
	"strings"

	"github.com/docugen/docugen/internal/github"
)

const (
	// DefaultMaxDepth bounds the recursive fallback traversal.
	DefaultMaxDepth = 8
	// AnalysisMaxDepth is the shallower bound used when exploring a
	// repository root for AI analysis.
	AnalysisMaxDepth = 6
	// DefaultMaxFiles caps the candidate list handed to prioritization.
	DefaultMaxFiles = 100
)

// skipDirs are directory names (matched case-insensitively as exact path
// segments) that never contain documentation-relevant code. Fixed
// configuration, not inferred.
var skipDirs = map[string]bool{
	".git": true, ".github": true, "node_modules": true, "__pycache__": true,
	".vscode": true, "dist": true, "build": true, "target": true, "out": true,
	".idea": true, "logs": true, "tmp": true, ".next": true, ".nuxt": true,
	"coverage": true, ".pytest_cache": true, "vendor": true,
	".env": true, ".venv": true, "venv": true, "env": true,
}

// codeExtensions are the file extensions recognized as code or text worth
// documenting.
var codeExtensions = map[string]bool{
	".py": true, ".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".java": true, ".cpp": true, ".c": true, ".h": true, ".cs": true,
	".php": true, ".rb": true, ".go": true, ".rs": true, ".kt": true,
	".scala": true, ".swift": true, ".dart": true, ".r": true, ".sql": true,
	".md": true, ".txt": true,
}

// extensionlessNames are well-known files accepted without an extension.
var extensionlessNames = map[string]bool{
	"readme": true, "license": true, "changelog": true,
	"makefile": true, "dockerfile": true,
}

// importantNames mark files that sort into the first tier when ordering
// tree results: package manifests, build files, and top-level config.
var importantNames = map[string]bool{
	"package.json": true, "go.mod": true, "pyproject.toml": true,
	"cargo.toml": true, "setup.py": true, "makefile": true,
	"dockerfile": true, "docker-compose.yml": true, "compose.yml": true,
	"requirements.txt": true, "tsconfig.json": true, "pom.xml": true,
	"build.gradle": true,
}

// Fetcher is the subset of the GitHub client the explorer needs.
type Fetcher interface {
	GetTree(ctx context.Context, addr github.Address, ref string) ([]github.FileEntry, error)
	ListDirectory(ctx context.Context, addr github.Address, path string) ([]github.FileEntry, error)
}

// Explorer produces candidate file lists for a repository.
type Explorer struct {
	fetcher  Fetcher
	maxDepth int
}

// New creates an Explorer with the default recursion bound.
func New(fetcher Fetcher) *Explorer {
	return &Explorer{fetcher: fetcher, maxDepth: DefaultMaxDepth}
}

// WithMaxDepth overrides the recursion bound for the fallback traversal.
func (e *Explorer) WithMaxDepth(depth int) *Explorer {
	e.maxDepth = depth
	return e
}

// Explore returns the filtered, ordered candidate file list (files only,
// never directories), truncated to maxFiles. Exploration is scoped to
// addr.Path when the address names a subpath. ref is the git ref for the
// tree listing; empty means the default branch. A maxFiles of zero or less
// means DefaultMaxFiles.
func (e *Explorer) Explore(ctx context.Context, addr github.Address, ref string, maxFiles int) ([]github.FileEntry, error) {
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}

	entries, err := e.fetcher.GetTree(ctx, addr, ref)
	if err == nil {
		entries = scopeToSubpath(entries, addr.Path)
		return orderAndTruncate(filterCandidates(entries), maxFiles), nil
	}
	if !errors.Is(err, github.ErrTreeUnavailable) {
		return nil, err
	}

	log.Printf("explorer: tree endpoint unavailable for %s, using recursive listing: %v", addr.Slug(), err)
	raw := e.walk(ctx, addr, addr.Path, 0)
	return orderAndTruncate(filterCandidates(raw), maxFiles), nil
}

// walk lists one directory and recurses depth-first into non-skipped
// subdirectories up to the configured bound. Every visited item, files and
// directories both, is recorded with its depth. A listing error at any
// directory is absorbed: that subtree contributes nothing, the traversal
// continues.
func (e *Explorer) walk(ctx context.Context, addr github.Address, dir string, depth int) []github.FileEntry {
	entries, err := e.fetcher.ListDirectory(ctx, addr, dir)
	if err != nil {
		log.Printf("explorer: error listing %q at depth %d: %v", dir, depth, err)
		return nil
	}

	var items []github.FileEntry
	for _, entry := range entries {
		entry.Depth = depth
		items = append(items, entry)

		if entry.IsDir() && !skipDirs[strings.ToLower(entry.Name)] && depth < e.maxDepth {
			items = append(items, e.walk(ctx, addr, entry.Path, depth+1)...)
		}
	}
	return items
}

// scopeToSubpath keeps only entries under the requested subpath and rebases
// their depth on it, so depth-sensitive ordering treats the subpath as the
// root. The tree endpoint always returns the whole repository; the recursive
// fallback starts at the subpath and needs no scoping. An empty subpath
// keeps everything.
func scopeToSubpath(entries []github.FileEntry, sub string) []github.FileEntry {
	if sub == "" {
		return entries
	}
	prefix := strings.TrimSuffix(sub, "/") + "/"
	var scoped []github.FileEntry
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Path, prefix) {
			continue
		}
		entry.Depth = strings.Count(strings.TrimPrefix(entry.Path, prefix), "/")
		scoped = append(scoped, entry)
	}
	return scoped
}

// filterCandidates keeps file entries that are recognized code/text files
// and whose paths avoid every skip-listed directory segment.
func filterCandidates(entries []github.FileEntry) []github.FileEntry {
	var files []github.FileEntry
	for _, entry := range entries {
		if !entry.IsFile() {
			continue
		}
		if hasSkipSegment(entry.Path) {
			continue
		}
		if !isCodeFile(entry.Name) {
			continue
		}
		files = append(files, entry)
	}
	return files
}

// orderAndTruncate applies the two-tier ordering: important files and
// shallow entries (depth <= 1) first, preserving relative order within each
// tier, then cuts to maxFiles.
func orderAndTruncate(files []github.FileEntry, maxFiles int) []github.FileEntry {
	var first, rest []github.FileEntry
	for _, f := range files {
		if isImportantFile(f.Name) || f.Depth <= 1 {
			first = append(first, f)
		} else {
			rest = append(rest, f)
		}
	}
	ordered := append(first, rest...)
	if len(ordered) > maxFiles {
		ordered = ordered[:maxFiles]
	}
	return ordered
}

// hasSkipSegment reports whether any directory segment of p is in the skip
// set. The final segment is the filename and is not checked.
func hasSkipSegment(p string) bool {
	segments := strings.Split(p, "/")
	for _, seg := range segments[:len(segments)-1] {
		if skipDirs[strings.ToLower(seg)] {
			return true
		}
	}
	return false
}

func isCodeFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		return extensionlessNames[strings.ToLower(name)]
	}
	return codeExtensions[ext]
}

func isImportantFile(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "readme") {
		return true
	}
	return importantNames[lower]
}
