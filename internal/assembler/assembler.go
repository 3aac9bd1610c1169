// Package assembler drives the repository pipeline: explore the tree,
// rank the candidates, then pull the winning files through the cache
// with a bounded worker pool.
package assembler

import (
	"context"
	"errors"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/docugen/docugen/internal/cache"
	"github.com/docugen/docugen/internal/explorer"
	"github.com/docugen/docugen/internal/github"
	"github.com/docugen/docugen/internal/prioritizer"
)

// DefaultWorkers bounds concurrent content fetches.
const DefaultWorkers = 5

var (
	// ErrNoFilesFound means exploration produced zero candidates.
	ErrNoFilesFound = errors.New("no files found in repository")
	// ErrNoRelevantFiles means candidates existed but none survived selection.
	ErrNoRelevantFiles = errors.New("no relevant files selected")
	// ErrAllFetchesFailed means every selected file failed to download.
	ErrAllFetchesFailed = errors.New("all file fetches failed")
)

// Fetcher is the repository access the assembler needs.
type Fetcher interface {
	GetTree(ctx context.Context, addr github.Address, ref string) ([]github.FileEntry, error)
	ListDirectory(ctx context.Context, addr github.Address, path string) ([]github.FileEntry, error)
	GetFileContent(ctx context.Context, addr github.Address, path string) (string, error)
	GetRepoMetadata(ctx context.Context, addr github.Address) (*github.RepoMetadata, error)
}

// Ranker produces an importance analysis for a candidate file set.
type Ranker interface {
	Prioritize(ctx context.Context, addr github.Address, files []github.FileEntry, meta *github.RepoMetadata) *prioritizer.Analysis
}

// Bundle is the assembled repository context handed to doc generation.
type Bundle struct {
	Addr     github.Address
	Meta     *github.RepoMetadata
	Strategy prioritizer.Strategy
	Files    []prioritizer.ScoredFile
	Contents map[string]string // path -> file content
}

// Assembler wires exploration, ranking, caching and fetching together.
type Assembler struct {
	fetcher  Fetcher
	explorer *explorer.Explorer
	ranker   Ranker
	cache    *cache.Cache
	workers  int
	budget   int
}

// New creates an Assembler with default worker and budget limits.
func New(fetcher Fetcher, ranker Ranker, fileCache *cache.Cache) *Assembler {
	return &Assembler{
		fetcher:  fetcher,
		explorer: explorer.New(fetcher).WithMaxDepth(explorer.AnalysisMaxDepth),
		ranker:   ranker,
		cache:    fileCache,
		workers:  DefaultWorkers,
		budget:   prioritizer.DefaultFileBudget,
	}
}

// WithBudget overrides the selection budget. Non-positive values keep
// the default.
func (a *Assembler) WithBudget(n int) *Assembler {
	if n > 0 {
		a.budget = n
	}
	return a
}

// WithWorkers overrides the fetch pool size. Non-positive values keep
// the default.
func (a *Assembler) WithWorkers(n int) *Assembler {
	if n > 0 {
		a.workers = n
	}
	return a
}

// Assemble runs the full pipeline for one repository. A non-positive
// budget uses the configured default. Metadata lookup is best effort;
// exploration, selection and at least one successful fetch are required.
func (a *Assembler) Assemble(ctx context.Context, addr github.Address, budget int) (*Bundle, error) {
	if budget <= 0 {
		budget = a.budget
	}
	meta, err := a.fetcher.GetRepoMetadata(ctx, addr)
	if err != nil {
		log.Printf("assembler: metadata for %s unavailable: %v", addr.Slug(), err)
		meta = nil
	}

	// Reuse the resolved default branch for the tree listing.
	ref := ""
	if meta != nil {
		ref = meta.DefaultBranch
	}
	files, err := a.explorer.Explore(ctx, addr, ref, explorer.DefaultMaxFiles)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoFilesFound
	}

	analysis := a.ranker.Prioritize(ctx, addr, files, meta)
	selected := prioritizer.Select(files, analysis, budget)
	if len(selected) == 0 {
		return nil, ErrNoRelevantFiles
	}
	log.Printf("assembler: %s selected %d of %d candidates (fallback=%v)",
		addr.Slug(), len(selected), len(files), analysis.Fallback)

	contents := a.fetchAll(ctx, addr, selected)
	if len(contents) == 0 {
		return nil, ErrAllFetchesFailed
	}

	return &Bundle{
		Addr:     addr,
		Meta:     meta,
		Strategy: analysis.Strategy,
		Files:    selected,
		Contents: contents,
	}, nil
}

// fetchAll downloads the selected files concurrently. A failed file is
// logged and skipped so one bad blob cannot sink the bundle.
func (a *Assembler) fetchAll(ctx context.Context, addr github.Address, selected []prioritizer.ScoredFile) map[string]string {
	var mu sync.Mutex
	contents := make(map[string]string, len(selected))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for _, f := range selected {
		f := f
		g.Go(func() error {
			content, err := a.fetchOne(ctx, addr, f)
			if err != nil {
				log.Printf("assembler: fetching %s: %v", f.Path, err)
				return nil
			}
			mu.Lock()
			contents[f.Path] = content
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	return contents
}

func (a *Assembler) fetchOne(ctx context.Context, addr github.Address, f prioritizer.ScoredFile) (string, error) {
	key := cache.Key(addr.Owner, addr.Repo, f.Path, f.SHA)
	if content, ok := a.cache.Get(key); ok {
		return content, nil
	}

	content, err := a.fetcher.GetFileContent(ctx, addr, f.Path)
	if err != nil {
		return "", err
	}
	a.cache.Put(key, content, f.Score, f.Path)
	return content, nil
}
