// Package docs turns code into Markdown documentation via summarizer calls.
package docs

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/docugen/docugen/internal/assembler"
	"github.com/docugen/docugen/internal/summarizer"
)

// Generator produces Markdown documentation for snippets and repositories.
type Generator struct {
	llm summarizer.Summarizer
	now func() time.Time
}

// New creates a Generator backed by the given summarizer.
func New(llm summarizer.Summarizer) *Generator {
	return &Generator{llm: llm, now: time.Now}
}

// FromCode documents a single piece of source code.
func (g *Generator) FromCode(ctx context.Context, code string) (string, error) {
	prompt := buildSnippetPrompt(code)
	raw, err := g.llm.Complete(ctx, prompt, summarizer.Options{Temperature: 0.3, MaxOutputTokens: 1024})
	if err != nil {
		return "", fmt.Errorf("generating documentation: %w", err)
	}
	return CleanMarkdown(raw), nil
}

// FromBundle documents an assembled repository bundle. The output carries a
// metadata header ahead of the generated body.
func (g *Generator) FromBundle(ctx context.Context, bundle *assembler.Bundle) (string, error) {
	prompt := buildRepositoryPrompt(bundle)
	raw, err := g.llm.Complete(ctx, prompt, summarizer.Options{Temperature: 0.3, MaxOutputTokens: 2048})
	if err != nil {
		return "", fmt.Errorf("generating repository documentation: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s - Project Documentation\n\n", bundle.Addr.Slug())
	fmt.Fprintf(&b, "**Generated on:** %s\n", g.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Analysis:** %d files prioritized and analyzed\n", len(bundle.Files))
	fmt.Fprintf(&b, "**Project Type:** %s\n", bundle.Strategy.ProjectType)
	if bundle.Addr.Path != "" {
		fmt.Fprintf(&b, "**Path:** `%s`\n", bundle.Addr.Path)
	}
	b.WriteString("\n---\n\n")
	b.WriteString(CleanMarkdown(raw))
	return b.String(), nil
}

// CleanMarkdown strips a wrapping markdown code fence from model output.
// Content that is not fence-wrapped passes through unchanged.
func CleanMarkdown(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "```markdown"):
		s = strings.TrimSpace(s[len("```markdown"):])
	case strings.HasPrefix(s, "```"):
		s = strings.TrimSpace(s[len("```"):])
	default:
		return s
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func buildSnippetPrompt(code string) string {
	return fmt.Sprintf(`Generate concise brief documentation for the following code:

%s

Generate documentation with the following sections:
# 1. PROJECT OVERVIEW
- main purpose
- Key features and working
- Main user workflows(if applicable)

# 2. API REFERENCE (if applicable)
- Available endpoints and their purpose along with function signatures
- Request/response formats

# 3. FUNCTIONS
- List all non-API functions with their purpose and parameters.

Format the documentation as clear, well-structured Markdown.
Output in a code block.`, code)
}

func buildRepositoryPrompt(bundle *assembler.Bundle) string {
	// Highest-priority files lead the prompt so truncation hurts least.
	files := sortedPaths(bundle)

	var blocks []string
	for _, path := range files {
		score := scoreFor(bundle, path)
		name := path
		if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
			name = path[idx+1:]
		}
		blocks = append(blocks, fmt.Sprintf("=== %s (Priority: %d/5) ===\nPath: %s\n%s",
			name, score, path, bundle.Contents[path]))
	}

	return fmt.Sprintf(`Analyze this codebase from repository '%s' and generate concise technical project documentation.

Project type: %s

CODEBASE CONTENT:
%s

Generate well-structured documentation with these sections:

# 1. PROJECT OVERVIEW
- What this project does and its main purpose
- Key features and how it works
- Main user workflows(if applicable)
- Tech stack used

# 2. ARCHITECTURE & STRUCTURE
- Overall project architecture
- Main components and their relationships
- Directory structure and organization

# 3. API REFERENCE (if applicable)
- Available endpoints and their purpose
- Request/response formats
- Authentication if needed

# 4. SETUP & USAGE
- How to install and run the project
- Configuration requirements
- Basic usage examples

Focus on the big picture and component relationships. Be practical and useful for developers who want to understand and work with this codebase.

Format as clear, well-structured Markdown.`,
		bundle.Addr.Slug(), bundle.Strategy.ProjectType, strings.Join(blocks, "\n\n"))
}

func sortedPaths(bundle *assembler.Bundle) []string {
	var paths []string
	for _, f := range bundle.Files {
		if _, ok := bundle.Contents[f.Path]; ok {
			paths = append(paths, f.Path)
		}
	}
	sort.SliceStable(paths, func(i, j int) bool {
		return scoreFor(bundle, paths[i]) > scoreFor(bundle, paths[j])
	})
	return paths
}

func scoreFor(bundle *assembler.Bundle, path string) int {
	for _, f := range bundle.Files {
		if f.Path == path {
			return f.Score
		}
	}
	return 0
}
