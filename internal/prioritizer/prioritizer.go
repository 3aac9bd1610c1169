// Package prioritizer scores candidate files for documentation relevance.
//
// The ranking comes from a structured summarizer call; when that call fails
// or returns unusable output a deterministic fallback takes over, so
// prioritization itself never fails the pipeline.
package prioritizer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/docugen/docugen/internal/github"
	"github.com/docugen/docugen/internal/summarizer"
)

// Strategy is the exploration advice returned alongside rankings.
type Strategy struct {
	RecommendedDepth int      `json:"max_depth_recommended"`
	FocusExtensions  []string `json:"focus_extensions"`
	ProjectType      string   `json:"project_type"`
}

// Analysis is the prioritization result: a 1-5 importance score per
// filename plus an exploration strategy. Fallback is set when the
// deterministic default was used instead of model output.
type Analysis struct {
	Rankings map[string]int `json:"rankings"`
	Strategy Strategy       `json:"strategy"`
	Fallback bool           `json:"-"`
}

// defaultFocusExtensions is the fallback extension focus list.
var defaultFocusExtensions = []string{".py", ".js", ".jsx", ".ts", ".tsx"}

// FallbackAnalysis returns the fixed analysis used when the summarizer is
// unavailable or its output cannot be parsed.
func FallbackAnalysis() *Analysis {
	return &Analysis{
		Rankings: map[string]int{},
		Strategy: Strategy{
			RecommendedDepth: 4,
			FocusExtensions:  append([]string(nil), defaultFocusExtensions...),
			ProjectType:      "unknown",
		},
		Fallback: true,
	}
}

// Prioritizer ranks candidate files via a summarizer call.
type Prioritizer struct {
	llm summarizer.Summarizer
}

// New creates a Prioritizer backed by the given summarizer.
func New(llm summarizer.Summarizer) *Prioritizer {
	return &Prioritizer{llm: llm}
}

// Prioritize asks the model to rank the candidate files. Never returns an
// error: any failure yields FallbackAnalysis.
func (p *Prioritizer) Prioritize(ctx context.Context, addr github.Address, files []github.FileEntry, meta *github.RepoMetadata) *Analysis {
	prompt, err := buildRankingPrompt(addr, files, meta)
	if err != nil {
		log.Printf("prioritizer: building prompt: %v", err)
		return FallbackAnalysis()
	}

	raw, err := p.llm.Complete(ctx, prompt, summarizer.Options{Temperature: 0.2, MaxOutputTokens: 1024})
	if err != nil {
		log.Printf("prioritizer: summarizer call failed, using fallback: %v", err)
		return FallbackAnalysis()
	}

	analysis, err := ParseAnalysis(raw)
	if err != nil {
		log.Printf("prioritizer: unusable ranking response, using fallback: %v", err)
		return FallbackAnalysis()
	}
	return analysis
}

// ParseAnalysis unwraps an optional markdown code fence and strictly parses
// the ranking JSON. Responses missing the rankings or strategy keys are
// rejected; partially filled strategies get defaults.
func ParseAnalysis(raw string) (*Analysis, error) {
	text := stripFence(raw)

	var analysis Analysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		return nil, fmt.Errorf("parsing ranking JSON: %w", err)
	}
	if analysis.Rankings == nil {
		return nil, fmt.Errorf("ranking JSON missing rankings key")
	}
	s := analysis.Strategy
	if s.RecommendedDepth == 0 && len(s.FocusExtensions) == 0 && s.ProjectType == "" {
		return nil, fmt.Errorf("ranking JSON missing strategy key")
	}

	if analysis.Strategy.RecommendedDepth <= 0 {
		analysis.Strategy.RecommendedDepth = 4
	}
	if len(analysis.Strategy.FocusExtensions) == 0 {
		analysis.Strategy.FocusExtensions = append([]string(nil), defaultFocusExtensions...)
	}
	if analysis.Strategy.ProjectType == "" {
		analysis.Strategy.ProjectType = "unknown"
	}
	return &analysis, nil
}

// stripFence removes a leading ``` fence (with optional language tag) and
// the matching trailing fence. Unfenced input passes through untouched.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// fileSummary is the per-file shape serialized into the ranking prompt.
type fileSummary struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Type  string `json:"type"`
	Size  int    `json:"size"`
	Depth int    `json:"depth"`
}

func buildRankingPrompt(addr github.Address, files []github.FileEntry, meta *github.RepoMetadata) (string, error) {
	summary := make([]fileSummary, 0, len(files))
	for _, f := range files {
		summary = append(summary, fileSummary{
			Name: f.Name, Path: f.Path, Type: f.Kind, Size: f.Size, Depth: f.Depth,
		})
	}
	listing, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", err
	}

	var language string
	if meta != nil && meta.Language != "" {
		language = fmt.Sprintf("\nPrimary language: %s", meta.Language)
	}

	return fmt.Sprintf(`Repository: %s%s

Analyze this repository structure and rank files by documentation importance:

Files and directories found:
%s

Rank each FILE (not directories) on importance for documentation (1-5 scale):
5 = Core business logic (main APIs, key components, entry points)
4 = Important supporting code (utilities, services, components)
3 = Secondary code (helpers, configs with logic)
2 = Tests, examples, demos
1 = Build configs, package files (skip these)

Also suggest exploration strategy.

Return ONLY valid JSON in this exact format:
{
    "rankings": {
        "filename.ext": 5,
        "another-file.js": 4
    },
    "strategy": {
        "max_depth_recommended": 4,
        "focus_extensions": [".py", ".js", ".jsx"],
        "project_type": "web_app"
    }
}`, addr.Slug(), language, string(listing)), nil
}
