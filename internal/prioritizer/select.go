package prioritizer

import (
	"path"
	"sort"
	"strings"

	"github.com/docugen/docugen/internal/github"
)

// DefaultFileBudget caps how many files survive selection.
const DefaultFileBudget = 10

// ScoreSource records how a file's score was produced.
type ScoreSource string

const (
	SourceAI                ScoreSource = "ai"
	SourceFallbackExtension ScoreSource = "fallback-extension"
	SourceFallbackDefault   ScoreSource = "fallback-default"
)

// ScoredFile is a candidate file that survived selection.
type ScoredFile struct {
	github.FileEntry
	Score  int         `json:"score"`
	Source ScoreSource `json:"score_source"`
}

// Select applies the inclusion rule to the candidate files and returns the
// budget-limited selection, highest score first (stable on ties by
// discovery order). A non-positive budget means DefaultFileBudget.
//
// Rule, per file-kind entry: a ranking of 3 or higher keeps the file; an
// explicit 1 or 2 drops it; a ranking of 0 is treated the same as "not
// ranked at all" and keeps the file at a synthetic score of 2 only when its
// extension is in the strategy's focus list. A zero from the model is thus
// indistinguishable from absence here, deliberately.
func Select(files []github.FileEntry, analysis *Analysis, budget int) []ScoredFile {
	if budget <= 0 {
		budget = DefaultFileBudget
	}

	extSource := SourceFallbackExtension
	if analysis.Fallback {
		extSource = SourceFallbackDefault
	}

	var kept []ScoredFile
	for _, f := range files {
		if !f.IsFile() {
			continue
		}
		score := analysis.Rankings[f.Name]
		switch {
		case score >= 3:
			kept = append(kept, ScoredFile{FileEntry: f, Score: score, Source: SourceAI})
		case score == 0:
			ext := strings.ToLower(path.Ext(f.Name))
			if hasExtension(analysis.Strategy.FocusExtensions, ext) {
				kept = append(kept, ScoredFile{FileEntry: f, Score: 2, Source: extSource})
			}
		}
		// Explicit 1 or 2: ranked low on purpose, dropped.
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })
	if len(kept) > budget {
		kept = kept[:budget]
	}
	return kept
}

func hasExtension(focus []string, ext string) bool {
	if ext == "" {
		return false
	}
	for _, f := range focus {
		if strings.EqualFold(f, ext) {
			return true
		}
	}
	return false
}
