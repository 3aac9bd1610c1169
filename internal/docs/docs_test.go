package docs

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/docugen/docugen/internal/assembler"
	"github.com/docugen/docugen/internal/github"
	"github.com/docugen/docugen/internal/prioritizer"
	"github.com/docugen/docugen/internal/summarizer"
)

type fakeLLM struct {
	response string
	err      error
	prompt   string
	opts     summarizer.Options
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string, opts summarizer.Options) (string, error) {
	f.prompt = prompt
	f.opts = opts
	return f.response, f.err
}

func testBundle() *assembler.Bundle {
	return &assembler.Bundle{
		Addr:     github.Address{Owner: "octo", Repo: "demo"},
		Strategy: prioritizer.Strategy{ProjectType: "web_app"},
		Files: []prioritizer.ScoredFile{
			{FileEntry: github.FileEntry{Name: "app.py", Path: "src/app.py"}, Score: 5, Source: prioritizer.SourceAI},
			{FileEntry: github.FileEntry{Name: "README.md", Path: "README.md"}, Score: 3, Source: prioritizer.SourceAI},
		},
		Contents: map[string]string{
			"src/app.py": "print('hi')",
			"README.md":  "# demo",
		},
	}
}

func TestFromCode(t *testing.T) {
	llm := &fakeLLM{response: "```markdown\n# Docs\nbody\n```"}
	g := New(llm)

	got, err := g.FromCode(context.Background(), "def main(): pass")
	if err != nil {
		t.Fatalf("from code: %v", err)
	}
	if got != "# Docs\nbody" {
		t.Fatalf("output = %q", got)
	}
	if !strings.Contains(llm.prompt, "def main(): pass") {
		t.Fatal("code missing from prompt")
	}
	if llm.opts.Temperature != 0.3 || llm.opts.MaxOutputTokens != 1024 {
		t.Fatalf("options = %+v", llm.opts)
	}
}

func TestFromCodeError(t *testing.T) {
	llm := &fakeLLM{err: errors.New("quota")}
	if _, err := New(llm).FromCode(context.Background(), "code"); err == nil {
		t.Fatal("expected error")
	}
}

func TestFromBundle(t *testing.T) {
	llm := &fakeLLM{response: "# Overview\ngenerated body"}
	g := New(llm)
	g.now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }

	got, err := g.FromBundle(context.Background(), testBundle())
	if err != nil {
		t.Fatalf("from bundle: %v", err)
	}

	for _, want := range []string{
		"# octo/demo - Project Documentation",
		"**Generated on:** 2026-08-30 12:00:00",
		"**Analysis:** 2 files prioritized and analyzed",
		"**Project Type:** web_app",
		"generated body",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
	if llm.opts.MaxOutputTokens != 2048 {
		t.Fatalf("options = %+v", llm.opts)
	}

	// Per-file blocks carry name, priority and path.
	if !strings.Contains(llm.prompt, "=== app.py (Priority: 5/5) ===") {
		t.Fatalf("prompt missing app.py block:\n%s", llm.prompt)
	}
	if !strings.Contains(llm.prompt, "Path: src/app.py") {
		t.Fatal("prompt missing path line")
	}
	// Highest score first.
	if strings.Index(llm.prompt, "app.py (Priority: 5/5)") > strings.Index(llm.prompt, "README.md (Priority: 3/5)") {
		t.Fatal("blocks not ordered by priority")
	}
}

func TestFromBundleSkipsUnfetchedFiles(t *testing.T) {
	bundle := testBundle()
	delete(bundle.Contents, "src/app.py")

	llm := &fakeLLM{response: "body"}
	if _, err := New(llm).FromBundle(context.Background(), bundle); err != nil {
		t.Fatalf("from bundle: %v", err)
	}
	if strings.Contains(llm.prompt, "=== app.py") {
		t.Fatal("unfetched file leaked into prompt")
	}
}

func TestCleanMarkdown(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"plain text", "plain text"},
		{"```markdown\n# T\n```", "# T"},
		{"```\nbody\n```", "body"},
		{"  \n```markdown\nbody\n```\n ", "body"},
		{"```markdown\nno closing fence", "no closing fence"},
	}
	for _, c := range cases {
		if got := CleanMarkdown(c.in); got != c.want {
			t.Errorf("CleanMarkdown(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
