// Package summarizer wraps generative text models behind a minimal
// completion interface: prompt in, text out, with a per-call token and
// temperature budget.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrUnavailable means no summarizer backend is configured or reachable.
var ErrUnavailable = errors.New("summarizer unavailable")

// Options control a single completion call.
type Options struct {
	Temperature     float64
	MaxOutputTokens int
}

// Summarizer is the capability the pipeline depends on. Implementations
// must be safe for concurrent use.
type Summarizer interface {
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
}

// FromEnv creates a Summarizer from environment variables. Prefers Gemini
// if GOOGLE_API_KEY is set, falls back to OpenAI.
func FromEnv() (Summarizer, error) {
	model := os.Getenv("DOCUGEN_MODEL")
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		return NewGeminiClient(key, model), nil
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return NewOpenAIClient(key, model), nil
	}
	return nil, fmt.Errorf("%w: set GOOGLE_API_KEY or OPENAI_API_KEY", ErrUnavailable)
}
