// Package ports declares the capabilities the translation core consumes
// from its host: a glossary provider and a regex substitution pipeline.
// Both are treated as externally owned, thread-safe singletons.
package ports

import "context"

// GlossaryProvider supplies glossary context for a source string and
// accepts newly discovered terms. Implementations must be safe for
// concurrent use.
type GlossaryProvider interface {
	// SetPath is called on every config snapshot change while glossary
	// support is enabled, so the provider can repoint itself at a new
	// on-disk glossary.
	SetPath(ctx context.Context, path string) error
	// GetContextPrompt returns a glossary fragment relevant to
	// processedText, or "" if nothing applies.
	GetContextPrompt(ctx context.Context, processedText string) (string, error)
	// AddNewTerm idempotently records a newly discovered term pair.
	AddNewTerm(ctx context.Context, src, trgt string) error
}

// RegexProvider applies user-defined pre- and post-translation
// substitutions. Implementations must be safe for concurrent use.
type RegexProvider interface {
	ProcessPre(ctx context.Context, text string) (string, error)
	ProcessPost(ctx context.Context, text string) (string, error)
}
