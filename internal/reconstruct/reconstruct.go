// Package reconstruct turns a raw assistant completion back into plain
// text: stripping reasoning spans, harvesting and repairing glossary-term
// announcements, extracting the translation envelope, thawing placeholders,
// and running the post-translation regex pipeline.
package reconstruct

import (
	"context"
	"regexp"
	"strings"

	"github.com/projectmoil/gateway/internal/codec"
	"github.com/projectmoil/gateway/internal/events"
	"github.com/projectmoil/gateway/internal/ports"
)

var (
	thinkRE       = regexp.MustCompile(`(?s)<think>.*?</think>`)
	termRE        = regexp.MustCompile(`(?s)<tm>\s*(.*?)\s*=\s*(.*?)\s*</tm>`)
	translationRE = regexp.MustCompile(`(?s)<tl>(.*?)</tl>`)
	placeholderRE = regexp.MustCompile(`\[T_\d+\]`)
	termCodeRE    = regexp.MustCompile(`Z[A-Z]{2}Z`)
)

// Options carries the collaborators Reconstruct needs beyond the raw
// strings. Glossary and Regex are nil-safe: a nil Glossary skips term
// announcement, a nil Regex skips post-processing.
type Options struct {
	// TermExtraction gates the <tm> harvest pass — set when the upstream
	// prompt asked the model for term pairs (glossary enabled and source
	// text longer than 5 characters, per §4.F).
	TermExtraction bool
	Glossary       ports.GlossaryProvider
	Regex          ports.RegexProvider
	Sink           events.Sink
	Catalog        events.Catalog
}

// Reconstruct applies the §4.G pipeline to raw, the unmodified assistant
// content. frozenText is the post-freeze text that was sent upstream —
// term-announcement eligibility is checked against it, not against raw.
// em is the escape map produced when frozenText was frozen (§4.A); it is
// used to thaw placeholders back to their original spans.
func Reconstruct(ctx context.Context, raw, frozenText string, em *codec.EscapeMap, opts Options) string {
	text := thinkRE.ReplaceAllString(raw, "")

	if opts.TermExtraction {
		text = harvestTerms(ctx, text, frozenText, opts)
	}

	text = extractTranslation(text)
	text = codec.Thaw(text, em)

	if opts.Regex != nil {
		if processed, err := opts.Regex.ProcessPost(ctx, text); err == nil {
			text = processed
		} else if opts.Sink != nil {
			opts.Sink.Log(opts.Catalog.NetworkError(err.Error()))
		}
	}

	return text
}

func harvestTerms(ctx context.Context, text, frozenText string, opts Options) string {
	matches := termRE.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return text
	}

	lowerFrozen := strings.ToLower(frozenText)

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])
		src := text[m[2]:m[3]]
		trgt := text[m[4]:m[5]]

		if isValidTerm(src, trgt) && strings.Contains(lowerFrozen, strings.ToLower(src)) {
			announceTerm(ctx, src, trgt, opts)
		}
		b.WriteString(trgt)

		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

func isValidTerm(src, trgt string) bool {
	src, trgt = strings.TrimSpace(src), strings.TrimSpace(trgt)
	if src == "" || trgt == "" {
		return false
	}
	if placeholderRE.MatchString(src) || placeholderRE.MatchString(trgt) {
		return false
	}
	if termCodeRE.MatchString(src) || termCodeRE.MatchString(trgt) {
		return false
	}
	return true
}

func announceTerm(ctx context.Context, src, trgt string, opts Options) {
	if opts.Glossary != nil {
		if err := opts.Glossary.AddNewTerm(ctx, src, trgt); err != nil && opts.Sink != nil {
			opts.Sink.Log(opts.Catalog.NetworkError(err.Error()))
			return
		}
	}
	if opts.Sink != nil {
		opts.Sink.Log(opts.Catalog.NewTerm(src, trgt))
	}
}

func extractTranslation(text string) string {
	var out string
	if m := translationRE.FindStringSubmatch(text); m != nil {
		out = strings.TrimSpace(m[1])
	} else {
		out = strings.TrimSpace(text)
	}
	out = strings.ReplaceAll(out, "<tl>", "")
	out = strings.ReplaceAll(out, "</tl>", "")
	return out
}
