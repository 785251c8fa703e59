// Package codec implements the placeholder-freezing scheme that shields
// structural markup and escape sequences from an LLM round-trip: Freeze
// replaces matched fragments with numbered "[T_n]" sentinels, Thaw restores
// them from the per-attempt escape map.
package codec

import (
	"fmt"
	"regexp"
	"strings"
)

// freezeRE matches, in priority order: {{...}} (non-greedy), <...> tags,
// the literal two-character escape sequences, and the raw control
// characters themselves.
var freezeRE = regexp.MustCompile(`\{\{.*?\}\}|<[^>]+>|\\r\\n|\\n|\\r|\\t|\r\n|\n|\r|\t`)

// thawRE matches a "[T_n]" sentinel together with the defensive whitespace
// Freeze wrapped it in, so Thaw can drop that whitespace on restoration.
var thawRE = regexp.MustCompile(`\s*\[T_(\d+)\]\s*`)

// EscapeMap is the per-attempt "[T_n] -> original fragment" table produced
// by Freeze and consumed by Thaw. It is not safe for concurrent use; each
// translation attempt owns its own EscapeMap.
type EscapeMap struct {
	tokens  map[string]string
	counter int
}

// NewEscapeMap returns an empty escape map ready for a single Freeze call.
func NewEscapeMap() *EscapeMap {
	return &EscapeMap{tokens: make(map[string]string)}
}

// Freeze scans text left-to-right for structural fragments and replaces
// each with a space-padded "[T_n]" sentinel, numbered from 0 in scan order.
// The surrounding spaces defend against LLMs that delete adjacent
// punctuation or glue tokens together; Thaw strips them back out.
func Freeze(text string) (string, *EscapeMap) {
	em := NewEscapeMap()
	var out strings.Builder
	lastEnd := 0
	for _, loc := range freezeRE.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		out.WriteString(text[lastEnd:start])
		key := fmt.Sprintf("[T_%d]", em.counter)
		em.counter++
		em.tokens[key] = text[start:end]
		out.WriteString(" ")
		out.WriteString(key)
		out.WriteString(" ")
		lastEnd = end
	}
	out.WriteString(text[lastEnd:])
	return out.String(), em
}

// Thaw restores every "[T_n]" sentinel in text (plus the whitespace Freeze
// padded it with) to the fragment recorded in em. A sentinel with no entry
// in em (the model invented or duplicated one) is emitted as the bare key.
func Thaw(text string, em *EscapeMap) string {
	if em == nil {
		return text
	}
	var out strings.Builder
	lastEnd := 0
	for _, loc := range thawRE.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[0], loc[1]
		numStart, numEnd := loc[2], loc[3]
		out.WriteString(text[lastEnd:start])
		key := "[T_" + text[numStart:numEnd] + "]"
		if original, ok := em.tokens[key]; ok {
			out.WriteString(original)
		} else {
			out.WriteString(key)
		}
		lastEnd = end
	}
	out.WriteString(text[lastEnd:])
	return out.String()
}
