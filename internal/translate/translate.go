// Package translate implements the retry/attempt loop that ties the
// placeholder codec, key rotator, context store, upstream client, and
// response reconstructor into one translation call.
package translate

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/projectmoil/gateway/internal/codec"
	"github.com/projectmoil/gateway/internal/config"
	"github.com/projectmoil/gateway/internal/contextstore"
	"github.com/projectmoil/gateway/internal/events"
	"github.com/projectmoil/gateway/internal/ports"
	"github.com/projectmoil/gateway/internal/reconstruct"
	"github.com/projectmoil/gateway/internal/upstream"
)

const (
	maxAttempts  = 5
	backoffTotal = 1000 * time.Millisecond
	backoffTick  = 100 * time.Millisecond
)

const rulesAppendix = "\n\n[Translation Rules]:\n" +
	"1. PRESERVE TAGS: you will see tokens like '[T_0]', '[T_1]'.\n" +
	"   - These replace newlines or code spans. Keep them EXACTLY as is.\n" +
	"   - Input: \"Hello [T_0] World\"\n" +
	"   - Output: \"Translated [T_0] Text\"\n" +
	"2. NO CLEANUP: do not remove the tokens.\n" +
	"3. TERM CODES: keep any 'Z[A-Z]{2}Z' code (e.g. 'ZMCZ') exactly as is.\n" +
	"4. Translate only the text between the tokens.\n" +
	"5. Output only the translated result.\n"

const termExtractionAppendix = "\n[Term Extraction]:\n" +
	"1. Wrap the translation in <tl>...</tl>.\n" +
	"2. If you find a proper noun not already covered by the glossary, append a <tm>Src=Trgt</tm> pair after the translation.\n" +
	"3. Keep <tm> tags outside of <tl> tags.\n"

// Service runs one translation end to end, including retries.
type Service struct {
	cfg      *config.Store
	contexts *contextstore.Store
	upstream *upstream.Client
	glossary ports.GlossaryProvider
	regex    ports.RegexProvider
	sink     events.Sink
}

// New wires a Service. glossary and regex are nil-safe — a host that
// doesn't set either simply runs without glossary/regex support.
func New(cfg *config.Store, contexts *contextstore.Store, up *upstream.Client, glossary ports.GlossaryProvider, regex ports.RegexProvider, sink events.Sink) *Service {
	return &Service{cfg: cfg, contexts: contexts, upstream: up, glossary: glossary, regex: regex, sink: sink}
}

// Translate runs the bounded retry loop for one (clientID, text) request,
// re-reading the config snapshot on every attempt so a hot-reload between
// attempts takes effect on the next try. Returns "" on exhaustion or
// cancellation.
func (s *Service) Translate(ctx context.Context, clientID, text string) string {
	cat := events.Catalog{Lang: events.Lang(s.cfg.GetConfig().Language)}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if ctx.Err() != nil {
			s.log(cat.Aborted())
			return ""
		}

		if attempt > 0 {
			s.log(cat.RetryAttempt(attempt+1, maxAttempts))
			if !sleepCancellable(ctx, backoffTotal, backoffTick) {
				s.log(cat.Aborted())
				return ""
			}
		}

		result := s.attempt(ctx, clientID, text, cat)
		if ctx.Err() != nil {
			s.log(cat.Aborted())
			return ""
		}

		if isValidResult(result) {
			if attempt > 0 {
				s.log(cat.RetrySuccess())
			}
			return result
		}
	}

	s.log(cat.RetriesExhausted())
	return ""
}

func (s *Service) attempt(ctx context.Context, clientID, text string, cat events.Catalog) string {
	if ctx.Err() != nil {
		return ""
	}

	snap := s.cfg.GetConfig()

	apiKey := s.cfg.Keys().Next()
	if apiKey == "" {
		s.log(cat.InvalidKey())
		return ""
	}

	frozen, em := codec.Freeze(text)
	processedText := frozen
	if snap.EnableGlossary && s.regex != nil {
		if p, err := s.regex.ProcessPre(ctx, frozen); err == nil {
			processedText = p
		} else {
			s.log(cat.NetworkError(err.Error()))
		}
	}

	systemPrompt, termExtraction := s.buildSystemPrompt(ctx, snap, processedText, text)

	history := s.contexts.Read(clientID, snap.ContextNum)
	messages := make([]upstream.ChatMessage, 0, len(history)*2+2)
	messages = append(messages, upstream.ChatMessage{Role: "system", Content: systemPrompt})
	for _, turn := range history {
		messages = append(messages, upstream.ChatMessage{Role: "user", Content: turn.User})
		messages = append(messages, upstream.ChatMessage{Role: "assistant", Content: turn.Assistant})
	}
	currentUserContent := snap.PrePrompt + processedText
	messages = append(messages, upstream.ChatMessage{Role: "user", Content: currentUserContent})

	res, err := s.upstream.Send(ctx, snap.APIAddress, apiKey, snap.ModelName, messages, snap.Temperature)
	if err != nil {
		s.logUpstreamError(cat, err)
		return ""
	}
	if res.Usage != nil && s.sink != nil {
		s.sink.TokenUsage(res.Usage.PromptTokens, res.Usage.CompletionTokens)
	}

	var regexForPost ports.RegexProvider
	if snap.EnableGlossary {
		regexForPost = s.regex
	}

	result := reconstruct.Reconstruct(ctx, res.Content, processedText, em, reconstruct.Options{
		TermExtraction: termExtraction,
		Glossary:       s.glossary,
		Regex:          regexForPost,
		Sink:           s.sink,
		Catalog:        cat,
	})

	s.log("  -> " + result)

	if isValidResult(result) {
		s.contexts.Append(clientID, currentUserContent, result)
		return result
	}
	return ""
}

func (s *Service) buildSystemPrompt(ctx context.Context, snap config.Snapshot, processedText, rawText string) (string, bool) {
	prompt := snap.SystemPrompt + rulesAppendix
	termExtraction := false

	if snap.EnableGlossary {
		if s.glossary != nil {
			if gc, err := s.glossary.GetContextPrompt(ctx, processedText); err != nil {
				s.log(events.Catalog{Lang: events.Lang(snap.Language)}.NetworkError(err.Error()))
			} else if gc != "" {
				prompt += "\n" + gc
			}
		}
		if utf8.RuneCountInString(rawText) > 5 {
			termExtraction = true
			prompt += termExtractionAppendix
		}
	}

	return prompt, termExtraction
}

func (s *Service) logUpstreamError(cat events.Catalog, err error) {
	switch {
	case errors.Is(err, upstream.ErrCancelled):
		// No per-attempt log — the retry loop's own abort message covers it.
	case errors.Is(err, upstream.ErrInvalidKey):
		s.log(cat.InvalidKey())
	case errors.Is(err, upstream.ErrTimeout):
		s.log(cat.RequestTimeout())
	case errors.Is(err, upstream.ErrFormat):
		s.log(cat.FormatError())
	case errors.Is(err, upstream.ErrParse):
		s.log(cat.ParseError())
	default:
		s.log(cat.NetworkError(err.Error()))
	}
}

func (s *Service) log(msg string) {
	if s.sink != nil {
		s.sink.Log(msg)
	}
}

// sleepCancellable sleeps total in tick-sized increments, returning false
// as soon as ctx is cancelled mid-sleep.
func sleepCancellable(ctx context.Context, total, tick time.Duration) bool {
	ticks := int(total / tick)
	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(tick):
		}
	}
	return true
}

func isValidResult(result string) bool {
	if result == "" {
		return false
	}
	if strings.HasPrefix(strings.ToLower(result), "error") {
		return false
	}
	lower := strings.ToLower(result)
	if strings.Contains(lower, "翻译失败") || strings.Contains(lower, "translation failed") {
		return false
	}
	return true
}
