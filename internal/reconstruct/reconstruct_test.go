package reconstruct_test

import (
	"context"
	"testing"

	"github.com/projectmoil/gateway/internal/codec"
	"github.com/projectmoil/gateway/internal/reconstruct"
)

type fakeGlossary struct {
	added map[string]string
}

func (f *fakeGlossary) SetPath(ctx context.Context, path string) error { return nil }
func (f *fakeGlossary) GetContextPrompt(ctx context.Context, text string) (string, error) {
	return "", nil
}
func (f *fakeGlossary) AddNewTerm(ctx context.Context, src, trgt string) error {
	if f.added == nil {
		f.added = map[string]string{}
	}
	f.added[src] = trgt
	return nil
}

func TestReconstruct_PlaceholderPreservation(t *testing.T) {
	// S2: freeze "Hello<br>World\n" then thaw the reconstructed translation.
	frozen, em := codec.Freeze("Hello<br>World\n")
	raw := "<tl>你好 " + tokenFor(frozen, 0) + " 世界 " + tokenFor(frozen, 1) + " </tl>"

	got := reconstruct.Reconstruct(context.Background(), raw, frozen, em, reconstruct.Options{})
	want := "你好<br>世界\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestReconstruct_TermExtractionAnnouncesValidTerm(t *testing.T) {
	// S3: term extraction on, source "Li" appears in the processed text.
	frozen, em := codec.Freeze("Li said hello")
	raw := "<tl>你好，<tm>Li=李</tm></tl>"
	g := &fakeGlossary{}

	got := reconstruct.Reconstruct(context.Background(), raw, frozen, em, reconstruct.Options{
		TermExtraction: true,
		Glossary:       g,
	})
	if got != "你好，李" {
		t.Errorf("got %q, want %q", got, "你好，李")
	}
	if g.added["Li"] != "李" {
		t.Errorf("expected term Li=李 to be announced, got %+v", g.added)
	}
}

func TestReconstruct_InvalidTermIsDroppedNotAnnounced(t *testing.T) {
	// S4: term source (left-hand) side is a placeholder token, so it's invalid.
	frozen, em := codec.Freeze("X")
	raw := "<tl>X</tl><tm>" + tokenFor(frozen, 0) + "=foo</tm>"
	g := &fakeGlossary{}

	got := reconstruct.Reconstruct(context.Background(), raw, frozen, em, reconstruct.Options{
		TermExtraction: true,
		Glossary:       g,
	})
	if got != "X" {
		t.Errorf("got %q, want %q", got, "X")
	}
	if len(g.added) != 0 {
		t.Errorf("expected no term announced, got %+v", g.added)
	}
}

func TestReconstruct_StripsThinkSpans(t *testing.T) {
	frozen, em := codec.Freeze("hi")
	raw := "<think>reasoning about hi\nacross lines</think><tl>ok</tl>"

	got := reconstruct.Reconstruct(context.Background(), raw, frozen, em, reconstruct.Options{})
	if got != "ok" {
		t.Errorf("got %q, want %q", got, "ok")
	}
}

func TestReconstruct_NoTranslationTagFallsBackToWholeString(t *testing.T) {
	frozen, em := codec.Freeze("hi")
	got := reconstruct.Reconstruct(context.Background(), "  plain reply  ", frozen, em, reconstruct.Options{})
	if got != "plain reply" {
		t.Errorf("got %q", got)
	}
}

// tokenFor returns the "[T_n]" sentinel for index n, relying on Freeze
// numbering tokens in appearance order starting at 0; frozen is not
// inspected, so the token need not be present in it.
func tokenFor(frozen string, n int) string {
	_ = frozen
	return "[T_" + itoa(n) + "]"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := ""
	for n > 0 {
		digits = string(rune('0'+n%10)) + digits
		n /= 10
	}
	return digits
}
