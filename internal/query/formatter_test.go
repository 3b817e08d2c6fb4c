package query

import (
	"context"
	"strings"
	"testing"

	"github.com/owlvision/owlvision-mcp/internal/translate"
)

func newFormatter() *Formatter {
	return &Formatter{Translator: &translate.Translator{}}
}

func TestFormat_EmptyListRejected(t *testing.T) {
	f := newFormatter()

	_, _, err := f.Format(context.Background(), nil, ModeLexicon)
	if err == nil {
		t.Fatal("Format should fail for an empty query list")
	}

	_, _, err = f.Format(context.Background(), []string{}, ModeLexicon)
	if err == nil {
		t.Fatal("Format should fail for an empty query list")
	}
}

func TestFormat_InvalidQueries(t *testing.T) {
	f := newFormatter()

	tests := []struct {
		name    string
		queries []string
	}{
		{"blank query", []string{"cat", "   "}},
		{"empty string", []string{""}},
		{"single character", []string{"x"}},
		{"single character after trim", []string{"  x  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := f.Format(context.Background(), tt.queries, ModeLexicon); err == nil {
				t.Error("Format should fail input validation")
			}
		})
	}
}

func TestFormat_WrapsInTemplate(t *testing.T) {
	f := newFormatter()

	prompts, warnings, err := f.Format(context.Background(), []string{"cat", "red car"}, ModeLexicon)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if len(prompts) != 2 {
		t.Fatalf("prompt count: got %d, want 2", len(prompts))
	}

	if prompts[0].Text != "a photo of a cat" {
		t.Errorf("prompt 0: got %q", prompts[0].Text)
	}
	if prompts[1].Text != "a photo of a red car" {
		t.Errorf("prompt 1: got %q", prompts[1].Text)
	}
	if prompts[0].Translated {
		t.Error("Latin query should not be marked translated")
	}
}

func TestFormat_TranslatesNonLatin(t *testing.T) {
	f := newFormatter()

	prompts, _, err := f.Format(context.Background(), []string{"猫"}, ModeLexicon)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	p := prompts[0]
	if p.Text != "a photo of a cat" {
		t.Errorf("Text: got %q, want %q", p.Text, "a photo of a cat")
	}
	if p.Term != "cat" || p.Query != "猫" || !p.Translated {
		t.Errorf("unexpected prompt: %+v", p)
	}
	if p.Label() != "猫(cat)" {
		t.Errorf("Label: got %q, want %q", p.Label(), "猫(cat)")
	}
}

func TestFormat_UntranslatableNonLatinKeptVerbatim(t *testing.T) {
	f := newFormatter()

	prompts, _, err := f.Format(context.Background(), []string{"未知藝術品"}, ModeLexicon)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	p := prompts[0]
	if p.Text != "a photo of a 未知藝術品" {
		t.Errorf("Text: got %q", p.Text)
	}
	if p.Translated {
		t.Error("miss should not be marked translated")
	}
	if p.Label() != "未知藝術品" {
		t.Errorf("Label: got %q", p.Label())
	}
}

func TestFormat_TruncatesLongQuery(t *testing.T) {
	f := newFormatter()

	long := strings.Repeat("z", 80)
	prompts, warnings, err := f.Format(context.Background(), []string{long}, ModeLexicon)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	if got := len([]rune(prompts[0].Query)); got != MaxQueryLen {
		t.Errorf("query length after truncation: got %d, want %d", got, MaxQueryLen)
	}
	if len(warnings) != 1 {
		t.Errorf("warnings: got %v, want one truncation warning", warnings)
	}
}

func TestFormat_TruncatesLongQueryByRunes(t *testing.T) {
	f := newFormatter()

	// Multi-byte runes must be counted per rune, not per byte.
	long := strings.Repeat("あ", 60)
	prompts, _, err := f.Format(context.Background(), []string{long}, ModeLexicon)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	if got := len([]rune(prompts[0].Query)); got != MaxQueryLen {
		t.Errorf("query length after truncation: got %d runes, want %d", got, MaxQueryLen)
	}
}

func TestFormat_CapsPromptCount(t *testing.T) {
	f := newFormatter()

	queries := []string{"cat", "dog", "bird", "horse", "cow", "pig", "sheep"}
	prompts, warnings, err := f.Format(context.Background(), queries, ModeLexicon)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	if len(prompts) != MaxPrompts {
		t.Fatalf("prompt count: got %d, want %d", len(prompts), MaxPrompts)
	}
	// The first MaxPrompts queries, in original order.
	for i, want := range queries[:MaxPrompts] {
		if prompts[i].Query != want {
			t.Errorf("prompt %d: got %q, want %q", i, prompts[i].Query, want)
		}
	}
	if len(warnings) != 1 {
		t.Errorf("warnings: got %v, want one overflow warning", warnings)
	}
}

func TestParsePrompt_RoundTrip(t *testing.T) {
	f := newFormatter()

	terms := []string{"cat", "red car", "テレビのリモコン", "giraffe wearing a hat"}
	for _, term := range terms {
		t.Run(term, func(t *testing.T) {
			prompts, _, err := f.Format(context.Background(), []string{term}, ModeLexicon)
			if err != nil {
				t.Fatalf("Format failed: %v", err)
			}

			got, ok := ParsePrompt(prompts[0].Text)
			if !ok {
				t.Fatalf("ParsePrompt failed for %q", prompts[0].Text)
			}
			if got != prompts[0].Term {
				t.Errorf("round trip: got %q, want %q", got, prompts[0].Term)
			}
		})
	}
}

func TestParsePrompt_Invalid(t *testing.T) {
	if _, ok := ParsePrompt("an image of a cat"); ok {
		t.Error("ParsePrompt should reject non-template text")
	}
	if _, ok := ParsePrompt(""); ok {
		t.Error("ParsePrompt should reject empty text")
	}
}

func TestParseMode(t *testing.T) {
	if ParseMode("lexicon+api") != ModeLexiconAPI {
		t.Error("lexicon+api should parse to ModeLexiconAPI")
	}
	if ParseMode("lexicon") != ModeLexicon {
		t.Error("lexicon should parse to ModeLexicon")
	}
	if ParseMode("") != ModeLexicon {
		t.Error("empty mode should default to ModeLexicon")
	}
	if ModeLexiconAPI.String() != "lexicon+api" {
		t.Errorf("String: got %q", ModeLexiconAPI.String())
	}
}

func TestTexts(t *testing.T) {
	prompts := []Prompt{{Text: "a photo of a cat"}, {Text: "a photo of a dog"}}
	texts := Texts(prompts)
	if len(texts) != 2 || texts[0] != "a photo of a cat" || texts[1] != "a photo of a dog" {
		t.Errorf("Texts: got %v", texts)
	}
}
