package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/owlvision/owlvision-mcp/internal/translate"
)

// promptTemplate is the canonical phrasing the detection model responds to
// best. Bare nouns score noticeably worse than full phrases.
const promptTemplate = "a photo of a %s"

// promptPrefix is the literal prefix of promptTemplate, used by ParsePrompt.
const promptPrefix = "a photo of a "

// MaxQueryLen is the maximum length of a single query in runes; longer
// queries are truncated with a warning.
const MaxQueryLen = 50

// MinQueryLen is the minimum length of a single query in runes.
const MinQueryLen = 2

// MaxPrompts caps how many prompts one request may carry. Each prompt costs a
// text-encoder pass downstream, so the list is bounded.
const MaxPrompts = 5

// Mode selects how non-Latin queries are translated.
type Mode int

const (
	// ModeLexicon uses only the static lexicon.
	ModeLexicon Mode = iota
	// ModeLexiconAPI additionally allows the remote translation API on
	// lexicon misses.
	ModeLexiconAPI
)

// ParseMode maps a wire-level mode string to a Mode. Unrecognized values
// (including "") fall back to ModeLexicon.
func ParseMode(s string) Mode {
	if s == "lexicon+api" {
		return ModeLexiconAPI
	}
	return ModeLexicon
}

func (m Mode) String() string {
	if m == ModeLexiconAPI {
		return "lexicon+api"
	}
	return "lexicon"
}

// Prompt is a single detector-ready prompt derived from one user query.
type Prompt struct {
	// Text is the full prompt handed to the model, e.g. "a photo of a cat".
	Text string `json:"text"`

	// Query is the original user query after trimming and truncation.
	Query string `json:"query"`

	// Term is the phrase wrapped into Text: the English translation when one
	// was found, otherwise Query itself.
	Term string `json:"term"`

	// Translated reports whether Term differs from Query because of
	// translation.
	Translated bool `json:"translated"`
}

// Label returns the caption text for detections matched to this prompt. A
// translated prompt shows both forms, e.g. "猫(cat)".
func (p Prompt) Label() string {
	if p.Translated {
		return fmt.Sprintf("%s(%s)", p.Query, p.Term)
	}
	return p.Query
}

// Formatter turns raw user queries into a bounded set of detector-ready
// prompts.
type Formatter struct {
	Translator *translate.Translator
}

// Format normalizes queries into at most MaxPrompts prompts, preserving input
// order. Per query: whitespace is trimmed, overlong queries are truncated to
// MaxQueryLen runes, non-Latin queries are translated (mode selects whether
// the remote API may be used), and the resulting term is wrapped in the
// canonical template.
//
// The returned warnings describe lossy normalization steps (truncation,
// prompt-cap overflow) for the caller to surface. An empty query list, or any
// blank or too-short query, is a validation error.
func (f *Formatter) Format(ctx context.Context, queries []string, mode Mode) ([]Prompt, []string, error) {
	if len(queries) == 0 {
		return nil, nil, fmt.Errorf("no queries given: at least one text query is required")
	}

	var warnings []string
	prompts := make([]Prompt, 0, len(queries))

	for i, raw := range queries {
		q := strings.TrimSpace(raw)
		if q == "" {
			return nil, nil, fmt.Errorf("query %d is empty", i+1)
		}
		if len([]rune(q)) < MinQueryLen {
			return nil, nil, fmt.Errorf("query %q is too short: need at least %d characters", q, MinQueryLen)
		}

		if runes := []rune(q); len(runes) > MaxQueryLen {
			q = string(runes[:MaxQueryLen])
			warnings = append(warnings, fmt.Sprintf("query %d truncated to %d characters: %q", i+1, MaxQueryLen, q))
		}

		prompts = append(prompts, f.buildPrompt(ctx, q, mode))
	}

	if len(prompts) > MaxPrompts {
		prompts = prompts[:MaxPrompts]
		warnings = append(warnings, fmt.Sprintf("too many queries: keeping the first %d", MaxPrompts))
	}

	return prompts, warnings, nil
}

// buildPrompt wraps a single normalized query. Translation is attempted only
// for non-Latin queries, and never fails: on a miss the query itself is
// wrapped unchanged.
func (f *Formatter) buildPrompt(ctx context.Context, q string, mode Mode) Prompt {
	term := q
	translated := false

	if translate.IsNonLatin(q) && f.Translator != nil {
		tr := *f.Translator
		tr.UseAPI = tr.UseAPI && mode == ModeLexiconAPI
		if en, ok := tr.Translate(ctx, q); ok {
			term = en
			translated = true
		}
	}

	return Prompt{
		Text:       fmt.Sprintf(promptTemplate, term),
		Query:      q,
		Term:       term,
		Translated: translated,
	}
}

// Texts returns just the prompt strings, in order.
func Texts(prompts []Prompt) []string {
	texts := make([]string, len(prompts))
	for i, p := range prompts {
		texts[i] = p.Text
	}
	return texts
}

// ParsePrompt recovers the wrapped term from a prompt produced by Format.
// The second return value is false if text does not follow the template.
func ParsePrompt(text string) (string, bool) {
	if !strings.HasPrefix(text, promptPrefix) {
		return "", false
	}
	return text[len(promptPrefix):], true
}
