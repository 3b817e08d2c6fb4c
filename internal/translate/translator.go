package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// DefaultAPIURL is the endpoint used for remote translation fallback when no
// override is configured.
const DefaultAPIURL = "https://translate.googleapis.com/translate_a/single"

// DefaultAPITimeout bounds a single remote translation attempt. Exceeding it
// aborts only that attempt, never the surrounding detection request.
const DefaultAPITimeout = 10 * time.Second

// Translator resolves object terms to English using the static lexicon, with
// an optional remote-API fallback for terms the lexicon does not cover.
//
// Translation is strictly best-effort: every failure path (unknown term,
// network error, timeout, malformed response) falls back to returning the
// input unchanged. A failed translation must never fail a detection request.
type Translator struct {
	// UseAPI enables the remote fallback for lexicon misses.
	UseAPI bool

	// APIURL overrides the remote endpoint. Empty means DefaultAPIURL.
	APIURL string

	// Client is the HTTP client for remote calls. Nil means a client with
	// DefaultAPITimeout.
	Client *http.Client
}

// sortedKeys holds the lexicon keys ordered by descending length, computed
// once at init. The substring scan must visit longer keys first so that
// compound terms ("テレビのリモコン") beat their components ("テレビ").
var sortedKeys = func() []string {
	keys := make([]string, 0, len(lexicon))
	for k := range lexicon {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// Translate resolves term to English. The lookup order is fixed:
//
//  1. Exact lexicon match.
//  2. Longest lexicon key contained in term as a substring. This can match a
//     key embedded in an unrelated compound word; that is accepted behaviour,
//     longest-match-wins is the only tie-break.
//  3. Remote API, if enabled.
//
// The second return value reports whether a translation was found; when it is
// false the returned string equals the input.
func (t *Translator) Translate(ctx context.Context, term string) (string, bool) {
	if en, ok := lexicon[term]; ok {
		return en, true
	}

	for _, key := range sortedKeys {
		if strings.Contains(term, key) {
			return lexicon[key], true
		}
	}

	if t.UseAPI {
		if en, err := t.translateRemote(ctx, term); err != nil {
			log.Printf("translate: remote fallback failed for %q: %v", term, err)
		} else if en != "" {
			return en, true
		}
	}

	return term, false
}

// translateRemote performs a single remote translation attempt. The response
// format is a nested JSON array; the first element of the first tuple of the
// first array is the translated text. Anything else is a soft failure.
func (t *Translator) translateRemote(ctx context.Context, term string) (string, error) {
	apiURL := t.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", "ja")
	params.Set("tl", "en")
	params.Set("dt", "t")
	params.Set("q", term)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	client := t.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultAPITimeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	translated, err := parseAPIResponse(body)
	if err != nil {
		return "", err
	}

	translated = strings.TrimSpace(translated)
	if translated == "" || translated == term {
		return "", nil
	}
	return translated, nil
}

// parseAPIResponse extracts result[0][0][0] from the translation API's nested
// array response.
func parseAPIResponse(body []byte) (string, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal(body, &outer); err != nil {
		return "", fmt.Errorf("malformed response: %w", err)
	}
	if len(outer) == 0 {
		return "", fmt.Errorf("malformed response: empty outer array")
	}

	var tuples [][]json.RawMessage
	if err := json.Unmarshal(outer[0], &tuples); err != nil {
		return "", fmt.Errorf("malformed response: %w", err)
	}
	if len(tuples) == 0 || len(tuples[0]) == 0 {
		return "", fmt.Errorf("malformed response: empty tuple array")
	}

	var text string
	if err := json.Unmarshal(tuples[0][0], &text); err != nil {
		return "", fmt.Errorf("malformed response: %w", err)
	}
	return text, nil
}

// IsNonLatin reports whether s contains any character outside the ASCII
// range. This gates whether translation is attempted at all.
func IsNonLatin(s string) bool {
	for _, r := range s {
		if r > 127 {
			return true
		}
	}
	return false
}

// LexiconSize returns the number of entries in the static lexicon.
func LexiconSize() int {
	return len(lexicon)
}
