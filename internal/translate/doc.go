// Package translate maps Japanese object terms to English so that detection
// prompts can be phrased in the language the model was trained on.
//
// Resolution is three-tiered: an exact match against a static lexicon, a
// longest-key-first substring scan over the same lexicon (compound terms take
// precedence over their components), and an optional remote translation API
// with a bounded timeout. Every failure falls back to the original term;
// translation problems never surface as errors to callers.
package translate
