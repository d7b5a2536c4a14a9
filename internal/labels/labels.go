// Package labels normalizes user- and model-supplied classification labels.
package labels

import (
	"strings"
	"unicode"
)

// Preprocess normalizes and deduplicates labels. Each label is trimmed,
// lower-cased and has its inner whitespace and underscores joined with
// hyphens ("Customer Service" becomes "customer-service"). Symbols and
// non-Latin scripts are kept as written, so "C++" and "C#" stay distinct.
// Labels that normalize to nothing are dropped and the first occurrence
// of each label wins. The result is deterministic for any input and
// never nil.
func Preprocess(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, l := range in {
		n := Normalize(l)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// Normalize returns the canonical form of a single label.
func Normalize(label string) string {
	words := strings.FieldsFunc(strings.ToLower(label), func(r rune) bool {
		return r == '_' || unicode.IsSpace(r)
	})
	return strings.Join(words, "-")
}

// Contains reports whether label, once normalized, is one of set.
func Contains(set []string, label string) bool {
	n := Normalize(label)
	for _, s := range set {
		if s == n {
			return true
		}
	}
	return false
}

// Split parses a comma-separated label list as typed on the command line.
func Split(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return Preprocess(strings.Split(s, ","))
}
