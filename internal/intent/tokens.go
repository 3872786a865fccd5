package intent

import (
	"strings"
	"unicode"
)

// stopwords is the closed list removed from prompt keywords: articles and
// pronouns, common change verbs, and generic code terms that carry no
// domain signal.
var stopwords = map[string]struct{}{
	// articles, pronouns, connectives
	"a": {}, "an": {}, "the": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"i": {}, "we": {}, "you": {}, "it": {}, "its": {}, "my": {}, "our": {}, "your": {},
	"to": {}, "of": {}, "in": {}, "on": {}, "for": {}, "with": {}, "and": {}, "or": {},
	"is": {}, "are": {}, "be": {}, "was": {}, "were": {}, "do": {}, "does": {},
	"can": {}, "could": {}, "should": {}, "would": {}, "will": {}, "if": {}, "when": {},
	"what": {}, "how": {}, "all": {}, "some": {}, "any": {}, "not": {}, "no": {},
	// common change verbs
	"add": {}, "adds": {}, "adding": {}, "remove": {}, "removes": {}, "removing": {},
	"change": {}, "changes": {}, "changing": {}, "changed": {}, "use": {}, "uses": {}, "using": {},
	"make": {}, "makes": {}, "making": {}, "update": {}, "updates": {}, "updating": {},
	"modify": {}, "delete": {}, "deleting": {}, "rename": {}, "renaming": {},
	"refactor": {}, "refactoring": {}, "fix": {}, "fixing": {}, "want": {}, "need": {},
	// generic code terms
	"file": {}, "files": {}, "function": {}, "functions": {}, "method": {}, "methods": {},
	"class": {}, "classes": {}, "module": {}, "modules": {}, "code": {}, "codebase": {},
	"type": {}, "types": {}, "variable": {}, "variables": {}, "symbol": {}, "symbols": {},
	"project": {}, "new": {}, "old": {},
}

// minTokenLen drops fragments too short to carry meaning
const minTokenLen = 2

// tokenize splits an identifier or path on camel-case boundaries, snake and
// kebab separators, dots, and slashes, lowercasing the result and dropping
// sub-length fragments.
func tokenize(s string) []string {
	var tokens []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() >= minTokenLen {
			tokens = append(tokens, strings.ToLower(cur.String()))
		}
		cur.Reset()
	}

	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.' || r == '/' || r == '\\' || r == '#':
			flush()
		case unicode.IsUpper(r):
			// camelCase boundary: split before an upper that follows a lower,
			// or before the last upper of an acronym run (HTTPServer).
			if i > 0 && (unicode.IsLower(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsUpper(runes[i-1]) && unicode.IsLower(runes[i+1]))) {
				flush()
			}
			cur.WriteRune(r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			cur.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}

// promptKeywords extracts domain keywords from a raw prompt: split on
// non-alphanumerics, lowercase, drop stopwords and sub-length fragments.
func promptKeywords(prompt string) []string {
	var keywords []string
	var cur strings.Builder
	flush := func() {
		word := strings.ToLower(cur.String())
		cur.Reset()
		if len(word) < minTokenLen {
			return
		}
		if _, stop := stopwords[word]; stop {
			return
		}
		keywords = append(keywords, word)
	}
	for _, r := range prompt {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return keywords
}

// jaccard computes set overlap of two token lists
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, t := range b {
		setB[t] = struct{}{}
	}
	inter := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
