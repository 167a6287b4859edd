package scoring

import (
	"strings"
	"unicode"
)

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {}, "from": {}, "your": {},
	"you": {}, "are": {}, "was": {}, "can": {}, "its": {}, "into": {}, "over": {}, "our": {},
	"not": {}, "but": {}, "all": {}, "any": {}, "has": {}, "have": {}, "use": {}, "using": {},
	"based": {}, "via": {}, "more": {}, "most": {}, "very": {}, "simple": {}, "easy": {},
	"written": {}, "project": {}, "library": {}, "tool": {}, "tools": {}, "framework": {},
	"which": {}, "will": {}, "also": {}, "than": {}, "then": {}, "them": {}, "they": {},
	"what": {}, "when": {}, "where": {}, "how": {}, "who": {}, "about": {}, "like": {},
}

// Tokenize lower-cases s, splits on anything that is not a letter, digit, '+' or '#',
// and drops single characters. "go", "c#" and "c++" survive.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(strings.Trim(f, "+#")) == 0 {
			continue
		}
		if len(f) > 1 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// Keywords is Tokenize without stopwords and two-letter words, as a set.
func Keywords(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range Tokenize(s) {
		if _, stop := stopwords[t]; stop || len(t) < 3 {
			continue
		}
		set[t] = struct{}{}
	}
	return set
}

// Jaccard is |a∩b| / |a∪b|; two empty sets score 0.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// SetOf builds a set from already-normalized strings.
func SetOf(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func sharedKeys(a, b map[string]struct{}) []string {
	shared := []string{}
	for k := range a {
		if _, ok := b[k]; ok {
			shared = append(shared, k)
		}
	}
	return shared
}
