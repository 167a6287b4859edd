package search

import (
	"sort"
	"strings"

	"github.com/thep200/oss-finder/internal/scoring"
)

// synonyms maps a query word to interchangeable spellings.
var synonyms = map[string][]string{
	"js":         {"javascript"},
	"javascript": {"js", "node", "nodejs"},
	"ts":         {"typescript"},
	"typescript": {"ts"},
	"py":         {"python"},
	"python":     {"py"},
	"golang":     {"go"},
	"go":         {"golang"},
	"rb":         {"ruby"},
	"k8s":        {"kubernetes"},
	"kubernetes": {"k8s"},
	"ml":         {"machine-learning", "ai"},
	"ai":         {"artificial-intelligence", "machine-learning", "llm"},
	"llm":        {"ai", "gpt"},
	"db":         {"database"},
	"database":   {"db", "sql"},
	"cli":        {"command-line", "terminal"},
	"terminal":   {"cli", "shell"},
	"docs":       {"documentation"},
	"ui":         {"interface", "frontend"},
	"ux":         {"design", "ui"},
	"api":        {"rest", "graphql"},
	"game":       {"gamedev", "games"},
	"beginner":   {"good-first-issue", "first-timers-only"},
}

// clusters groups a broad area with the technologies usually tagged under it.
var clusters = map[string][]string{
	"frontend":      {"ui", "react", "vue", "angular", "svelte", "web", "css", "javascript", "typescript"},
	"backend":       {"api", "server", "database", "microservices", "rest", "graphql"},
	"devops":        {"docker", "kubernetes", "ci", "cd", "terraform", "ansible", "monitoring"},
	"mobile":        {"android", "ios", "flutter", "react-native", "swift", "kotlin"},
	"data":          {"data-science", "analytics", "pandas", "etl", "visualization"},
	"ai":            {"machine-learning", "deep-learning", "nlp", "llm", "pytorch", "tensorflow"},
	"security":      {"cryptography", "authentication", "vulnerability", "pentest"},
	"web":           {"html", "css", "javascript", "http", "frontend"},
	"systems":       {"operating-system", "kernel", "embedded", "rust", "c"},
	"blockchain":    {"ethereum", "web3", "crypto", "solidity"},
	"gamedev":       {"game", "unity", "godot", "game-engine"},
	"documentation": {"docs", "markdown", "static-site"},
	"testing":       {"test", "unit-testing", "e2e", "jest"},
}

// QueryTokens tokenizes a query and drops words of two characters or fewer, except short
// words the expansion tables know ("go", "ui", "ai", "c#").
func QueryTokens(query string) []string {
	raw := scoring.Tokenize(query)
	tokens := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, t := range raw {
		if len(t) <= 2 && !known(t) {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tokens = append(tokens, t)
	}
	return tokens
}

func known(t string) bool {
	if _, ok := synonyms[t]; ok {
		return true
	}
	_, ok := clusters[t]
	return ok || t == "c#"
}

// Expand returns token followed by its synonyms and cluster members, without duplicates.
func Expand(token string) []string {
	out := []string{token}
	seen := map[string]struct{}{token: {}}
	add := func(values []string) {
		for _, v := range values {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	add(synonyms[token])
	add(clusters[token])
	return out
}

// Vocabulary is every term the expansion tables know, sorted.
func Vocabulary() []string {
	set := make(map[string]struct{})
	for k, vs := range synonyms {
		set[k] = struct{}{}
		for _, v := range vs {
			set[v] = struct{}{}
		}
	}
	for k, vs := range clusters {
		set[k] = struct{}{}
		for _, v := range vs {
			set[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, strings.ToLower(k))
	}
	sort.Strings(out)
	return out
}
