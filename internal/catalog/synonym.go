package catalog

import (
	"regexp"
	"strings"
)

// synonyms widens catalog nouns to related terms. Entries are listed one
// direction at a time and are not mirrored automatically.
var synonyms = map[string][]string{
	"ring":       {"band", "solitaire", "halo", "setting"},
	"rings":      {"bands", "solitaire", "halo", "settings"},
	"band":       {"ring", "wedding"},
	"bands":      {"rings", "wedding"},
	"necklace":   {"pendant", "choker", "chain", "lariat", "collar"},
	"necklaces":  {"pendants", "chokers", "chains", "lariats", "collars"},
	"choker":     {"collar", "necklace"},
	"pendant":    {"necklace", "charm"},
	"chain":      {"necklace"},
	"earring":    {"stud", "hoop", "drop", "huggie"},
	"earrings":   {"studs", "hoops", "drops", "huggies"},
	"bracelet":   {"bangle", "cuff", "tennis"},
	"bracelets":  {"bangles", "cuffs", "tennis"},
	"bangle":     {"bracelet"},
	"diamond":    {"brilliant", "solitaire"},
	"diamonds":   {"brilliants", "solitaires"},
	"gem":        {"gemstone", "sapphire", "ruby", "emerald"},
	"gemstone":   {"gem", "sapphire", "ruby", "emerald"},
	"gemstones":  {"gems", "sapphires", "rubies", "emeralds"},
	"engagement": {"solitaire", "halo", "proposal"},
	"wedding":    {"band", "bridal"},
	"men":        {"mens", "gents"},
	"mens":       {"men", "gents"},
}

// ExpandTerms splits a free-text query on whitespace, lowercases the tokens
// and returns them together with their synonyms. The result is deduplicated
// and keeps first-seen order. An empty query yields nil.
func ExpandTerms(q string) []string {
	tokens := strings.Fields(strings.ToLower(q))
	if len(tokens) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(tokens)*4)
	terms := make([]string, 0, len(tokens)*4)
	add := func(t string) {
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		terms = append(terms, t)
	}

	for _, t := range tokens {
		add(t)
	}
	for _, t := range tokens {
		for _, s := range synonyms[t] {
			add(s)
		}
	}
	return terms
}

// Pattern builds a case-insensitive alternation matching any of terms. It
// returns an empty string when terms is empty.
func Pattern(terms []string) string {
	if len(terms) == 0 {
		return ""
	}
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return "(?i)(" + strings.Join(quoted, "|") + ")"
}
