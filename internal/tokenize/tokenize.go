// Package tokenize splits a product block's ingredient text into cleaned,
// ordered ingredient tokens. Order is preserved and tokens are never
// deduplicated — "sugar" and "brown sugar" may both legitimately appear.
package tokenize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/complyline/ingredient-audit/constants"
	"github.com/complyline/ingredient-audit/internal/normalize"
)

// delimiter cascade, tried in priority order; the first one producing more
// than one segment wins.
var delimiters = []*regexp.Regexp{
	regexp.MustCompile(`,`),
	regexp.MustCompile(`;`),
	regexp.MustCompile(`\.\s{2,}`),
	regexp.MustCompile(`\n`),
	regexp.MustCompile(`\t`),
	regexp.MustCompile(`\s{2,}`),
}

var (
	reBullet        = regexp.MustCompile(`^[\s\-–—•·*▪●○]+`)
	reOrdinalPrefix = regexp.MustCompile(`^\d+\s*[.)\]:]\s*`)
	reEdgePunct     = regexp.MustCompile(`^[\s.,;:!?"'()\[\]\-–—]+|[\s.,;:!?"'()\[\]\-–—]+$`)
	reNumeric       = regexp.MustCompile(`^[\d\s.,%/]+$`)
)

// Tokenize splits raw ingredient text into cleaned tokens.
func Tokenize(raw string) []string {
	segments := split(raw)
	tokens := make([]string, 0, len(segments))
	for _, seg := range segments {
		tok := cleanToken(seg)
		if keep(tok) {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func split(raw string) []string {
	for _, re := range delimiters {
		parts := re.Split(raw, -1)
		if countNonEmpty(parts) > 1 {
			return parts
		}
	}
	return []string{raw}
}

func countNonEmpty(parts []string) int {
	n := 0
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}

func cleanToken(seg string) string {
	s := strings.TrimSpace(seg)
	s = reBullet.ReplaceAllString(s, "")
	s = reOrdinalPrefix.ReplaceAllString(s, "")
	s = reEdgePunct.ReplaceAllString(s, "")
	return normalize.CollapseSpace(s)
}

// keep applies the token filters: length bounds, not purely numeric, not a
// stray conjunction.
func keep(tok string) bool {
	if tok == "" {
		return false
	}
	n := utf8.RuneCountInString(tok)
	if n < constants.MinTokenLen || n > constants.MaxTokenLen {
		return false
	}
	if reNumeric.MatchString(tok) {
		return false
	}
	if constants.IsStopword(strings.ToLower(tok)) {
		return false
	}
	// a token with no letters at all is noise even if not purely numeric
	hasLetter := false
	for _, r := range tok {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	return hasLetter
}
