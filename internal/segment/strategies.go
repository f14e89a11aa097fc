package segment

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/complyline/ingredient-audit/internal/normalize"
)

// numbering/labeling conventions on product headers: "Product 1:",
// "ITEM#2 -", "1.", "2)", "#3 —".
var reHeaderPrefix = regexp.MustCompile(`(?i)^(?:(?:product|item|no)\s*[#.]?\s*\d+|#\d+|\d+)\s*[:.\-–—)]*\s*`)

// decorative banner wrapping: "*** Name ***", "=== Name ===".
var reBannerEdge = regexp.MustCompile(`^[*=~#\-–—_\s]+|[*=~#\-–—_\s]+$`)

// two runs separated by a tab or two-plus spaces
var reColumnGap = regexp.MustCompile(`\t|\s{2,}`)

// cleanProductName strips numbering prefixes and banner decoration from a
// raw header, collapsing leftover whitespace.
func cleanProductName(raw string) string {
	s := reBannerEdge.ReplaceAllString(raw, "")
	s = reHeaderPrefix.ReplaceAllString(s, "")
	return normalize.CollapseSpace(s)
}

// looksLikeHeader reports whether a line reads as a product header on its
// own: a numbering convention or a banner wrap. Bare title lines are
// handled separately because they only count when the following line is
// explicitly labeled.
func looksLikeHeader(line string) bool {
	if normalize.HasLabel(line) {
		return false
	}
	if reHeaderPrefix.MatchString(line) {
		return true
	}
	trimmed := reBannerEdge.ReplaceAllString(line, "")
	return trimmed != line && strings.TrimSpace(trimmed) != ""
}

// looksLikeIngredients reports whether a line reads as an ingredient
// declaration: an explicit label, or a comma-dense list.
func looksLikeIngredients(line string) bool {
	if normalize.HasLabel(line) {
		return true
	}
	return strings.Count(line, ",") >= 2
}

// pipeStrategy owns single lines of the form `Name | Ingredients` or
// `Name : Ingredients`, the unambiguous self-contained case.
type pipeStrategy struct{}

func (pipeStrategy) Name() string { return StrategyPipe }

func (pipeStrategy) Match(line, _ string) bool {
	if name, ings, ok := splitPipe(line); ok {
		return name != "" && ings != ""
	}
	return false
}

func (pipeStrategy) Apply(line, _ string) (Block, bool) {
	name, ings, _ := splitPipe(line)
	return Block{
		Name:        cleanProductName(name),
		Ingredients: normalize.CollapseSpace(ings),
		Strategy:    StrategyPipe,
	}, false
}

// splitPipe separates name from ingredients on a pipe, or on the first
// colon when the left side is not itself an ingredients label ("Ingredients:
// flour, ..." belongs to the header-pair strategy, not here).
func splitPipe(line string) (name, ingredients string, ok bool) {
	if i := strings.IndexByte(line, '|'); i >= 0 {
		return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:]), true
	}
	i := strings.IndexAny(line, ":：")
	if i < 0 {
		return "", "", false
	}
	sep, _ := utf8.DecodeRuneInString(line[i:])
	left := strings.TrimSpace(line[:i])
	right := strings.TrimSpace(line[i+utf8.RuneLen(sep):])
	if left == "" || right == "" {
		return "", "", false
	}
	if normalize.HasLabel(left + ":") {
		return "", "", false
	}
	// the right side must read as a list, not prose after a stray colon
	if !strings.Contains(right, ",") {
		return "", "", false
	}
	return left, right, true
}

// headerPairStrategy consumes a product header line followed by an
// ingredients line as one block.
type headerPairStrategy struct{}

func (headerPairStrategy) Name() string { return StrategyHeaderPair }

func (headerPairStrategy) Match(line, next string) bool {
	if next == "" || selfContained(next) {
		return false
	}
	if looksLikeHeader(line) {
		return looksLikeIngredients(next)
	}
	return bareTitleLine(line) && normalize.HasLabel(next)
}

// selfContained reports whether a line is itself a complete product
// declaration for one of the single-line strategies. Such a line is never
// another product's ingredients.
func selfContained(line string) bool {
	if _, _, ok := splitPipe(line); ok {
		return true
	}
	if name, rest, ok := splitColumns(line); ok && name != "" && strings.Contains(rest, ",") {
		return true
	}
	return false
}

// bareTitleLine is a short, unlabeled, comma-free line with at least one
// letter: a plausible product title when the following line carries an
// explicit ingredients label.
func bareTitleLine(line string) bool {
	if normalize.HasLabel(line) || strings.Contains(line, ",") {
		return false
	}
	if len(strings.Fields(line)) > 8 {
		return false
	}
	for _, r := range line {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func (headerPairStrategy) Apply(line, next string) (Block, bool) {
	return Block{
		Name:        cleanProductName(line),
		Ingredients: normalize.CollapseSpace(normalize.StripLabel(next)),
		Strategy:    StrategyHeaderPair,
	}, true
}

// columnStrategy owns lines with two column-aligned runs where the second
// run is itself comma-delimited (a list, not prose).
type columnStrategy struct{}

func (columnStrategy) Name() string { return StrategyColumns }

func (columnStrategy) Match(line, _ string) bool {
	name, ings, ok := splitColumns(line)
	return ok && name != "" && strings.Contains(ings, ",")
}

func (columnStrategy) Apply(line, _ string) (Block, bool) {
	name, ings, _ := splitColumns(line)
	return Block{
		Name:        cleanProductName(name),
		Ingredients: normalize.CollapseSpace(ings),
		Strategy:    StrategyColumns,
	}, false
}

func splitColumns(line string) (name, rest string, ok bool) {
	loc := reColumnGap.FindStringIndex(line)
	if loc == nil {
		return "", "", false
	}
	return strings.TrimSpace(line[:loc[0]]), strings.TrimSpace(line[loc[1]:]), true
}
