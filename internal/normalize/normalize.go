// Package normalize cleans raw extracted text before segmentation. It runs
// identically for every source format so the segmenter never special-cases
// extractor artifacts. Line structure is preserved — the segmenter works per
// line — while full whitespace collapsing is applied to the name and
// ingredient strings after segmentation via CollapseSpace.
package normalize

import (
	"regexp"
	"strings"
)

// boilerplate phrases that commonly precede an ingredient list, in the
// supported label languages. Matched case-insensitively at line starts.
var reBoilerplate = regexp.MustCompile(`(?i)^\s*(ingredients?\s+list|liste\s+des\s+ingr[ée]dients|ingredients?|ingr[ée]dients?|zutaten|ingredientes|ingredienti|sk[lł]adniki|contains|made\s+with|bestandteile)\s*[:：]\s*`)

// bracketed/parenthetical annotations; applied repeatedly so nested
// sub-ingredient parentheses collapse outward.
var reBracketed = regexp.MustCompile(`\([^()]*\)|\[[^\[\]]*\]`)

var reBlankRun = regexp.MustCompile(`\n{3,}`)

// Clean strips annotations and boilerplate and tidies line structure.
func Clean(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\f", "\n")

	for {
		next := reBracketed.ReplaceAllString(s, " ")
		if next == s {
			break
		}
		s = next
	}

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = reBlankRun.ReplaceAllString(s, "\n\n")
	s = strings.TrimSpace(s)

	// leading boilerplate: only the document head, so in-document labels
	// stay visible to the header-pair segmentation strategy
	s = reBoilerplate.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// StripLabel removes an ingredient-list label prefix from a single line.
// Used by segmentation strategies once the label has served as structure.
func StripLabel(line string) string {
	return strings.TrimSpace(reBoilerplate.ReplaceAllString(line, ""))
}

// HasLabel reports whether a line starts with an ingredient-list label.
func HasLabel(line string) bool {
	return reBoilerplate.MatchString(line)
}

var reSpaceRun = regexp.MustCompile(`\s+`)

// CollapseSpace folds all whitespace runs to single spaces and trims.
func CollapseSpace(s string) string {
	return strings.TrimSpace(reSpaceRun.ReplaceAllString(s, " "))
}
