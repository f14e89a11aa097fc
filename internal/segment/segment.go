// Package segment partitions normalized text into ordered product blocks.
// An explicit ordered strategy list replaces the usual pile of if/else
// heuristics: strategies are tried in priority order per line and the first
// match owns the line, which makes priority a testable, reorderable data
// structure.
package segment

import (
	"strings"

	"github.com/complyline/ingredient-audit/internal/normalize"
)

// FallbackProductName labels the implicit product when flat-fallback
// segmentation treats the whole document as one ingredient list.
const FallbackProductName = "Unlabeled Product"

// Strategy names, reported on each block for diagnostics and tie-break
// verification in tests.
const (
	StrategyPipe         = "pipe-delimited"
	StrategyHeaderPair   = "header-pair"
	StrategyColumns      = "column-aligned"
	StrategyFlatFallback = "flat-fallback"
)

// Block is one candidate product discovered during segmentation.
type Block struct {
	Name        string
	Ingredients string
	Strategy    string
	Index       int // position in document order
}

// Strategy matches a line (and optionally its successor) and produces a
// block. Match and Apply take the current line and the next line; Apply
// reports whether it consumed the next line too.
type Strategy interface {
	Name() string
	Match(line, next string) bool
	Apply(line, next string) (Block, bool)
}

// Strategies is the fixed priority order. Pipe-delimited outranks
// header-pair: a single self-contained line is unambiguous where a
// two-line pairing is not.
var Strategies = []Strategy{
	pipeStrategy{},
	headerPairStrategy{},
	columnStrategy{},
}

// Segment partitions text into blocks in document order. Blocks with empty
// ingredient text are discarded. When no strategy matches anything and the
// text still contains a comma-separated line, the whole text becomes a
// single implicit product so non-empty input never yields zero blocks.
func Segment(text string) []Block {
	lines := strings.Split(text, "\n")
	var blocks []Block

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		next := ""
		if i+1 < len(lines) {
			next = strings.TrimSpace(lines[i+1])
		}

		for _, s := range Strategies {
			if !s.Match(line, next) {
				continue
			}
			block, consumedNext := s.Apply(line, next)
			if strings.TrimSpace(block.Ingredients) != "" {
				block.Index = len(blocks)
				blocks = append(blocks, block)
			}
			if consumedNext {
				i++
			}
			break
		}
	}

	if len(blocks) == 0 {
		if flat, ok := flatFallback(text); ok {
			blocks = append(blocks, flat)
		}
	}
	return blocks
}

// flatFallback wraps the entire text as one implicit product when it holds
// at least one ingredient-shaped (comma-separated) line.
func flatFallback(text string) (Block, bool) {
	ingredientShaped := false
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, ",") {
			ingredientShaped = true
			break
		}
	}
	if !ingredientShaped || strings.TrimSpace(text) == "" {
		return Block{}, false
	}
	return Block{
		Name:        FallbackProductName,
		Ingredients: normalize.CollapseSpace(text),
		Strategy:    StrategyFlatFallback,
	}, true
}
