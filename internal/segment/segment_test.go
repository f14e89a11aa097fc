package segment

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentPipeDelimited(t *testing.T) {
	text := strings.Join([]string{
		"Product 1: Chocolate Cookies | wheat flour, sugar, cocoa butter, eggs",
		"Product 2: Oat Crackers | oats, sunflower oil, sea salt",
	}, "\n")

	blocks := Segment(text)
	require.Len(t, blocks, 2)

	assert.Equal(t, "Chocolate Cookies", blocks[0].Name)
	assert.Equal(t, "wheat flour, sugar, cocoa butter, eggs", blocks[0].Ingredients)
	assert.Equal(t, StrategyPipe, blocks[0].Strategy)
	assert.Equal(t, 0, blocks[0].Index)

	assert.Equal(t, "Oat Crackers", blocks[1].Name)
	assert.Equal(t, StrategyPipe, blocks[1].Strategy)
	assert.Equal(t, 1, blocks[1].Index)
}

func TestSegmentHeaderPair(t *testing.T) {
	text := strings.Join([]string{
		"ITEM#2 - Vanilla Cake",
		"Ingredients: flour, sugar, vanilla extract, butter",
	}, "\n")

	blocks := Segment(text)
	require.Len(t, blocks, 1)
	assert.Equal(t, "Vanilla Cake", blocks[0].Name)
	assert.Equal(t, "flour, sugar, vanilla extract, butter", blocks[0].Ingredients)
	assert.Equal(t, StrategyHeaderPair, blocks[0].Strategy)
}

func TestSegmentHeaderPairBanner(t *testing.T) {
	text := strings.Join([]string{
		"*** Strawberry Jam ***",
		"strawberries, sugar, pectin, citric acid",
	}, "\n")

	blocks := Segment(text)
	require.Len(t, blocks, 1)
	assert.Equal(t, "Strawberry Jam", blocks[0].Name)
	assert.Equal(t, StrategyHeaderPair, blocks[0].Strategy)
}

func TestSegmentColumnAligned(t *testing.T) {
	text := "Granola Bar    oats, honey, almonds, dried cranberries"

	blocks := Segment(text)
	require.Len(t, blocks, 1)
	assert.Equal(t, "Granola Bar", blocks[0].Name)
	assert.Equal(t, "oats, honey, almonds, dried cranberries", blocks[0].Ingredients)
	assert.Equal(t, StrategyColumns, blocks[0].Strategy)
}

func TestSegmentColonSelfContainedLine(t *testing.T) {
	// a colon line whose left side is a product name, not a label
	blocks := Segment("Lemon Tea: water, black tea, lemon juice, sugar")
	require.Len(t, blocks, 1)
	assert.Equal(t, "Lemon Tea", blocks[0].Name)
	assert.Equal(t, StrategyPipe, blocks[0].Strategy)
}

func TestSegmentPipeOutranksHeaderPair(t *testing.T) {
	// the pipe line is self-contained even though the following line would
	// qualify as an ingredients line for a header-pair reading
	text := strings.Join([]string{
		"Trail Mix | peanuts, raisins, chocolate chips",
		"almonds, cashews, dried mango",
	}, "\n")

	blocks := Segment(text)
	require.NotEmpty(t, blocks)
	assert.Equal(t, StrategyPipe, blocks[0].Strategy)
	assert.Equal(t, "Trail Mix", blocks[0].Name)
}

func TestSegmentColumnRowsNotSwallowedByHeaderPair(t *testing.T) {
	// every numbered tab-separated line is its own product; the numbering
	// prefix must not turn a line into a header that consumes its neighbor
	text := strings.Join([]string{
		"1. Cookies\tflour, sugar, butter",
		"2. Soda\twater, sugar, caramel color",
		"3. Jam\tstrawberries, sugar, pectin",
	}, "\n")

	blocks := Segment(text)
	require.Len(t, blocks, 3)
	for i, want := range []string{"Cookies", "Soda", "Jam"} {
		assert.Equal(t, want, blocks[i].Name)
		assert.Equal(t, StrategyColumns, blocks[i].Strategy)
		assert.Equal(t, i, blocks[i].Index)
	}
	assert.NotContains(t, blocks[0].Ingredients, "Soda")
}

func TestSegmentBareTitlePairsWithLabeledIngredients(t *testing.T) {
	// a plain title has no numbering or banner, but an explicit label on
	// the next line still binds the pair
	text := "Strawberry Jam\nIngredients: strawberries, sugar, pectin"

	blocks := Segment(text)
	require.Len(t, blocks, 1)
	assert.Equal(t, "Strawberry Jam", blocks[0].Name)
	assert.Equal(t, "strawberries, sugar, pectin", blocks[0].Ingredients)
	assert.Equal(t, StrategyHeaderPair, blocks[0].Strategy)
}

func TestSegmentBareTitleNeedsTheLabel(t *testing.T) {
	// without the label the pairing is too ambiguous; the comma line falls
	// through and the fallback owns the document
	blocks := Segment("Strawberry Jam\nstrawberries, sugar, pectin")
	require.Len(t, blocks, 1)
	assert.Equal(t, StrategyFlatFallback, blocks[0].Strategy)
}

func TestSegmentFlatFallback(t *testing.T) {
	blocks := Segment("water, sugar, citric acid, natural flavor")
	require.Len(t, blocks, 1)
	assert.Equal(t, FallbackProductName, blocks[0].Name)
	assert.Equal(t, StrategyFlatFallback, blocks[0].Strategy)
	assert.Contains(t, blocks[0].Ingredients, "citric acid")
}

func TestSegmentNoCommaNoFallback(t *testing.T) {
	// prose with no ingredient-shaped line yields nothing
	blocks := Segment("This document describes our quality policy.\nNothing else.")
	assert.Empty(t, blocks)
}

func TestSegmentEmptyInput(t *testing.T) {
	assert.Empty(t, Segment(""))
	assert.Empty(t, Segment("   \n  \n"))
}

func TestSegmentDiscardsEmptyIngredientBlocks(t *testing.T) {
	// pipe line with only whitespace after the separator is discarded, but
	// a later valid line still produces a block with sequential indices
	text := strings.Join([]string{
		"Product 3: Plain Water |   ",
		"Product 4: Soda | water, sugar, caramel color",
	}, "\n")

	blocks := Segment(text)
	require.Len(t, blocks, 1)
	assert.Equal(t, "Soda", blocks[0].Name)
	assert.Equal(t, 0, blocks[0].Index)
}

func TestSegmentPreservesDocumentOrder(t *testing.T) {
	var lines []string
	for i := 1; i <= 6; i++ {
		lines = append(lines, fmt.Sprintf("Product %d: Item%02d | flour, sugar, salt", i, i))
	}
	blocks := Segment(strings.Join(lines, "\n"))
	require.Len(t, blocks, 6)
	for i, b := range blocks {
		assert.Equal(t, i, b.Index)
		assert.Equal(t, fmt.Sprintf("Item%02d", i+1), b.Name)
	}
}

func TestSegmentMixedStrategiesInOneDocument(t *testing.T) {
	text := strings.Join([]string{
		"Product 1: Cookies | flour, sugar, butter",
		"ITEM#2 - Cake",
		"Ingredients: flour, eggs, milk",
		"Granola Bar    oats, honey, almonds",
	}, "\n")

	blocks := Segment(text)
	require.Len(t, blocks, 3)
	assert.Equal(t, StrategyPipe, blocks[0].Strategy)
	assert.Equal(t, StrategyHeaderPair, blocks[1].Strategy)
	assert.Equal(t, StrategyColumns, blocks[2].Strategy)
	assert.Equal(t, []int{0, 1, 2}, []int{blocks[0].Index, blocks[1].Index, blocks[2].Index})
}

func TestCleanProductName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Product 1: Chocolate Cookies", "Chocolate Cookies"},
		{"ITEM#2 - Vanilla Cake", "Vanilla Cake"},
		{"#3 — Lemon Tart", "Lemon Tart"},
		{"2) Rye Bread", "Rye Bread"},
		{"*** Strawberry Jam ***", "Strawberry Jam"},
		{"=== Apple Pie ===", "Apple Pie"},
		{"No 5. Ginger Ale", "Ginger Ale"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanProductName(tt.in), "input %q", tt.in)
	}
}
