package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanStripsLeadingBoilerplate(t *testing.T) {
	got := Clean("Ingredients: wheat flour, sugar, salt")
	assert.Equal(t, "wheat flour, sugar, salt", got)
}

func TestCleanKeepsInDocumentLabels(t *testing.T) {
	// a label past the document head is structure for segmentation,
	// not boilerplate
	got := Clean("Product A\nIngredients: flour, sugar")
	assert.Equal(t, "Product A\nIngredients: flour, sugar", got)
}

func TestCleanRemovesNestedBrackets(t *testing.T) {
	got := Clean("sugar (cane (organic)), salt [sea], water")
	assert.NotContains(t, got, "(")
	assert.NotContains(t, got, "[")
	assert.Contains(t, got, "sugar")
	assert.Contains(t, got, "salt")
}

func TestCleanNormalizesLineEndings(t *testing.T) {
	got := Clean("one\r\ntwo\rthree\f_page")
	assert.Equal(t, "one\ntwo\nthree\n_page", got)
}

func TestCleanCollapsesBlankRuns(t *testing.T) {
	got := Clean("a\n\n\n\n\nb")
	assert.Equal(t, "a\n\nb", got)
}

func TestCleanPreservesColumnGaps(t *testing.T) {
	// two-plus-space runs inside a line are segmentation structure
	got := Clean("Granola Bar    oats, honey, almonds")
	assert.Equal(t, "Granola Bar    oats, honey, almonds", got)
}

func TestStripLabel(t *testing.T) {
	assert.Equal(t, "flour, sugar", StripLabel("Ingredients: flour, sugar"))
	assert.Equal(t, "flour, sugar", StripLabel("INGRÉDIENTS: flour, sugar"))
	assert.Equal(t, "Mehl, Zucker", StripLabel("Zutaten: Mehl, Zucker"))
	assert.Equal(t, "no label here", StripLabel("no label here"))
}

func TestHasLabel(t *testing.T) {
	assert.True(t, HasLabel("Ingredients: water"))
	assert.True(t, HasLabel("ingredientes: agua"))
	assert.True(t, HasLabel("Contains: milk, soy"))
	assert.False(t, HasLabel("Chocolate Cookies"))
	assert.False(t, HasLabel("water, sugar"))
}

func TestCollapseSpace(t *testing.T) {
	assert.Equal(t, "a b c", CollapseSpace("  a\t b \n c  "))
	assert.Equal(t, "", CollapseSpace(" \t\n "))
}
