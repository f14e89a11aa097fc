package constants

// Ingredient token bounds. Tokens outside [MinTokenLen, MaxTokenLen] are
// discarded during tokenization.
const (
	MinTokenLen = 2
	MaxTokenLen = 99
)

// ConjunctionStoplist holds tokens that are connective noise rather than
// ingredients. Includes the common non-English forms that survive
// comma-splitting of multinational labels.
var ConjunctionStoplist = map[string]struct{}{
	"and":  {},
	"or":   {},
	"etc":  {},
	"with": {},
	"et":   {},
	"und":  {},
	"y":    {},
	"e":    {},
	"en":   {},
	"og":   {},
}

// IsStopword reports whether a lowercased token is connective noise.
func IsStopword(tok string) bool {
	_, ok := ConjunctionStoplist[tok]
	return ok
}
