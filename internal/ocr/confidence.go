package ocr

import (
	"strings"
	"unicode"
)

// naive heuristic confidence based on decoded text characteristics
func heuristicConfidence(txt string) float32 {
	// ingredient declarations are comma-dense, letter-heavy and reasonably
	// long; each signal adds a step over a small base.
	score := float32(0.2)
	if strings.Count(txt, ",") >= 3 {
		score += 0.2
	}
	if letterRatio(txt) > 0.6 {
		score += 0.2
	}
	if len(txt) > 120 {
		score += 0.1
	}
	if strings.Contains(strings.ToLower(txt), "ingredient") {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func letterRatio(txt string) float32 {
	letters, total := 0, 0
	for _, r := range txt {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if total == 0 {
		return 0
	}
	return float32(letters) / float32(total)
}
