// Package grader normalizes and compares answer strings. Pure
// functions, no state.
package grader

import (
	"sort"
	"strings"
)

// Normalize canonicalizes an answer string: uppercase, all whitespace
// stripped. A comma marks a multi-select answer, whose tokens are
// de-duplicated and sorted so that "b, a" and "A,B" compare equal.
// Normalize is idempotent.
func Normalize(answer string) string {
	cleaned := strings.ToUpper(strings.Join(strings.Fields(answer), ""))

	if !strings.Contains(cleaned, ",") {
		return cleaned
	}

	seen := make(map[string]struct{})
	tokens := make([]string, 0, 4)
	for _, tok := range strings.Split(cleaned, ",") {
		if tok == "" {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)

	return strings.Join(tokens, ",")
}

// IsCorrect reports whether the user's answer matches the correct
// answer after normalization. Either side empty is always incorrect.
func IsCorrect(userAnswer, correctAnswer string) bool {
	if userAnswer == "" || correctAnswer == "" {
		return false
	}
	return Normalize(userAnswer) == Normalize(correctAnswer)
}
