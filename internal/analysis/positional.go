package analysis

import (
	"regexp"
	"strings"
)

// positionalWord matches a word of Unicode letters, marks, digits and
// underscores, optionally joined to one more word by a single hyphen
// ("state-of-the-art" yields "state-of" and "the-art").
var positionalWord = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+(?:-[\p{L}\p{M}\p{N}_]+)?`)

// PositionalTokens is the case-folded tokenizer behind the positional index.
// Stop-words are kept and nothing is stemmed.
func PositionalTokens(text string) []string {
	tokens := positionalWord.FindAllString(strings.ToLower(text), -1)
	if tokens == nil {
		return []string{}
	}
	return tokens
}
