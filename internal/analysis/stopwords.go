package analysis

// defaultStopwords applies when no stopwordsFile is configured.
var defaultStopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "has": {}, "he": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"or": {}, "that": {}, "the": {}, "to": {}, "was": {}, "were": {},
	"will": {}, "with": {}, "this": {}, "but": {}, "they": {},
	"have": {}, "had": {}, "what": {}, "when": {}, "where": {},
	"who": {}, "which": {}, "their": {}, "if": {}, "each": {},
	"do": {}, "not": {}, "no": {}, "so": {}, "can": {},
	"am": {}, "been": {}, "being": {}, "did": {}, "does": {},
	"her": {}, "him": {}, "his": {}, "i": {}, "me": {}, "my": {},
	"our": {}, "she": {}, "them": {}, "then": {}, "there": {},
	"these": {}, "those": {}, "we": {}, "you": {}, "your": {},
}
