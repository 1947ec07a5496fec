package dialogue

import (
	"strings"
	"unicode"
)

// Confirmation is the outcome of checking a message for yes/no.
type Confirmation string

const (
	ConfirmationYes     Confirmation = "yes"
	ConfirmationNo      Confirmation = "no"
	ConfirmationNeither Confirmation = "neither"
)

// Recognizer classifies a message as yes, no or neither using fixed word
// lists. Words and phrases only match on whole-token boundaries.
type Recognizer struct {
	affirmatives []string
	negatives    []string
}

// NewRecognizer builds a recognizer from affirmative and negative lists.
func NewRecognizer(affirmatives, negatives []string) *Recognizer {
	return &Recognizer{
		affirmatives: normalizeWords(affirmatives),
		negatives:    normalizeWords(negatives),
	}
}

// negationTokens veto an affirmative: "nicht klar" or "gar nicht richtig"
// must never send a request.
var negationTokens = map[string]struct{}{
	"nicht": {}, "kein": {}, "keine": {}, "keinen": {}, "nie": {}, "niemals": {},
}

// Recognize returns yes when the message equals, starts with or ends with an
// affirmative phrase, and no for the negative list. Negatives are checked
// first so "ja, nein" never confirms a send. A message carrying a negation
// token is never yes.
func (r *Recognizer) Recognize(text string) Confirmation {
	if r == nil {
		return ConfirmationNeither
	}
	msg := tokenize(text)
	if msg == "" {
		return ConfirmationNeither
	}
	if matchesAny(msg, r.negatives) {
		return ConfirmationNo
	}
	if matchesAny(msg, r.affirmatives) && !negated(msg) {
		return ConfirmationYes
	}
	return ConfirmationNeither
}

func negated(msg string) bool {
	for _, tok := range strings.Fields(msg) {
		if _, ok := negationTokens[tok]; ok {
			return true
		}
	}
	return false
}

func matchesAny(msg string, phrases []string) bool {
	for _, p := range phrases {
		if msg == p || strings.HasPrefix(msg, p+" ") || strings.HasSuffix(msg, " "+p) {
			return true
		}
	}
	return false
}

// tokenize lower-cases, turns punctuation into spaces and collapses runs of
// whitespace, so "Ja, gerne!" becomes "ja gerne".
func tokenize(text string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)
	return strings.Join(strings.Fields(mapped), " ")
}

func normalizeWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if t := tokenize(w); t != "" {
			out = append(out, t)
		}
	}
	return out
}
