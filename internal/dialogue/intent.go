package dialogue

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Intent is the label that drives the reply strategy of a turn.
type Intent string

const (
	IntentGreeting     Intent = "greeting"
	IntentAppointment  Intent = "appointment"
	IntentFAQ          Intent = "faq"
	IntentFallback     Intent = "fallback"
	IntentConfirmation Intent = "confirmation"
)

// BusinessInfo is the contact data used to compose fallback replies.
type BusinessInfo struct {
	Name         string
	Phone        string
	Email        string
	OpeningHours string
}

// Knowledge supplies FAQ answers and business data. Implementations must be
// read-only and safe for concurrent use.
type Knowledge interface {
	LookupFAQ(text string) (string, bool)
	BusinessInfo() BusinessInfo
}

// Classifier maps a message to greeting, appointment, faq or fallback.
type Classifier struct {
	greetings []string
	keywords  []string
	knowledge Knowledge
}

// NewClassifier builds a classifier over greeting prefixes, appointment
// keywords and an optional FAQ source.
func NewClassifier(greetings, keywords []string, knowledge Knowledge) *Classifier {
	return &Classifier{
		greetings: lowerAll(greetings),
		keywords:  lowerAll(keywords),
		knowledge: knowledge,
	}
}

// Classify applies the fixed priority greeting, appointment, faq, fallback.
func (c *Classifier) Classify(text string) Intent {
	msg := normalize(text)
	switch {
	case c.IsGreeting(msg):
		return IntentGreeting
	case c.MentionsAppointment(msg):
		return IntentAppointment
	}
	if _, ok := c.LookupFAQ(text); ok {
		return IntentFAQ
	}
	return IntentFallback
}

// IsGreeting reports whether the message starts with a greeting prefix that
// ends on a word boundary ("hi" matches "hi there", not "hilfe").
func (c *Classifier) IsGreeting(text string) bool {
	msg := normalize(text)
	for _, prefix := range c.greetings {
		if !strings.HasPrefix(msg, prefix) {
			continue
		}
		rest := msg[len(prefix):]
		if rest == "" {
			return true
		}
		r, _ := utf8.DecodeRuneInString(rest)
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// MentionsAppointment reports whether any appointment keyword occurs.
func (c *Classifier) MentionsAppointment(text string) bool {
	msg := normalize(text)
	for _, kw := range c.keywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

// LookupFAQ consults the knowledge source; empty answers count as misses.
func (c *Classifier) LookupFAQ(text string) (string, bool) {
	if c.knowledge == nil {
		return "", false
	}
	answer, ok := c.knowledge.LookupFAQ(text)
	if !ok || strings.TrimSpace(answer) == "" {
		return "", false
	}
	return answer, true
}

func lowerAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if n := normalize(w); n != "" {
			out = append(out, n)
		}
	}
	return out
}
