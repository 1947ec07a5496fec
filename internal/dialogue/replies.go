package dialogue

import (
	"math/rand/v2"
	"strings"
	"sync"
)

// Fixed sentences of the confirmation flow.
const (
	ReplySending         = "Super, ich sende deine Terminanfrage jetzt an unser Team."
	ReplyNotSending      = "Alles klar, ich sende nichts. Sag mir einfach Bescheid, wenn du einen neuen Termin möchtest."
	ReplyConfirmReminder = "Bitte antworte mit „ja“, um den Termin an unser Team zu senden, oder mit „nein“, um abzubrechen."
	ReplyApology         = "Entschuldigung, da ist ein Fehler passiert. Bitte versuche es noch einmal."
)

// Templates holds the reply variants per decision kind. Placeholders
// {name}, {phone}, {email} and {hours} are filled from BusinessInfo.
type Templates map[DecisionKind][]string

// DefaultTemplates returns the salon reply variants.
func DefaultTemplates() Templates {
	return Templates{
		DecisionGreeting: {
			"Hallo, herzlich willkommen! Ich bin Ihr persönlicher Call-Agent. Wie kann ich Ihnen helfen?",
			"Hallo und willkommen bei {name}! Möchten Sie einen Termin vereinbaren oder haben Sie eine Frage?",
			"Hi, schön dass Sie da sind! Ich beantworte gern Fragen oder nehme eine Terminanfrage auf.",
		},
		DecisionFallback: {
			"Das habe ich leider nicht verstanden. Ich kann Fragen zu Öffnungszeiten, Preisen, Adresse oder Zahlung beantworten. Oder ich nehme gern eine Terminanfrage auf. Unser Salon heißt \"{name}\".",
			"Das habe ich leider nicht verstanden. Sie erreichen {name} auch telefonisch unter {phone} oder per E-Mail an {email}.",
		},
		DecisionConfirmYes:      {ReplySending},
		DecisionConfirmNo:       {ReplyNotSending},
		DecisionConfirmReminder: {ReplyConfirmReminder},
	}
}

// Chooser picks one of n reply variants.
type Chooser interface {
	Choose(n int) int
}

// FirstChoice always picks the first variant. Tests use it for determinism.
type FirstChoice struct{}

// Choose implements Chooser.
func (FirstChoice) Choose(int) int { return 0 }

// SeededChooser picks variants from a seeded PCG source. It is safe for
// concurrent use.
type SeededChooser struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSeededChooser returns a chooser whose sequence is fixed by seed.
func NewSeededChooser(seed uint64) *SeededChooser {
	return &SeededChooser{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Choose implements Chooser.
func (c *SeededChooser) Choose(n int) int {
	if n <= 1 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rnd.IntN(n)
}

func (t Templates) clone() Templates {
	out := make(Templates, len(t))
	for k, v := range t {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// render picks a variant for kind and fills business placeholders.
func (t Templates) render(kind DecisionKind, chooser Chooser, info BusinessInfo) string {
	variants := t[kind]
	if len(variants) == 0 {
		return ""
	}
	idx := 0
	if chooser != nil {
		idx = chooser.Choose(len(variants))
	}
	if idx < 0 || idx >= len(variants) {
		idx = 0
	}
	return strings.NewReplacer(
		"{name}", info.Name,
		"{phone}", info.Phone,
		"{email}", info.Email,
		"{hours}", info.OpeningHours,
	).Replace(variants[idx])
}
