package dialogue

import (
	"fmt"
	"strings"
)

// SlotSet maps slot names to their values. A key exists only once filled.
type SlotSet map[string]string

// Clone returns an independent copy; a nil set yields an empty one.
func (s SlotSet) Clone() SlotSet {
	out := make(SlotSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Has reports whether slot holds a non-empty value.
func (s SlotSet) Has(slot string) bool {
	return strings.TrimSpace(s[slot]) != ""
}

// State is the conversation state round-tripped by the caller every turn.
type State struct {
	Slots    SlotSet `json:"slots"`
	Complete bool    `json:"complete"`
}

// EmptyState is the state of a conversation without a booking in progress.
func EmptyState() State {
	return State{Slots: SlotSet{}, Complete: false}
}

// Phase is derived from State and never stored.
type Phase string

const (
	PhaseCollecting           Phase = "collecting"
	PhaseAwaitingConfirmation Phase = "awaiting_confirmation"
)

// Extraction is the result of merging one message into a slot set.
type Extraction struct {
	Slots      SlotSet
	Complete   bool
	Missing    []string
	Added      []string
	NextPrompt string
}

const (
	promptComplete = "Alles klar! Soll ich diesen Termin jetzt an unser Team senden? Antworte bitte mit „ja“ oder „nein“."
	promptMissing  = "Um die Terminanfrage zu erstellen, brauche ich noch: %s."
	promptOneLeft  = "Mir fehlt nur noch %s."
)

// Extractor merges pattern matches into a slot set and tracks completeness
// against the configured required slots.
type Extractor struct {
	required    []string
	labels      map[string]string
	contactMode ContactMode
	// services holds the lower-cased match keys, serviceNames the display
	// names at the same index.
	services     []string
	serviceNames []string
	// stopwords and keywords keep "Termin" or "Ja" from being taken as a
	// bare name.
	stopwords map[string]struct{}
	keywords  []string
}

// NewExtractor builds an extractor from cfg.
func NewExtractor(cfg Config) *Extractor {
	cfg = cfg.clone()
	stop := make(map[string]struct{})
	for _, list := range [][]string{cfg.GreetingPrefixes, cfg.AppointmentKeywords, cfg.Affirmatives, cfg.Negatives} {
		for _, w := range list {
			for _, tok := range strings.Fields(normalize(w)) {
				stop[tok] = struct{}{}
			}
		}
	}
	var services, serviceNames []string
	for _, svc := range cfg.Services {
		if key := normalize(svc); key != "" {
			services = append(services, key)
			serviceNames = append(serviceNames, strings.TrimSpace(svc))
		}
	}
	return &Extractor{
		required:     cfg.RequiredSlots,
		labels:       cfg.SlotLabels,
		contactMode:  cfg.ContactMode,
		services:     services,
		serviceNames: serviceNames,
		stopwords:    stop,
		keywords:     lowerAll(cfg.AppointmentKeywords),
	}
}

// Extract applies the pattern library to text and merges the findings into a
// copy of prior. Slots already present are never overwritten.
func (e *Extractor) Extract(text string, prior SlotSet) Extraction {
	slots := prior.Clone()
	var added []string
	set := func(slot, value string) {
		value = strings.TrimSpace(value)
		if value == "" || slots.Has(slot) {
			return
		}
		slots[slot] = value
		added = append(added, slot)
	}

	if name, ok := e.name(text); ok {
		set(SlotName, name)
	}
	if date, ok := ExtractDate(text); ok {
		set(SlotDate, date)
	}
	if clock, ok := ExtractTime(text); ok {
		set(SlotTime, clock)
	}
	email, hasEmail := ExtractEmail(text)
	phone, hasPhone := ExtractPhone(text)
	switch e.contactMode {
	case ContactSplit:
		if hasEmail {
			set(SlotEmail, email)
		}
		if hasPhone {
			set(SlotPhone, phone)
		}
	default:
		if hasEmail {
			set(SlotContact, email)
		} else if hasPhone {
			set(SlotContact, phone)
		}
	}
	if service, ok := e.service(text); ok {
		set(SlotService, service)
	}

	missing := e.MissingSlots(slots)
	return Extraction{
		Slots:      slots,
		Complete:   len(missing) == 0,
		Missing:    missing,
		Added:      added,
		NextPrompt: e.prompt(missing),
	}
}

// MissingSlots lists required slots without a value, in configured order.
func (e *Extractor) MissingSlots(slots SlotSet) []string {
	var missing []string
	for _, slot := range e.required {
		if !slots.Has(slot) {
			missing = append(missing, slot)
		}
	}
	return missing
}

// IsComplete reports whether every required slot is filled.
func (e *Extractor) IsComplete(slots SlotSet) bool {
	return len(e.MissingSlots(slots)) == 0
}

// RequiredSlots returns a copy of the configured required list.
func (e *Extractor) RequiredSlots() []string {
	return append([]string(nil), e.required...)
}

// Prompt renders the follow-up question for a slot set.
func (e *Extractor) Prompt(slots SlotSet) string {
	return e.prompt(e.MissingSlots(slots))
}

func (e *Extractor) prompt(missing []string) string {
	switch len(missing) {
	case 0:
		return promptComplete
	case 1:
		return fmt.Sprintf(promptOneLeft, e.label(missing[0]))
	}
	labels := make([]string, 0, len(missing))
	for _, slot := range missing {
		labels = append(labels, e.label(slot))
	}
	return fmt.Sprintf(promptMissing, strings.Join(labels, ", "))
}

func (e *Extractor) label(slot string) string {
	if l, ok := e.labels[slot]; ok && l != "" {
		return l
	}
	return slot
}

func (e *Extractor) name(text string) (string, bool) {
	if name, ok := ExtractName(text); ok {
		return name, true
	}
	return e.bareName(text)
}

// bareName accepts a bare capitalized utterance unless one of its tokens is a
// configured keyword.
func (e *Extractor) bareName(text string) (string, bool) {
	name, ok := BareName(text)
	if !ok {
		return "", false
	}
	for _, tok := range strings.Fields(normalize(name)) {
		if _, stop := e.stopwords[tok]; stop {
			return "", false
		}
		if containsAny(tok, e.keywords) || containsAny(tok, e.services) {
			return "", false
		}
	}
	return name, true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// service returns the display name of the first configured service
// mentioned in text.
func (e *Extractor) service(text string) (string, bool) {
	msg := normalize(text)
	for i, svc := range e.services {
		if strings.Contains(msg, svc) {
			return e.serviceNames[i], true
		}
	}
	return "", false
}
