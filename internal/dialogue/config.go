package dialogue

import (
	"errors"
	"fmt"
	"strings"
)

// Slot names understood by the extractor.
const (
	SlotName    = "name"
	SlotDate    = "date"
	SlotTime    = "time"
	SlotContact = "contact"
	SlotEmail   = "email"
	SlotPhone   = "phone"
	SlotService = "service"
)

// ContactMode decides where contact details are stored.
type ContactMode string

const (
	// ContactCombined stores an email address, or a phone number when no
	// address was given, in the single "contact" slot.
	ContactCombined ContactMode = "combined"
	// ContactSplit stores email and phone in separate slots.
	ContactSplit ContactMode = "split"
)

var knownSlots = map[string]struct{}{
	SlotName: {}, SlotDate: {}, SlotTime: {}, SlotContact: {},
	SlotEmail: {}, SlotPhone: {}, SlotService: {},
}

// Config is the immutable rule set of the engine. Build it once at startup.
type Config struct {
	GreetingPrefixes    []string
	AppointmentKeywords []string
	Affirmatives        []string
	Negatives           []string

	// RequiredSlots lists the slots a booking needs, in prompt order.
	RequiredSlots []string
	// SlotLabels are the phrases used when asking for a missing slot.
	SlotLabels  map[string]string
	ContactMode ContactMode
	// Services are the bookable service names used to fill the service slot.
	Services []string
}

// DefaultConfig returns the salon rule set: four required slots and a
// combined contact slot.
func DefaultConfig() Config {
	return Config{
		GreetingPrefixes:    []string{"hallo", "hi", "hey", "guten tag", "guten morgen", "guten abend", "servus", "moin", "grüß gott"},
		AppointmentKeywords: []string{"termin", "buchen", "vereinbaren", "reservieren", "appointment"},
		Affirmatives: []string{
			"ja", "jawohl", "jap", "jep", "yes", "ok", "okay", "passt", "alles klar",
			"gerne", "genau", "richtig", "stimmt", "klar", "bitte senden", "senden",
		},
		Negatives: []string{
			"nein", "nee", "ne", "nö", "no", "abbrechen", "stopp", "stop", "abbruch",
			"lieber nicht", "nicht senden", "passt nicht", "stimmt nicht",
		},
		RequiredSlots: []string{SlotName, SlotDate, SlotTime, SlotContact},
		SlotLabels: map[string]string{
			SlotName:    "deinen Namen",
			SlotDate:    "das Datum (TT.MM.JJJJ)",
			SlotTime:    "die Uhrzeit (HH:MM)",
			SlotContact: "deinen Kontakt (Telefon oder E-Mail)",
			SlotEmail:   "deine E-Mail-Adresse",
			SlotPhone:   "deine Telefonnummer",
			SlotService: "den gewünschten Service",
		},
		ContactMode: ContactCombined,
	}
}

// Validate checks that the required slot list is usable.
func (c Config) Validate() error {
	if len(c.RequiredSlots) == 0 {
		return errors.New("dialogue: at least one required slot is needed")
	}
	seen := make(map[string]struct{}, len(c.RequiredSlots))
	for _, slot := range c.RequiredSlots {
		if _, ok := knownSlots[slot]; !ok {
			return fmt.Errorf("dialogue: unknown required slot %q", slot)
		}
		if _, dup := seen[slot]; dup {
			return fmt.Errorf("dialogue: duplicate required slot %q", slot)
		}
		seen[slot] = struct{}{}
		if strings.TrimSpace(c.SlotLabels[slot]) == "" {
			return fmt.Errorf("dialogue: missing label for slot %q", slot)
		}
	}
	switch c.ContactMode {
	case ContactCombined:
		if _, ok := seen[SlotEmail]; ok {
			return errors.New("dialogue: email slot requires split contact mode")
		}
		if _, ok := seen[SlotPhone]; ok {
			return errors.New("dialogue: phone slot requires split contact mode")
		}
	case ContactSplit:
		if _, ok := seen[SlotContact]; ok {
			return errors.New("dialogue: contact slot requires combined contact mode")
		}
	default:
		return fmt.Errorf("dialogue: unknown contact mode %q", c.ContactMode)
	}
	return nil
}

// ParseSlotList splits a comma separated slot list such as
// "name,date,time,contact".
func ParseSlotList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if slot := strings.ToLower(strings.TrimSpace(part)); slot != "" {
			out = append(out, slot)
		}
	}
	return out
}

// clone returns a deep copy so the engine never shares slices with callers.
func (c Config) clone() Config {
	out := c
	out.GreetingPrefixes = append([]string(nil), c.GreetingPrefixes...)
	out.AppointmentKeywords = append([]string(nil), c.AppointmentKeywords...)
	out.Affirmatives = append([]string(nil), c.Affirmatives...)
	out.Negatives = append([]string(nil), c.Negatives...)
	out.RequiredSlots = append([]string(nil), c.RequiredSlots...)
	out.Services = append([]string(nil), c.Services...)
	out.SlotLabels = make(map[string]string, len(c.SlotLabels))
	for k, v := range c.SlotLabels {
		out.SlotLabels[k] = v
	}
	return out
}
