package appointments

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/wolfman30/salon-call-agent/internal/dialogue"
)

// Sources of a commit.
const (
	SourceAgent = "agent"
	SourceForm  = "form"
)

// Appointment is a committed appointment request.
type Appointment struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	Contact      string    `json:"contact,omitempty"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Service      string    `json:"service,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	Source       string    `json:"source"`
	ScheduledFor time.Time `json:"scheduled_for"`
	CreatedAt    time.Time `json:"created_at"`
}

// Request is the input of a commit, either from the booking form or from a
// completed dialogue slot set.
type Request struct {
	Name    string `json:"name" validate:"required,max=120"`
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Time    string `json:"time" validate:"required,datetime=15:04"`
	Contact string `json:"contact,omitempty" validate:"max=200"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty" validate:"max=40"`
	Service string `json:"service,omitempty" validate:"max=120"`
	Notes   string `json:"notes,omitempty" validate:"max=2000"`
	// Datetime is the older form field "YYYY-MM-DDTHH:MM"; it fills Date and
	// Time when those are empty.
	Datetime string `json:"datetime,omitempty" validate:"-"`
	Source   string `json:"-" validate:"-"`
}

// FromSlots builds a request from a completed dialogue slot set.
func FromSlots(slots dialogue.SlotSet) Request {
	return Request{
		Name:    slots[dialogue.SlotName],
		Date:    slots[dialogue.SlotDate],
		Time:    slots[dialogue.SlotTime],
		Contact: slots[dialogue.SlotContact],
		Email:   slots[dialogue.SlotEmail],
		Phone:   slots[dialogue.SlotPhone],
		Service: slots[dialogue.SlotService],
		Source:  SourceAgent,
	}
}

var legacyLayouts = []string{"2006-01-02T15:04", "2006-01-02T15:04:05", "2006-01-02 15:04"}

// Normalize trims every field, splits the legacy datetime and derives
// Contact from Email or Phone.
func (r *Request) Normalize() {
	for _, f := range []*string{&r.Name, &r.Date, &r.Time, &r.Contact, &r.Email, &r.Phone, &r.Service, &r.Notes, &r.Datetime} {
		*f = strings.TrimSpace(*f)
	}
	if (r.Date == "" || r.Time == "") && r.Datetime != "" {
		for _, layout := range legacyLayouts {
			t, err := time.Parse(layout, r.Datetime)
			if err != nil {
				continue
			}
			if r.Date == "" {
				r.Date = t.Format("2006-01-02")
			}
			if r.Time == "" {
				r.Time = t.Format("15:04")
			}
			break
		}
	}
	if r.Contact == "" {
		if r.Email != "" {
			r.Contact = r.Email
		} else {
			r.Contact = r.Phone
		}
	}
	if r.Source == "" {
		r.Source = SourceForm
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

var fieldReasons = map[string]string{
	"Name":    "Name fehlt.",
	"Date":    "Datum und Uhrzeit fehlen.",
	"Time":    "Datum und Uhrzeit fehlen.",
	"Email":   "Ungültige E-Mail-Adresse.",
	"Contact": "Kontaktangabe ist zu lang.",
	"Phone":   "Telefonnummer ist zu lang.",
	"Service": "Service ist zu lang.",
	"Notes":   "Notizen sind zu lang.",
}

// Validate checks field rules and returns the first failure as a
// *ValidationError.
func (r *Request) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Reason: "Ungültige Anfrage."}
	}
	fe := verrs[0]
	reason := fieldReasons[fe.StructField()]
	switch {
	case fe.StructField() == "Date" && fe.Tag() == "datetime":
		reason = "Ungültiges Datum."
	case fe.StructField() == "Time" && fe.Tag() == "datetime":
		reason = "Ungültige Uhrzeit."
	case reason == "":
		reason = "Ungültige Anfrage."
	}
	return &ValidationError{Field: strings.ToLower(fe.StructField()), Reason: reason}
}
