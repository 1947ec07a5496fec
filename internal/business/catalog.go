package business

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/wolfman30/salon-call-agent/internal/dialogue"
)

// Service is a bookable treatment.
type Service struct {
	Name            string `json:"name" yaml:"name"`
	Price           string `json:"price,omitempty" yaml:"price,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty" yaml:"duration_minutes,omitempty"`
}

// Salon is the business data file.
type Salon struct {
	CompanyName string `json:"company_name" yaml:"company_name"`
	Address     string `json:"address,omitempty" yaml:"address,omitempty"`
	Phone       string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email       string `json:"email,omitempty" yaml:"email,omitempty"`
	// OpeningHours maps a weekday key ("mon" … "sun") to "09:00-18:00" or
	// "geschlossen".
	OpeningHours map[string]string `json:"opening_hours" yaml:"opening_hours"`
	Timezone     string            `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	Services     []Service         `json:"services,omitempty" yaml:"services,omitempty"`
}

// FAQ is one entry of the FAQ file. AnswerTemplate may reference salon data,
// e.g. {{.CompanyName}} or {{.Hours}}.
type FAQ struct {
	ID             string   `json:"id" yaml:"id"`
	Tags           []string `json:"tags" yaml:"tags"`
	AnswerTemplate string   `json:"answer_template" yaml:"answer_template"`
}

type faqEntry struct {
	id     string
	tags   []string
	answer string
}

// Catalog is the immutable salon knowledge shared by every request. It
// implements dialogue.Knowledge.
type Catalog struct {
	salon Salon
	faqs  []faqEntry
	hours weekHours
	loc   *time.Location
}

var _ dialogue.Knowledge = (*Catalog)(nil)

// templateData is what FAQ answer templates can reference.
type templateData struct {
	Salon
	Hours string
}

// NewCatalog validates the opening hours and renders every FAQ answer once.
func NewCatalog(salon Salon, faqs []FAQ) (*Catalog, error) {
	if strings.TrimSpace(salon.CompanyName) == "" {
		return nil, fmt.Errorf("%w: company_name is required", ErrInvalidData)
	}
	hours, err := parseWeekHours(salon.OpeningHours)
	if err != nil {
		return nil, err
	}
	loc := time.UTC
	if salon.Timezone != "" {
		loc, err = time.LoadLocation(salon.Timezone)
		if err != nil {
			return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidData, salon.Timezone, err)
		}
	}

	c := &Catalog{salon: copySalon(salon), hours: hours, loc: loc}
	data := templateData{Salon: c.salon, Hours: hours.summary()}
	for i, f := range faqs {
		answer, err := renderAnswer(f, data)
		if err != nil {
			return nil, fmt.Errorf("%w: faq %d (%s): %v", ErrInvalidData, i, f.ID, err)
		}
		tags := make([]string, 0, len(f.Tags))
		for _, tag := range f.Tags {
			if t := strings.ToLower(strings.TrimSpace(tag)); t != "" {
				tags = append(tags, t)
			}
		}
		if len(tags) == 0 {
			continue
		}
		c.faqs = append(c.faqs, faqEntry{id: f.ID, tags: tags, answer: answer})
	}
	return c, nil
}

func renderAnswer(f FAQ, data templateData) (string, error) {
	tmpl, err := template.New(f.ID).Option("missingkey=error").Parse(f.AnswerTemplate)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// LookupFAQ returns the answer of the first entry with a tag contained in the
// lowercased text.
func (c *Catalog) LookupFAQ(text string) (string, bool) {
	_, answer, ok := c.match(text)
	return answer, ok
}

// MatchFAQ is LookupFAQ that also reports the entry id.
func (c *Catalog) MatchFAQ(text string) (id, answer string, ok bool) {
	return c.match(text)
}

func (c *Catalog) match(text string) (string, string, bool) {
	msg := strings.ToLower(text)
	for _, f := range c.faqs {
		for _, tag := range f.tags {
			if strings.Contains(msg, tag) {
				return f.id, f.answer, true
			}
		}
	}
	return "", "", false
}

// BusinessInfo implements dialogue.Knowledge.
func (c *Catalog) BusinessInfo() dialogue.BusinessInfo {
	return dialogue.BusinessInfo{
		Name:         c.salon.CompanyName,
		Phone:        c.salon.Phone,
		Email:        c.salon.Email,
		OpeningHours: c.hours.summary(),
	}
}

// Salon returns a copy of the business data.
func (c *Catalog) Salon() Salon {
	return copySalon(c.salon)
}

// ServiceNames lists the bookable service names in file order.
func (c *Catalog) ServiceNames() []string {
	names := make([]string, 0, len(c.salon.Services))
	for _, s := range c.salon.Services {
		if s.Name != "" {
			names = append(names, s.Name)
		}
	}
	return names
}

// Location is the salon's time zone; UTC when none is configured.
func (c *Catalog) Location() *time.Location {
	return c.loc
}

// FAQCount is the number of usable FAQ entries.
func (c *Catalog) FAQCount() int {
	return len(c.faqs)
}

func copySalon(s Salon) Salon {
	out := s
	out.OpeningHours = make(map[string]string, len(s.OpeningHours))
	for k, v := range s.OpeningHours {
		out.OpeningHours[k] = v
	}
	out.Services = append([]Service(nil), s.Services...)
	return out
}
