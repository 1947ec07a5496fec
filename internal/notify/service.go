package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/wolfman30/salon-call-agent/pkg/logging"
)

// ErrNoRecipient is returned when no team inbox is configured.
var ErrNoRecipient = errors.New("notify: no team inbox configured")

// Appointment is the booking data mailed to the team.
type Appointment struct {
	ID      string
	Name    string
	Date    string // YYYY-MM-DD
	Time    string // HH:MM
	Contact string
	Email   string
	Phone   string
	Service string
	Notes   string
}

// Feedback is a free-text message left by a customer.
type Feedback struct {
	Email string
	Text  string
}

// Service mails appointment requests and feedback to the salon team.
type Service struct {
	email     EmailSender
	teamInbox string
	salonName string
	logger    *logging.Logger
}

// NewService creates a notification service.
func NewService(email EmailSender, teamInbox, salonName string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:     email,
		teamInbox: strings.TrimSpace(teamInbox),
		salonName: salonName,
		logger:    logger,
	}
}

// NotifyAppointment sends one appointment request to the team inbox.
func (s *Service) NotifyAppointment(ctx context.Context, appt Appointment) error {
	if s.email == nil {
		return fmt.Errorf("notify: email sender not configured")
	}
	if s.teamInbox == "" {
		return ErrNoRecipient
	}
	msg := AppointmentMessage(appt, s.salonName)
	msg.To = s.teamInbox
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: appointment mail: %w", err)
	}
	s.logger.Info("notify: appointment mail sent", "appointment_id", appt.ID, "to", s.teamInbox)
	return nil
}

// NotifyFeedback forwards customer feedback to the team inbox.
func (s *Service) NotifyFeedback(ctx context.Context, fb Feedback) error {
	if s.email == nil {
		return fmt.Errorf("notify: email sender not configured")
	}
	if s.teamInbox == "" {
		return ErrNoRecipient
	}
	msg := FeedbackMessage(fb)
	msg.To = s.teamInbox
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: feedback mail: %w", err)
	}
	s.logger.Info("notify: feedback mail sent", "to", s.teamInbox, "preview", truncate(fb.Text, 50))
	return nil
}

// AppointmentMessage composes the team mail without a recipient.
func AppointmentMessage(appt Appointment, salonName string) EmailMessage {
	when := strings.TrimSpace(appt.Date + " " + appt.Time)
	rows := [][2]string{
		{"Name", appt.Name},
		{"Wunschzeit", when},
	}
	if appt.Service != "" {
		rows = append(rows, [2]string{"Service", appt.Service})
	}
	if appt.Contact != "" {
		rows = append(rows, [2]string{"Kontakt", appt.Contact})
	}
	if appt.Email != "" {
		rows = append(rows, [2]string{"E-Mail", appt.Email})
	}
	if appt.Phone != "" {
		rows = append(rows, [2]string{"Telefon", appt.Phone})
	}
	rows = append(rows, [2]string{"Notizen", orDash(appt.Notes)})
	if appt.ID != "" {
		rows = append(rows, [2]string{"Anfrage-ID", appt.ID})
	}

	var text, body strings.Builder
	text.WriteString("Neue Terminanfrage:\n")
	body.WriteString(`<div style="font-family: sans-serif; max-width: 600px;">`)
	body.WriteString("<h2>Neue Terminanfrage</h2>")
	for _, r := range rows {
		fmt.Fprintf(&text, "%s: %s\n", r[0], r[1])
		fmt.Fprintf(&body, "<p><b>%s:</b> %s</p>", r[0], html.EscapeString(r[1]))
	}
	if salonName != "" {
		fmt.Fprintf(&text, "\n— %s Call-Agent", salonName)
		fmt.Fprintf(&body, `<p style="color: #6b7280; font-size: 12px;">— %s Call-Agent</p>`, html.EscapeString(salonName))
	}
	body.WriteString("</div>")

	return EmailMessage{
		ReplyTo: replyAddress(appt),
		Subject: fmt.Sprintf("Terminanfrage: %s – %s", appt.Name, when),
		Body:    strings.TrimRight(text.String(), "\n"),
		HTML:    body.String(),
	}
}

// FeedbackMessage composes the feedback mail without a recipient.
func FeedbackMessage(fb Feedback) EmailMessage {
	lines := []string{
		"Ein Kunde hat folgendes Feedback hinterlassen:",
		"",
		fb.Text,
		"",
		"Absender-E-Mail (falls angegeben): " + orDash(fb.Email),
	}
	return EmailMessage{
		ReplyTo: strings.TrimSpace(fb.Email),
		Subject: "Neues Feedback aus dem Salon-Assistenten",
		Body:    strings.Join(lines, "\n"),
	}
}

func replyAddress(appt Appointment) string {
	if appt.Email != "" {
		return appt.Email
	}
	if strings.Contains(appt.Contact, "@") {
		return appt.Contact
	}
	return ""
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
