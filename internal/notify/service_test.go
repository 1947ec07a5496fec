package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockEmailSender struct {
	sent    []EmailMessage
	callErr error
}

func (m *mockEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	if m.callErr != nil {
		return m.callErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

func testAppointment() Appointment {
	return Appointment{
		ID:      "appt-1",
		Name:    "Anna",
		Date:    "2025-12-24",
		Time:    "14:00",
		Contact: "anna@x.de",
		Service: "Haarschnitt",
	}
}

func TestService_NotifyAppointment(t *testing.T) {
	sender := &mockEmailSender{}
	svc := NewService(sender, "team@salon.example", "Salon Test", nil)

	require.NoError(t, svc.NotifyAppointment(context.Background(), testAppointment()))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "team@salon.example", msg.To)
	assert.Equal(t, "anna@x.de", msg.ReplyTo)
	assert.Equal(t, "Terminanfrage: Anna – 2025-12-24 14:00", msg.Subject)
	assert.Contains(t, msg.Body, "Name: Anna\nWunschzeit: 2025-12-24 14:00\nService: Haarschnitt\nKontakt: anna@x.de\nNotizen: -")
	assert.Contains(t, msg.Body, "Anfrage-ID: appt-1")
	assert.Contains(t, msg.HTML, "<b>Wunschzeit:</b> 2025-12-24 14:00")
}

func TestService_NotifyAppointment_Errors(t *testing.T) {
	ctx := context.Background()

	err := NewService(&mockEmailSender{}, "  ", "Salon Test", nil).NotifyAppointment(ctx, testAppointment())
	assert.ErrorIs(t, err, ErrNoRecipient)

	err = NewService(nil, "team@salon.example", "Salon Test", nil).NotifyAppointment(ctx, testAppointment())
	assert.Error(t, err)

	boom := errors.New("smtp down")
	err = NewService(&mockEmailSender{callErr: boom}, "team@salon.example", "", nil).NotifyAppointment(ctx, testAppointment())
	assert.ErrorIs(t, err, boom)
}

func TestAppointmentMessage_EscapesHTML(t *testing.T) {
	appt := testAppointment()
	appt.Name = `<script>alert("x")</script>`
	appt.Notes = "Bitte <b>kurz</b>"

	msg := AppointmentMessage(appt, "Salon & Co")

	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
	assert.Contains(t, msg.HTML, "Salon &amp; Co")
	assert.Contains(t, msg.Body, "Notizen: Bitte <b>kurz</b>")
}

func TestAppointmentMessage_PhoneContactHasNoReplyTo(t *testing.T) {
	appt := testAppointment()
	appt.Contact = "01701234567"

	msg := AppointmentMessage(appt, "")

	assert.Empty(t, msg.ReplyTo)
	assert.False(t, strings.Contains(msg.Body, "Call-Agent"))
}

func TestService_NotifyFeedback(t *testing.T) {
	sender := &mockEmailSender{}
	svc := NewService(sender, "team@salon.example", "Salon Test", nil)

	require.NoError(t, svc.NotifyFeedback(context.Background(), Feedback{Text: "Tolle Beratung!"}))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "Neues Feedback aus dem Salon-Assistenten", msg.Subject)
	assert.Equal(t, "Ein Kunde hat folgendes Feedback hinterlassen:\n\nTolle Beratung!\n\nAbsender-E-Mail (falls angegeben): -", msg.Body)
	assert.Empty(t, msg.ReplyTo)
}

func TestService_NotifyFeedback_WithSender(t *testing.T) {
	sender := &mockEmailSender{}
	svc := NewService(sender, "team@salon.example", "", nil)

	require.NoError(t, svc.NotifyFeedback(context.Background(), Feedback{Email: "kunde@x.de", Text: "Danke"}))

	assert.Equal(t, "kunde@x.de", sender.sent[0].ReplyTo)
	assert.Contains(t, sender.sent[0].Body, "kunde@x.de")
}
