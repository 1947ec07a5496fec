package dialogue

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/salon-call-agent/pkg/logging"
)

const scenarioBooking = "Mein Name ist Anna, am 24.12.2025 um 14 Uhr, Kontakt anna@x.de"

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	engine, err := NewEngine(DefaultConfig(), testKnowledge(), opts...)
	require.NoError(t, err)
	return engine
}

func completeState() State {
	return State{
		Slots: SlotSet{
			SlotName:    "Anna",
			SlotDate:    "2025-12-24",
			SlotTime:    "14:00",
			SlotContact: "anna@x.de",
		},
		Complete: true,
	}
}

func TestEngine_ScenarioAppointmentRequest(t *testing.T) {
	engine := newTestEngine(t)

	res, err := engine.Respond("Ich möchte einen Termin", EmptyState())

	require.NoError(t, err)
	assert.Equal(t, IntentAppointment, res.Intent)
	assert.Equal(t, DecisionSlotUpdate, res.Decision)
	assert.False(t, res.State.Complete)
	for _, label := range []string{"deinen Namen", "das Datum", "die Uhrzeit", "deinen Kontakt"} {
		assert.Contains(t, res.Reply, label)
	}
}

func TestEngine_ScenarioSingleMessageBooking(t *testing.T) {
	engine := newTestEngine(t)

	res, err := engine.Respond(scenarioBooking, EmptyState())

	require.NoError(t, err)
	assert.Equal(t, completeState(), res.State)
	assert.Equal(t, promptComplete, res.Reply)
	assert.False(t, res.AutoSend)
	assert.Equal(t, PhaseAwaitingConfirmation, engine.Phase(res.State))
}

func TestEngine_ScenarioConfirmYes(t *testing.T) {
	engine := newTestEngine(t)
	booked, err := engine.Respond(scenarioBooking, EmptyState())
	require.NoError(t, err)

	res, err := engine.Respond("ja", booked.State)

	require.NoError(t, err)
	assert.True(t, res.AutoSend)
	assert.Equal(t, ReplySending, res.Reply)
	assert.Equal(t, DecisionConfirmYes, res.Decision)
	assert.Equal(t, booked.State, res.State, "the committer resets after delivery")
}

func TestEngine_ScenarioConfirmNo(t *testing.T) {
	engine := newTestEngine(t)
	booked, err := engine.Respond(scenarioBooking, EmptyState())
	require.NoError(t, err)

	res, err := engine.Respond("nein", booked.State)

	require.NoError(t, err)
	assert.False(t, res.AutoSend)
	assert.Equal(t, ReplyNotSending, res.Reply)
	assert.Equal(t, State{Slots: SlotSet{}, Complete: false}, res.State)
}

func TestEngine_ScenarioFAQ(t *testing.T) {
	engine := newTestEngine(t)
	states := map[string]State{
		"empty":    EmptyState(),
		"partial":  {Slots: SlotSet{SlotName: "Anna", SlotDate: "2025-12-24"}},
		"complete": completeState(),
	}
	for name, st := range states {
		t.Run(name, func(t *testing.T) {
			res, err := engine.Respond("Wie teuer ist ein Haarschnitt?", st)

			require.NoError(t, err)
			assert.Equal(t, IntentFAQ, res.Intent)
			assert.Equal(t, priceAnswer, res.Reply)
			assert.Equal(t, engine.normalizeState(st), res.State)
		})
	}
}

func TestEngine_NonDestructiveGreetingAndFAQ(t *testing.T) {
	engine := newTestEngine(t)
	partial := State{Slots: SlotSet{SlotName: "Anna", SlotTime: "14:00"}}

	for _, msg := range []string{"Hallo!", "Guten Tag", "Habt ihr samstags offen?", "Öffnungszeiten"} {
		res, err := engine.Respond(msg, partial)
		require.NoError(t, err)
		assert.Equal(t, partial.Slots, res.State.Slots, msg)
		assert.NotEqual(t, DecisionSlotUpdate, res.Decision, msg)
	}
}

func TestEngine_SlotLikeMessageBeatsFAQ(t *testing.T) {
	engine := newTestEngine(t)

	res, err := engine.Respond("Was kostet es am 24.12.2025?", EmptyState())

	require.NoError(t, err)
	assert.Equal(t, DecisionSlotUpdate, res.Decision)
	assert.Equal(t, "2025-12-24", res.State.Slots[SlotDate])
}

func TestEngine_BookingInProgressCollectsBareName(t *testing.T) {
	engine := newTestEngine(t)
	st := State{Slots: SlotSet{SlotDate: "2025-12-24", SlotTime: "14:00", SlotContact: "anna@x.de"}}

	res, err := engine.Respond("Anna Müller", st)

	require.NoError(t, err)
	assert.Equal(t, "Anna Müller", res.State.Slots[SlotName])
	assert.True(t, res.State.Complete)
	assert.Equal(t, promptComplete, res.Reply)
}

func TestEngine_BareNameContainingFAQTag(t *testing.T) {
	engine := newTestEngine(t)
	st := State{Slots: SlotSet{SlotDate: "2025-12-24", SlotTime: "14:00"}}

	for _, name := range []string{"Lena Offenbach", "Anna Kostetzki"} {
		t.Run(name, func(t *testing.T) {
			res, err := engine.Respond(name, st)

			require.NoError(t, err)
			assert.Equal(t, DecisionSlotUpdate, res.Decision)
			assert.Equal(t, name, res.State.Slots[SlotName])
			assert.Equal(t, "2025-12-24", res.State.Slots[SlotDate])
		})
	}
}

func TestEngine_SingleWordFAQTriggerIsNotAName(t *testing.T) {
	engine := newTestEngine(t)
	st := State{Slots: SlotSet{SlotDate: "2025-12-24"}}

	res, err := engine.Respond("Öffnungszeiten?", st)

	require.NoError(t, err)
	assert.Equal(t, DecisionFAQ, res.Decision)
	assert.Equal(t, hoursAnswer, res.Reply)
	assert.False(t, res.State.Slots.Has(SlotName))
}

func TestEngine_NegatedAffirmativeDoesNotSend(t *testing.T) {
	engine := newTestEngine(t)

	for _, msg := range []string{"nicht klar", "gar nicht richtig"} {
		res, err := engine.Respond(msg, completeState())

		require.NoError(t, err)
		assert.False(t, res.AutoSend, msg)
		assert.Equal(t, DecisionConfirmReminder, res.Decision, msg)
		assert.Equal(t, completeState().Slots, res.State.Slots, msg)
	}
}

func TestEngine_FirstWriteWinsAcrossTurns(t *testing.T) {
	engine := newTestEngine(t)

	res, err := engine.Respond("Ich bin Anna und möchte einen Termin", EmptyState())
	require.NoError(t, err)
	res, err = engine.Respond("Mein Name ist Berta, am 03.03.2026", res.State)
	require.NoError(t, err)

	assert.Equal(t, "Anna", res.State.Slots[SlotName])
	assert.Equal(t, "2026-03-03", res.State.Slots[SlotDate])
}

func TestEngine_MonotonicCompleteness(t *testing.T) {
	engine := newTestEngine(t)
	st := completeState()

	for _, msg := range []string{"Hallo", "Wie teuer ist das?", "Mein Name ist Berta", "am 01.01.2026", "vielleicht"} {
		res, err := engine.Respond(msg, st)
		require.NoError(t, err)
		assert.True(t, res.State.Complete, msg)
		assert.Equal(t, st.Slots, res.State.Slots, msg)
		st = res.State
	}
}

func TestEngine_AwaitingReminder(t *testing.T) {
	engine := newTestEngine(t)

	res, err := engine.Respond("vielleicht später", completeState())

	require.NoError(t, err)
	assert.Equal(t, DecisionConfirmReminder, res.Decision)
	assert.Equal(t, IntentConfirmation, res.Intent)
	assert.Equal(t, ReplyConfirmReminder, res.Reply)
	assert.False(t, res.AutoSend)
}

func TestEngine_AwaitingGreetingOverride(t *testing.T) {
	engine := newTestEngine(t)

	res, err := engine.Respond("Hallo", completeState())

	require.NoError(t, err)
	assert.Equal(t, DecisionGreeting, res.Decision)
	assert.Equal(t, completeState(), res.State)
}

func TestEngine_AmbiguousConfirmationDoesNotSend(t *testing.T) {
	engine := newTestEngine(t)

	res, err := engine.Respond("ja, nein", completeState())

	require.NoError(t, err)
	assert.False(t, res.AutoSend)
	assert.Equal(t, DecisionConfirmNo, res.Decision)
}

func TestEngine_StaleCompleteFlagIsRecomputed(t *testing.T) {
	engine := newTestEngine(t)
	stale := State{Slots: SlotSet{SlotName: "Anna"}, Complete: true}

	res, err := engine.Respond("ja", stale)

	require.NoError(t, err)
	assert.False(t, res.AutoSend)
	assert.Equal(t, DecisionSlotUpdate, res.Decision)
	assert.False(t, res.State.Complete)
}

func TestEngine_Fallback(t *testing.T) {
	engine := newTestEngine(t)

	res, err := engine.Respond("ich weiß nicht so recht", EmptyState())

	require.NoError(t, err)
	assert.Equal(t, IntentFallback, res.Intent)
	assert.Equal(t, DecisionFallback, res.Decision)
	assert.Contains(t, res.Reply, `"Salon Test"`)
	assert.Equal(t, EmptyState(), res.State)
}

func TestEngine_YesWithoutBookingIsFallback(t *testing.T) {
	engine := newTestEngine(t)

	res, err := engine.Respond("Ja", EmptyState())

	require.NoError(t, err)
	assert.Equal(t, DecisionFallback, res.Decision)
	assert.False(t, res.AutoSend)
}

func TestEngine_EmptyMessage(t *testing.T) {
	engine := newTestEngine(t)

	_, err := engine.Respond("  \n", EmptyState())

	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestEngine_DoesNotMutateCallerState(t *testing.T) {
	engine := newTestEngine(t)
	slots := SlotSet{SlotName: "Anna"}

	_, err := engine.Respond("am 24.12.2025 um 14 Uhr", State{Slots: slots})

	require.NoError(t, err)
	assert.Equal(t, SlotSet{SlotName: "Anna"}, slots)
}

func TestEngine_NilSlotsAreEmpty(t *testing.T) {
	engine := newTestEngine(t)

	res, err := engine.Respond("Hallo", State{})

	require.NoError(t, err)
	assert.NotNil(t, res.State.Slots)
	assert.Empty(t, res.State.Slots)
}

// panickingKnowledge fails on every lookup.
type panickingKnowledge struct{}

func (panickingKnowledge) LookupFAQ(string) (string, bool) { panic("faq index corrupted") }
func (panickingKnowledge) BusinessInfo() BusinessInfo      { panic("no business data") }

func TestEngine_RecoversFromPanic(t *testing.T) {
	var buf bytes.Buffer
	engine, err := NewEngine(DefaultConfig(), panickingKnowledge{},
		WithLogger(logging.NewWithWriter(&buf, "info")))
	require.NoError(t, err)
	st := State{Slots: SlotSet{SlotName: "Anna"}}

	res, err := engine.Respond("Wie teuer ist das?", st)

	require.NoError(t, err)
	assert.True(t, res.Faulted)
	assert.Equal(t, ReplyApology, res.Reply)
	assert.Equal(t, DecisionFault, res.Decision)
	assert.Equal(t, st.Slots, res.State.Slots)
	assert.Contains(t, buf.String(), "faq index corrupted")
}

func TestEngine_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RequiredSlots = []string{"unknown"}

	_, err := NewEngine(cfg, nil)

	assert.Error(t, err)
}

func TestEngine_CustomTemplatesAndChooser(t *testing.T) {
	engine := newTestEngine(t,
		WithTemplates(Templates{DecisionGreeting: {"Servus bei {name}!"}}),
		WithChooser(NewSeededChooser(1)),
	)

	res, err := engine.Respond("Servus", EmptyState())

	require.NoError(t, err)
	assert.Equal(t, "Servus bei Salon Test!", res.Reply)

	res, err = engine.Respond("nein", completeState())
	require.NoError(t, err)
	assert.Equal(t, ReplyNotSending, res.Reply)
}

func TestEngine_SeededRepliesAreReproducible(t *testing.T) {
	a := newTestEngine(t, WithChooser(NewSeededChooser(99)))
	b := newTestEngine(t, WithChooser(NewSeededChooser(99)))

	for i := 0; i < 10; i++ {
		ra, err := a.Respond("Hallo", EmptyState())
		require.NoError(t, err)
		rb, err := b.Respond("Hallo", EmptyState())
		require.NoError(t, err)
		assert.Equal(t, ra.Reply, rb.Reply)
	}
}

func TestEngine_ConcurrentTurns(t *testing.T) {
	engine := newTestEngine(t, WithChooser(NewSeededChooser(3)))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := engine.Respond(scenarioBooking, EmptyState())
			assert.NoError(t, err)
			assert.True(t, res.State.Complete)
			_, err = engine.Respond("Hallo", res.State)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
