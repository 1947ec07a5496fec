package dialogue

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/wolfman30/salon-call-agent/pkg/logging"
)

// DecisionKind tags the branch taken for a turn.
type DecisionKind string

const (
	DecisionGreeting        DecisionKind = "greeting"
	DecisionFAQ             DecisionKind = "faq"
	DecisionSlotUpdate      DecisionKind = "slot_update"
	DecisionConfirmYes      DecisionKind = "confirm_yes"
	DecisionConfirmNo       DecisionKind = "confirm_no"
	DecisionConfirmReminder DecisionKind = "confirm_reminder"
	DecisionFallback        DecisionKind = "fallback"
	// DecisionFault marks a turn that panicked and was answered with an apology.
	DecisionFault DecisionKind = "fault"
)

// Decision is the outcome of the precedence rules before any reply text is
// rendered.
type Decision struct {
	Kind   DecisionKind
	Intent Intent
	// Answer is set for DecisionFAQ.
	Answer string
	// Extraction is set for DecisionSlotUpdate.
	Extraction *Extraction
}

// Result is everything a caller needs to answer one turn.
type Result struct {
	Reply    string       `json:"reply"`
	Intent   Intent       `json:"intent"`
	Decision DecisionKind `json:"decision"`
	State    State        `json:"state"`
	// AutoSend asks the caller to commit State.Slots. The engine does not
	// reset the state; the committer does after delivery succeeds.
	AutoSend bool `json:"auto_send,omitempty"`
	Faulted  bool `json:"-"`
}

// Engine answers turns. It holds no per-conversation data and is safe for
// concurrent use as long as its Chooser is.
type Engine struct {
	classifier *Classifier
	extractor  *Extractor
	recognizer *Recognizer
	knowledge  Knowledge
	templates  Templates
	chooser    Chooser
	logger     *logging.Logger
}

// Option tweaks an Engine at construction.
type Option func(*Engine)

// WithChooser sets the reply variant picker. The default is FirstChoice.
func WithChooser(c Chooser) Option {
	return func(e *Engine) {
		if c != nil {
			e.chooser = c
		}
	}
}

// WithTemplates replaces the reply variants. Kinds missing from t keep the
// defaults.
func WithTemplates(t Templates) Option {
	return func(e *Engine) {
		for kind, variants := range t {
			if len(variants) > 0 {
				e.templates[kind] = append([]string(nil), variants...)
			}
		}
	}
}

// WithLogger sets the logger used for faults and turn tracing.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine validates cfg and wires the classifier, extractor and recognizer.
// knowledge may be nil, in which case no FAQ ever matches.
func NewEngine(cfg Config, knowledge Knowledge, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.clone()
	e := &Engine{
		classifier: NewClassifier(cfg.GreetingPrefixes, cfg.AppointmentKeywords, knowledge),
		extractor:  NewExtractor(cfg),
		recognizer: NewRecognizer(cfg.Affirmatives, cfg.Negatives),
		knowledge:  knowledge,
		templates:  DefaultTemplates(),
		chooser:    FirstChoice{},
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Extractor exposes the slot extractor, e.g. for committers that need the
// required slot list.
func (e *Engine) Extractor() *Extractor {
	return e.extractor
}

// Phase derives the dialogue phase. The stored Complete flag is ignored;
// completeness is recomputed from the slots.
func (e *Engine) Phase(state State) Phase {
	if e.extractor.IsComplete(state.Slots) {
		return PhaseAwaitingConfirmation
	}
	return PhaseCollecting
}

// Respond answers one message. Only a blank message yields an error; a panic
// while deciding or rendering yields ReplyApology with the state unchanged.
func (e *Engine) Respond(message string, state State) (res Result, err error) {
	if strings.TrimSpace(message) == "" {
		return Result{}, ErrEmptyMessage
	}
	prior := e.normalizeState(state)

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("dialogue turn failed",
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			res = Result{
				Reply:    ReplyApology,
				Intent:   IntentFallback,
				Decision: DecisionFault,
				State:    prior,
				Faulted:  true,
			}
			err = nil
		}
	}()

	d := e.Decide(message, prior)
	res = e.apply(d, prior)
	e.logger.Debug("dialogue turn decided",
		"decision", d.Kind,
		"intent", d.Intent,
		"complete", res.State.Complete,
		"filled", len(res.State.Slots),
	)
	return res, nil
}

// Decide runs the precedence rules without rendering a reply.
//
// Awaiting confirmation: yes, no, greeting, FAQ, reminder.
// Collecting: greeting, FAQ unless slot-like, slot update, fallback.
func (e *Engine) Decide(message string, state State) Decision {
	if e.Phase(state) == PhaseAwaitingConfirmation {
		switch e.recognizer.Recognize(message) {
		case ConfirmationYes:
			return Decision{Kind: DecisionConfirmYes, Intent: IntentConfirmation}
		case ConfirmationNo:
			return Decision{Kind: DecisionConfirmNo, Intent: IntentConfirmation}
		}
		if e.classifier.IsGreeting(message) {
			return Decision{Kind: DecisionGreeting, Intent: IntentGreeting}
		}
		if answer, ok := e.classifier.LookupFAQ(message); ok {
			return Decision{Kind: DecisionFAQ, Intent: IntentFAQ, Answer: answer}
		}
		return Decision{Kind: DecisionConfirmReminder, Intent: IntentConfirmation}
	}

	if e.classifier.IsGreeting(message) {
		return Decision{Kind: DecisionGreeting, Intent: IntentGreeting}
	}
	answer, isFAQ := e.classifier.LookupFAQ(message)
	slotLike := e.slotLike(message, isFAQ)
	if isFAQ && !slotLike {
		return Decision{Kind: DecisionFAQ, Intent: IntentFAQ, Answer: answer}
	}
	if e.classifier.MentionsAppointment(message) || slotLike || len(state.Slots) > 0 {
		ex := e.extractor.Extract(message, state.Slots)
		return Decision{Kind: DecisionSlotUpdate, Intent: IntentAppointment, Extraction: &ex}
	}
	return Decision{Kind: DecisionFallback, Intent: IntentFallback}
}

// slotLike applies the slot heuristic. A single word that is also an FAQ
// question ("Öffnungszeiten") does not count as a name; longer names do,
// even when a tag happens to occur inside them ("Lena Offenbach").
func (e *Engine) slotLike(message string, isFAQ bool) bool {
	if hasSlotSignal(message) {
		return true
	}
	if isFAQ && len(strings.Fields(message)) == 1 {
		return false
	}
	_, ok := e.extractor.bareName(message)
	return ok
}

func (e *Engine) apply(d Decision, prior State) Result {
	res := Result{Intent: d.Intent, Decision: d.Kind, State: prior}
	switch d.Kind {
	case DecisionFAQ:
		res.Reply = d.Answer
	case DecisionSlotUpdate:
		res.State = State{Slots: d.Extraction.Slots, Complete: d.Extraction.Complete}
		res.Reply = d.Extraction.NextPrompt
	case DecisionConfirmYes:
		res.Reply = e.render(d.Kind)
		res.AutoSend = true
	case DecisionConfirmNo:
		res.Reply = e.render(d.Kind)
		res.State = EmptyState()
	default:
		res.Reply = e.render(d.Kind)
	}
	return res
}

func (e *Engine) render(kind DecisionKind) string {
	var info BusinessInfo
	if e.knowledge != nil {
		info = e.knowledge.BusinessInfo()
	}
	return e.templates.render(kind, e.chooser, info)
}

// normalizeState copies the caller's slots and recomputes Complete.
func (e *Engine) normalizeState(state State) State {
	slots := state.Slots.Clone()
	return State{Slots: slots, Complete: e.extractor.IsComplete(slots)}
}
