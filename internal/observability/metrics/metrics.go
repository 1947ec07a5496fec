package metrics

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const (
	namespace = "salon"

	turnsMetric   = namespace + "_dialogue_turns_total"
	commitsMetric = namespace + "_appointments_commits_total"
)

// DialogueMetrics exposes counters/histograms for dialogue turns and
// appointment commits. A nil *DialogueMetrics records nothing.
type DialogueMetrics struct {
	turnsTotal   *prometheus.CounterVec
	faultsTotal  prometheus.Counter
	turnLatency  *prometheus.HistogramVec
	commitsTotal *prometheus.CounterVec
}

func NewDialogueMetrics(reg prometheus.Registerer) *DialogueMetrics {
	m := &DialogueMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dialogue",
			Name:      "turns_total",
			Help:      "Dialogue turns by decision and intent",
		}, []string{"decision", "intent"}),
		faultsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dialogue",
			Name:      "faults_total",
			Help:      "Turns answered with the apology reply after a recovered fault",
		}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dialogue",
			Name:      "turn_latency_seconds",
			Help:      "Latency of a single dialogue turn",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"decision"}),
		commitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "appointments",
			Name:      "commits_total",
			Help:      "Appointment commits by outcome",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.faultsTotal, m.turnLatency, m.commitsTotal)
	return m
}

func (m *DialogueMetrics) ObserveTurn(decision, intent string, seconds float64) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(decision, intent).Inc()
	m.turnLatency.WithLabelValues(decision).Observe(seconds)
}

func (m *DialogueMetrics) ObserveFault() {
	if m == nil {
		return
	}
	m.faultsTotal.Inc()
}

// ObserveCommit counts one commit attempt; status is e.g. "sent",
// "invalid", "closed", "duplicate" or "delivery_failed".
func (m *DialogueMetrics) ObserveCommit(status string) {
	if m == nil {
		return
	}
	m.commitsTotal.WithLabelValues(status).Inc()
}

// Snapshot is a JSON friendly summary of the counters.
type Snapshot struct {
	TurnsByDecision map[string]float64 `json:"turns_by_decision"`
	CommitsByStatus map[string]float64 `json:"commits_by_status"`
	Decisions       []string           `json:"decisions"`
}

// Summarize reads the dialogue counters back from a gatherer. A nil gatherer
// means the default registry.
func Summarize(gatherer prometheus.Gatherer) (Snapshot, error) {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	snap := Snapshot{
		TurnsByDecision: map[string]float64{},
		CommitsByStatus: map[string]float64{},
	}
	mfs, err := gatherer.Gather()
	if err != nil {
		return snap, err
	}
	for _, mf := range mfs {
		switch mf.GetName() {
		case turnsMetric:
			sumByLabel(mf, "decision", snap.TurnsByDecision)
		case commitsMetric:
			sumByLabel(mf, "status", snap.CommitsByStatus)
		}
	}
	for d := range snap.TurnsByDecision {
		snap.Decisions = append(snap.Decisions, d)
	}
	sort.Strings(snap.Decisions)
	return snap, nil
}

func sumByLabel(mf *dto.MetricFamily, label string, into map[string]float64) {
	for _, metric := range mf.GetMetric() {
		for _, lp := range metric.GetLabel() {
			if lp.GetName() == label {
				into[lp.GetValue()] += metric.GetCounter().GetValue()
			}
		}
	}
}
