package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OpList   = "list"
	OpShow   = "show"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

type Manager struct {
	CounterRequests   *prometheus.CounterVec
	CounterNoteOps    *prometheus.CounterVec
	CounterNoteEvents *prometheus.CounterVec

	HistogramRequestDuration *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("notekeeper", "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("notekeeper", "test", reg), reg
}

// NewRegistry returns a registry preloaded with build, runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "The total number of handled HTTP requests",
		}, []string{"method", "status"}),
		CounterNoteOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "note_operations_total",
			Help:      "Note resource operations by outcome",
		}, []string{"op", "outcome"}),
		CounterNoteEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "note_events_relayed_total",
			Help:      "Note lifecycle events relayed to the event bus",
		}, []string{"type", "outcome"}),
		HistogramRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// NoteOp records the outcome of a note operation. A nil manager is a no-op.
func (m *Manager) NoteOp(op, outcome string) {
	if m == nil {
		return
	}
	m.CounterNoteOps.WithLabelValues(op, outcome).Inc()
}

func (m *Manager) NoteEvent(eventType, outcome string) {
	if m == nil {
		return
	}
	m.CounterNoteEvents.WithLabelValues(eventType, outcome).Inc()
}
