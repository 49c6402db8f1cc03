package core

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeDelivered   = "delivered"
	OutcomeFailed      = "failed"
	OutcomeUnavailable = "unavailable"
	OutcomeInvalid     = "invalid"

	LocationNarrative = "narrative"
	LocationDelivery  = "delivery"
	LocationNotify    = "notify"
	LocationSession   = "session"
)

type Metrics struct {
	DocumentsRendered prometheus.Counter
	Submissions       *prometheus.CounterVec
	ExternalErrors    *prometheus.CounterVec
}

func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.DocumentsRendered,
		m.Submissions,
		m.ExternalErrors,
	}
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		DocumentsRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_rendered_total",
			Help:      "Number of rendered BRD documents.",
		}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Number of submissions by outcome.",
		}, []string{"outcome"}),
		ExternalErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "external_errors_total",
			Help:      "Number of failed calls to external services by location.",
		}, []string{"location"}),
	}
}
