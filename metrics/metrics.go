package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "devguide"

// Metrics counts language selections and document reads. A nil *Metrics
// records nothing.
type Metrics struct {
	selections    *prometheus.CounterVec
	invalid       prometheus.Counter
	documentReads *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "language_selections_total",
			Help:      "Language selections by language code.",
		}, []string{"language"}),
		invalid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_language_selections_total",
			Help:      "Selections rejected because the language code is not supported.",
		}),
		documentReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_reads_total",
			Help:      "Document reads by language and result.",
		}, []string{"language", "result"}),
	}
	reg.MustRegister(m.selections, m.invalid, m.documentReads)
	return m
}

func (m *Metrics) LanguageSelected(code string) {
	if m == nil {
		return
	}
	m.selections.WithLabelValues(code).Inc()
}

func (m *Metrics) InvalidLanguage() {
	if m == nil {
		return
	}
	m.invalid.Inc()
}

func (m *Metrics) DocumentRead(code string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.documentReads.WithLabelValues(code, result).Inc()
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
