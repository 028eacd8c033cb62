package metrics

import "github.com/prometheus/client_golang/prometheus"

// CoreMetrics exposes counters/histograms for lead, quote and collaborator flows.
type CoreMetrics struct {
	leadsCreated    *prometheus.CounterVec
	leadTransitions *prometheus.CounterVec
	quotesGenerated prometheus.Counter
	quoteUpdates    *prometheus.CounterVec
	inquiries       *prometheus.CounterVec
	apiRequests     *prometheus.CounterVec
	apiLatency      *prometheus.HistogramVec
}

func NewCoreMetrics(reg prometheus.Registerer) *CoreMetrics {
	m := &CoreMetrics{
		leadsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sportstravel",
			Subsystem: "leads",
			Name:      "created_total",
			Help:      "Total leads created",
		}, []string{"outcome"}),
		leadTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sportstravel",
			Subsystem: "leads",
			Name:      "status_transitions_total",
			Help:      "Lead status transitions recorded in history",
		}, []string{"from", "to"}),
		quotesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sportstravel",
			Subsystem: "quotes",
			Name:      "generated_total",
			Help:      "Total quotes generated",
		}),
		quoteUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sportstravel",
			Subsystem: "quotes",
			Name:      "updates_total",
			Help:      "Quote updates by resulting status",
		}, []string{"status"}),
		inquiries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sportstravel",
			Subsystem: "intake",
			Name:      "inquiries_total",
			Help:      "Public form inquiries by form and outcome",
		}, []string{"form", "outcome"}),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sportstravel",
			Subsystem: "apiclient",
			Name:      "requests_total",
			Help:      "Requests sent to the back-office REST API",
		}, []string{"method", "endpoint", "outcome"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sportstravel",
			Subsystem: "apiclient",
			Name:      "request_latency_seconds",
			Help:      "Latency of back-office REST API calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.leadsCreated, m.leadTransitions, m.quotesGenerated, m.quoteUpdates, m.inquiries, m.apiRequests, m.apiLatency)
	return m
}

func (m *CoreMetrics) ObserveLeadCreated(outcome string) {
	if m == nil {
		return
	}
	m.leadsCreated.WithLabelValues(outcome).Inc()
}

func (m *CoreMetrics) ObserveLeadTransition(from, to string) {
	if m == nil {
		return
	}
	m.leadTransitions.WithLabelValues(from, to).Inc()
}

func (m *CoreMetrics) ObserveQuoteGenerated() {
	if m == nil {
		return
	}
	m.quotesGenerated.Inc()
}

func (m *CoreMetrics) ObserveQuoteUpdate(status string) {
	if m == nil {
		return
	}
	m.quoteUpdates.WithLabelValues(status).Inc()
}

func (m *CoreMetrics) ObserveInquiry(form, outcome string) {
	if m == nil {
		return
	}
	m.inquiries.WithLabelValues(form, outcome).Inc()
}

func (m *CoreMetrics) ObserveAPIRequest(method, endpoint, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, endpoint, outcome).Inc()
	m.apiLatency.WithLabelValues(method, endpoint).Observe(seconds)
}
