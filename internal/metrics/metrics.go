package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts resolution outcomes and run sizes. A nil *Metrics is valid
// and records nothing, so one-shot CLI runs need not register anything.
type Metrics struct {
	Resolutions     *prometheus.CounterVec
	ResolveDuration prometheus.Histogram
	RecordsIn       prometheus.Counter
	RecordsExcluded *prometheus.CounterVec
	RecordsOut      *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
}

// New registers every metric with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Resolutions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "recall_address_resolutions_total",
			Help: "Address resolutions by outcome",
		}, []string{"outcome"}),
		ResolveDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "recall_address_resolve_duration_seconds",
			Help:    "Duration of a single address resolution",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),
		RecordsIn: f.NewCounter(prometheus.CounterOpts{
			Name: "recall_records_read_total",
			Help: "Roster records read",
		}),
		RecordsExcluded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "recall_records_excluded_total",
			Help: "Records dropped before output by reason",
		}, []string{"reason"}),
		RecordsOut: f.NewCounterVec(prometheus.CounterOpts{
			Name: "recall_records_written_total",
			Help: "Records written to upload files by cohort",
		}, []string{"cohort"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "recall_http_requests_total",
			Help: "Preview API requests by route and status",
		}, []string{"route", "status"}),
	}
}

// ObserveResolve records one resolution. Call with time.Now() taken before it.
func (m *Metrics) ObserveResolve(outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(outcome).Inc()
	m.ResolveDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) AddRead(n int) {
	if m == nil {
		return
	}
	m.RecordsIn.Add(float64(n))
}

// AddExcluded records n records dropped for reason (ng_list, out_of_window,
// unknown_visit).
func (m *Metrics) AddExcluded(reason string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RecordsExcluded.WithLabelValues(reason).Add(float64(n))
}

func (m *Metrics) AddWritten(cohort string, n int) {
	if m == nil {
		return
	}
	m.RecordsOut.WithLabelValues(cohort).Add(float64(n))
}

func (m *Metrics) IncHTTP(route string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, statusClass(status)).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
