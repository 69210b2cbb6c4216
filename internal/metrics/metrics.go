package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/leakshield/leakshield/internal/pii"
)

// Metrics records scan activity. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Scans by source kind (text, file, url, staged, repo, sample, http, mcp)
	Scans *prometheus.CounterVec

	// Findings by type and confidence
	Findings *prometheus.CounterVec

	// Scans that fell back to regex-only mode
	NERUnavailable prometheus.Counter

	ScanLatency prometheus.Histogram
	NERLatency  *prometheus.HistogramVec
}

// New registers the scan metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Scans: f.NewCounterVec(prometheus.CounterOpts{
			Name: "leakshield_scans_total",
			Help: "Total documents scanned by source kind",
		}, []string{"source"}),

		Findings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "leakshield_findings_total",
			Help: "Total findings by PII type and confidence",
		}, []string{"type", "confidence"}),

		NERUnavailable: f.NewCounter(prometheus.CounterOpts{
			Name: "leakshield_ner_unavailable_total",
			Help: "Scans that ran without entity recognition",
		}),

		ScanLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "leakshield_scan_duration_seconds",
			Help:    "Duration of a full document scan",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),

		NERLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "leakshield_ner_duration_seconds",
			Help:    "Duration of entity recognition by recognizer",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"recognizer"}),
	}
}

// ObserveScan records one completed scan.
func (m *Metrics) ObserveScan(source string, d time.Duration, findings []pii.Finding, nerAvailable bool) {
	if m == nil {
		return
	}
	m.Scans.WithLabelValues(source).Inc()
	m.ScanLatency.Observe(d.Seconds())
	if !nerAvailable {
		m.NERUnavailable.Inc()
	}
	for _, f := range findings {
		m.Findings.WithLabelValues(string(f.Type), string(f.Confidence)).Inc()
	}
}

// ObserveNER records the duration of one recognizer call.
func (m *Metrics) ObserveNER(recognizer string, d time.Duration) {
	if m != nil {
		m.NERLatency.WithLabelValues(recognizer).Observe(d.Seconds())
	}
}
