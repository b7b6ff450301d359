package core

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"sheetcore/pkg/domain"
)

// PrometheusMetricsRecorder exposes pipeline metrics through a Prometheus
// registry for scraped deployments.
type PrometheusMetricsRecorder struct {
	phaseSeconds *prometheus.HistogramVec
	problems     *prometheus.CounterVec
	runs         *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder registers the sheetcore collectors on reg and
// returns the recorder.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	r := &PrometheusMetricsRecorder{
		phaseSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sheetcore",
			Name:      "phase_duration_seconds",
			Help:      "Duration of pipeline phases.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"phase"}),
		problems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sheetcore",
			Name:      "problems_total",
			Help:      "Problems reported by resolution and validation, by severity.",
		}, []string{"severity"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sheetcore",
			Name:      "runs_total",
			Help:      "Completed preparation runs by outcome.",
		}, []string{"outcome"}),
	}
	for _, c := range []prometheus.Collector{r.phaseSeconds, r.problems, r.runs} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *PrometheusMetricsRecorder) ObservePhase(phase string, d time.Duration) {
	r.phaseSeconds.WithLabelValues(phase).Observe(d.Seconds())
}

func (r *PrometheusMetricsRecorder) CountProblems(sev domain.Severity, n int) {
	if n > 0 {
		r.problems.WithLabelValues(string(sev)).Add(float64(n))
	}
}

func (r *PrometheusMetricsRecorder) CountRun(ok bool) {
	outcome := "error"
	if ok {
		outcome = "success"
	}
	r.runs.WithLabelValues(outcome).Inc()
}
