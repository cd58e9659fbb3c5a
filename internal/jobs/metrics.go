package jobs

import "github.com/prometheus/client_golang/prometheus"

// Итог задачи: ok, error или panic.
const (
	resultOK    = "ok"
	resultError = "error"
	resultPanic = "panic"
)

var (
	jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_background_jobs_total",
			Help: "Background jobs (mail dispatch) by name and result",
		},
		[]string{"job", "result"},
	)

	jobsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "library_background_jobs_in_flight",
			Help: "Background jobs currently running",
		},
	)

	jobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "library_background_job_duration_seconds",
			Help:    "Background job duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"job"},
	)
)

func init() {
	prometheus.MustRegister(jobRuns, jobsInFlight, jobDuration)
}
