package server

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"equity-analyst/internal/types"
)

// Recorder holds the Prometheus collectors of one server. Each recorder owns
// its registry.
type Recorder struct {
	registry   *prometheus.Registry
	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	iterations prometheus.Histogram
	fallbacks  prometheus.Counter
	answers    *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		registry: reg,
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analyst_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "analyst_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"route", "method"},
		),
		iterations: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "analyst_loop_iterations",
			Help:    "Routing iterations per answered question",
			Buckets: []float64{1, 2, 3, 4, 5},
		}),
		fallbacks: f.NewCounter(prometheus.CounterOpts{
			Name: "analyst_fallback_plans_total",
			Help: "Routing decisions that used the deterministic fallback plan",
		}),
		answers: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analyst_answers_total",
				Help: "Questions finished, by whether an answer was produced",
			},
			[]string{"answered"},
		),
	}
}

// RecordRequest records one served HTTP request.
func (r *Recorder) RecordRequest(route, method string, status int, seconds float64) {
	r.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.latency.WithLabelValues(route, method).Observe(seconds)
}

// RecordAnalysis records the loop outcome of one question.
func (r *Recorder) RecordAnalysis(a types.Analysis) {
	r.iterations.Observe(float64(a.Iterations))
	r.fallbacks.Add(float64(a.Fallbacks))
	r.answers.WithLabelValues(strconv.FormatBool(a.Answered)).Inc()
}

// Handler exposes the registry for scraping.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
