package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agentstation/userdetails/pkg/form"
)

// Submission results counted by userdetails_submissions_total.
var submissionResults = []form.EventKind{
	form.EventSubmitted,
	form.EventRejected,
	form.EventCompleted,
	form.EventCanceled,
}

// metrics holds the server's collectors. Each server has its own registry
// so several servers can live in one process.
type metrics struct {
	registry    *prometheus.Registry
	submissions *prometheus.CounterVec
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

func newMetrics(s *Server) *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &metrics{
		registry: reg,
		submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "userdetails_submissions_total",
				Help: "Form submissions by result",
			},
			[]string{"result"},
		),
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "userdetails_http_requests_total",
				Help: "HTTP requests by method and status",
			},
			[]string{"method", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "userdetails_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2, 5},
			},
			[]string{"method"},
		),
	}
	for _, kind := range submissionResults {
		m.submissions.WithLabelValues(string(kind))
	}

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "userdetails_build_info",
		Help:        "Build information",
		ConstLabels: prometheus.Labels{"version": s.app.Version()},
	}, func() float64 { return 1 })
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "userdetails_sessions",
		Help: "Live form sessions",
	}, func() float64 { return float64(s.sessions.Count()) })
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "userdetails_profile_version",
		Help: "Number of records stored since start",
	}, func() float64 { return float64(s.app.Store().Version()) })
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "userdetails_websocket_clients",
		Help: "Connected WebSocket clients",
	}, func() float64 { return float64(s.wsHub.ClientCount()) })
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "userdetails_sse_clients",
		Help: "Connected SSE clients",
	}, func() float64 { return float64(s.sseBroadcaster.ClientCount()) })
	factory.NewCounterFunc(prometheus.CounterOpts{
		Name: "userdetails_events_published_total",
		Help: "Events accepted by the broker",
	}, func() float64 {
		published, _ := s.broker.Stats()
		return float64(published)
	})
	factory.NewCounterFunc(prometheus.CounterOpts{
		Name: "userdetails_events_dropped_total",
		Help: "Events dropped because the broker queue was full",
	}, func() float64 {
		_, dropped := s.broker.Stats()
		return float64(dropped)
	})

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// observeSubmission is a form listener that counts submission results.
func (m *metrics) observeSubmission(e form.Event) {
	m.submissions.WithLabelValues(string(e.Kind)).Inc()
}

// observeRequest records one HTTP request.
func (m *metrics) observeRequest(method string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// handler serves the registry in the Prometheus text format.
func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
