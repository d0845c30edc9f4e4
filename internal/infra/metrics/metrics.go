// Package metrics exposes digest run counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/k1bu/FORBETRA-sub000/internal/app"
	"github.com/k1bu/FORBETRA-sub000/internal/domain/alert"
)

const namespace = "coaching"

// Collectors implements app.Recorder on a dedicated registry.
type Collectors struct {
	registry *prometheus.Registry

	alertsRaised     *prometheus.CounterVec
	digestsDelivered *prometheus.CounterVec
	runDuration      prometheus.Histogram
	lastRunClients   prometheus.Gauge
	lastRunFailures  prometheus.Gauge
	lastRunTimestamp prometheus.Gauge
}

func New() *Collectors {
	c := &Collectors{
		registry: prometheus.NewRegistry(),
		alertsRaised: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alerts_raised_total",
				Help:      "Alerts included in coach digests.",
			},
			[]string{"kind", "severity"},
		),
		digestsDelivered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "digests_delivered_total",
				Help:      "Digest messages by delivery result.",
			},
			[]string{"result"},
		),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "digest_run_duration_seconds",
			Help:      "Duration of a full digest run.",
			Buckets:   []float64{0.5, 1, 5, 15, 60, 300},
		}),
		lastRunClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "digest_last_run_clients",
			Help:      "Clients evaluated in the last digest run.",
		}),
		lastRunFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "digest_last_run_failures",
			Help:      "Failures in the last digest run.",
		}),
		lastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "digest_last_run_timestamp_seconds",
			Help:      "Unix time the last digest run finished.",
		}),
	}
	c.registry.MustRegister(
		c.alertsRaised,
		c.digestsDelivered,
		c.runDuration,
		c.lastRunClients,
		c.lastRunFailures,
		c.lastRunTimestamp,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

var _ app.Recorder = (*Collectors)(nil)

func (c *Collectors) AlertRaised(kind alert.Kind, severity alert.Severity) {
	c.alertsRaised.WithLabelValues(string(kind), string(severity)).Inc()
}

func (c *Collectors) DigestDelivered(ok bool) {
	result := "sent"
	if !ok {
		result = "failed"
	}
	c.digestsDelivered.WithLabelValues(result).Inc()
}

func (c *Collectors) DigestRunFinished(stats app.DigestStats, elapsed time.Duration) {
	c.runDuration.Observe(elapsed.Seconds())
	c.lastRunClients.Set(float64(stats.Clients))
	c.lastRunFailures.Set(float64(stats.Failures))
	c.lastRunTimestamp.SetToCurrentTime()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Server serves /metrics until Shutdown is called.
type Server struct {
	srv    *http.Server
	logger *logrus.Entry
}

func NewServer(addr string, c *Collectors, logger *logrus.Entry) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Start listens in the background.
func (s *Server) Start() {
	go func() {
		s.logger.WithField("addr", s.srv.Addr).Info("Metrics endpoint listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("Metrics server stopped")
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
