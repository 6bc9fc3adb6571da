package internal

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AssilKherfi/Retention-Dashboard/fileio"
)

const metricsNamespace = "retention"

// Metrics holds the counters of one application, on a private registry
type Metrics struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	ordersLoaded  prometheus.Counter
	ordersDropped *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	fxLookups     *prometheus.CounterVec
	publishes     *prometheus.CounterVec
}

// NewMetrics creates and registers every collector
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "pipeline_runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Time spent loading and analysing orders.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		ordersLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "orders_loaded_total",
			Help:      "Orders kept after loading and normalisation.",
		}),
		ordersDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "orders_dropped_total",
			Help:      "Order rows dropped while loading, by reason.",
		}, []string{"reason"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "result_cache_lookups_total",
			Help:      "Memoised result lookups by outcome.",
		}, []string{"result"}),
		fxLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "fx_lookups_total",
			Help:      "Exchange rate lookups by outcome.",
		}, []string{"result"}),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "report_publishes_total",
			Help:      "Report deliveries by outcome.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.runs,
		m.runDuration,
		m.ordersLoaded,
		m.ordersDropped,
		m.cacheLookups,
		m.fxLookups,
		m.publishes,
	)
	return m
}

// Registry exposes the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveRun records one pipeline run
func (m *Metrics) ObserveRun(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome(err)).Inc()
	m.runDuration.Observe(d.Seconds())
}

// ObserveLoad records what a source load kept and dropped
func (m *Metrics) ObserveLoad(stats fileio.LoadStats) {
	if m == nil {
		return
	}
	m.ordersLoaded.Add(float64(stats.Loaded))
	m.ordersDropped.WithLabelValues("malformed").Add(float64(stats.Malformed))
	m.ordersDropped.WithLabelValues("excluded_status").Add(float64(stats.Excluded))
	m.ordersDropped.WithLabelValues("empty_category").Add(float64(stats.EmptyCategory))
}

// ObserveCache implements cache.Observer
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveFX records one exchange rate lookup
func (m *Metrics) ObserveFX(err error) {
	if m == nil {
		return
	}
	m.fxLookups.WithLabelValues(outcome(err)).Inc()
}

// ObservePublish records one report delivery
func (m *Metrics) ObservePublish(err error) {
	if m == nil {
		return
	}
	m.publishes.WithLabelValues(outcome(err)).Inc()
}

// MetricsServer serves /metrics and /health
type MetricsServer struct {
	server *http.Server
}

// NewMetricsServer creates a server for m on addr
func NewMetricsServer(addr string, m *Metrics) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", handleHealth)

	return &MetricsServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start listens in the background. Listen errors are sent to errc.
func (s *MetricsServer) Start(errc chan<- error) {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			select {
			case errc <- err:
			default:
			}
		}
	}()
}

// Stop shuts the server down gracefully
func (s *MetricsServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}
