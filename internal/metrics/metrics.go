package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the collection of all Prometheus metrics exported by the bot.
// It implements the observer hooks of internal/minefort.
type Metrics struct {
	// Provider API metrics
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	LoginsTotal        *prometheus.CounterVec

	// Polling cache metrics
	CacheLookupsTotal *prometheus.CounterVec

	// Bot metrics
	CommandsTotal        *prometheus.CounterVec
	RefreshFailuresTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minefort_api_requests_total",
			Help: "Total number of Minefort API requests",
		},
		[]string{"operation", "status"},
	)

	m.APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "minefort_api_request_duration_seconds",
			Help:    "Duration of Minefort API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	m.LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minefort_logins_total",
			Help: "Total number of Minefort login attempts",
		},
		[]string{"result"},
	)

	m.CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "server_cache_lookups_total",
			Help: "Server list cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	m.CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total number of chat commands handled",
		},
		[]string{"command"},
	)

	m.RefreshFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "background_refresh_failures_total",
			Help: "Failed background refresh runs by task",
		},
		[]string{"task"},
	)

	m.registry.MustRegister(
		m.APIRequestsTotal,
		m.APIRequestDuration,
		m.LoginsTotal,
		m.CacheLookupsTotal,
		m.CommandsTotal,
		m.RefreshFailuresTotal,
	)

	return m
}

// ObserveRequest implements minefort.Observer.
func (m *Metrics) ObserveRequest(operation string, statusCode int, duration time.Duration) {
	m.APIRequestsTotal.WithLabelValues(operation, strconv.Itoa(statusCode)).Inc()
	m.APIRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveLogin implements minefort.Observer.
func (m *Metrics) ObserveLogin(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	m.LoginsTotal.WithLabelValues(result).Inc()
}

// ObserveCache implements minefort.CacheObserver.
func (m *Metrics) ObserveCache(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(outcome).Inc()
}

// RecordCommand counts one handled chat command.
func (m *Metrics) RecordCommand(command string) {
	m.CommandsTotal.WithLabelValues(command).Inc()
}

// RecordRefreshFailure counts one failed background refresh.
func (m *Metrics) RecordRefreshFailure(task string) {
	m.RefreshFailuresTotal.WithLabelValues(task).Inc()
}

// Handler returns the Prometheus HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
