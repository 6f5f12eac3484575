package configsdk

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	endpointToken  = "token"
	endpointConfig = "config"

	outcomeOK = "ok"
)

// MetricsCollector records Prometheus metrics for a Client. A nil collector
// records nothing. It is safe for concurrent use.
type MetricsCollector struct {
	tokenRequests   *prometheus.CounterVec
	configRequests  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	tokenCacheHits  prometheus.Counter
}

// NewMetricsCollector registers the client metrics on reg.
func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &MetricsCollector{
		tokenRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "configurine_token_requests_total",
				Help: "Token endpoint requests by outcome",
			},
			[]string{"outcome"},
		),
		configRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "configurine_config_requests_total",
				Help: "Configuration endpoint requests by outcome and status code",
			},
			[]string{"outcome", "status_code"},
		),
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "configurine_request_duration_seconds",
				Help:    "Duration of requests to the configuration service",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		tokenCacheHits: f.NewCounter(
			prometheus.CounterOpts{
				Name: "configurine_token_cache_hits_total",
				Help: "Lookups served with the cached access token",
			},
		),
	}
}

// recordToken counts one token acquisition attempt.
func (mc *MetricsCollector) recordToken(err error, d time.Duration) {
	if mc == nil {
		return
	}
	mc.tokenRequests.WithLabelValues(outcomeOf(err)).Inc()
	mc.requestDuration.WithLabelValues(endpointToken).Observe(d.Seconds())
}

// recordConfig counts one configuration lookup. status is 0 when no response arrived.
func (mc *MetricsCollector) recordConfig(err error, status int, d time.Duration) {
	if mc == nil {
		return
	}
	mc.configRequests.WithLabelValues(outcomeOf(err), strconv.Itoa(status)).Inc()
	mc.requestDuration.WithLabelValues(endpointConfig).Observe(d.Seconds())
}

func (mc *MetricsCollector) recordCacheHit() {
	if mc == nil {
		return
	}
	mc.tokenCacheHits.Inc()
}

func outcomeOf(err error) string {
	switch e := err.(type) {
	case nil:
		return outcomeOK
	case *AuthError:
		return e.Kind.String()
	case *ConfigError:
		return e.Kind.String()
	default:
		return "error"
	}
}
