package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success                  Outcome       = "success"
	Error                    Outcome       = "error"
	MetricRequestTimeout     time.Duration = 5 * time.Second
	MetricRequestIdleTimeout time.Duration = 10 * time.Second
)

func (O Outcome) String() string {
	return string(O)
}

var (
	once          sync.Once
	metricsRouter *chi.Mux

	defaultHistogramBucketsSeconds = []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10}

	lndClientLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lnd_client_latency_seconds",
			Help:    "Histogram of lnd client durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	storeLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "state_store_latency_seconds",
			Help:    "State store latency in seconds splitted by method and execution status",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	pollerDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poller_duration_seconds",
			Help:    "Histogram of poller durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"type", "status"},
	)

	outboundRatioGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "channel_outbound_ratio",
			Help: "Last sampled outbound liquidity ratio",
		},
		[]string{"channel"},
	)

	feeRateGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "channel_fee_rate_ppm",
			Help: "Fee rate in ppm after the last tick",
		},
		[]string{"channel"},
	)

	maxHTLCGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "channel_max_htlc_sat",
			Help: "HTLC ceiling in satoshis after the last tick",
		},
		[]string{"channel"},
	)

	blockerActiveGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "channel_blocker_active",
			Help: "1 while the blocker fee is in force",
		},
		[]string{"channel"},
	)

	policyUpdateCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channel_policy_update_count",
			Help: "Number of policy updates sent to the node, by updated field",
		},
		[]string{"channel", "field"},
	)

	guardEventCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channel_guard_event_count",
			Help: "Number of change-triggered guard events",
		},
		[]string{"channel", "event"},
	)

	tickErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channel_guard_tick_error_count",
			Help: "Number of failed ticks by error type",
		},
		[]string{"type"},
	)
)

// Init registers the collectors and starts the metrics server.
func Init(host string, metricsPort int) {
	once.Do(func() {
		registerMetrics()
		initMetricsRouter(host, metricsPort)
	})
}

// initMetricsRouter initializes the metrics router.
func initMetricsRouter(host string, metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	metricsAddr := fmt.Sprintf("%s:%d", host, metricsPort)
	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsRouter,
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	go func() {
		log.Info().Msgf("Starting metrics server on %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("Error starting metrics server on %s", metricsAddr)
		}
	}()
}

func registerMetrics() {
	prometheus.MustRegister(
		lndClientLatency,
		storeLatency,
		pollerDurationHistogram,
		outboundRatioGauge,
		feeRateGauge,
		maxHTLCGauge,
		blockerActiveGauge,
		policyUpdateCounter,
		guardEventCounter,
		tickErrorCounter,
	)
}

func outcome(failure bool) Outcome {
	if failure {
		return Error
	}
	return Success
}

func RecordLNDClientLatency(d time.Duration, method string, failure bool) {
	lndClientLatency.WithLabelValues(method, outcome(failure).String()).Observe(d.Seconds())
}

func RecordStoreLatency(d time.Duration, method string, failure bool) {
	storeLatency.WithLabelValues(method, outcome(failure).String()).Observe(d.Seconds())
}

// RecordChannelStatus publishes the channel gauges after a tick.
func RecordChannelStatus(channel string, ratio float64, feeRatePPM int64, maxHTLCSat int64, blockerActive bool) {
	outboundRatioGauge.WithLabelValues(channel).Set(ratio)
	feeRateGauge.WithLabelValues(channel).Set(float64(feeRatePPM))
	maxHTLCGauge.WithLabelValues(channel).Set(float64(maxHTLCSat))

	blocker := 0.0
	if blockerActive {
		blocker = 1
	}
	blockerActiveGauge.WithLabelValues(channel).Set(blocker)
}

func IncPolicyUpdate(channel, field string) {
	policyUpdateCounter.WithLabelValues(channel, field).Inc()
}

func IncGuardEvent(channel, event string) {
	guardEventCounter.WithLabelValues(channel, event).Inc()
}

func IncTickError(errType string) {
	tickErrorCounter.WithLabelValues(errType).Inc()
}
