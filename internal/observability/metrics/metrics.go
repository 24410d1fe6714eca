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

	"github.com/legacylock-io/sbtc-legacy-vault/internal/types"
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
	once                    sync.Once
	metricsRouter           *chi.Mux
	dbLatency               *prometheus.HistogramVec
	chainClientLatency      *prometheus.HistogramVec
	ledgerTransferLatency   *prometheus.HistogramVec
	operationCounter        *prometheus.CounterVec
	queueSendErrorCounter   prometheus.Counter
	vaultsPastDeadlineGauge prometheus.Gauge
	chainTipHeightGauge     prometheus.Gauge
)

// Init initializes the metrics package.
func Init(metricsPort int) {
	once.Do(func() {
		initMetricsRouter(metricsPort)
		registerMetrics()
	})
}

// initMetricsRouter initializes the metrics router.
func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	metricsAddr := fmt.Sprintf(":%d", metricsPort)
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

// registerMetrics initializes and registers the Prometheus metrics.
func registerMetrics() {
	defaultHistogramBucketsSeconds := []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_latency_seconds",
			Help:    "Histogram of database operation durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	chainClientLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chain_client_latency_seconds",
			Help:    "Histogram of chain RPC durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	ledgerTransferLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_transfer_latency_seconds",
			Help:    "Histogram of custody ledger transfer durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"status"},
	)

	operationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vault_operations_total",
			Help: "Total number of vault operations by outcome.",
		},
		[]string{"operation", "outcome"},
	)

	queueSendErrorCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "queue_send_error_count",
		Help: "Total number of errors while publishing vault events.",
	})

	vaultsPastDeadlineGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vaults_past_deadline",
		Help: "Number of vaults past their proof-of-life deadline in the last scan.",
	})

	chainTipHeightGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chain_tip_height",
		Help: "Latest observed chain tip height.",
	})

	prometheus.MustRegister(
		dbLatency,
		chainClientLatency,
		ledgerTransferLatency,
		operationCounter,
		queueSendErrorCounter,
		vaultsPastDeadlineGauge,
		chainTipHeightGauge,
	)
}

func outcome(err error) Outcome {
	if err != nil {
		return Error
	}
	return Success
}

// ObserveDbLatency records the duration of a database call.
func ObserveDbLatency(method string, duration time.Duration, err error) {
	if dbLatency == nil {
		return
	}
	dbLatency.WithLabelValues(method, outcome(err).String()).Observe(duration.Seconds())
}

// ObserveChainClientLatency records the duration of a chain RPC call.
func ObserveChainClientLatency(method string, duration time.Duration, err error) {
	if chainClientLatency == nil {
		return
	}
	chainClientLatency.WithLabelValues(method, outcome(err).String()).Observe(duration.Seconds())
}

// ObserveLedgerTransferLatency records the duration of a custody transfer.
func ObserveLedgerTransferLatency(duration time.Duration, err error) {
	if ledgerTransferLatency == nil {
		return
	}
	ledgerTransferLatency.WithLabelValues(outcome(err).String()).Observe(duration.Seconds())
}

// RecordOperation counts one vault operation outcome. It takes the typed
// error every operation returns so that a nil pointer deferred from a named
// return is counted as success, not wrapped into a non-nil error interface.
func RecordOperation(operation string, resultErr *types.Error) {
	if operationCounter == nil {
		return
	}
	o := Success
	if resultErr != nil {
		o = Error
	}
	operationCounter.WithLabelValues(operation, o.String()).Inc()
}

func RecordQueueSendError() {
	if queueSendErrorCounter == nil {
		return
	}
	queueSendErrorCounter.Inc()
}

func RecordVaultsPastDeadline(count int) {
	if vaultsPastDeadlineGauge == nil {
		return
	}
	vaultsPastDeadlineGauge.Set(float64(count))
}

func RecordChainTipHeight(height uint64) {
	if chainTipHeightGauge == nil {
		return
	}
	chainTipHeightGauge.Set(float64(height))
}
