package metrics

import (
	"fmt"
	"net/http"
	"strconv"
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
	once                    sync.Once
	metricsRouter           *chi.Mux
	eventProcessingDuration *prometheus.HistogramVec
	relayErrorCounter       prometheus.Counter
	queueSendErrorCounter   prometheus.Counter
	queueJobsGauge          *prometheus.GaugeVec
	jobAttemptCounter       *prometheus.CounterVec
	webhookRequestDuration  *prometheus.HistogramVec
	dbLatency               *prometheus.HistogramVec
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
	// Create a custom server with timeout settings
	metricsAddr := fmt.Sprintf(":%d", metricsPort)
	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsRouter,
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	// Start the server in a separate goroutine
	go func() {
		log.Printf("Starting metrics server on %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("Error starting metrics server on %s", metricsAddr)
		}
	}()
}

// registerMetrics initializes and register the Prometheus metrics.
func registerMetrics() {
	defaultHistogramBucketsSeconds := []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

	eventProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chain_event_processing_duration_seconds",
			Help:    "Chain event processing duration in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"event_type", "status"},
	)

	relayErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_error_count",
			Help: "The total number of failed webhook deliveries to the backend",
		},
	)

	queueSendErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_send_error_count",
			Help: "The total number of errors when sending messages to the queue",
		},
	)

	queueJobsGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "queue_jobs",
			Help: "Number of jobs in the queue broken out by state",
		},
		[]string{"state"},
	)

	jobAttemptCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_attempt_count",
			Help: "Job execution attempts by outcome",
		},
		[]string{"outcome"},
	)

	webhookRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webhook_request_duration_seconds",
			Help:    "Histogram of ingestion endpoint request durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"path", "status"},
	)

	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_latency_seconds",
			Help:    "Histogram of db calls duration in seconds",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	prometheus.MustRegister(
		eventProcessingDuration,
		relayErrorCounter,
		queueSendErrorCounter,
		queueJobsGauge,
		jobAttemptCounter,
		webhookRequestDuration,
		dbLatency,
	)
}

func RecordEventProcessingDuration(duration time.Duration, eventType string, failed bool) {
	if eventProcessingDuration == nil {
		return
	}

	status := Success
	if failed {
		status = Error
	}
	eventProcessingDuration.WithLabelValues(eventType, status.String()).Observe(duration.Seconds())
}

func RecordRelayError() {
	if relayErrorCounter == nil {
		return
	}
	relayErrorCounter.Inc()
}

func RecordQueueSendError() {
	if queueSendErrorCounter == nil {
		return
	}
	queueSendErrorCounter.Inc()
}

func SetQueueJobCount(state string, count int64) {
	if queueJobsGauge == nil {
		return
	}
	queueJobsGauge.WithLabelValues(state).Set(float64(count))
}

func RecordJobAttempt(failed bool) {
	if jobAttemptCounter == nil {
		return
	}

	outcome := Success
	if failed {
		outcome = Error
	}
	jobAttemptCounter.WithLabelValues(outcome.String()).Inc()
}

func RecordWebhookRequestDuration(duration time.Duration, path string, statusCode int) {
	if webhookRequestDuration == nil {
		return
	}
	webhookRequestDuration.WithLabelValues(path, strconv.Itoa(statusCode)).Observe(duration.Seconds())
}

func RecordDbLatency(duration time.Duration, method string, failed bool) {
	if dbLatency == nil {
		return
	}

	status := Success
	if failed {
		status = Error
	}
	dbLatency.WithLabelValues(method, status.String()).Observe(duration.Seconds())
}
