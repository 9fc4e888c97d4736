package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shareit"

// Booking outcomes recorded by IncBooking.
const (
	OutcomeCreated            = "created"
	OutcomeConflict           = "conflict"
	OutcomeRejectedValidation = "rejected_validation"
	OutcomeApproved           = "approved"
	OutcomeRejected           = "rejected"
	OutcomeLockTimeout        = "lock_timeout"
)

var (
	once sync.Once

	bookingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Count of booking operations by outcome.",
		},
		[]string{"outcome"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)

	eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Count of domain events handed to Kafka by topic and result.",
		},
		[]string{"topic", "result"},
	)
)

// Register registers the collectors with the default registry (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingsTotal, httpRequestDuration, eventsPublished)
	})
}

func IncBooking(outcome string) {
	bookingsTotal.WithLabelValues(outcome).Inc()
}

func ObserveHTTPRequest(method string, status int, elapsed time.Duration) {
	httpRequestDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

func IncEventPublished(topic string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	eventsPublished.WithLabelValues(topic, result).Inc()
}
