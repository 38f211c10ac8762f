package metrics

import (
	"net/http"
	"strconv"
	"time"

	apperrors "travelbook/pkg/errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	KindHotel  = "hotel"
	KindFlight = "flight"

	OutcomeAccepted = "accepted"
	OutcomeSoldOut  = "sold_out"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

type Metrics struct {
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
	Admissions         *prometheus.CounterVec
	AvailabilityChecks *prometheus.CounterVec
	StatusTransitions  *prometheus.CounterVec
	KafkaMessages      *prometheus.CounterVec
	KafkaDuration      *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New builds a Metrics set on its own registry, so tests can create as many as they like.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code",
		}, []string{"method", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		Admissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_admissions_total",
			Help:      "Booking admission decisions by kind and outcome",
		}, []string{"kind", "outcome"}),
		AvailabilityChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_checks_total",
			Help:      "Availability computations by kind",
		}, []string{"kind"}),
		StatusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_status_transitions_total",
			Help:      "Booking status changes by kind and target status",
		}, []string{"kind", "status"}),
		KafkaMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_messages_total",
			Help:      "Kafka messages by direction and result",
		}, []string{"direction", "result"}),
		KafkaDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_message_duration_seconds",
			Help:      "Time spent publishing or handling a Kafka message",
			Buckets:   prometheus.DefBuckets,
		}, []string{"direction"}),
		registry: reg,
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveHTTP(method string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveAdmission(kind string, err error) {
	m.Admissions.WithLabelValues(kind, Outcome(err)).Inc()
}

// Outcome buckets an admission result into a low-cardinality label.
func Outcome(err error) string {
	if err == nil {
		return OutcomeAccepted
	}
	switch apperrors.AsAppError(err).Code {
	case apperrors.CodeNoAvailability:
		return OutcomeSoldOut
	case apperrors.CodeValidation, apperrors.CodeNotFound, apperrors.CodeInvalidInput, apperrors.CodeForbidden:
		return OutcomeRejected
	case apperrors.CodeConflict:
		return OutcomeConflict
	default:
		return OutcomeError
	}
}
