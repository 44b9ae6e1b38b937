package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	datagramsReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "netssd",
			Subsystem: "engine",
			Name:      "datagrams_received_total",
			Help:      "Datagrams accepted into a session inbound queue.",
		},
		[]string{"node"},
	)
	datagramsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "netssd",
			Subsystem: "engine",
			Name:      "datagrams_sent_total",
			Help:      "Datagrams handed to the host transport.",
		},
		[]string{"node"},
	)
	malformedDatagrams = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "netssd",
			Subsystem: "engine",
			Name:      "malformed_datagrams_total",
			Help:      "Inbound datagrams dropped for codec errors.",
		},
		[]string{"node"},
	)
	queueOverflows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "netssd",
			Subsystem: "engine",
			Name:      "queue_overflow_total",
			Help:      "Oldest-entry drops from full session inbound queues.",
		},
		[]string{"node"},
	)
	unsolicitedRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "netssd",
			Subsystem: "engine",
			Name:      "unsolicited_rejected_total",
			Help:      "Inbound datagrams rejected because no session existed.",
		},
		[]string{"node"},
	)
	sessionsOpened = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "netssd",
			Subsystem: "engine",
			Name:      "sessions_opened_total",
			Help:      "Sessions created by the send path or dispatcher.",
		},
		[]string{"node"},
	)
	sessionsClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "netssd",
			Subsystem: "engine",
			Name:      "sessions_closed_total",
			Help:      "Sessions removed by close, sweep, or shutdown.",
		},
		[]string{"node"},
	)
	sessionsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "netssd",
			Subsystem: "engine",
			Name:      "sessions_active",
			Help:      "Sessions currently resident in the session table.",
		},
		[]string{"node"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "netssd",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total admin HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "netssd",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Admin HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			datagramsReceived, datagramsSent, malformedDatagrams,
			queueOverflows, unsolicitedRejected,
			sessionsOpened, sessionsClosed, sessionsActive,
			httpRequests, httpDuration,
		)
	})
}

func RecordDatagramReceived(node string) {
	RegisterMetrics()
	datagramsReceived.WithLabelValues(node).Inc()
}

func RecordDatagramSent(node string) {
	RegisterMetrics()
	datagramsSent.WithLabelValues(node).Inc()
}

func RecordMalformedDatagram(node string) {
	RegisterMetrics()
	malformedDatagrams.WithLabelValues(node).Inc()
}

func RecordQueueOverflow(node string) {
	RegisterMetrics()
	queueOverflows.WithLabelValues(node).Inc()
}

func RecordUnsolicitedRejected(node string) {
	RegisterMetrics()
	unsolicitedRejected.WithLabelValues(node).Inc()
}

func RecordSessionOpened(node string) {
	RegisterMetrics()
	sessionsOpened.WithLabelValues(node).Inc()
	sessionsActive.WithLabelValues(node).Inc()
}

func RecordSessionClosed(node string) {
	RegisterMetrics()
	sessionsClosed.WithLabelValues(node).Inc()
	sessionsActive.WithLabelValues(node).Dec()
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}
