package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "i4",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total admin HTTP requests.",
		},
		[]string{"app", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "i4",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Admin HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"app", "method", "path", "status"},
	)
	frames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "i4",
			Subsystem: "mudmode",
			Name:      "frames_total",
			Help:      "Mudmode frames read or written.",
		},
		[]string{"direction"},
	)
	frameBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "i4",
			Subsystem: "mudmode",
			Name:      "bytes_total",
			Help:      "Mudmode bytes read or written, length prefix included.",
		},
		[]string{"direction"},
	)
	packets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "i4",
			Subsystem: "packet",
			Name:      "packets_total",
			Help:      "Packets handled by direction and type.",
		},
		[]string{"direction", "type"},
	)
	codecErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "i4",
			Subsystem: "packet",
			Name:      "codec_errors_total",
			Help:      "Packets discarded by error kind.",
		},
		[]string{"kind"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, frames, frameBytes, packets, codecErrors)
	})
}

func RecordHTTPRequest(app, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(app, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(app, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordFrame counts one frame of size bytes.
func RecordFrame(direction string, size int) {
	RegisterMetrics()
	frames.WithLabelValues(direction).Inc()
	frameBytes.WithLabelValues(direction).Add(float64(size))
}

// RecordPacket counts one packet. typ must come from a bounded set (a
// registered service name or "unknown"); raw peer input would blow up
// label cardinality.
func RecordPacket(direction, typ string) {
	RegisterMetrics()
	packets.WithLabelValues(direction, typ).Inc()
}

// RecordCodecError counts one discarded packet under kind.
func RecordCodecError(kind string) {
	RegisterMetrics()
	codecErrors.WithLabelValues(kind).Inc()
}
