package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	DirectionPack   = "pack"
	DirectionUnpack = "unpack"
)

var (
	registerOnce sync.Once

	codecBytesIn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meatpack",
			Subsystem: "codec",
			Name:      "bytes_in_total",
			Help:      "Bytes fed into the packer or unpacker.",
		},
		[]string{"direction"},
	)
	codecBytesOut = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meatpack",
			Subsystem: "codec",
			Name:      "bytes_out_total",
			Help:      "Bytes emitted in completed lines.",
		},
		[]string{"direction"},
	)
	codecLines = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meatpack",
			Subsystem: "codec",
			Name:      "lines_total",
			Help:      "Completed lines.",
		},
		[]string{"direction"},
	)
	codecErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meatpack",
			Subsystem: "codec",
			Name:      "errors_total",
			Help:      "Codec failures by kind.",
		},
		[]string{"direction", "kind"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meatpack",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "meatpack",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(codecBytesIn, codecBytesOut, codecLines, codecErrors, httpRequests, httpDuration)
	})
}

// RecordCodec adds one finished run (or chunk) of a codec direction.
func RecordCodec(direction string, bytesIn, bytesOut, lines int64) {
	RegisterMetrics()
	codecBytesIn.WithLabelValues(direction).Add(float64(bytesIn))
	codecBytesOut.WithLabelValues(direction).Add(float64(bytesOut))
	codecLines.WithLabelValues(direction).Add(float64(lines))
}

func RecordCodecError(direction, kind string) {
	RegisterMetrics()
	codecErrors.WithLabelValues(direction, kind).Inc()
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}
