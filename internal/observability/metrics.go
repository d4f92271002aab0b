package observability

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	packets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pktline",
			Subsystem: "stream",
			Name:      "packets_total",
			Help:      "Packets read or written, by kind.",
		},
		[]string{"stream", "direction", "kind"},
	)
	payloadBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pktline",
			Subsystem: "stream",
			Name:      "payload_bytes_total",
			Help:      "Payload bytes read or written, headers excluded.",
		},
		[]string{"stream", "direction"},
	)
	failures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pktline",
			Subsystem: "stream",
			Name:      "errors_total",
			Help:      "Failed packet operations.",
		},
		[]string{"stream", "op", "fatal"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(packets, payloadBytes, failures)
	})
}

func RecordPacket(stream, direction, kind string, n int) {
	RegisterMetrics()
	packets.WithLabelValues(stream, direction, kind).Inc()
	if n > 0 {
		payloadBytes.WithLabelValues(stream, direction).Add(float64(n))
	}
}

func RecordError(stream, op string, fatal bool) {
	RegisterMetrics()
	failures.WithLabelValues(stream, op, strconv.FormatBool(fatal)).Inc()
}

// WriteTextfile dumps the default registry in the node_exporter textfile format.
func WriteTextfile(path string) error {
	RegisterMetrics()
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
